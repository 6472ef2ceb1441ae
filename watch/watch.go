// Package watch turns an inbox directory into a generation queue: every
// application dropped into it is processed and its archive written to an
// outbox.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/aerissecure/protocols/archive"
	"github.com/aerissecure/protocols/protocol"
)

// Generator produces documents for one application.
type Generator interface {
	Generate(ctx context.Context, req protocol.Request) (*protocol.Result, error)
}

// Config configures the hot folder.
type Config struct {
	Inbox    string        `yaml:"inbox"`
	Outbox   string        `yaml:"outbox"`
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig watches ./inbox and writes to ./outbox.
func DefaultConfig() Config {
	return Config{Inbox: "inbox", Outbox: "outbox", Debounce: 500 * time.Millisecond}
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before it is processed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher processes applications dropped into a directory.
type Watcher struct {
	dir      string
	outDir   string
	gen      Generator
	log      *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	pending map[string]time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New returns a Watcher for dir writing archives to outDir.
func New(dir, outDir string, gen Generator, log *zap.Logger, opts ...Option) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{
		dir:      dir,
		outDir:   outDir,
		gen:      gen,
		log:      log,
		debounce: 500 * time.Millisecond,
		pending:  make(map[string]time.Time),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Start begins watching. Applications already in the directory are queued.
// It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	for _, d := range []string{w.dir, w.outDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return err
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		fw.Close()
		return err
	}
	for _, e := range entries {
		if p := filepath.Join(w.dir, e.Name()); !e.IsDir() && eligible(p) {
			w.pending[p] = time.Time{}
		}
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx)
	w.log.Info("watching inbox", zap.String("inbox", w.dir), zap.String("outbox", w.outDir))
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.log.Error("close watcher", zap.Error(err))
	}
	w.log.Info("watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(max(w.debounce/5, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 && eligible(ev.Name) {
				w.mu.Lock()
				w.pending[ev.Name] = time.Now()
				w.mu.Unlock()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", zap.Error(err))
		case <-ticker.C:
			for _, path := range w.due() {
				w.process(ctx, path)
			}
		}
	}
}

// due removes and returns the files that have been quiet for the debounce
// interval.
func (w *Watcher) due() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	now := time.Now()
	for p, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			out = append(out, p)
			delete(w.pending, p)
		}
	}
	return out
}

func (w *Watcher) process(ctx context.Context, path string) {
	log := w.log.With(zap.String("source", path))
	if _, err := os.Stat(path); err != nil {
		log.Debug("application vanished", zap.Error(err))
		return
	}
	res, err := w.gen.Generate(ctx, protocol.Request{Source: path})
	if res != nil && res.OutDir != "" {
		defer os.RemoveAll(res.OutDir)
	}
	if err != nil {
		log.Error("generation failed", zap.Error(err))
		return
	}
	if len(res.Documents) == 0 {
		log.Warn("no records, nothing archived")
		return
	}
	// <number>-<uuid>.zip: applications without a parsable number share
	// the fallback number and must not overwrite each other.
	dest := filepath.Join(w.outDir, archive.ObjectKey("", res.Info.Number))
	if err := archive.WriteZip(dest, res.Paths()); err != nil {
		log.Error("write archive", zap.Error(err))
		return
	}
	log.Info("archive written", zap.String("archive", dest), zap.Int("documents", len(res.Documents)))
}

func eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".docx", ".xlsx":
		return true
	}
	return false
}
