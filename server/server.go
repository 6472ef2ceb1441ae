// Package server exposes generation over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aerissecure/protocols/archive"
	"github.com/aerissecure/protocols/protocol"
	"github.com/aerissecure/protocols/roster"
)

// Generator produces documents for one application.
type Generator interface {
	Generate(ctx context.Context, req protocol.Request) (*protocol.Result, error)
}

// Config configures the HTTP front-end.
type Config struct {
	Addr            string        `yaml:"addr"`
	MaxUploadMiB    int64         `yaml:"max_upload_mib"`
	WorkDir         string        `yaml:"work_dir"` // system temp dir when empty
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig listens on :8000 and accepts uploads up to 32 MiB.
func DefaultConfig() Config {
	return Config{Addr: ":8000", MaxUploadMiB: 32, ShutdownTimeout: 10 * time.Second}
}

// Option customises a Server.
type Option func(*Server)

// WithStore uploads every archive to store under prefix before responding.
// The object location is returned in the X-Archive-Location header.
func WithStore(store archive.Store, prefix string) Option {
	return func(s *Server) {
		s.store = store
		s.prefix = prefix
	}
}

// Server handles generation requests.
type Server struct {
	gen     Generator
	cfg     Config
	log     *zap.Logger
	reg     *prometheus.Registry
	metrics *metrics
	store   archive.Store
	prefix  string
}

// New returns a Server. Metrics are registered with reg, or with a private
// registry when reg is nil.
func New(gen Generator, cfg Config, log *zap.Logger, reg *prometheus.Registry, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{gen: gen, cfg: cfg, log: log, reg: reg, metrics: newMetrics(reg)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate_protocols/", s.handleGenerate)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(zap.String("request_id", uuid.NewString()))
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMiB<<20)

	file, hdr, err := r.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.metrics.requests.WithLabelValues("too_large").Inc()
		log.Warn("upload too large", zap.Int64("limit", tooLarge.Limit))
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
		return
	}
	if err != nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		log.Warn("missing upload", zap.Error(err))
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	work, err := os.MkdirTemp(s.cfg.WorkDir, "protocolgen-")
	if err != nil {
		s.fail(w, log, err)
		return
	}
	defer os.RemoveAll(work)

	// The upload keeps its file name: the application number and
	// organisation are parsed from it.
	name := filepath.Base(filepath.Clean("/" + hdr.Filename))
	if name == "/" || name == "." {
		name = "upload"
	}
	src := filepath.Join(work, name)
	if err := saveUpload(src, file); err != nil {
		s.fail(w, log, err)
		return
	}
	log.Info("application received", zap.String("file", hdr.Filename), zap.Int64("bytes", hdr.Size))

	start := time.Now()
	res, err := s.gen.Generate(r.Context(), protocol.Request{
		Source:       src,
		Organization: r.FormValue("organization_name"),
		Number:       r.FormValue("contract_number"),
		OutDir:       filepath.Join(work, "out"),
	})
	s.metrics.duration.Observe(time.Since(start).Seconds())
	if res != nil {
		for _, d := range res.Documents {
			s.metrics.documents.WithLabelValues(string(d.Kind)).Inc()
		}
		for _, f := range res.Failures {
			s.metrics.failures.WithLabelValues(string(f.Kind)).Inc()
		}
	}
	switch {
	case errors.Is(err, roster.ErrUnsupportedSource):
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.fail(w, log, err)
		return
	case res.Records == 0:
		s.metrics.requests.WithLabelValues("no_records").Inc()
		writeError(w, http.StatusUnprocessableEntity, "no records found in the application")
		return
	}

	var buf bytes.Buffer
	if err := archive.Zip(&buf, res.Paths()); err != nil {
		s.fail(w, log, err)
		return
	}
	if s.store != nil {
		key := archive.ObjectKey(s.prefix, res.Info.Number)
		loc, err := s.store.Put(r.Context(), key, bytes.NewReader(buf.Bytes()))
		if err != nil {
			s.fail(w, log, err)
			return
		}
		log.Info("archive uploaded", zap.String("key", key))
		w.Header().Set("X-Archive-Location", loc)
	}

	s.metrics.requests.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=protocols.zip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) fail(w http.ResponseWriter, log *zap.Logger, err error) {
	s.metrics.requests.WithLabelValues("failed").Inc()
	log.Error("generation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func saveUpload(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"detail": message})
}
