package watch

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aerissecure/protocols/protocol"
	"github.com/aerissecure/protocols/roster"
)

type fakeGenerator struct {
	mu      sync.Mutex
	sources []string
}

func (f *fakeGenerator) Generate(_ context.Context, req protocol.Request) (*protocol.Result, error) {
	f.mu.Lock()
	f.sources = append(f.sources, req.Source)
	f.mu.Unlock()

	info := roster.ParseFileName(req.Source)
	out, err := os.MkdirTemp("", "watch-test-")
	if err != nil {
		return nil, err
	}
	p := filepath.Join(out, protocol.ProtocolName(info.Number, info.Organization, "1"))
	if err := os.WriteFile(p, []byte("docx"), 0o644); err != nil {
		return nil, err
	}
	return &protocol.Result{
		Info:      info,
		Records:   1,
		OutDir:    out,
		Documents: []protocol.Document{{Kind: protocol.KindProtocol, Program: "1", Path: p}},
	}, nil
}

func (f *fakeGenerator) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sources...)
}

func TestWatcherProcessesDroppedApplication(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	inbox, outbox := filepath.Join(root, "in"), filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "12. Early.docx"), []byte("x"), 0o644))

	gen := &fakeGenerator{}
	w := New(inbox, outbox, gen, nil, WithDebounce(50*time.Millisecond))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "636. Org.docx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "~$636. Org.docx"), []byte("lock"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return len(archives(outbox, "636")) == 1
	}, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(archives(outbox, "12")) == 1
	}, 5*time.Second, 20*time.Millisecond, "files present at start are processed")

	zr, err := zip.OpenReader(archives(outbox, "636")[0])
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.Equal(t, "Protocol_636_Org_Program_1.docx", zr.File[0].Name)

	for _, s := range gen.seen() {
		assert.Contains(t, []string{"12. Early.docx", "636. Org.docx"}, filepath.Base(s))
	}
}

// archives lists the outbox archives of application number.
func archives(outbox, number string) []string {
	m, _ := filepath.Glob(filepath.Join(outbox, number+"-*.zip"))
	return m
}

func TestWatcherKeepsArchivesOfUnnumberedApplications(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	inbox, outbox := filepath.Join(root, "in"), filepath.Join(root, "out")
	gen := &fakeGenerator{}
	w := New(inbox, outbox, gen, nil, WithDebounce(20*time.Millisecond))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "first.docx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "second.docx"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return len(archives(outbox, roster.UnknownNumber)) == 2
	}, 5*time.Second, 20*time.Millisecond, "each application gets its own archive")
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := New(filepath.Join(t.TempDir(), "in"), filepath.Join(t.TempDir(), "out"), &fakeGenerator{}, nil)
	w.Stop()
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestEligible(t *testing.T) {
	cases := map[string]bool{
		"/in/636. Org.docx": true,
		"/in/636. Org.XLSX": true,
		"/in/~$636.docx":    false,
		"/in/.hidden.docx":  false,
		"/in/636.doc":       false,
		"/in/636.pdf":       false,
	}
	for in, want := range cases {
		assert.Equal(t, want, eligible(in), in)
	}
}
