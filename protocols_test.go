package protocols_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerissecure/protocols"
	"github.com/aerissecure/protocols/internal/testdocs"
	"github.com/aerissecure/protocols/protocol"
)

func TestGenerateWith(t *testing.T) {
	dir := t.TempDir()
	cfg := protocol.DefaultConfig()
	cfg.TemplatesDir = dir
	p := cfg.Programs["2"]
	testdocs.WriteProtocolTemplate(t, filepath.Join(dir, p.Template), p.Title, cfg.Overflow.ThemePlaceholder)
	testdocs.WriteAttendanceTemplate(t, filepath.Join(dir, cfg.Attendance.Template), cfg.Attendance.Placeholder)
	testdocs.WriteConsentTemplate(t, filepath.Join(dir, cfg.Consent.Template), cfg.Consent.Placeholder)

	src := testdocs.WriteApplication(t, filepath.Join(t.TempDir(), "636. Acme LLC.docx"),
		[]string{"1", "Ivanov I.I.", "123-456-789", "electrician", "2"},
	)

	paths, err := protocols.GenerateWith(context.Background(), cfg, nil, src, "", "")
	require.NoError(t, err)
	require.Len(t, paths, 3)
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(paths[0])) })

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
		assert.FileExists(t, p)
	}
	assert.Equal(t, []string{
		"Protocol_636_Acme_LLC_Program_2.docx",
		"AttendanceList_636_Acme_LLC.docx",
		"Consent_636_Acme_LLC.docx",
	}, names)
}

func TestGenerateNoRecords(t *testing.T) {
	src := testdocs.WriteApplication(t, filepath.Join(t.TempDir(), "12. Org.docx"),
		[]string{"1", "", "", "", "1"},
	)
	paths, err := protocols.Generate(context.Background(), src, "", "")
	assert.NoError(t, err)
	assert.Empty(t, paths)
}

func TestGenerateMissingSource(t *testing.T) {
	_, err := protocols.Generate(context.Background(), filepath.Join(t.TempDir(), "absent.docx"), "Org", "1")
	assert.Error(t, err)
}
