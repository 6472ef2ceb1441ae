package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerissecure/protocols/internal/testdocs"
	"github.com/aerissecure/protocols/protocol"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PROTOCOLGEN_LOG_FILE", "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	src := testdocs.WriteApplication(t, filepath.Join(t.TempDir(), "7. Org.docx"),
		[]string{"1", "Иванов И.И.", "111", "Мастер", "1, 2"},
	)
	out, err := execute(t, "inspect", src)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Table 0 ===")
	assert.Contains(t, out, "1 records")
	assert.Contains(t, out, "program 1: Иванов И.И.")
	assert.Contains(t, out, "program 2: Иванов И.И.")
}

func TestGenerateWritesArchiveNextToSource(t *testing.T) {
	dir := t.TempDir()
	cfg := protocol.DefaultConfig()
	p := cfg.Programs["1"]
	testdocs.WriteProtocolTemplate(t, filepath.Join(dir, p.Template), p.Title, cfg.Overflow.ThemePlaceholder)
	testdocs.WriteAttendanceTemplate(t, filepath.Join(dir, cfg.Attendance.Template), cfg.Attendance.Placeholder)
	testdocs.WriteConsentTemplate(t, filepath.Join(dir, cfg.Consent.Template), cfg.Consent.Placeholder)
	t.Setenv("PROTOCOLGEN_TEMPLATES_DIR", dir)

	srcDir := t.TempDir()
	src := testdocs.WriteApplication(t, filepath.Join(srcDir, "636. Acme LLC.docx"),
		[]string{"1", "Ivanov I.I.", "123-456-789", "electrician", "1"},
	)
	out, err := execute(t, "generate", src)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(srcDir, "636.zip"))
	assert.Contains(t, out, "Protocol_636_Acme_LLC_Program_1.docx")
	assert.Contains(t, out, "(3 documents)")
}

func TestGenerateRequiresSource(t *testing.T) {
	_, err := execute(t, "generate")
	assert.Error(t, err)
}
