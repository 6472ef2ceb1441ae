package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileSinkRotates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	sink := fileSink(Config{File: filepath.Join(dir, "protocolgen.log"), MaxSizeMiB: 1, Backups: 2})
	defer sink.Close()

	_, err := sink.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, sink.Rotate())
	_, err = sink.Write([]byte("second\n"))
	require.NoError(t, err)

	cur, err := os.ReadFile(filepath.Join(dir, "protocolgen.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(cur))
	backups, err := filepath.Glob(filepath.Join(dir, "protocolgen-*.log"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(old))
}

func TestFileSinkSettings(t *testing.T) {
	sink := fileSink(DefaultConfig())
	assert.Equal(t, "logs/protocolgen.log", sink.Filename)
	assert.Equal(t, 5, sink.MaxSize)
	assert.Equal(t, 3, sink.MaxBackups)
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocolgen.log")
	logger, closeFn, err := New(Config{Level: "info", File: path, MaxSizeMiB: 1, Backups: 1})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("document saved", zap.String("program", "3"))
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "document saved", entry["msg"])
	assert.Equal(t, "3", entry["program"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.Error(t, err)
	assert.Error(t, Config{Level: "loud"}.Validate())
	assert.NoError(t, DefaultConfig().Validate())
}
