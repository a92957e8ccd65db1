package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger, err := New("WARN", &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("face", "lion").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "lion", entry["face"])
	assert.Contains(t, entry, "time")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestOpenFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	f, err := OpenFile("")
	require.NoError(t, err)
	defer f.Close()

	want := filepath.Join(dir, "memoria", "memoria.log")
	assert.Equal(t, want, f.Name())
	_, err = os.Stat(want)
	assert.NoError(t, err)
}
