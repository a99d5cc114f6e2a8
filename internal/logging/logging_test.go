package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"agency-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_StdoutOnly(t *testing.T) {
	w, closer := Writer(&config.Config{})
	assert.Equal(t, os.Stdout, w)
	assert.NoError(t, closer.Close())
}

func TestWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agency.log")
	w, closer := Writer(&config.Config{LogFile: path, LogMaxSizeMB: 1, LogMaxBackups: 1})

	_, err := fmt.Fprintln(w, "[INFO] hello")
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
