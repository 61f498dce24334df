package nativelog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapLoggerWritesBothSinks(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer

	logger, err := NewZapLogger(Options{Dir: dir, MaxBackups: 1, Stdout: &stdout})
	require.NoError(t, err)
	logger.Named("PostService").Info("post created")
	_ = logger.Sync()

	assert.Contains(t, stdout.String(), "PostService")
	assert.Contains(t, stdout.String(), "post created")

	content, err := os.ReadFile(filepath.Join(dir, LogFilename))
	require.NoError(t, err)
	assert.Contains(t, string(content), "post created")
}

func TestResolveDir(t *testing.T) {
	t.Setenv(EnvLogDir, "/var/log/penline")
	assert.Equal(t, "/custom", ResolveDir("/custom"))
	assert.Equal(t, "/var/log/penline", ResolveDir(""))

	t.Setenv(EnvLogDir, "")
	assert.Equal(t, filepath.Join(".", "logs"), ResolveDir(" "))
}

func TestDebugLevel(t *testing.T) {
	var stdout bytes.Buffer
	logger, err := NewZapLogger(Options{Dir: t.TempDir(), Debug: true, Stdout: &stdout})
	require.NoError(t, err)
	logger.Debug("verbose")
	assert.Contains(t, stdout.String(), "verbose")
}
