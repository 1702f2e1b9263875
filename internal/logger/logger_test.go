package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autobuyer.log")
	log := New(Options{FilePath: path, Production: true})

	log.Info("reminder run finished")
	_ = log.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"reminder run finished"`)
	assert.Contains(t, string(content), `"level":"INFO"`)
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autobuyer.log")
	log := New(Options{FilePath: path, Production: true, Level: "warn"})

	log.Info("quiet")
	log.Warn("loud")
	_ = log.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "quiet")
	assert.Contains(t, string(content), "loud")
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel("", true))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("", false))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error", false))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud", true))
}
