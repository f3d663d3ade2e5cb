package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "iris.log")
	l, err := NewLogger("info", path)
	require.NoError(t, err)
	l.Info("treino iniciado")
	l.Debug("oculto")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "treino iniciado")
	assert.NotContains(t, string(b), "oculto")
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger("loud", "")
	assert.Error(t, err)
	assert.NotNil(t, MustLogger("loud", ""))
}
