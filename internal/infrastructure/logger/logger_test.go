package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		l, err := NewForEnvironment(env)
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}
}

func TestNew_WritesJSONWithService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := New(Config{Level: "info", Format: "json", Output: path, Service: "manufacturing"})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("stock adjusted")
	_ = Sync(l)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"stock adjusted"`)
	assert.Contains(t, out, `"service":"manufacturing"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.NotContains(t, out, "dropped")
}

func TestNew_UnopenableOutput(t *testing.T) {
	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
	assert.Error(t, err)
}

func TestCreateWriter(t *testing.T) {
	for _, out := range []string{"", "stdout", "STDERR"} {
		w, err := createWriter(out)
		require.NoError(t, err)
		assert.NotNil(t, w)
	}
}

func TestCreateEncoder(t *testing.T) {
	assert.NotNil(t, createEncoder("console"))
	assert.NotNil(t, createEncoder("json"))
	assert.NotNil(t, createEncoder(""))
}
