package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("writes json lines to the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "jform.log")
		logger, err := New(Options{Level: "info", File: path})
		require.NoError(t, err)

		logger.Info("saved", zap.String("sink", "direct"))
		logger.Debug("hidden")
		_ = logger.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"saved"`)
		assert.Contains(t, string(data), `"sink":"direct"`)
		assert.NotContains(t, string(data), "hidden")
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		logger, err := New(Options{Level: "error", Verbose: true, File: filepath.Join(t.TempDir(), "x.log")})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := New(Options{Level: "chatty"})
		require.Error(t, err)
	})
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
