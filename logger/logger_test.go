package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveLogFilePathUsesConfiguredDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	got, err := resolveLogFilePath(Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(got))
	assert.Equal(t, defaultLogFilename, filepath.Base(got))
	assert.FileExists(t, got)
}

func TestNewReleaseWritesToConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	lg := New("release", Options{Dir: dir, Filename: "release.log"})
	lg.Info("release-log-test", zap.String("locale", "en"))
	_ = lg.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "release.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "release-log-test")
	assert.Contains(t, string(content), `"locale":"en"`)
}

func TestHelpersUseGlobalLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Infow("post resolved", "slug", "hello-world")
	Warnw("store slow", "ms", 250)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "post resolved", entries[0].Message)
	assert.Equal(t, "hello-world", entries[0].ContextMap()["slug"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestPositiveOr(t *testing.T) {
	assert.Equal(t, 7, positiveOr(0, 7))
	assert.Equal(t, 3, positiveOr(3, 7))
}
