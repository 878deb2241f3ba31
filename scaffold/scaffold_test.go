package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTitle(t *testing.T) {
	assert.Equal(t, "My Blog", ToTitle("my-blog"))
	assert.Equal(t, "Myblog", ToTitle("myblog"))
	assert.Equal(t, "Dev Notes", ToTitle("dev_notes"))
	assert.Equal(t, "", ToTitle(""))
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")
	data := NewData(dir, "2025-02-03")
	assert.Equal(t, "My Blog", data.SiteName)

	files, err := Generate(dir, data)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "folio.yaml"),
		filepath.Join(dir, "content", "hello-world.md"),
		filepath.Join(dir, "content", "hello-world.ru.md"),
		filepath.Join(dir, "public", "README.txt"),
	}, files)

	cfg, err := os.ReadFile(filepath.Join(dir, "folio.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "name: My Blog\n")

	post, err := os.ReadFile(filepath.Join(dir, "content", "hello-world.ru.md"))
	require.NoError(t, err)
	assert.Contains(t, string(post), "date: 2025-02-03\n")
	assert.NotContains(t, string(post), "{{")
}

func TestGenerateRefusesExistingDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(dir, NewData(dir, "2025-02-03"))
	assert.ErrorContains(t, err, "already exists")
}
