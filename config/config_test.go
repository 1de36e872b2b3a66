package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Len(t, c.Steps, 10)
	assert.Equal(t, "-300", c.Steps[0])
	assert.Equal(t, "+300", c.Steps[9])
	assert.Equal(t, "mp4", c.FileType)
	assert.Equal(t, "cuda", c.Accelerator)
}

func TestHardware(t *testing.T) {
	assert.Equal(t, "", Config{Accelerator: "software"}.Hardware())
	assert.Equal(t, "", Config{}.Hardware())
	assert.Equal(t, "vaapi", Config{Accelerator: "vaapi"}.Hardware())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.toml")

	want := Default()
	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSetup(t *testing.T) {
	root := t.TempDir()

	c, err := Setup(root)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	for _, dir := range []string{InputFolder, OutputFolder} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// A second setup keeps an edited configuration.
	c.Accelerator = "software"
	require.NoError(t, c.Save(filepath.Join(root, FileName)))

	again, err := Setup(root)
	require.NoError(t, err)
	assert.Equal(t, "software", again.Accelerator)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
}
