package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectPaths(t *testing.T) {
	paths, err := collectPaths("", "testdata")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join("testdata", "broken.map"),
		filepath.Join("testdata", "trail.map"),
	}, paths)
}

func TestLoadMapsSkipsInvalidFiles(t *testing.T) {
	records := loadMaps([]string{
		filepath.Join("testdata", "trail.map"),
		filepath.Join("testdata", "broken.map"),
		filepath.Join("testdata", "missing.map"),
	})

	require.Len(t, records, 1)
	assert.Equal(t, "trail", records[0].Name)
	assert.Contains(t, records[0].Content, "trail.jpg")
}
