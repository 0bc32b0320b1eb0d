package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogFile_RotatesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"filehub-2024-01-01T00-00-00.000.log",
		"filehub-2024-01-02T00-00-00.000.log",
		"filehub-2024-01-03T00-00-00.000.log",
		"unrelated.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	logs, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Contains(t, logs, f.Name())
	assert.FileExists(t, filepath.Join(dir, "unrelated.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "filehub-2024-01-01T00-00-00.000.log"))
}
