package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FansOutToFile(t *testing.T) {
	var stdout, file bytes.Buffer

	log, flush, err := New(Options{Stdout: &stdout, File: &file})
	require.NoError(t, err)
	defer flush()

	log.Debug("hidden")
	log.Info("folder created", "id", 7)

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "folder created")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	assert.Equal(t, "folder created", record["msg"])
	assert.EqualValues(t, 7, record["id"])
}

func TestNew_DebugUsesTextHandler(t *testing.T) {
	var stdout bytes.Buffer

	log, _, err := New(Options{Debug: true, Stdout: &stdout})
	require.NoError(t, err)

	log.Debug("cascade step", "folder_id", 3)

	assert.Contains(t, stdout.String(), "level=DEBUG")
	assert.Contains(t, stdout.String(), "folder_id=3")
}
