package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONCarriesServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn", AppEnv: "production"})

	logger.Info("dropped")
	logger.Warn("kept", "quote_id", "q-1")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "devisflow", record["service"])
	assert.Equal(t, "production", record["env"])
	assert.Equal(t, "q-1", record["quote_id"])
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, "INFO", parseLevel("verbose").String())
	assert.Equal(t, "DEBUG", parseLevel(" Debug ").String())
}
