package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "json")
	log.Debug().Str("state", "EXTRACT").Msg("transition")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "EXTRACT", line["state"])
	assert.Equal(t, "debug", line["level"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	for _, level := range []string{"", "loud"} {
		log := New(&bytes.Buffer{}, level, "json")
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel(), level)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "console")
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}
