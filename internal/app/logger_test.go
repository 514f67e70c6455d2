package app_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/slot-scheduler/internal/app"
	"github.com/pkordes/slot-scheduler/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := app.NewLogger(&buf, config.LogFormatJSON, slog.LevelInfo)

	log.Info("hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "v", entry["k"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log := app.NewLogger(&buf, config.LogFormatText, slog.LevelInfo)

	log.Info("hello", "k", "v")

	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "k=v")
}

// TestNewLogger_AutoOnNonTerminal verifies that "auto" falls back to JSON when
// the destination is not a terminal.
func TestNewLogger_AutoOnNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := app.NewLogger(&buf, config.LogFormatAuto, slog.LevelInfo)

	log.Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "got %q", buf.String())
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := app.NewLogger(&buf, config.LogFormatJSON, slog.LevelWarn)

	log.Info("dropped")
	log.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
