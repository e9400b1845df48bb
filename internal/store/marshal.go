package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/projector"
)

// marshalFrame converts a frame to canonical JSON TEXT for storage.
func marshalFrame(f ir.Frame) (string, error) {
	data, err := projector.MarshalFrame(f)
	if err != nil {
		return "", fmt.Errorf("marshal frame: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// marshalConfig converts a configuration to JSON TEXT.
// Struct fields encode in declaration order, so the output is stable.
func marshalConfig(cfg *config.Config) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalConfig parses JSON TEXT to a configuration.
func unmarshalConfig(data string) (*config.Config, error) {
	var cfg config.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
