// Package config loads flowline configuration from CUE files.
//
// A configuration file is plain CUE unified with the embedded #Config
// schema, so typos are rejected (the definition is closed) and omitted
// fields fall back to schema defaults.
//
//	layout: vertical_spacing: 80
//	default_label: "New step"
//	ids: strategy: "uuid"
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/flowline/internal/projector"
)

//go:embed schema.cue
var schemaSource string

// EnvConfigPath names the environment variable consulted when no explicit
// config path is given.
const EnvConfigPath = "FLOWLINE_CONFIG"

// ID allocation strategies.
const (
	StrategySequential = "sequential"
	StrategyUUID       = "uuid"
)

// Config is the decoded configuration.
type Config struct {
	Layout       projector.Layout `json:"layout"`
	DefaultLabel string           `json:"default_label"`
	IDs          IDConfig         `json:"ids"`
	Log          LogConfig        `json:"log"`
}

// IDConfig controls how new step ids are allocated.
type IDConfig struct {
	Strategy string `json:"strategy"`
	Prefix   string `json:"prefix"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// LoadError reports an invalid configuration file with its CUE position.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Parse(nil, "default.cue")
	if err != nil {
		// The embedded schema is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	return cfg
}

// Resolve loads path if non-empty, otherwise the file named by
// FLOWLINE_CONFIG, otherwise the defaults.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Load reads and validates a CUE configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates CUE source against the schema and decodes it.
// filename is used in error positions only.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}

	if strings.TrimSpace(cfg.DefaultLabel) == "" {
		return nil, &LoadError{Message: "default_label must not be blank"}
	}
	return &cfg, nil
}

// formatCUEError extracts position info from the first CUE error.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
