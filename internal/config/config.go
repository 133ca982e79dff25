// Package config loads peerline settings from a CUE file.
//
// The file is unified with an embedded #Config schema, so every field has a
// default, values are range checked and unknown fields are rejected.
//
//	db:       "data/peerline.db"
//	identity: "data/identity.key"
//	shards:   4
//	log: level: "debug"
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "peerline.cue"

// Config holds resolved settings.
type Config struct {
	DB       string `json:"db"`
	Identity string `json:"identity"`
	Shards   int    `json:"shards"`
	Log      Log    `json:"log"`
}

// Log holds logger settings.
type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// LoadError reports an invalid config file with its CUE position.
type LoadError struct {
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := decode(cuecontext.New(), nil, "")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads path and unifies it with the schema. A missing file yields the
// defaults. Relative db and identity paths are resolved against the
// directory holding the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(cuecontext.New(), data, path)
	if err != nil {
		return Config{}, err
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse unifies src with the schema without touching the filesystem.
func Parse(src []byte) (Config, error) {
	return decode(cuecontext.New(), src, "config.cue")
}

func decode(ctx *cue.Context, src []byte, path string) (Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	value := schema.LookupPath(cue.ParsePath("#Config"))

	if src != nil {
		file := ctx.CompileBytes(src, cue.Filename(path))
		if err := file.Err(); err != nil {
			return Config{}, &LoadError{Path: path, Message: cueerrors.Details(err, nil)}
		}
		value = value.Unify(file)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, &LoadError{Path: path, Message: cueerrors.Details(err, nil)}
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, &LoadError{Path: path, Message: err.Error()}
	}
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	if c.DB != "" && !filepath.IsAbs(c.DB) {
		c.DB = filepath.Join(dir, c.DB)
	}
	if c.Identity != "" && !filepath.IsAbs(c.Identity) {
		c.Identity = filepath.Join(dir, c.Identity)
	}
}
