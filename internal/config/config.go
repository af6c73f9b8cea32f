/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fluxcd/policycache/cache"
	"github.com/fluxcd/policycache/internal/logger"
)

// DefaultMaxItems is the capacity used when neither the config file nor the
// flags set one.
const DefaultMaxItems = 4

// Config holds the settings of a replay run.
type Config struct {
	Policy   cache.Policy  `toml:"policy"`
	MaxItems int           `toml:"max_items"`
	Log      LogConfig     `toml:"log"`
	Metrics  MetricsConfig `toml:"metrics"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Encoding string `toml:"encoding"`
	Level    string `toml:"level"`
}

// MetricsConfig configures the cache metrics.
type MetricsConfig struct {
	Prefix string `toml:"prefix"`
}

// New returns a Config populated with the defaults.
func New() Config {
	return Config{
		Policy:   cache.FIFO,
		MaxItems: DefaultMaxItems,
		Log: LogConfig{
			Encoding: "console",
			Level:    "info",
		},
		Metrics: MetricsConfig{
			Prefix: "policycache_",
		},
	}
}

// Load reads the TOML file at path on top of the defaults. Keys that are not
// part of Config are rejected.
func Load(path string) (Config, error) {
	cfg := New()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config file '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys in config file '%s': %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate returns an error if the config cannot be used to build a cache.
func (c Config) Validate() error {
	if !c.Policy.Valid() {
		return fmt.Errorf("invalid policy %s", c.Policy)
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("max_items must be positive, got %d", c.MaxItems)
	}
	return c.LoggerOptions().Validate()
}

// LoggerOptions returns the logger options described by the config.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		LogEncoding: c.Log.Encoding,
		LogLevel:    c.Log.Level,
	}
}
