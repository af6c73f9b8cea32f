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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/fluxcd/policycache/cache"
	"github.com/fluxcd/policycache/internal/config"
	"github.com/fluxcd/policycache/internal/logger"
)

// rootFlags holds the flags shared by all commands.
type rootFlags struct {
	configFile    string
	policy        cache.Policy
	maxItems      int
	metricsPrefix string
	// logOptions holds the flag values until loadConfig replaces them with
	// the options resolved against the config file.
	logOptions logger.Options
}

func newRootCmd() (*cobra.Command, *rootFlags) {
	flags := &rootFlags{policy: cache.FIFO}

	rootCmd := &cobra.Command{
		Use:           "policycache",
		Short:         "Replay cache operation scripts against FIFO, LIFO, LRU and MRU caches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "",
		"Path to a TOML config file. Flags set on the command line take precedence.")
	pf.Var(&flags.policy, "policy",
		"Eviction policy. Can be one of 'fifo', 'lifo', 'lru', 'mru'.")
	pf.IntVar(&flags.maxItems, "max-items", config.DefaultMaxItems,
		"Maximum number of items the cache holds.")
	pf.StringVar(&flags.metricsPrefix, "metrics-prefix", "policycache_",
		"Prefix of the exported cache metrics.")
	flags.logOptions.BindFlags(pf)

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newCompareCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd, flags
}

// loadConfig merges the config file, if any, with the flags explicitly set
// on the command line.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	cfg := config.New()
	if flags.configFile != "" {
		var err error
		if cfg, err = config.Load(flags.configFile); err != nil {
			return config.Config{}, err
		}
	}

	fs := cmd.Flags()
	if flags.configFile == "" || fs.Changed("policy") {
		cfg.Policy = flags.policy
	}
	if flags.configFile == "" || fs.Changed("max-items") {
		cfg.MaxItems = flags.maxItems
	}
	if flags.configFile == "" || fs.Changed("metrics-prefix") {
		cfg.Metrics.Prefix = flags.metricsPrefix
	}
	if flags.configFile == "" || fs.Changed("log-encoding") {
		cfg.Log.Encoding = flags.logOptions.LogEncoding
	}
	if flags.configFile == "" || fs.Changed("log-level") {
		cfg.Log.Level = flags.logOptions.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	flags.logOptions = cfg.LoggerOptions()
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) logr.Logger {
	return logger.NewLoggerTo(cmd.ErrOrStderr(), cfg.LoggerOptions()).WithName("policycache")
}

func setupSignalHandler() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

// logFatal logs err with the given logger options, falling back to console
// encoding when they are invalid.
func logFatal(w io.Writer, opts logger.Options, err error) {
	if opts.Validate() != nil {
		opts = logger.Options{LogEncoding: "console", LogLevel: "error"}
	}
	logger.NewLoggerTo(w, opts).WithName("policycache").Error(err, "command failed")
}

func main() {
	rootCmd, flags := newRootCmd()
	if err := rootCmd.ExecuteContext(setupSignalHandler()); err != nil {
		logFatal(os.Stderr, flags.logOptions, err)
		os.Exit(1)
	}
}
