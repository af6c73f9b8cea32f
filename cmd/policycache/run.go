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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/fluxcd/policycache/cache"
	"github.com/fluxcd/policycache/internal/replay"
	"github.com/fluxcd/policycache/internal/trace"
)

type runFlags struct {
	print   bool
	metrics bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Replay a script against a single cache",
		Long: `Replay a script of put and get operations against a cache.

Every eviction prints a 'DISCARD: <key>' line and every get prints
'<key>: <value>', with None for a miss.`,
		Example: `  policycache run --policy lru --max-items 4 ops.txt
  policycache run --config policycache.toml --print --metrics ops.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], root, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.print, "print", false, "Print the cache content after the replay.")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "Print the cache metrics after the replay.")
	return cmd
}

func runRun(cmd *cobra.Command, script string, root *rootFlags, flags *runFlags) error {
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	ops, err := trace.ParseFile(script)
	if err != nil {
		return err
	}
	log.V(1).Info("replaying script", "script", script, "operations", len(ops),
		"policy", cfg.Policy.String(), "maxItems", cfg.MaxItems)

	reg := prometheus.NewRegistry()
	out := cmd.OutOrStdout()
	r, err := replay.New(cfg.Policy, cfg.MaxItems, out,
		cache.WithMetricsRegisterer(reg),
		cache.WithMetricsPrefix(cfg.Metrics.Prefix),
		cache.WithLogger(log.V(1).WithName("cache")))
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	res, err := r.Run(cmd.Context(), ops)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	log.Info("replay finished", "puts", res.Puts, "gets", res.Gets, "hits", res.Hits,
		"misses", res.Misses, "discards", len(res.Discarded))

	if flags.print {
		if err := r.Cache().Print(out); err != nil {
			return err
		}
	}
	if flags.metrics {
		mfs, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("failed to gather metrics: %w", err)
		}
		for _, mf := range mfs {
			if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
				return err
			}
		}
	}
	return nil
}
