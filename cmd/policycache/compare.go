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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/fluxcd/policycache/internal/replay"
	"github.com/fluxcd/policycache/internal/trace"
)

// policyReport is the structured form of one compare row.
type policyReport struct {
	Policy   string  `json:"policy"`
	MaxItems int     `json:"maxItems"`
	Hits     int     `json:"hits"`
	Misses   int     `json:"misses"`
	Discards int     `json:"discards"`
	HitRatio float64 `json:"hitRatio"`
}

func newCompareCmd(root *rootFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compare SCRIPT",
		Short: "Replay a script against every eviction policy and compare the hit ratios",
		Example: `  policycache compare --max-items 8 ops.txt
  policycache compare -o yaml ops.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "table", "yaml", "json":
			default:
				return fmt.Errorf("invalid output format '%s', must be one of 'table', 'yaml', 'json'", output)
			}

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			ops, err := trace.ParseFile(args[0])
			if err != nil {
				return err
			}

			results, err := replay.Compare(cmd.Context(), cfg.MaxItems, ops)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch output {
			case "yaml":
				return writeReports(out, results, yaml.Marshal)
			case "json":
				return writeReports(out, results, func(v any) ([]byte, error) {
					data, err := json.MarshalIndent(v, "", "  ")
					return append(data, '\n'), err
				})
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "POLICY\tHITS\tMISSES\tDISCARDS\tHIT RATIO")
			for _, res := range results {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\n",
					res.Policy, res.Hits, res.Misses, len(res.Discarded), res.HitRatio())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format. Can be 'table', 'yaml' or 'json'.")
	return cmd
}

func writeReports(w io.Writer, results []replay.Result, marshal func(any) ([]byte, error)) error {
	reports := make([]policyReport, 0, len(results))
	for _, res := range results {
		reports = append(reports, policyReport{
			Policy:   res.Policy.String(),
			MaxItems: res.MaxItems,
			Hits:     res.Hits,
			Misses:   res.Misses,
			Discards: len(res.Discarded),
			HitRatio: res.HitRatio(),
		})
	}
	data, err := marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = w.Write(data)
	return err
}
