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
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// VERSION is set at build time.
var VERSION = "0.0.0-dev.0"

// parseVersion parses a version string and returns a semver.Version object.
// It accepts a 'v' prefix but requires all of the major, minor and patch
// segments.
func parseVersion(v string) (*semver.Version, error) {
	if len(strings.SplitN(v, ".", 3)) != 3 {
		return nil, semver.ErrInvalidSemVer
	}
	return semver.NewVersion(v)
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVersion(VERSION)
			if err != nil {
				return fmt.Errorf("invalid build version '%s': %w", VERSION, err)
			}
			if short {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d.%d\n", v.Major(), v.Minor())
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the major and minor version.")
	return cmd
}
