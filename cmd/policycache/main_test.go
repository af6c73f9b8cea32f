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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"sigs.k8s.io/yaml"
)

const scenario = `put A 1
put B 2
get A
put C 3
get A
get B
get C
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd, _ := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	testCases := []struct {
		policy string
		output string
	}{
		{policy: "fifo", output: "A: 1\nDISCARD: A\nA: None\nB: 2\nC: 3\n"},
		{policy: "lifo", output: "A: 1\nDISCARD: B\nA: 1\nB: None\nC: 3\n"},
		{policy: "lru", output: "A: 1\nDISCARD: B\nA: 1\nB: None\nC: 3\n"},
		{policy: "mru", output: "A: 1\nDISCARD: A\nA: None\nB: 2\nC: 3\n"},
	}

	script := writeFile(t, "ops.txt", scenario)
	for _, tt := range testCases {
		t.Run(tt.policy, func(t *testing.T) {
			g := NewWithT(t)
			stdout, stderr, err := execute(t, "run", "--policy", tt.policy, "--max-items", "2", script)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(stdout).To(Equal(tt.output))
			g.Expect(stderr).To(ContainSubstring("replay finished"))
		})
	}
}

func TestRun_printAndMetrics(t *testing.T) {
	g := NewWithT(t)
	script := writeFile(t, "ops.yaml", `
- {op: put, key: A, value: Hello}
- {op: put, key: B, value: World}
- {op: get, key: A}
- {op: put, key: C, value: Holberton}
`)

	stdout, _, err := execute(t, "run", "--policy=lru", "--max-items=2", "--print", "--metrics",
		"--metrics-prefix=test_", "--log-encoding=json", script)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(stdout).To(HavePrefix("A: Hello\nDISCARD: B\nCurrent cache:\nA: Hello\nC: Holberton\n"))
	g.Expect(stdout).To(ContainSubstring(`test_cache_evictions_total{policy="lru"} 1`))
	g.Expect(stdout).To(ContainSubstring(`test_cached_items{policy="lru"} 2`))
}

func TestRun_config(t *testing.T) {
	g := NewWithT(t)
	script := writeFile(t, "ops.txt", scenario)
	cfgFile := writeFile(t, "policycache.toml", `
policy = "mru"
max_items = 5
`)

	// the file sets the policy, the flag overrides the capacity
	stdout, _, err := execute(t, "run", "--config", cfgFile, "--max-items", "2", script)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(stdout).To(ContainSubstring("DISCARD: A\n"))

	// without the override nothing is evicted
	stdout, _, err = execute(t, "run", "--config", cfgFile, script)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(stdout).ToNot(ContainSubstring("DISCARD"))
}

func TestRun_errors(t *testing.T) {
	g := NewWithT(t)
	script := writeFile(t, "ops.txt", scenario)

	_, _, err := execute(t, "run", "--max-items", "0", script)
	g.Expect(err).To(MatchError(ContainSubstring("max_items must be positive")))

	_, _, err = execute(t, "run", "--policy", "lfu", script)
	g.Expect(err).To(MatchError(ContainSubstring("unknown policy")))

	_, _, err = execute(t, "run", filepath.Join(t.TempDir(), "missing.txt"))
	g.Expect(err).To(MatchError(ContainSubstring("failed to open script")))

	bad := writeFile(t, "bad.txt", "put A\n")
	_, _, err = execute(t, "run", bad)
	g.Expect(err).To(MatchError(ContainSubstring("line 1: put needs a key and a value")))

	_, _, err = execute(t, "run")
	g.Expect(err).To(HaveOccurred())
}

func TestCompare(t *testing.T) {
	g := NewWithT(t)
	script := writeFile(t, "ops.txt", scenario)

	stdout, _, err := execute(t, "compare", "--max-items", "2", script)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(stdout).To(Equal(`POLICY  HITS  MISSES  DISCARDS  HIT RATIO
fifo    3     1       1         0.75
lifo    3     1       1         0.75
lru     3     1       1         0.75
mru     3     1       1         0.75
`))
}

func TestVersion(t *testing.T) {
	g := NewWithT(t)
	stdout, _, err := execute(t, "version")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(stdout).To(Equal("0.0.0-dev.0\n"))

	stdout, _, err = execute(t, "version", "--short")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(stdout).To(Equal("0.0\n"))

	old := VERSION
	t.Cleanup(func() { VERSION = old })
	VERSION = "v1.2"
	_, _, err = execute(t, "version")
	g.Expect(err).To(MatchError(ContainSubstring("invalid build version")))
}

func TestParseVersion(t *testing.T) {
	g := NewWithT(t)
	v, err := parseVersion("v2026.10.01-rc.1")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(v.Major()).To(Equal(uint64(2026)))
	g.Expect(v.Original()).To(Equal("v2026.10.01-rc.1"))

	_, err = parseVersion("1.2")
	g.Expect(err).To(HaveOccurred())
}

func TestCompare_output(t *testing.T) {
	g := NewWithT(t)
	script := writeFile(t, "ops.txt", scenario)

	for _, format := range []string{"yaml", "json"} {
		stdout, _, err := execute(t, "compare", "--max-items", "2", "-o", format, script)
		g.Expect(err).ToNot(HaveOccurred())

		var reports []policyReport
		g.Expect(yaml.Unmarshal([]byte(stdout), &reports)).To(Succeed())
		g.Expect(reports).To(HaveLen(4))
		g.Expect(reports[3]).To(Equal(policyReport{
			Policy: "mru", MaxItems: 2, Hits: 3, Misses: 1, Discards: 1, HitRatio: 0.75,
		}))
	}

	_, _, err := execute(t, "compare", "-o", "xml", script)
	g.Expect(err).To(MatchError(ContainSubstring("invalid output format 'xml'")))
}

func TestLogFatal(t *testing.T) {
	script := writeFile(t, "ops.txt", scenario)
	jsonConfig := writeFile(t, "policycache.toml", "[log]\nencoding = \"json\"\n")

	testCases := []struct {
		name string
		args []string
		json bool
	}{
		{
			name: "json flag",
			args: []string{"run", "--log-encoding=json", "--max-items=0", script},
			json: true,
		},
		{
			name: "json from config file",
			args: []string{"run", "--config", jsonConfig, filepath.Join(t.TempDir(), "missing.txt")},
			json: true,
		},
		{
			name: "invalid encoding falls back to console",
			args: []string{"run", "--log-encoding=xml", script},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			cmd, flags := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			err := cmd.ExecuteContext(context.Background())
			g.Expect(err).To(HaveOccurred())

			var buf bytes.Buffer
			logFatal(&buf, flags.logOptions, err)
			g.Expect(buf.String()).To(ContainSubstring("command failed"))

			var record map[string]any
			if !tt.json {
				g.Expect(json.Unmarshal(buf.Bytes(), &record)).ToNot(Succeed())
				return
			}
			g.Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
			g.Expect(record).To(HaveKeyWithValue("msg", "command failed"))
			g.Expect(record).To(HaveKey("error"))
		})
	}
}
