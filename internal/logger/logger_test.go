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

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
)

func TestOptions_BindFlags(t *testing.T) {
	g := NewWithT(t)
	var opts Options
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.BindFlags(fs)

	g.Expect(opts).To(Equal(Options{LogEncoding: "console", LogLevel: "info"}))
	g.Expect(fs.Parse([]string{"--log-encoding=json", "--log-level=debug"})).To(Succeed())
	g.Expect(opts).To(Equal(Options{LogEncoding: "json", LogLevel: "debug"}))
	g.Expect(opts.Validate()).To(Succeed())
}

func TestOptions_Validate(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Options{LogEncoding: "xml", LogLevel: "info"}.Validate()).ToNot(Succeed())
	g.Expect(Options{LogEncoding: "json", LogLevel: "warn"}.Validate()).ToNot(Succeed())
	g.Expect(Options{LogEncoding: "console", LogLevel: "trace"}.Validate()).To(Succeed())
}

func TestNewLoggerTo(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, Options{LogEncoding: "json", LogLevel: "info"})

	log.Info("DISCARD", "key", "A")
	log.V(DebugLevel).Info("hidden")

	var record map[string]any
	g.Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
	g.Expect(record).To(HaveKeyWithValue("msg", "DISCARD"))
	g.Expect(record).To(HaveKeyWithValue("key", "A"))
	g.Expect(record).To(HaveKey("ts"))
}

func TestNewLoggerTo_traceLevel(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, Options{LogEncoding: "console", LogLevel: "trace"})

	log.V(TraceLevel).Info("deep")
	g.Expect(buf.String()).To(ContainSubstring("deep"))
}
