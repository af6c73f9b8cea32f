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

// Package trace reads scripts of cache operations.
//
// Two formats are supported. The line format has one operation per line:
//
//	# comment
//	put A Hello
//	get A
//	put B None
//
// The YAML format is a list of operations:
//
//	- op: put
//	  key: A
//	  value: Hello
//	- op: get
//	  key: A
//
// In both formats a missing or null key or value, or the literal None in the
// line format, is the absent marker. YAML scalars are taken as written, so
// 007 and 10000000 name the same keys in both formats.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// None is the rendering of an absent key or value.
const None = "None"

// Kind is the type of a cache operation.
type Kind string

const (
	// KindPut stores a value.
	KindPut Kind = "put"
	// KindGet reads a value.
	KindGet Kind = "get"
)

// Format is the encoding of a script.
type Format int

const (
	// FormatLines is the line oriented format.
	FormatLines Format = iota
	// FormatYAML is a YAML list of operations.
	FormatYAML
)

// Op is a single cache operation. A nil Key or Value is absent.
type Op struct {
	Kind  Kind
	Key   *string
	Value *string
	// Line is the 1-based line (line format) or list index (YAML) the
	// operation was read from.
	Line int
}

// Put returns a put operation.
func Put(key, value string) Op {
	return Op{Kind: KindPut, Key: &key, Value: &value}
}

// Get returns a get operation.
func Get(key string) Op {
	return Op{Kind: KindGet, Key: &key}
}

// String renders the operation in the line format.
func (o Op) String() string {
	if o.Kind == KindPut {
		return fmt.Sprintf("put %s %s", render(o.Key), render(o.Value))
	}
	return fmt.Sprintf("%s %s", o.Kind, render(o.Key))
}

func render(s *string) string {
	if s == nil {
		return None
	}
	return *s
}

// FormatFor returns the format matching the file extension of path.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatLines
	}
}

// ParseFile reads the script at path, choosing the format from its extension.
func ParseFile(path string) ([]Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	ops, err := Parse(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse script '%s': %w", path, err)
	}
	return ops, nil
}

// Parse reads a script in the given format.
func Parse(r io.Reader, format Format) ([]Op, error) {
	switch format {
	case FormatLines:
		return parseLines(r)
	case FormatYAML:
		return parseYAML(r)
	default:
		return nil, fmt.Errorf("unknown script format %d", format)
	}
}

func parseLines(r io.Reader) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		op := Op{Kind: Kind(strings.ToLower(fields[0])), Line: line}
		switch op.Kind {
		case KindPut:
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: put needs a key and a value", line)
			}
			op.Key = token(fields[1])
			// values may contain spaces
			op.Value = token(strings.Join(fields[2:], " "))
		case KindGet:
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: get needs exactly one key", line)
			}
			op.Key = token(fields[1])
		default:
			return nil, fmt.Errorf("line %d: unknown operation '%s'", line, fields[0])
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return ops, nil
}

func token(s string) *string {
	if s == None {
		return nil
	}
	return &s
}

type yamlOp struct {
	Op    string     `yaml:"op"`
	Key   *yaml.Node `yaml:"key"`
	Value *yaml.Node `yaml:"value"`
}

func parseYAML(r io.Reader) ([]Op, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw []yamlOp
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	ops := make([]Op, 0, len(raw))
	for i, ro := range raw {
		key, err := scalar(ro.Key)
		if err != nil {
			return nil, fmt.Errorf("entry %d: key %w", i+1, err)
		}
		value, err := scalar(ro.Value)
		if err != nil {
			return nil, fmt.Errorf("entry %d: value %w", i+1, err)
		}

		op := Op{Kind: Kind(strings.ToLower(ro.Op)), Line: i + 1, Key: key}
		switch op.Kind {
		case KindPut:
			op.Value = value
		case KindGet:
			if value != nil {
				return nil, fmt.Errorf("entry %d: get does not take a value", i+1)
			}
		default:
			return nil, fmt.Errorf("entry %d: unknown operation '%s'", i+1, ro.Op)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// scalar returns the text of a YAML scalar exactly as written, so 007 stays
// 007. A missing or null node is absent.
func scalar(n *yaml.Node) (*string, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("must be a scalar")
	}
	if n.Tag == "!!null" {
		return nil, nil
	}
	s := n.Value
	return &s, nil
}
