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

package cache

import (
	"fmt"
	"strings"
)

// Policy selects which entry is discarded when a full cache admits a new key.
// The set of policies is closed; a Cache is bound to one Policy for its
// whole lifetime.
type Policy int

const (
	// FIFO discards the entry that was inserted first.
	FIFO Policy = iota
	// LIFO discards the entry that was inserted last.
	LIFO
	// LRU discards the entry that was least recently put or read.
	LRU
	// MRU discards the entry that was most recently put or read.
	MRU
)

// behavior describes how a policy uses the order tracker.
type behavior struct {
	name string
	// touchOnAccess reports whether overwrites and read hits move a key to
	// the most recent position. Insertion always does.
	touchOnAccess bool
	// victimNewest picks the tail (highest sequence) instead of the head.
	victimNewest bool
}

var behaviors = [...]behavior{
	FIFO: {name: "fifo", touchOnAccess: false, victimNewest: false},
	LIFO: {name: "lifo", touchOnAccess: false, victimNewest: true},
	LRU:  {name: "lru", touchOnAccess: true, victimNewest: false},
	MRU:  {name: "mru", touchOnAccess: true, victimNewest: true},
}

// Policies returns all supported policies in declaration order.
func Policies() []Policy {
	return []Policy{FIFO, LIFO, LRU, MRU}
}

// Valid reports whether p is one of the supported policies.
func (p Policy) Valid() bool {
	return p >= FIFO && int(p) < len(behaviors)
}

// String returns the lower case name of the policy.
func (p Policy) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return behaviors[p].name
}

// Set implements pflag.Value so a Policy can be bound directly to a flag.
func (p *Policy) Set(s string) error {
	v, err := ParsePolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Type implements pflag.Value.
func (p *Policy) Type() string {
	return "policy"
}

// UnmarshalText decodes a policy name, it is used by config file decoders.
func (p *Policy) UnmarshalText(text []byte) error {
	return p.Set(string(text))
}

// MarshalText encodes the policy name.
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, &CacheError{Reason: ErrInvalidPolicy, Err: fmt.Errorf("unknown policy %d", int(p))}
	}
	return []byte(p.String()), nil
}

// ParsePolicy returns the policy with the given case-insensitive name.
func ParsePolicy(name string) (Policy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range Policies() {
		if behaviors[p].name == n {
			return p, nil
		}
	}
	return 0, &CacheError{Reason: ErrInvalidPolicy, Err: fmt.Errorf("unknown policy %q, must be one of fifo, lifo, lru, mru", name)}
}

func (p Policy) behavior() behavior {
	return behaviors[p]
}
