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

package replay

import (
	"context"
	"fmt"
	"io"

	"github.com/fluxcd/policycache/cache"
	"github.com/fluxcd/policycache/internal/trace"
)

// Result summarises a replay.
type Result struct {
	Policy    cache.Policy
	MaxItems  int
	Puts      int
	Ignored   int
	Gets      int
	Hits      int
	Misses    int
	Discarded []string
}

// HitRatio returns the share of gets that were hits, 0 without gets.
func (r Result) HitRatio() float64 {
	if r.Gets == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Gets)
}

// Replayer applies trace operations to a cache and writes the outcome of
// every get and eviction to an output stream.
type Replayer struct {
	cache  *cache.Cache[any, any]
	out    io.Writer
	result Result
}

// New returns a Replayer backed by a new cache with the given policy and
// capacity. A nil out discards the output.
func New(policy cache.Policy, maxItems int, out io.Writer, opts ...cache.Options) (*Replayer, error) {
	if out == nil {
		out = io.Discard
	}
	r := &Replayer{
		out:    out,
		result: Result{Policy: policy, MaxItems: maxItems},
	}

	c, err := cache.NewWithDiscard[any, any](policy, maxItems, r.discard, opts...)
	if err != nil {
		return nil, err
	}
	r.cache = c
	return r, nil
}

func (r *Replayer) discard(key, _ any) {
	k := fmt.Sprint(key)
	r.result.Discarded = append(r.result.Discarded, k)
	fmt.Fprintf(r.out, "DISCARD: %s\n", k)
}

// Cache returns the cache the operations are applied to.
func (r *Replayer) Cache() *cache.Cache[any, any] {
	return r.cache
}

// Run applies ops in order and returns the accumulated result. It stops
// early if ctx is cancelled.
func (r *Replayer) Run(ctx context.Context, ops []trace.Op) (Result, error) {
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return r.result, err
		}

		switch op.Kind {
		case trace.KindPut:
			if op.Key == nil || op.Value == nil {
				r.result.Ignored++
			} else {
				r.result.Puts++
			}
			r.cache.Put(value(op.Key), value(op.Value))
		case trace.KindGet:
			r.result.Gets++
			got, ok := r.cache.Get(value(op.Key))
			if !ok {
				r.result.Misses++
				got = trace.None
			} else {
				r.result.Hits++
			}
			if _, err := fmt.Fprintf(r.out, "%s: %v\n", render(op.Key), got); err != nil {
				return r.result, err
			}
		default:
			return r.result, fmt.Errorf("line %d: unknown operation '%s'", op.Line, op.Kind)
		}
	}
	return r.result, nil
}

// Compare replays ops once per policy against caches of the same capacity.
func Compare(ctx context.Context, maxItems int, ops []trace.Op) ([]Result, error) {
	results := make([]Result, 0, len(cache.Policies()))
	for _, p := range cache.Policies() {
		r, err := New(p, maxItems, nil)
		if err != nil {
			return nil, err
		}
		res, err := r.Run(ctx, ops)
		if err != nil {
			return nil, fmt.Errorf("%s replay failed: %w", p, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// value converts a trace token to a cache key or value, nil stays absent.
func value(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func render(s *string) string {
	if s == nil {
		return trace.None
	}
	return *s
}
