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
	"cmp"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

// Cache is a thread-safe bounded in-memory key/value store.
// All methods are safe for concurrent use.
//
// A Cache holds at most Capacity entries. When a new key is put into a full
// cache, the Policy picks one resident entry to discard first, so a Put never
// fails for lack of space. Victim selection, Put and Get are all O(1).
//
// Use the New or NewWithDiscard function to create a new cache that is ready
// to use.
type Cache[K comparable, V any] struct {
	// items is the storage table, the ground truth of what is cached.
	items    map[K]*entry[K, V]
	order    *tracker[K, V]
	capacity int
	policy   Policy
	behavior behavior

	// keyNilable and valueNilable are false when K or V can never hold nil,
	// which lets Put and Get skip the reflection in isNil.
	keyNilable   bool
	valueNilable bool

	onDiscard DiscardFunc[K, V]
	metrics   *cacheMetrics
	logger    logr.Logger

	mu sync.Mutex
}

// New creates a new cache that holds at most maxItems entries and evicts
// them according to policy.
func New[K comparable, V any](policy Policy, maxItems int, opts ...Options) (*Cache[K, V], error) {
	return NewWithDiscard[K, V](policy, maxItems, nil, opts...)
}

// NewWithDiscard creates a new cache like New, calling onDiscard for every
// evicted entry. onDiscard may be nil.
func NewWithDiscard[K comparable, V any](policy Policy, maxItems int, onDiscard DiscardFunc[K, V], opts ...Options) (*Cache[K, V], error) {
	if !policy.Valid() {
		return nil, &CacheError{Reason: ErrInvalidPolicy, Err: fmt.Errorf("unknown policy %d", int(policy))}
	}
	if maxItems <= 0 {
		return nil, &CacheError{Reason: ErrInvalidSize, Err: fmt.Errorf("max items must be positive, got %d", maxItems)}
	}

	opt, err := makeOptions(opts...)
	if err != nil {
		return nil, &CacheError{Reason: ErrInvalidOptions, Err: fmt.Errorf("failed to apply options: %w", err)}
	}

	c := &Cache[K, V]{
		items:     make(map[K]*entry[K, V], maxItems),
		order:     newTracker[K, V](),
		capacity:  maxItems,
		policy:    policy,
		behavior:  policy.behavior(),
		onDiscard: onDiscard,
		logger:    opt.logger.WithValues("policy", policy.String()),

		keyNilable:   canBeNil(reflect.TypeFor[K]()),
		valueNilable: canBeNil(reflect.TypeFor[V]()),
	}

	if opt.registerer != nil {
		c.metrics = newCacheMetrics(opt.registerer, opt.metricsPrefix, policy)
	}

	return c, nil
}

// Put stores value under key, overwriting any previous value.
//
// If key is not cached yet and the cache is full, the policy's victim is
// removed first and reported to the discard function. Overwriting a cached key
// never evicts. A nil key or value makes Put a no-op.
func (c *Cache[K, V]) Put(key K, value V) {
	if (c.keyNilable && isNil(key)) || (c.valueNilable && isNil(value)) {
		recordRequest(c.metrics, StatusIgnored)
		return
	}

	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		e.value = value
		if c.behavior.touchOnAccess {
			c.order.touch(e)
		}
		c.mu.Unlock()
		recordRequest(c.metrics, StatusSuccess)
		return
	}

	var victim *entry[K, V]
	if len(c.items) >= c.capacity {
		victim = c.evict()
	}

	e := &entry[K, V]{key: key, value: value}
	c.order.push(e)
	e.stored = e.seq
	c.items[key] = e
	c.mu.Unlock()

	recordRequest(c.metrics, StatusSuccess)
	if victim == nil {
		recordItemIncrement(c.metrics)
		return
	}

	recordEviction(c.metrics)
	c.logger.Info("DISCARD", "key", victim.key)
	if c.onDiscard != nil {
		c.onDiscard(victim.key, victim.value)
	}
}

// evict removes the policy's victim from the storage table and the tracker.
// It must be called with the lock held on a non-empty cache.
func (c *Cache[K, V]) evict() *entry[K, V] {
	var victim *entry[K, V]
	if c.behavior.victimNewest {
		victim = c.order.newest()
	} else {
		victim = c.order.oldest()
	}
	c.order.remove(victim)
	delete(c.items, victim.key)
	return victim
}

// Get returns the value stored under key. The boolean is false if the key is
// not cached, in which case the zero value is returned.
// For LRU and MRU a hit marks the key as the most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var res V
	if c.keyNilable && isNil(key) {
		recordRequest(c.metrics, StatusSuccess)
		recordEvent(c.metrics, CacheEventTypeMiss)
		return res, false
	}

	c.mu.Lock()
	e, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		recordRequest(c.metrics, StatusSuccess)
		recordEvent(c.metrics, CacheEventTypeMiss)
		return res, false
	}
	if c.behavior.touchOnAccess {
		c.order.touch(e)
	}
	res = e.value
	c.mu.Unlock()

	recordRequest(c.metrics, StatusSuccess)
	recordEvent(c.metrics, CacheEventTypeHit)
	return res, true
}

// Contains reports whether key is cached without updating its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries the cache holds.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Policy returns the eviction policy of the cache.
func (c *Cache[K, V]) Policy() Policy {
	return c.policy
}

// Keys returns the cached keys in the order they were first stored.
// Overwriting a key keeps its position.
func (c *Cache[K, V]) Keys() []K {
	entries := c.snapshot()
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

// EvictionOrder returns the cached keys in the order the policy would
// discard them, first victim first.
func (c *Cache[K, V]) EvictionOrder() []K {
	c.mu.Lock()
	keys := c.order.keys()
	c.mu.Unlock()
	if c.behavior.victimNewest {
		slices.Reverse(keys)
	}
	return keys
}

// Print writes a listing of the cached entries to w, one "key: value" line
// per entry in the order returned by Keys.
func (c *Cache[K, V]) Print(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Current cache:"); err != nil {
		return err
	}
	for _, e := range c.snapshot() {
		if _, err := fmt.Fprintf(w, "%v: %v\n", e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

// snapshot copies the cached entries, sorted by the order they were first
// stored.
func (c *Cache[K, V]) snapshot() []entry[K, V] {
	c.mu.Lock()
	entries := make([]entry[K, V], 0, len(c.items))
	for _, e := range c.items {
		entries = append(entries, entry[K, V]{key: e.key, value: e.value, stored: e.stored})
	}
	c.mu.Unlock()

	slices.SortFunc(entries, func(a, b entry[K, V]) int {
		return cmp.Compare(a.stored, b.stored)
	})
	return entries
}

// canBeNil reports whether values of type t can be nil.
func canBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}

// isNil reports whether v is a nil interface or a nil pointer, map, slice,
// channel or func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return canBeNil(rv.Type()) && rv.IsNil()
}
