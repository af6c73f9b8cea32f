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

// Package cache provides a bounded, thread-safe in-memory key/value store
// with four interchangeable eviction policies: FIFO, LIFO, LRU and MRU.
//
// All policies share the same Put/Get contract and differ only in which entry
// is discarded when a new key is put into a full cache. The policy is chosen
// once, when the cache is created:
//
//	c, err := cache.New[string, int](cache.LRU, 10)
//
// Swapping the policy only changes the construction site. Get reports a miss
// with a false boolean, never with an error, and Put never fails: a full
// cache silently makes room. A nil key or value turns Put into a no-op.
//
// Evictions can be observed with a discard function, which is called exactly
// once per evicted entry before the Put that caused it returns:
//
//	c, err := cache.NewWithDiscard[string, int](cache.FIFO, 10,
//		func(key string, _ int) { fmt.Printf("DISCARD: %s\n", key) })
//
// The cache is self-instrumenting and exports metrics about its internal
// operations if it is configured with a metrics registerer.
//
//	c, err := cache.New[string, int](cache.MRU, 10, cache.WithMetricsRegisterer(reg))
package cache
