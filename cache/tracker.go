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

// entry is a node in the doubly linked list kept by the tracker.
type entry[K comparable, V any] struct {
	key   K
	value V
	// seq is the sequence number of the last event that positioned the
	// entry in the tracker.
	seq uint64
	// stored is the sequence number of the event that first inserted the
	// entry, it orders the storage table for listing.
	stored uint64
	prev   *entry[K, V]
	next   *entry[K, V]
}

// tracker records the insertion or access order of the cached entries.
//
// Every qualifying event takes the next value of a strictly increasing
// sequence and moves the entry to the back of the list, so the list is always
// sorted by sequence: the front holds the smallest (oldest) sequence and the
// back the largest (newest). Both ends are O(1), as are unlinking and moving
// an entry.
//
//	  oldest                                                  newest
//	┌───────┐   ┌───────┐   ┌───────┐     ┌───────┐   ┌───────┐
//	│ HEAD  │◄─►│ seq 3 │◄─►│ seq 7 │ ... │ seq 9 │◄─►│ TAIL  │
//	└───────┘   └───────┘   └───────┘     └───────┘   └───────┘
type tracker[K comparable, V any] struct {
	head *entry[K, V]
	tail *entry[K, V]
	seq  uint64
	size int
}

func newTracker[K comparable, V any]() *tracker[K, V] {
	head := &entry[K, V]{}
	tail := &entry[K, V]{}
	head.next = tail
	tail.prev = head
	return &tracker[K, V]{head: head, tail: tail}
}

// push assigns the next sequence to e and links it as the newest entry.
func (t *tracker[K, V]) push(e *entry[K, V]) {
	t.seq++
	e.seq = t.seq

	prev := t.tail.prev
	prev.next = e
	e.prev = prev
	e.next = t.tail
	t.tail.prev = e
	t.size++
}

// touch moves e to the newest position.
func (t *tracker[K, V]) touch(e *entry[K, V]) {
	t.remove(e)
	t.push(e)
}

func (t *tracker[K, V]) remove(e *entry[K, V]) {
	e.prev.next, e.next.prev = e.next, e.prev
	e.next, e.prev = nil, nil // avoid memory leaks
	t.size--
}

// oldest returns the entry with the smallest sequence, or nil.
func (t *tracker[K, V]) oldest() *entry[K, V] {
	if t.head.next == t.tail {
		return nil
	}
	return t.head.next
}

// newest returns the entry with the largest sequence, or nil.
func (t *tracker[K, V]) newest() *entry[K, V] {
	if t.tail.prev == t.head {
		return nil
	}
	return t.tail.prev
}

// keys returns the tracked keys from oldest to newest.
func (t *tracker[K, V]) keys() []K {
	keys := make([]K, 0, t.size)
	for e := t.head.next; e != t.tail; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}
