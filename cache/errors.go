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

// ErrorReason classifies why New refused to build a Cache. It implements
// error so a CacheError can be matched against it with errors.Is.
type ErrorReason string

const (
	ErrInvalidSize    ErrorReason = "invalid size"
	ErrInvalidPolicy  ErrorReason = "invalid eviction policy"
	ErrInvalidOptions ErrorReason = "invalid options"
)

func (r ErrorReason) Error() string {
	return string(r)
}

// CacheError is the error returned by New and ParsePolicy. Reason places
// the failure in one of the ErrorReason classes, Err carries the detail.
//
//	_, err := cache.New[string, string](cache.LRU, 0)
//	errors.Is(err, cache.ErrInvalidSize) // true
type CacheError struct {
	Reason ErrorReason
	Err    error
}

// Error formats the error as "<reason>: <detail>", omitting whichever
// part is empty.
func (e *CacheError) Error() string {
	switch {
	case e.Err == nil:
		return string(e.Reason)
	case e.Reason == "":
		return e.Err.Error()
	}
	return string(e.Reason) + ": " + e.Err.Error()
}

// Is reports whether target is the Reason of e. The detail error is
// reached by errors.Is through Unwrap.
func (e *CacheError) Is(target error) bool {
	r, ok := target.(ErrorReason)
	return ok && r == e.Reason
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
