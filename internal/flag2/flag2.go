// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package flag2 contains helpers for reading flags registered by other
// packages, such as the testing package.
package flag2

import "flag"

// Lookup returns the value of the flag with the given name.
//
// Returns false if no such flag is registered, or if its value is not a
// [flag.Getter] that produces a T.
func Lookup[T any](name string) (T, bool) {
	var zero T
	f := flag.Lookup(name)
	if f == nil {
		return zero, false
	}
	g, ok := f.Value.(flag.Getter)
	if !ok {
		return zero, false
	}
	v, ok := g.Get().(T)
	return v, ok
}
