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

// Package sync2 contains typed wrappers over package sync.
package sync2

import "sync"

// Pool is a strongly-typed [sync.Pool].
type Pool[T any] struct {
	// Called to reset a value before it is returned to the pool. If it
	// returns false, the value is dropped instead.
	Reset func(*T) bool

	impl sync.Pool
}

// Get returns a cached value of type T, or a new zero value, and a function
// to call once the caller is done with it.
//
//	v, drop := pool.Get()
//	defer drop()
func (p *Pool[T]) Get() (v *T, drop func()) {
	v, _ = p.impl.Get().(*T)
	if v == nil {
		v = new(T)
	}

	return v, func() {
		if p.Reset != nil && !p.Reset(v) {
			return
		}
		p.impl.Put(v)
	}
}
