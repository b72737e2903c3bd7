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

package wirestream

import (
	"fmt"
	"math"
)

// Option is a configuration setting for [NewState] and [Decode].
type Option struct{ apply func(*options) }

type options struct {
	maxDepth  int
	frameData int
	limit     uint64
	strict    bool
}

func defaultOptions() options {
	return options{
		maxDepth: 100,
		limit:    math.MaxUint64,
	}
}

// WithMaxDepth sets the maximum nesting depth of messages and groups,
// counting skipped groups. The default is 100.
//
// Setting a large value enables potential DoS vectors.
func WithMaxDepth(depth int) Option {
	if depth < 0 {
		panic(fmt.Sprintf("wirestream: negative max depth %d", depth))
	}
	return Option{func(o *options) { o.maxDepth = min(depth, math.MaxInt32) }}
}

// WithFrameData reserves size bytes of scratch space per frame, which
// callbacks can access with [State.FrameData]. The space is zeroed whenever
// a frame is pushed.
func WithFrameData(size int) Option {
	if size < 0 {
		panic(fmt.Sprintf("wirestream: negative frame data size %d", size))
	}
	return Option{func(o *options) { o.frameData = size }}
}

// WithLimit bounds the root message to end at absolute offset n.
//
// A bounded stream finishes as soon as n bytes have been parsed, and any
// field that runs past n is truncated. Without a limit the root stays open
// until [State.Finish] is called.
func WithLimit(n uint64) Option {
	return Option{func(o *options) { o.limit = n }}
}

// WithStrictWireTypes sets whether a scalar field encoded with a different
// scalar wire type than its field type calls for is an error.
//
// By default such values are decoded per their wire type and converted per
// their field type. Wire types that cannot carry a field's type at all,
// such as a message field encoded as a varint, are always an error.
func WithStrictWireTypes(strict bool) Option {
	return Option{func(o *options) { o.strict = strict }}
}
