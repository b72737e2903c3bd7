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

// Package zigzag decodes the ZigZag encoding used by sint32 and sint64.
package zigzag

import (
	"unsafe"

	"google.golang.org/protobuf/encoding/protowire"
)

// Int is a signed integer that can appear in a sint field.
type Int interface {
	~int32 | ~int64
}

// Decode decodes a zigzag-encoded value of either width.
//
// The raw bits are masked to the width of T first, since a sign-extended
// sint32 would otherwise decode incorrectly.
func Decode[T Int](raw T) T {
	n := uint64(raw)
	n &= (1 << (unsafe.Sizeof(raw) * 8)) - 1

	return T(protowire.DecodeZigZag(n))
}

// Decode64 decodes the low bits of a raw 64-bit varint as a zigzag value of
// type T.
func Decode64[T Int](raw uint64) T {
	return Decode(T(raw))
}
