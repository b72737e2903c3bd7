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

// Package wire contains the primitive decoders for the Protobuf wire format.
//
// Every function comes in two flavors. The Consume* functions are checked:
// they never read past the end of the slice they are given. The Load*
// functions are unchecked: they require that at least [MaxVarintLen64] bytes
// be readable starting at b[0], and perform a single bounds check up front
// instead of one per byte. Callers of Load* must compare the returned length
// against the logical end of their buffer afterwards, since the bytes past
// it are garbage.
//
// Like [protowire], a negative length is an error code.
package wire

import (
	"encoding/binary"
	"math/bits"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	// MaxVarintLen64 is the maximum length of a 64-bit varint.
	MaxVarintLen64 = 10
	// MaxVarintLen32 is the maximum length of a 32-bit varint.
	MaxVarintLen32 = 5
)

// Error codes returned in place of a length.
const (
	// Truncated means that the buffer ended before the value did.
	Truncated = -1
	// UnterminatedVarint means that a varint ran for its maximum length
	// without a terminating byte.
	UnterminatedVarint = -2
)

// ConsumeVarint decodes a 64-bit varint.
//
// Bits past the 64th are discarded rather than rejected.
func ConsumeVarint(b []byte) (uint64, int) {
	var x uint64
	for i := range MaxVarintLen64 {
		if i >= len(b) {
			return 0, Truncated
		}
		c := b[i]
		x |= uint64(c&0x7f) << (7 * i)
		if c < 0x80 {
			return x, i + 1
		}
	}
	return 0, UnterminatedVarint
}

// ConsumeVarint32 decodes a 32-bit varint. At most five bytes are consumed.
func ConsumeVarint32(b []byte) (uint32, int) {
	var x uint32
	for i := range MaxVarintLen32 {
		if i >= len(b) {
			return 0, Truncated
		}
		c := b[i]
		x |= uint32(c&0x7f) << (7 * i)
		if c < 0x80 {
			return x, i + 1
		}
	}
	return 0, UnterminatedVarint
}

// SkipVarint returns the length of the 64-bit varint at the start of b.
func SkipVarint(b []byte) int {
	for i := range MaxVarintLen64 {
		if i >= len(b) {
			return Truncated
		}
		if b[i] < 0x80 {
			return i + 1
		}
	}
	return UnterminatedVarint
}

// ConsumeFixed32 decodes a little-endian 32-bit value.
func ConsumeFixed32(b []byte) (uint32, int) {
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return 0, Truncated
	}
	return v, n
}

// ConsumeFixed64 decodes a little-endian 64-bit value.
func ConsumeFixed64(b []byte) (uint64, int) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, Truncated
	}
	return v, n
}

// LoadVarint is the unchecked version of [ConsumeVarint].
func LoadVarint(b []byte) (uint64, int) {
	_ = b[MaxVarintLen64-1]

	// Same shape as protowire.ConsumeVarint, minus the per-byte length
	// checks.
	var x, y uint64
	y = uint64(b[0])
	if y < 0x80 {
		return y, 1
	}
	x = y - 0x80

	y = uint64(b[1])
	x += y << 7
	if y < 0x80 {
		return x, 2
	}
	x -= 0x80 << 7

	y = uint64(b[2])
	x += y << 14
	if y < 0x80 {
		return x, 3
	}
	x -= 0x80 << 14

	y = uint64(b[3])
	x += y << 21
	if y < 0x80 {
		return x, 4
	}
	x -= 0x80 << 21

	y = uint64(b[4])
	x += y << 28
	if y < 0x80 {
		return x, 5
	}
	x -= 0x80 << 28

	y = uint64(b[5])
	x += y << 35
	if y < 0x80 {
		return x, 6
	}
	x -= 0x80 << 35

	y = uint64(b[6])
	x += y << 42
	if y < 0x80 {
		return x, 7
	}
	x -= 0x80 << 42

	y = uint64(b[7])
	x += y << 49
	if y < 0x80 {
		return x, 8
	}
	x -= 0x80 << 49

	y = uint64(b[8])
	x += y << 56
	if y < 0x80 {
		return x, 9
	}
	x -= 0x80 << 56

	y = uint64(b[9])
	x += y << 63
	if y < 0x80 {
		return x, 10
	}
	return 0, UnterminatedVarint
}

// LoadVarint32 is the unchecked version of [ConsumeVarint32].
func LoadVarint32(b []byte) (uint32, int) {
	_ = b[MaxVarintLen32-1]

	var x, y uint32
	y = uint32(b[0])
	if y < 0x80 {
		return y, 1
	}
	x = y - 0x80

	y = uint32(b[1])
	x += y << 7
	if y < 0x80 {
		return x, 2
	}
	x -= 0x80 << 7

	y = uint32(b[2])
	x += y << 14
	if y < 0x80 {
		return x, 3
	}
	x -= 0x80 << 14

	y = uint32(b[3])
	x += y << 21
	if y < 0x80 {
		return x, 4
	}
	x -= 0x80 << 21

	y = uint32(b[4])
	x += y << 28
	if y < 0x80 {
		return x, 5
	}
	return 0, UnterminatedVarint
}

// LoadSkipVarint is the unchecked version of [SkipVarint].
func LoadSkipVarint(b []byte) int {
	_ = b[MaxVarintLen64-1]
	for i := range MaxVarintLen64 {
		if b[i] < 0x80 {
			return i + 1
		}
	}
	return UnterminatedVarint
}

// LoadFixed32 is the unchecked version of [ConsumeFixed32].
//
// protowire has no unchecked form, so this reads the bytes directly.
func LoadFixed32(b []byte) (uint32, int) {
	return binary.LittleEndian.Uint32(b), 4
}

// LoadFixed64 is the unchecked version of [ConsumeFixed64].
func LoadFixed64(b []byte) (uint64, int) {
	return binary.LittleEndian.Uint64(b), 8
}

// DecodeTag splits a tag into its field number and wire type.
//
// The field number is not range-checked.
func DecodeTag(v uint32) (protowire.Number, protowire.Type) {
	return protowire.Number(v >> 3), protowire.Type(v & 7)
}

// AddLength computes offset + n, returning false if it wraps.
func AddLength(offset, n uint64) (uint64, bool) {
	sum, carry := bits.Add64(offset, n, 0)
	return sum, carry == 0
}
