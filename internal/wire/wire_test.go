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

package wire_test

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"buf.build/go/wirestream/internal/wire"
)

// slack pads b so that the Load* functions may be called on it.
func slack(b []byte) []byte {
	return append(append([]byte(nil), b...), make([]byte, wire.MaxVarintLen64)...)
}

func TestVarint(t *testing.T) {
	t.Parallel()

	tests := []uint64{
		0, 1, 127, 128, 16383, 16384,
		1<<28 - 1, 1 << 28,
		1<<35 - 1,
		math.MaxUint32, math.MaxInt64,
		math.MaxUint64,
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#x", tt), func(t *testing.T) {
			t.Parallel()

			b := protowire.AppendVarint(nil, tt)
			size := protowire.SizeVarint(tt)
			require.Len(t, b, size)

			v, n := wire.ConsumeVarint(b)
			assert.Equal(t, tt, v)
			assert.Equal(t, size, n)

			v, n = wire.LoadVarint(slack(b))
			assert.Equal(t, tt, v)
			assert.Equal(t, size, n)

			assert.Equal(t, size, wire.SkipVarint(b))
			assert.Equal(t, size, wire.LoadSkipVarint(slack(b)))

			if tt <= math.MaxUint32 {
				v, n := wire.ConsumeVarint32(b)
				assert.Equal(t, uint32(tt), v)
				assert.Equal(t, size, n)

				v, n = wire.LoadVarint32(slack(b))
				assert.Equal(t, uint32(tt), v)
				assert.Equal(t, size, n)
			}

			// Every strict prefix is truncated.
			for i := range b {
				_, n := wire.ConsumeVarint(b[:i])
				assert.Equal(t, wire.Truncated, n, "prefix %d", i)
			}
		})
	}
}

func TestUnterminatedVarint(t *testing.T) {
	t.Parallel()

	b := bytes.Repeat([]byte{0x80}, 11)

	_, n := wire.ConsumeVarint(b)
	assert.Equal(t, wire.UnterminatedVarint, n)
	_, n = wire.LoadVarint(b)
	assert.Equal(t, wire.UnterminatedVarint, n)
	assert.Equal(t, wire.UnterminatedVarint, wire.SkipVarint(b))
	assert.Equal(t, wire.UnterminatedVarint, wire.LoadSkipVarint(b))

	_, n = wire.ConsumeVarint32(b)
	assert.Equal(t, wire.UnterminatedVarint, n)
	_, n = wire.LoadVarint32(b)
	assert.Equal(t, wire.UnterminatedVarint, n)
}

func TestVarintExcessBits(t *testing.T) {
	t.Parallel()

	// The tenth byte may only contribute one bit; the rest are dropped.
	b := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}
	v, n := wire.ConsumeVarint(b)
	assert.Equal(t, uint64(math.MaxUint64), v)
	assert.Equal(t, 10, n)

	v, n = wire.LoadVarint(b)
	assert.Equal(t, uint64(math.MaxUint64), v)
	assert.Equal(t, 10, n)

	// Likewise for the fifth byte of a 32-bit varint.
	b = []byte{0xff, 0xff, 0xff, 0xff, 0x7f}
	v32, n := wire.ConsumeVarint32(b)
	assert.Equal(t, uint32(math.MaxUint32), v32)
	assert.Equal(t, 5, n)

	v32, n = wire.LoadVarint32(slack(b))
	assert.Equal(t, uint32(math.MaxUint32), v32)
	assert.Equal(t, 5, n)
}

func TestFixed(t *testing.T) {
	t.Parallel()

	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	v32, n := wire.ConsumeFixed32(b)
	assert.Equal(t, uint32(0x04030201), v32)
	assert.Equal(t, 4, n)
	v32, n = wire.LoadFixed32(slack(b))
	assert.Equal(t, uint32(0x04030201), v32)
	assert.Equal(t, 4, n)

	v64, n := wire.ConsumeFixed64(b)
	assert.Equal(t, uint64(0x0807060504030201), v64)
	assert.Equal(t, 8, n)
	v64, n = wire.LoadFixed64(slack(b))
	assert.Equal(t, uint64(0x0807060504030201), v64)
	assert.Equal(t, 8, n)

	_, n = wire.ConsumeFixed32(b[:3])
	assert.Equal(t, wire.Truncated, n)
	_, n = wire.ConsumeFixed64(b[:7])
	assert.Equal(t, wire.Truncated, n)
}

func TestFixedMatchesProtowire(t *testing.T) {
	t.Parallel()

	values := []uint64{0, 1, 0xff, 0x80000000, math.MaxUint32, 1 << 40, math.MaxUint64}
	for _, tt := range values {
		t.Run(fmt.Sprintf("%#x", tt), func(t *testing.T) {
			t.Parallel()

			b32 := protowire.AppendFixed32(nil, uint32(tt))
			b64 := protowire.AppendFixed64(nil, tt)

			for i := range len(b32) + 1 {
				want, wantN := protowire.ConsumeFixed32(b32[:i])
				got, n := wire.ConsumeFixed32(b32[:i])
				if wantN < 0 {
					assert.Equal(t, wire.Truncated, n, "prefix %d", i)
					continue
				}
				assert.Equal(t, want, got)
				assert.Equal(t, wantN, n)

				got, n = wire.LoadFixed32(slack(b32))
				assert.Equal(t, want, got)
				assert.Equal(t, wantN, n)
			}

			for i := range len(b64) + 1 {
				want, wantN := protowire.ConsumeFixed64(b64[:i])
				got, n := wire.ConsumeFixed64(b64[:i])
				if wantN < 0 {
					assert.Equal(t, wire.Truncated, n, "prefix %d", i)
					continue
				}
				assert.Equal(t, want, got)
				assert.Equal(t, wantN, n)

				got, n = wire.LoadFixed64(slack(b64))
				assert.Equal(t, want, got)
				assert.Equal(t, wantN, n)
			}
		})
	}
}

func TestTag(t *testing.T) {
	t.Parallel()

	numbers := []protowire.Number{
		1, 2, 15, 16, 2047, 2048,
		protowire.FirstReservedNumber - 1,
		protowire.LastReservedNumber + 1,
		protowire.MaxValidNumber,
	}
	types := []protowire.Type{
		protowire.VarintType,
		protowire.Fixed64Type,
		protowire.BytesType,
		protowire.StartGroupType,
		protowire.EndGroupType,
		protowire.Fixed32Type,
	}

	for _, num := range numbers {
		for _, typ := range types {
			t.Run(fmt.Sprintf("%d/%d", num, typ), func(t *testing.T) {
				t.Parallel()

				b := protowire.AppendTag(nil, num, typ)
				v, n := wire.ConsumeVarint32(b)
				require.Equal(t, len(b), n)

				gotNum, gotType := wire.DecodeTag(v)
				assert.Equal(t, num, gotNum)
				assert.Equal(t, typ, gotType)
			})
		}
	}
}

func TestAddLength(t *testing.T) {
	t.Parallel()

	sum, ok := wire.AddLength(10, 20)
	assert.True(t, ok)
	assert.Equal(t, uint64(30), sum)

	sum, ok = wire.AddLength(math.MaxUint64-5, 5)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, ok = wire.AddLength(math.MaxUint64-5, 6)
	assert.False(t, ok)
}
