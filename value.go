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
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/wirestream/internal/zigzag"
)

// Value is a single decoded field value, as passed to [Handler.Value].
//
// Scalars are stored already converted to their field type; use the
// accessor that matches [Value.Kind]. For strings and bytes, [Value.Bytes]
// aliases the buffer passed to the parser and is only valid for the
// duration of the callback unless the caller arranges otherwise.
type Value struct {
	kind FieldType
	bits uint64
	data []byte
}

// Kind returns the field type this value was converted to.
func (v Value) Kind() FieldType { return v.kind }

func (v Value) Float64() float64 { return math.Float64frombits(v.bits) }
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.bits)) }
func (v Value) Int32() int32     { return int32(v.bits) }
func (v Value) Int64() int64     { return int64(v.bits) }
func (v Value) Uint32() uint32   { return uint32(v.bits) }
func (v Value) Uint64() uint64   { return v.bits }
func (v Value) Bool() bool       { return v.bits != 0 }

// Enum returns the value of an enum field. Enum values are not checked
// against the enum's declared values.
func (v Value) Enum() protoreflect.EnumNumber { return protoreflect.EnumNumber(int32(v.bits)) }

// Len returns the length of a string or bytes payload.
func (v Value) Len() int { return len(v.data) }

// Bytes returns the payload of a string or bytes field.
func (v Value) Bytes() []byte { return v.data }

// Interface converts this value into a [protoreflect.Value].
//
// Bytes are not copied.
func (v Value) Interface() protoreflect.Value {
	switch v.kind {
	case protoreflect.DoubleKind:
		return protoreflect.ValueOfFloat64(v.Float64())
	case protoreflect.FloatKind:
		return protoreflect.ValueOfFloat32(v.Float32())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return protoreflect.ValueOfInt32(v.Int32())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return protoreflect.ValueOfInt64(v.Int64())
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protoreflect.ValueOfUint32(v.Uint32())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return protoreflect.ValueOfUint64(v.Uint64())
	case protoreflect.BoolKind:
		return protoreflect.ValueOfBool(v.Bool())
	case protoreflect.EnumKind:
		return protoreflect.ValueOfEnum(v.Enum())
	case protoreflect.StringKind:
		return protoreflect.ValueOfString(string(v.data))
	case protoreflect.BytesKind:
		return protoreflect.ValueOfBytes(v.data)
	default:
		return protoreflect.Value{}
	}
}

// convert interprets the raw bits of a varint or fixed-width value as a
// value of kind k.
func convert(k FieldType, raw uint64) Value {
	v := Value{kind: k}
	switch k {
	case protoreflect.DoubleKind,
		protoreflect.Int64Kind, protoreflect.Uint64Kind,
		protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind:
		v.bits = raw
	case protoreflect.FloatKind,
		protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		v.bits = uint64(uint32(raw))
	case protoreflect.Int32Kind, protoreflect.Sfixed32Kind, protoreflect.EnumKind:
		v.bits = uint64(int64(int32(raw)))
	case protoreflect.Sint32Kind:
		v.bits = uint64(int64(zigzag.Decode64[int32](raw)))
	case protoreflect.Sint64Kind:
		v.bits = uint64(zigzag.Decode64[int64](raw))
	case protoreflect.BoolKind:
		if raw != 0 {
			v.bits = 1
		}
	}
	return v
}

// bytesValue wraps a string or bytes payload.
func bytesValue(k FieldType, data []byte) Value {
	return Value{kind: k, bits: uint64(len(data)), data: data}
}
