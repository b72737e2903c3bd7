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
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/wirestream/internal/wire"
)

// WireType is the three-bit framing code carried by every tag.
//
// Wire types 6 and 7 are reserved and rejected by the parser.
type WireType = protowire.Type

// FieldType is the schema type a [Handler] assigns to a field.
//
// It uses the same numbering as FieldDescriptorProto.Type, which is the
// numbering of [protoreflect.Kind], so the protoreflect constants may be
// used directly.
type FieldType = protoreflect.Kind

// NoField is returned by [Handler.Resolve] to request that a field be
// skipped.
const NoField FieldType = 0

// Tag is a decoded field tag.
type Tag struct {
	Number protowire.Number
	Type   WireType
}

func decodeTag(v uint32) Tag {
	n, t := wire.DecodeTag(v)
	return Tag{Number: n, Type: t}
}

// natural returns the wire type that values of a scalar kind are encoded
// with, which is also the encoding of elements of a packed field. Returns
// -1 for kinds that are not packable scalars.
func natural(k FieldType) WireType {
	switch k {
	case protoreflect.BoolKind, protoreflect.EnumKind,
		protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Uint32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Uint64Kind:
		return protowire.VarintType
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return protowire.Fixed32Type
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return protowire.Fixed64Type
	default:
		return -1
	}
}

// compatible checks that a field of kind k may appear with wire type t.
//
// Mismatches between scalar encodings are tolerated unless strict is set:
// the value is decoded per its wire type and converted per its kind.
func compatible(k FieldType, t WireType, strict bool) bool {
	switch k {
	case protoreflect.GroupKind:
		return t == protowire.StartGroupType
	case protoreflect.MessageKind, protoreflect.StringKind, protoreflect.BytesKind:
		return t == protowire.BytesType
	}

	nat := natural(k)
	switch {
	case nat < 0, t == protowire.StartGroupType:
		return false
	case t == protowire.BytesType:
		return true // Packed.
	default:
		return !strict || t == nat
	}
}
