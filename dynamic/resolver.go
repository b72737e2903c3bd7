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

package dynamic

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"buf.build/go/wirestream"
)

// Resolver maps tags to fields of a message descriptor.
type Resolver struct {
	// Extensions are consulted for field numbers in a message's extension
	// ranges. If nil, [protoregistry.GlobalTypes] is used.
	Extensions ExtensionResolver
}

// Resolve finds the field of md that tag refers to.
//
// A field whose wire type does not match its declared type is reported as
// unknown, which is what protobuf-go does. Scalars may appear packed only
// if the field is repeated.
func (r *Resolver) Resolve(md protoreflect.MessageDescriptor, tag wirestream.Tag) (wirestream.FieldType, protoreflect.FieldDescriptor) {
	fd := md.Fields().ByNumber(tag.Number)
	if fd == nil {
		fd = r.extension(md, tag.Number)
		if fd == nil {
			return wirestream.NoField, nil
		}
	}

	if !wireTypeOK(fd, tag.Type) {
		return wirestream.NoField, nil
	}
	return fd.Kind(), fd
}

func (r *Resolver) extension(md protoreflect.MessageDescriptor, n protowire.Number) protoreflect.FieldDescriptor {
	if !md.ExtensionRanges().Has(n) {
		return nil
	}

	exts := r.Extensions
	if exts == nil {
		exts = protoregistry.GlobalTypes
	}
	xt, err := exts.FindExtensionByNumber(md.FullName(), n)
	if err != nil {
		return nil
	}
	return xt.TypeDescriptor()
}

// wireTypeOK checks whether a field may be decoded from wire type t.
func wireTypeOK(fd protoreflect.FieldDescriptor, t protowire.Type) bool {
	switch k := fd.Kind(); k {
	case protoreflect.GroupKind:
		return t == protowire.StartGroupType
	case protoreflect.MessageKind, protoreflect.StringKind, protoreflect.BytesKind:
		return t == protowire.BytesType
	default:
		if t == protowire.BytesType {
			return fd.IsList()
		}
		return t == scalarWireType(k)
	}
}

// scalarWireType returns the unpacked wire type of a scalar kind.
//
// Non-scalar kinds must be handled by the caller; they fall through to
// VarintType here.
func scalarWireType(k protoreflect.Kind) protowire.Type {
	switch k {
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return protowire.Fixed32Type
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return protowire.Fixed64Type
	default:
		return protowire.VarintType
	}
}
