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

// Package dynamic connects [wirestream] to protobuf-go reflection.
//
// [Builder] is a [wirestream.Handler] that resolves fields against a
// message descriptor and assembles the decoded values into a
// [protoreflect.Message], typically a [dynamicpb.Message].
package dynamic

import (
	"fmt"
	"unicode/utf8"

	"buf.build/go/protovalidate"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"buf.build/go/wirestream"
	"buf.build/go/wirestream/internal/debug"
)

// Builder builds a message out of parser events.
//
// Values are merged into the message the way [proto.Unmarshal] merges them:
// singular fields are overwritten, repeated fields are appended to, and
// sub-messages are merged. Strings and bytes are copied.
type Builder struct {
	opts     options
	resolver Resolver

	root  protoreflect.Message
	stack []level
	err   error
}

// level is an open message, or an open map entry.
type level struct {
	msg   protoreflect.Message
	entry *entry
}

// entry accumulates a map entry until it is complete.
type entry struct {
	field    protoreflect.FieldDescriptor
	m        protoreflect.Map
	key, val protoreflect.Value
}

var (
	_ wirestream.Handler        = (*Builder)(nil)
	_ wirestream.UnknownHandler = (*Builder)(nil)
)

// New returns a builder that merges into msg.
func New(msg protoreflect.Message, opts ...Option) *Builder {
	b := &Builder{root: msg}
	for _, opt := range opts {
		opt.apply(&b.opts)
	}
	b.resolver.Extensions = b.opts.extensions
	b.stack = append(b.stack, level{msg: msg})
	return b
}

// Unmarshal parses data and merges it into msg.
func Unmarshal(data []byte, msg protoreflect.Message, opts ...Option) error {
	b := New(msg, opts...)
	if err := wirestream.Decode(data, b, b.opts.parse...); err != nil {
		return err
	}
	if b.err != nil || !b.opts.validate {
		return b.err
	}
	return protovalidate.Validate(msg.Interface())
}

// UnmarshalNew parses data into a new [dynamicpb.Message] of type md.
func UnmarshalNew(data []byte, md protoreflect.MessageDescriptor, opts ...Option) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(md)
	return msg, Unmarshal(data, msg, opts...)
}

// Message returns the message being built.
func (b *Builder) Message() protoreflect.Message { return b.root }

// Err returns an error that caused the builder to stop the parser.
func (b *Builder) Err() error { return b.err }

// Resolve implements [wirestream.Handler].
func (b *Builder) Resolve(s *wirestream.State, tag wirestream.Tag) (wirestream.FieldType, any) {
	top := b.top()
	if e := top.entry; e != nil {
		var fd protoreflect.FieldDescriptor
		switch tag.Number {
		case 1:
			fd = e.field.MapKey()
		case 2:
			fd = e.field.MapValue()
		}
		if fd == nil || !wireTypeOK(fd, tag.Type) {
			return wirestream.NoField, nil
		}
		return fd.Kind(), fd
	}

	kind, fd := b.resolver.Resolve(top.msg.Descriptor(), tag)
	if fd == nil {
		return kind, nil
	}
	return kind, fd
}

// Enter implements [wirestream.Handler].
func (b *Builder) Enter(s *wirestream.State, desc any) {
	fd := desc.(protoreflect.FieldDescriptor) //nolint:errcheck
	top := b.top()

	if e := top.entry; e != nil {
		if !e.val.IsValid() {
			e.val = e.m.NewValue()
		}
		b.stack = append(b.stack, level{msg: e.val.Message()})
		return
	}

	var next level
	switch {
	case fd.IsMap():
		next.entry = &entry{field: fd, m: top.msg.Mutable(fd).Map()}
	case fd.IsList():
		list := top.msg.Mutable(fd).List()
		v := list.NewElement()
		list.Append(v)
		next.msg = v.Message()
	default:
		next.msg = top.msg.Mutable(fd).Message()
	}

	if debug.Enabled {
		debug.Log(nil, "enter", "%v", fd.FullName())
	}
	b.stack = append(b.stack, next)
}

// Exit implements [wirestream.Handler].
func (b *Builder) Exit(s *wirestream.State) {
	if len(b.stack) == 1 {
		return // Root.
	}

	top := b.top()
	b.stack = b.stack[:len(b.stack)-1]

	if e := top.entry; e != nil {
		e.commit()
	}
}

// Value implements [wirestream.Handler].
func (b *Builder) Value(s *wirestream.State, v wirestream.Value, desc any) {
	fd := desc.(protoreflect.FieldDescriptor) //nolint:errcheck
	top := b.top()

	if fd.Kind() == protoreflect.StringKind && enforceUTF8(fd) && !utf8.Valid(v.Bytes()) {
		b.fail(s, fmt.Errorf("wirestream: invalid UTF-8 in field %v at offset %d", fd.FullName(), s.Offset()))
		return
	}

	val := v.Interface()
	if fd.Kind() == protoreflect.BytesKind {
		val = protoreflect.ValueOfBytes(append([]byte{}, v.Bytes()...))
	}

	if e := top.entry; e != nil {
		if fd.Number() == 1 {
			e.key = val
		} else {
			e.val = val
		}
		return
	}

	if fd.Kind() == protoreflect.EnumKind && !b.enumKnown(fd, v.Enum()) {
		// Closed enums keep unrecognized values in the unknown fields, one
		// unpacked field per value.
		raw := protowire.AppendTag(top.msg.GetUnknown(), fd.Number(), protowire.VarintType)
		raw = protowire.AppendVarint(raw, uint64(v.Enum()))
		b.setUnknown(top.msg, raw)
		return
	}

	if fd.IsList() {
		top.msg.Mutable(fd).List().Append(val)
		return
	}
	top.msg.Set(fd, val)
}

// Unknown implements [wirestream.UnknownHandler].
func (b *Builder) Unknown(s *wirestream.State, tag wirestream.Tag, raw []byte) {
	top := b.top()
	if top.entry != nil || b.opts.discardUnknown {
		return
	}
	b.setUnknown(top.msg, append(top.msg.GetUnknown(), raw...))
}

func (b *Builder) top() *level {
	return &b.stack[len(b.stack)-1]
}

func (b *Builder) fail(s *wirestream.State, err error) {
	if b.err == nil {
		b.err = err
	}
	s.Stop()
}

func (b *Builder) setUnknown(msg protoreflect.Message, raw protoreflect.RawFields) {
	if b.opts.discardUnknown {
		return
	}
	msg.SetUnknown(raw)
}

func (b *Builder) enumKnown(fd protoreflect.FieldDescriptor, n protoreflect.EnumNumber) bool {
	ed := fd.Enum()
	return !ed.IsClosed() || ed.Values().ByNumber(n) != nil
}

// commit stores a completed map entry, filling in missing keys and values
// with their defaults.
func (e *entry) commit() {
	if !e.key.IsValid() {
		e.key = e.field.MapKey().Default()
	}
	if !e.val.IsValid() {
		if vd := e.field.MapValue(); vd.Message() != nil {
			e.val = e.m.NewValue()
		} else {
			e.val = vd.Default()
		}
	}
	e.m.Set(e.key.MapKey(), e.val)
}

func enforceUTF8(fd protoreflect.FieldDescriptor) bool {
	return fd.ParentFile() != nil && fd.ParentFile().Syntax() == protoreflect.Proto3
}
