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

	"buf.build/go/wirestream/internal/debug"
	"buf.build/go/wirestream/internal/wire"
)

// errShort is returned internally when a field runs past the end of the
// chunk, but not past the end of its frame.
const errShort ErrorCode = -1

// Parse parses as much of chunk as possible, reporting fields to the
// handler, and returns the number of bytes consumed.
//
// Only whole fields are consumed. If chunk ends in the middle of a field,
// Parse returns early with a nil error and [State.Incomplete] set; the
// caller must pass chunk[n:] again, followed by more bytes, in the next call.
// Sub-messages and packed fields may span any number of chunks.
//
// Parse returns 0 once the stream is done. Any error is fatal.
func (s *State) Parse(chunk []byte) (int, error) {
	return s.run(&cursor{buf: chunk})
}

// ParseSlack is like [State.Parse], but takes advantage of the slack in
// chunk to elide most bounds checks.
func (s *State) ParseSlack(chunk Slack) (int, error) {
	c := cursor{buf: chunk.b}
	if len(chunk.b) > 0 {
		c.pad = chunk.padded()
	}
	return s.run(&c)
}

// cursor is the chunk being parsed.
type cursor struct {
	buf []byte
	pad []byte // buf extended over its slack; nil for checked parsing.
	pos int    // Bytes of buf consumed so far.
}

func (s *State) run(c *cursor) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.short = false

	for {
		if code := s.closeFrames(); code != ErrorOk {
			return c.pos, s.fail(code, s.offset)
		}
		if s.done {
			break
		}
		if s.depth == 0 && s.offset >= s.frames[0].end {
			s.finish()
			break
		}
		if c.pos == len(c.buf) {
			break
		}

		start := s.offset
		code := s.step(c)
		if code == errShort {
			if debug.Enabled {
				s.log("short", "%d bytes left in chunk", len(c.buf)-c.pos)
			}
			s.short = true
			break
		}
		if code != ErrorOk {
			return c.pos, s.fail(code, start)
		}
	}

	return c.pos, nil
}

// step parses a single field, or a single element of a packed field.
func (s *State) step(c *cursor) ErrorCode {
	r := s.reader(c)
	if s.packed.kind != NoField {
		return s.packedElement(c, &r)
	}

	v, code := r.varint32()
	if code != ErrorOk {
		return code
	}
	tag := decodeTag(v)
	if debug.Enabled {
		s.log("tag", "%v", tag)
	}

	switch {
	case tag.Type == protowire.EndGroupType:
		f := &s.frames[s.depth]
		if s.depth == 0 || f.end != 0 || f.number != tag.Number {
			return ErrorSpuriousEndGroup
		}
		s.advance(c, &r)
		s.pop()
		return ErrorOk
	case tag.Type > protowire.Fixed32Type:
		return ErrorReserved
	}

	var raw uint64
	switch tag.Type {
	case protowire.VarintType:
		raw, code = r.varint()
	case protowire.Fixed32Type:
		var v uint32
		v, code = r.fixed32()
		raw = uint64(v)
	case protowire.Fixed64Type:
		raw, code = r.fixed64()
	case protowire.BytesType:
		var v uint32
		v, code = r.varint32()
		raw = uint64(v)
	}
	if code != ErrorOk {
		return code
	}

	// For delimited fields, work out where the payload ends before asking
	// the handler about it.
	var end uint64
	if tag.Type == protowire.BytesType {
		var ok bool
		end, ok = wire.AddLength(s.offset+uint64(r.pos-c.pos), raw)
		if !ok {
			return ErrorOverflow
		}
		if end > s.frames[s.depth].limit {
			return ErrorTruncated
		}
	}

	kind, desc := s.resolve(tag)
	if s.done {
		return ErrorOk
	}

	code = s.route(c, &r, tag, raw, end, kind, desc)
	if code == errShort {
		s.pending = pending{offset: s.offset, kind: kind, desc: desc, ok: true}
	}
	return code
}

// route dispatches a field whose header has been read on its type.
func (s *State) route(c *cursor, r *reader, tag Tag, raw, end uint64, kind FieldType, desc any) ErrorCode {
	if kind == NoField {
		return s.skipField(c, r, tag, raw)
	}
	if !compatible(kind, tag.Type, s.opts.strict) {
		if debug.Enabled {
			s.log("mismatch", "%v for %v", tag, kind)
		}
		return ErrorWireTypeMismatch
	}

	switch {
	case kind == protoreflect.GroupKind:
		if s.depth >= s.opts.maxDepth {
			return ErrorStackOverflow
		}
		s.advance(c, r)
		s.push(frame{limit: s.frames[s.depth].limit, number: tag.Number}, desc)

	case kind == protoreflect.MessageKind:
		if s.depth >= s.opts.maxDepth {
			return ErrorStackOverflow
		}
		s.advance(c, r)
		s.push(frame{end: end, limit: end}, desc)

	case kind == protoreflect.StringKind, kind == protoreflect.BytesKind:
		if code := r.skip(raw); code != ErrorOk {
			return code
		}
		data := c.buf[r.pos-int(raw) : r.pos : r.pos]
		s.advance(c, r)
		s.handler.Value(s, bytesValue(kind, data), desc)

	case tag.Type == protowire.BytesType:
		s.advance(c, r)
		if end > s.offset {
			if debug.Enabled {
				s.log("packed", "%v until %d", kind, end)
			}
			s.packed = packed{kind: kind, end: end, desc: desc}
		}

	default:
		s.advance(c, r)
		s.handler.Value(s, convert(kind, raw), desc)
	}

	return ErrorOk
}

// packedElement decodes one element of the current packed field.
func (s *State) packedElement(c *cursor, r *reader) ErrorCode {
	var raw uint64
	var code ErrorCode
	switch natural(s.packed.kind) {
	case protowire.VarintType:
		raw, code = r.varint()
	case protowire.Fixed32Type:
		var v uint32
		v, code = r.fixed32()
		raw = uint64(v)
	case protowire.Fixed64Type:
		raw, code = r.fixed64()
	}
	if code != ErrorOk {
		return code
	}
	s.advance(c, r)

	kind, desc := s.packed.kind, s.packed.desc
	if s.offset >= s.packed.end {
		s.packed = packed{}
	}
	s.handler.Value(s, convert(kind, raw), desc)
	return ErrorOk
}

// resolve asks the handler about tag, unless the field at the current
// offset was already resolved by an earlier call to Parse.
func (s *State) resolve(tag Tag) (FieldType, any) {
	if p := s.pending; p.ok {
		s.pending = pending{}
		if p.offset == s.offset {
			return p.kind, p.desc
		}
	}
	return s.handler.Resolve(s, tag)
}

// skipField skips the value of a field the handler did not recognize.
func (s *State) skipField(c *cursor, r *reader, tag Tag, raw uint64) ErrorCode {
	switch tag.Type {
	case protowire.BytesType:
		if code := r.skip(raw); code != ErrorOk {
			return code
		}
	case protowire.StartGroupType:
		if code := s.skipGroup(r, tag.Number); code != ErrorOk {
			return code
		}
	}

	field := c.buf[c.pos:r.pos:r.pos]
	s.advance(c, r)
	if debug.Enabled {
		s.log("skip", "%v, %d bytes", tag, len(field))
	}
	if s.unknown != nil {
		s.unknown.Unknown(s, tag, field)
	}
	return ErrorOk
}

// skipGroup skips to the END_GROUP matching a START_GROUP that has already
// been read, tracking nested groups along the way.
func (s *State) skipGroup(r *reader, number protowire.Number) ErrorCode {
	if s.depth >= s.opts.maxDepth {
		return ErrorStackOverflow
	}

	stack := append(s.groups[:0], number)
	defer func() { s.groups = stack[:0] }()

	for len(stack) > 0 {
		if r.pos == r.end {
			if r.bounded {
				return ErrorUnterminatedGroup
			}
			return errShort
		}

		v, code := r.varint32()
		if code != ErrorOk {
			return code
		}
		tag := decodeTag(v)

		switch tag.Type {
		case protowire.VarintType:
			code = r.skipVarint()
		case protowire.Fixed32Type:
			code = r.skip(4)
		case protowire.Fixed64Type:
			code = r.skip(8)
		case protowire.BytesType:
			var n uint32
			if n, code = r.varint32(); code == ErrorOk {
				code = r.skip(uint64(n))
			}
		case protowire.StartGroupType:
			if s.depth+len(stack) >= s.opts.maxDepth {
				return ErrorStackOverflow
			}
			stack = append(stack, tag.Number)
		case protowire.EndGroupType:
			if stack[len(stack)-1] != tag.Number {
				return ErrorSpuriousEndGroup
			}
			stack = stack[:len(stack)-1]
		default:
			return ErrorReserved
		}
		if code != ErrorOk {
			return code
		}
	}

	return ErrorOk
}

// advance commits everything r has read.
func (s *State) advance(c *cursor, r *reader) {
	s.offset += uint64(r.pos - c.pos)
	c.pos = r.pos
}

// reader reads ahead of a cursor without committing.
type reader struct {
	c       *cursor
	pos     int
	end     int
	bounded bool // end is the end of the innermost frame, not of the chunk.
}

// reader returns a reader over the bytes the next field may occupy.
func (s *State) reader(c *cursor) reader {
	limit := s.frames[s.depth].limit
	if s.packed.kind != NoField {
		limit = s.packed.end
	}

	r := reader{c: c, pos: c.pos, end: len(c.buf)}
	if rest := limit - s.offset; rest <= uint64(len(c.buf)-c.pos) {
		r.end = c.pos + int(rest)
		r.bounded = true
	}
	return r
}

func (r *reader) truncated() ErrorCode {
	if r.bounded {
		return ErrorTruncated
	}
	return errShort
}

// check converts a length from package wire into an error code, treating
// slack reads that went past the end as truncated.
func (r *reader) check(n, maxLen int) ErrorCode {
	switch {
	case n == wire.Truncated,
		n == wire.UnterminatedVarint && r.c.pad != nil && r.end-r.pos < maxLen,
		n > r.end-r.pos:
		return r.truncated()
	case n == wire.UnterminatedVarint:
		return ErrorUnterminatedVarint
	}
	return ErrorOk
}

func (r *reader) varint() (uint64, ErrorCode) {
	if r.pos >= r.end {
		return 0, r.truncated()
	}

	var v uint64
	var n int
	if r.c.pad != nil {
		v, n = wire.LoadVarint(r.c.pad[r.pos:])
	} else {
		v, n = wire.ConsumeVarint(r.c.buf[r.pos:r.end])
	}
	if code := r.check(n, wire.MaxVarintLen64); code != ErrorOk {
		return 0, code
	}
	r.pos += n
	return v, ErrorOk
}

func (r *reader) varint32() (uint32, ErrorCode) {
	if r.pos >= r.end {
		return 0, r.truncated()
	}

	var v uint32
	var n int
	if r.c.pad != nil {
		v, n = wire.LoadVarint32(r.c.pad[r.pos:])
	} else {
		v, n = wire.ConsumeVarint32(r.c.buf[r.pos:r.end])
	}
	if code := r.check(n, wire.MaxVarintLen32); code != ErrorOk {
		return 0, code
	}
	r.pos += n
	return v, ErrorOk
}

// skipVarint skips a varint without decoding it.
func (r *reader) skipVarint() ErrorCode {
	if r.pos >= r.end {
		return r.truncated()
	}

	var n int
	if r.c.pad != nil {
		n = wire.LoadSkipVarint(r.c.pad[r.pos:])
	} else {
		n = wire.SkipVarint(r.c.buf[r.pos:r.end])
	}
	if code := r.check(n, wire.MaxVarintLen64); code != ErrorOk {
		return code
	}
	r.pos += n
	return ErrorOk
}

func (r *reader) fixed32() (uint32, ErrorCode) {
	if r.end-r.pos < 4 {
		return 0, r.truncated()
	}

	var v uint32
	if r.c.pad != nil {
		v, _ = wire.LoadFixed32(r.c.pad[r.pos:])
	} else {
		v, _ = wire.ConsumeFixed32(r.c.buf[r.pos:r.end])
	}
	r.pos += 4
	return v, ErrorOk
}

func (r *reader) fixed64() (uint64, ErrorCode) {
	if r.end-r.pos < 8 {
		return 0, r.truncated()
	}

	var v uint64
	if r.c.pad != nil {
		v, _ = wire.LoadFixed64(r.c.pad[r.pos:])
	} else {
		v, _ = wire.ConsumeFixed64(r.c.buf[r.pos:r.end])
	}
	r.pos += 8
	return v, ErrorOk
}

// skip skips n bytes of payload.
func (r *reader) skip(n uint64) ErrorCode {
	if n > uint64(r.end-r.pos) {
		return r.truncated()
	}
	r.pos += int(n)
	return ErrorOk
}
