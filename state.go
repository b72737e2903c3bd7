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

	"google.golang.org/protobuf/encoding/protowire"

	"buf.build/go/wirestream/internal/debug"
)

// State is the state of a single decoding stream.
//
// A State is fed successive chunks of one logical byte stream with
// [State.Parse] or [State.ParseSlack], and reports what it finds to its
// [Handler]. It must not be used by more than one goroutine at a time, but
// independent States share nothing.
type State struct {
	handler Handler
	unknown UnknownHandler
	opts    options

	offset uint64
	depth  int
	frames []frame // Indexed by depth; frames[0] is the root.
	data   []byte  // Per-frame scratch, opts.frameData bytes per frame.

	packed  packed
	pending pending
	groups  []protowire.Number // Scratch for skipping unknown groups.

	done  bool
	short bool
	err   *ParseError
}

// frame is an open message or group.
type frame struct {
	end    uint64           // Zero for groups, which close on END_GROUP.
	limit  uint64           // Offset the frame's contents may not pass.
	number protowire.Number // Field number of a group.
}

// packed tracks a packed field whose elements are still being decoded.
type packed struct {
	kind FieldType
	end  uint64
	desc any
}

// pending caches the resolution of a field whose payload was cut off by the
// end of a chunk, so that Resolve is not called again when the field is
// re-presented.
type pending struct {
	offset uint64
	kind   FieldType
	desc   any
	ok     bool
}

// NewState creates a new decoding stream that reports to h.
func NewState(h Handler, opts ...Option) *State {
	s := new(State)
	s.init(h, opts)
	return s
}

func (s *State) init(h Handler, opts []Option) {
	if h == nil {
		panic("wirestream: nil handler")
	}

	s.handler = h
	s.unknown, _ = h.(UnknownHandler)
	s.opts = defaultOptions()
	for _, opt := range opts {
		opt.apply(&s.opts)
	}
	s.Reset()
}

// Reset rewinds s to the start of a new stream, keeping its handler and
// options.
func (s *State) Reset() {
	if len(s.frames) == 0 {
		s.frames = make([]frame, 1, 8)
	}
	s.frames = s.frames[:1]
	s.frames[0] = frame{end: s.opts.limit, limit: s.opts.limit}

	stride := s.opts.frameData
	if cap(s.data) < stride {
		s.data = make([]byte, stride, stride*8)
	}
	s.data = s.data[:stride]
	clear(s.data)

	s.offset = 0
	s.depth = 0
	s.packed = packed{}
	s.pending = pending{}
	s.groups = s.groups[:0]
	s.done = false
	s.short = false
	s.err = nil
}

// Offset returns the absolute offset of the next byte to be parsed.
func (s *State) Offset() uint64 { return s.offset }

// Depth returns the number of open frames, not counting the root.
func (s *State) Depth() int { return s.depth }

// Done returns whether the stream has finished, either because the root
// was closed or because [State.Stop] was called.
func (s *State) Done() bool { return s.done }

// Stop abandons the stream. Parse returns as soon as the current callback
// does, and frames that are still open are not closed.
func (s *State) Stop() { s.done = true }

// Incomplete returns whether the last call to Parse stopped at a field
// that did not fit in its chunk. The unconsumed bytes must be passed again
// at the start of the next chunk.
func (s *State) Incomplete() bool { return s.short }

// Err returns the error that killed this stream, if any.
func (s *State) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// FrameData returns the scratch space of the innermost frame, as reserved
// by [WithFrameData].
func (s *State) FrameData() []byte {
	return s.slot(s.depth)
}

func (s *State) slot(depth int) []byte {
	stride := s.opts.frameData
	lo, hi := depth*stride, (depth+1)*stride
	return s.data[lo:hi:hi]
}

// Finish ends a stream whose root was not bounded with [WithLimit].
//
// It fails if the stream stopped in the middle of a field or with frames
// still open. Otherwise it closes the root frame, which calls
// [Handler.Exit]. Finish is a no-op on a stream that is already done.
func (s *State) Finish() error {
	if s.err != nil {
		return s.err
	}
	if s.done {
		return nil
	}

	if code := s.closeFrames(); code != ErrorOk {
		return s.fail(code, s.offset)
	}

	switch {
	case s.short, s.packed.kind != NoField:
		return s.fail(ErrorTruncated, s.offset)
	case s.depth > 0 && s.frames[s.depth].end == 0:
		return s.fail(ErrorUnterminatedGroup, s.offset)
	case s.depth > 0, s.opts.limit != math.MaxUint64 && s.offset < s.opts.limit:
		return s.fail(ErrorTruncated, s.offset)
	}

	s.finish()
	return nil
}

// finish closes the root frame.
func (s *State) finish() {
	if debug.Enabled {
		s.log("finish", "")
	}
	s.done = true
	s.handler.Exit(s)
}

func (s *State) fail(code ErrorCode, offset uint64) error {
	s.err = &ParseError{code: code, offset: offset}
	if debug.Enabled {
		s.log("fail", "%v\n%s", s.err, debug.Stack(2))
	}
	return s.err
}

func (s *State) log(op, format string, args ...any) {
	debug.Log([]any{"%d:%d", s.offset, s.depth}, op, format, args...)
}
