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

import "buf.build/go/wirestream/internal/debug"

// push opens a new frame and calls [Handler.Enter].
//
// The caller must have already checked the depth limit.
func (s *State) push(f frame, desc any) {
	debug.Assert(s.depth < s.opts.maxDepth, "push past max depth %d", s.opts.maxDepth)

	s.depth++
	if s.depth == len(s.frames) {
		s.frames = append(s.frames, frame{})
		s.data = append(s.data, make([]byte, s.opts.frameData)...)
	}
	s.frames[s.depth] = f
	clear(s.slot(s.depth))

	if debug.Enabled {
		s.log("push", "%v", f)
	}
	s.handler.Enter(s, desc)
}

// pop calls [Handler.Exit] and closes the innermost frame.
func (s *State) pop() {
	debug.Assert(s.depth > 0, "pop of root frame")

	if debug.Enabled {
		s.log("pop", "%v", s.frames[s.depth])
	}
	s.handler.Exit(s)
	s.depth--
}

// closeFrames pops every message frame whose end has been reached.
//
// Groups only close on END_GROUP, so a group that is still open when its
// enclosing bound is reached is unterminated.
func (s *State) closeFrames() ErrorCode {
	for s.depth > 0 && !s.done {
		f := &s.frames[s.depth]
		if f.end == 0 {
			if s.offset >= f.limit {
				return ErrorUnterminatedGroup
			}
			break
		}
		if s.offset < f.end {
			break
		}
		s.pop()
	}
	return ErrorOk
}
