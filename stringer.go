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
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/wirestream/internal/dbg"
)

// Stringer implementations for various types. These are mostly relevant for
// debugging and are thus placed off to the side here.

func (t Tag) Format(s fmt.State, verb rune) {
	dbg.Fprintf("%d:%d", t.Number, t.Type).Format(s, verb)
}

func (v Value) Format(s fmt.State, verb rune) {
	switch v.kind {
	case NoField:
		dbg.Fprintf("<none>").Format(s, verb)
	case protoreflect.StringKind, protoreflect.BytesKind:
		dbg.Fprintf("%v(%q)", v.kind, v.data).Format(s, verb)
	default:
		dbg.Fprintf("%v(%v)", v.kind, v.Interface()).Format(s, verb)
	}
}

func (f frame) Format(s fmt.State, verb rune) {
	if f.end == 0 {
		dbg.Dict("group", "number", f.number, "limit", f.limit).Format(s, verb)
		return
	}
	dbg.Dict("message", "end", f.end).Format(s, verb)
}

func (s *State) Format(st fmt.State, verb rune) {
	dbg.Dict(
		dbg.Fprintf("%p", s),
		"offset", s.offset,
		"depth", s.depth,
		"top", s.frames[s.depth],
		"packed", func() any {
			if s.packed.kind == NoField {
				return nil
			}
			return dbg.Fprintf("%v until %d", s.packed.kind, s.packed.end)
		}(),
		"done", s.done,
		"err", func() any {
			if s.err == nil {
				return nil
			}
			return s.err
		}(),
	).Format(st, verb)
}
