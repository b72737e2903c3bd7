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

package wirestream_test

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/wirestream"
)

// schema maps field numbers to field types for a recorder.
type schema map[protowire.Number]wirestream.FieldType

// fuzzSchema covers every kind of routing decision the parser makes.
var fuzzSchema = schema{
	1:  protoreflect.MessageKind,
	2:  protoreflect.GroupKind,
	3:  protoreflect.StringKind,
	4:  protoreflect.Int32Kind,
	5:  protoreflect.Sint64Kind,
	6:  protoreflect.Fixed32Kind,
	7:  protoreflect.DoubleKind,
	8:  protoreflect.BoolKind,
	9:  protoreflect.BytesKind,
	10: protoreflect.EnumKind,
}

// recorder is a handler that records every event it sees as a string.
type recorder struct {
	schema  schema
	unknown bool // Also record unknown fields.

	// If set, called on every event.
	hook func(s *wirestream.State, event string)

	events []string
}

type unknownRecorder struct{ *recorder }

func (r unknownRecorder) Unknown(s *wirestream.State, tag wirestream.Tag, raw []byte) {
	r.record(s, "unknown %v %x", tag, raw)
}

// handler returns r as a handler, implementing UnknownHandler if requested.
func (r *recorder) handler() wirestream.Handler {
	if r.unknown {
		return unknownRecorder{r}
	}
	return r
}

func (r *recorder) record(s *wirestream.State, format string, args ...any) {
	event := fmt.Sprintf(format, args...)
	r.events = append(r.events, event)
	if r.hook != nil {
		r.hook(s, event)
	}
}

func (r *recorder) Resolve(s *wirestream.State, tag wirestream.Tag) (wirestream.FieldType, any) {
	r.record(s, "resolve %v", tag)
	kind := r.schema[tag.Number]
	if kind == wirestream.NoField {
		return kind, nil
	}
	return kind, tag.Number
}

func (r *recorder) Enter(s *wirestream.State, desc any) {
	r.record(s, "enter %v @%d", desc, s.Depth())
}

func (r *recorder) Exit(s *wirestream.State) {
	r.record(s, "exit @%d", s.Depth())
}

func (r *recorder) Value(s *wirestream.State, v wirestream.Value, desc any) {
	r.record(s, "%v=%v", desc, v)
}

// filter returns the events that do not start with any of the given
// prefixes.
func filter(events []string, prefixes ...string) []string {
	var out []string
outer:
	for _, e := range events {
		for _, p := range prefixes {
			if strings.HasPrefix(e, p) {
				continue outer
			}
		}
		out = append(out, e)
	}
	return out
}
