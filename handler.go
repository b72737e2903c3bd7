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

// Handler receives the events produced by a [State].
//
// The parser carries no schema of its own: every tag is passed to Resolve,
// which decides how the field's bytes are interpreted. The desc value
// returned by Resolve is opaque to the parser and is handed back to Enter
// or Value for that field.
//
// During Resolve, [State.Offset] is the offset of the field's tag. The other
// callbacks run after the parser has advanced past the bytes they describe,
// so [State.Offset] reports the position following the field, or following
// the field's header for Enter. Callbacks may call [State.Stop].
type Handler interface {
	// Resolve returns the type of a field, or [NoField] to skip it.
	//
	// Resolve is called exactly once per field, even if the field's payload
	// spans several calls to [State.Parse]. It is not called for END_GROUP
	// tags or for the elements of a packed field.
	Resolve(s *State, tag Tag) (FieldType, any)

	// Enter is called when a message or group field opens a new frame.
	Enter(s *State, desc any)

	// Exit is called when the innermost frame closes, including for the
	// root frame once the stream is done.
	Exit(s *State)

	// Value is called once per scalar, string or bytes value, including
	// once per element of a packed field.
	Value(s *State, v Value, desc any)
}

// UnknownHandler may optionally be implemented by a [Handler] to observe
// the fields that Resolve asked to skip.
//
// raw is the entire field, tag included, and aliases the parser's input.
type UnknownHandler interface {
	Unknown(s *State, tag Tag, raw []byte)
}
