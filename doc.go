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

// Package wirestream is a streaming, callback-driven decoder for the
// Protobuf wire format.
//
// The decoder carries no schema and builds no messages. A [State] walks the
// bytes of a stream, possibly delivered in many chunks, and asks a
// [Handler] how to interpret each field it finds. Sub-messages and groups
// are tracked on an explicit stack of frames rather than by recursion, so
// the depth of a message never grows the Go stack.
//
//	s := wirestream.NewState(h)
//	for chunk := range chunks {
//		n, err := s.Parse(append(carry, chunk...))
//		...
//		carry = ... // The unconsumed tail.
//	}
//	err := s.Finish()
//
// Strings and bytes are handed to the handler as slices of the caller's
// buffer, without copying. Package dynamic
// provides a handler that resolves fields using protobuf-go reflection and
// builds dynamicpb messages.
//
// # Slack
//
// [State.ParseSlack] accepts a [Slack], which guarantees that a few bytes
// past the end of the chunk may be read. This allows varints to be decoded
// with a single bounds check. [State.Parse] checks every read and accepts
// any slice.
//
// # Wire type checking
//
// A field whose wire type cannot carry its field type, such as a message
// encoded as a varint, fails with [ErrorWireTypeMismatch]. Scalars encoded
// with the wrong scalar wire type are converted on a best-effort basis
// unless [WithStrictWireTypes] is set.
package wirestream
