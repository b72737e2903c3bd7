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

import "buf.build/go/wirestream/internal/sync2"

// maxPooledDepth is the deepest frame stack a pooled State may retain.
const maxPooledDepth = 256

var states = sync2.Pool[State]{
	Reset: func(s *State) bool {
		s.handler = nil
		s.unknown = nil
		s.packed = packed{}
		s.pending = pending{}
		return cap(s.frames) <= maxPooledDepth
	},
}

// Decode parses a complete message held in data, reporting its fields to h.
//
// The root frame is bounded to len(data). If data already has
// [SlackBytes] of spare capacity, the unchecked decoders are used.
func Decode(data []byte, h Handler, opts ...Option) error {
	s, drop := states.Get()
	defer drop()

	opts = append(opts[:len(opts):len(opts)], WithLimit(uint64(len(data))))
	s.init(h, opts)

	var err error
	if cap(data)-len(data) >= SlackBytes {
		_, err = s.ParseSlack(Slack{data})
	} else {
		_, err = s.Parse(data)
	}
	if err != nil {
		return err
	}
	return s.Finish()
}
