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

import "fmt"

// SlackBytes is the number of readable bytes a [Slack] guarantees past its
// end. The parser never looks further ahead than a ten-byte varint.
const SlackBytes = 9

// Slack is a byte slice that is known to have [SlackBytes] of capacity
// past its length.
//
// This allows [State.ParseSlack] to decode varints and fixed-width values
// with a single bounds check, and then compare against the logical end
// afterwards, instead of checking every byte.
type Slack struct {
	b []byte
}

// NewSlack wraps b as a [Slack].
//
// If b already has enough spare capacity it is used as-is; otherwise it is
// copied into a new slice that does. The contents of the spare capacity are
// never interpreted.
func NewSlack(b []byte) Slack {
	if cap(b)-len(b) >= SlackBytes {
		return Slack{b}
	}

	// Copy to a new slice with just enough capacity.
	return Slack{append(make([]byte, 0, len(b)+SlackBytes), b...)}
}

// MakeSlack allocates a zeroed [Slack] of length n, suitable for reading
// into with [Slack.Bytes].
func MakeSlack(n int) Slack {
	return Slack{make([]byte, n, n+SlackBytes)}
}

// Bytes returns the wrapped slice.
func (s Slack) Bytes() []byte { return s.b }

// Len returns the length of the wrapped slice.
func (s Slack) Len() int { return len(s.b) }

// Slice returns s[i:j]. Slicing can only shrink the end, so the guarantee
// is preserved.
func (s Slack) Slice(i, j int) Slack {
	if j > len(s.b) {
		panic(fmt.Sprintf("wirestream: slack slice bounds out of range [:%d] with length %d", j, len(s.b)))
	}
	return Slack{s.b[i:j:cap(s.b)]}
}

// padded returns the slice extended over its slack.
func (s Slack) padded() []byte {
	return s.b[:len(s.b)+SlackBytes]
}
