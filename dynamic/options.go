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

package dynamic

import "buf.build/go/wirestream"

// Option is a configuration setting for [New] and [Unmarshal].
type Option struct{ apply func(*options) }

type options struct {
	extensions     ExtensionResolver
	discardUnknown bool
	validate       bool
	parse          []wirestream.Option
}

// WithExtensions sets the registry used to find extensions. The default is
// [protoregistry.GlobalTypes].
func WithExtensions(resolver ExtensionResolver) Option {
	return Option{func(o *options) { o.extensions = resolver }}
}

// WithDiscardUnknown sets whether unknown fields are dropped instead of
// being stored on the message. Analogous to [proto.UnmarshalOptions].
func WithDiscardUnknown(discard bool) Option {
	return Option{func(o *options) { o.discardUnknown = discard }}
}

// WithParseOptions passes options through to the underlying
// [wirestream.State].
func WithParseOptions(opts ...wirestream.Option) Option {
	return Option{func(o *options) { o.parse = append(o.parse, opts...) }}
}

// WithValidation sets whether [Unmarshal] checks the decoded message against
// its protovalidate rules. Validation only runs if parsing succeeds.
func WithValidation(validate bool) Option {
	return Option{func(o *options) { o.validate = validate }}
}
