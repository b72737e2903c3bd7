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

//go:build !debug

// Package debug includes debugging helpers.
package debug

// Enabled reports whether this build has the debug tag.
const Enabled = false

// TB is the subset of [testing.TB] that debug logs are captured into.
type TB interface {
	Helper()
	Log(...any)
}

// Log prints debugging information to stderr.
//
// Calls are compiled out unless built with -tags debug.
func Log([]any, string, string, ...any) {}

// WithTesting routes debug logs on the current goroutine into t until the
// returned function is called.
func WithTesting(TB) func() { return func() {} }

// Assert panics if cond is false, but only in debug mode.
func Assert(bool, string, ...any) {}
