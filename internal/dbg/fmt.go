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

// Package dbg contains helpers for writing fmt.Formatter implementations
// for debug output.
package dbg

import "fmt"

// Formatter is a [fmt.Formatter] that calls a function. Only the %v and %s
// verbs are supported.
type Formatter func(s fmt.State)

func (f Formatter) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		f(s)
	default:
		fmt.Fprintf(s, "%%!%c(dbg.Formatter)", verb)
	}
}

func (f Formatter) String() string { return fmt.Sprint(f) }

// Fprintf is like [fmt.Sprintf], but the printing is delayed until the
// returned value is formatted.
func Fprintf(format string, args ...any) Formatter {
	return Formatter(func(s fmt.State) { fmt.Fprintf(s, format, args...) })
}

// Dict prints key-value pairs in braces, after an optional prefix. Pairs
// with a nil value are omitted.
//
// Panics if kv has odd length.
func Dict(prefix any, kv ...any) Formatter {
	if len(kv)%2 != 0 {
		panic("dbg: odd number of arguments to Dict")
	}

	return Formatter(func(s fmt.State) {
		if prefix != nil {
			fmt.Fprint(s, prefix)
		}
		fmt.Fprint(s, "{")
		sep := ""
		for i := 0; i < len(kv); i += 2 {
			if kv[i+1] == nil {
				continue
			}
			fmt.Fprintf(s, "%s%v: %v", sep, kv[i], kv[i+1])
			sep = ", "
		}
		fmt.Fprint(s, "}")
	})
}
