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

//go:build debug

// Package debug includes debugging helpers.
package debug

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled reports whether this build has the debug tag.
const Enabled = true

var (
	debugPattern *regexp.Regexp
	nocapture    = flag.Bool("wirestream.nocapture", false, "disables capturing debug logs as test logs")

	tls = routine.NewThreadLocal[TB]()
)

// TB is the subset of [testing.TB] that debug logs are captured into.
type TB interface {
	Helper()
	Log(...any)
}

func init() {
	flag.Func("wirestream.filter", "regexp to filter debug logs by", func(s string) (err error) {
		debugPattern, err = regexp.Compile(s)
		return err
	})
}

// Log prints a line prefixed with the caller's package, file, line, and
// goroutine. context, if non-empty, is a format string and its args, printed
// inside the prefix.
//
// Output goes to the test registered with [WithTesting], if any, and to
// stderr otherwise.
func Log(context []any, operation string, format string, args ...any) {
	// Attribute the line to the caller of any log wrapper.
	var (
		pc   uintptr
		file string
		line int
	)
	for skip := 1; ; skip++ {
		pc, file, line, _ = runtime.Caller(skip)
		name := runtime.FuncForPC(pc).Name()
		if name[strings.LastIndex(name, ".")+1:] != "log" {
			break
		}
	}

	pkg := runtime.FuncForPC(pc).Name()
	pkg = strings.TrimPrefix(pkg, "buf.build/go/")
	pkg = strings.TrimPrefix(pkg, "wirestream/internal/")
	pkg = pkg[:strings.Index(pkg, ".")]

	file = filepath.Base(file)

	buf := new(strings.Builder)

	_, _ = fmt.Fprintf(buf, "%s/%s:%d [g%04d", pkg, file, line, routine.Goid())
	if len(context) >= 1 {
		_, _ = fmt.Fprintf(buf, ", "+context[0].(string), context[1:]...)
	}
	_, _ = fmt.Fprintf(buf, "] %s: ", operation)
	_, _ = fmt.Fprintf(buf, format, args...)

	if debugPattern != nil && !debugPattern.MatchString(buf.String()) {
		return
	}

	t := tls.Get()
	if !*nocapture && t != nil {
		t.Log(buf.String())
		return
	}

	_, _ = buf.Write([]byte{'\n'})
	_, _ = os.Stderr.WriteString(buf.String())
	_ = os.Stderr.Sync()
}

// WithTesting routes debug logs on the current goroutine into t until the
// returned function is called.
//
//	defer debug.WithTesting(t)()
func WithTesting(t TB) func() {
	t.Helper()
	prev := tls.Get()
	tls.Set(t)
	return func() { tls.Set(prev) }
}

// Assert panics if cond is false, but only in debug mode.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("wirestream: internal assertion failed: "+format, args...))
	}
}
