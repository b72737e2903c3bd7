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

// Package testdata contains the test corpus: a schema, and a collection of
// YAML test cases with specimens that are decoded against it.
package testdata

import (
	"bytes"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"gopkg.in/yaml.v3"

	"buf.build/go/wirestream"
	"buf.build/go/wirestream/dynamic"
	"buf.build/go/wirestream/internal/debug"
)

//go:embed *.yaml */*.yaml schema.textproto
var testdata embed.FS

// Registry is the loaded test schema.
type Registry struct {
	Files *protoregistry.Files
	Types *protoregistry.Types
}

var loadSchema = sync.OnceValues(func() (*Registry, error) {
	text, err := fs.ReadFile(testdata, "schema.textproto")
	if err != nil {
		return nil, err
	}

	fdp := new(descriptorpb.FileDescriptorProto)
	if err := prototext.Unmarshal(text, fdp); err != nil {
		return nil, fmt.Errorf("schema.textproto: %w", err)
	}
	fd, err := protodesc.NewFile(fdp, new(protoregistry.Files))
	if err != nil {
		return nil, fmt.Errorf("schema.textproto: %w", err)
	}

	reg := &Registry{Files: new(protoregistry.Files)}
	if err := reg.Files.RegisterFile(fd); err != nil {
		return nil, err
	}

	reg.Types = dynamic.ExtensionsFromFiles(reg.Files)
	msgs := fd.Messages()
	for i := range msgs.Len() {
		if err := reg.Types.RegisterMessage(dynamicpb.NewMessageType(msgs.Get(i))); err != nil {
			return nil, err
		}
	}
	return reg, nil
})

// Schema returns the test schema.
func Schema(t testing.TB) *Registry {
	t.Helper()
	reg, err := loadSchema()
	require.NoError(t, err)
	return reg
}

// Message looks up a message in the test schema by name, relative to the
// schema's package.
func Message(t testing.TB, name string) protoreflect.MessageDescriptor {
	t.Helper()
	d, err := Schema(t).Files.FindDescriptorByName(protoreflect.FullName("wirestream.test." + name))
	require.NoError(t, err)
	md, ok := d.(protoreflect.MessageDescriptor)
	require.True(t, ok, "%s is not a message", name)
	return md
}

// Harness is a generalization of [testing.TB] that also includes the
// [testing.T.Run] method. It must be generic because the signature of this
// function varies across [testing.T] and [testing.B].
type Harness[T any] interface {
	testing.TB
	Run(string, func(T)) bool
}

// TestCase is a test case from the test data corpus.
type TestCase struct {
	Name string `yaml:"-"`

	TypeName string                           `yaml:"type"`
	Type     protoreflect.MessageDescriptor `yaml:"-"`

	// If set, run this test as a benchmark.
	Benchmark bool `yaml:"benchmark"`

	// If set, every specimen must fail to parse with this error.
	Error string               `yaml:"error"`
	Code  wirestream.ErrorCode `yaml:"-"`

	// Three ways to encode the test: hex, textproto, and protoscope
	Hex        []string `yaml:"hex"`
	TextProto  []string `yaml:"textproto"`
	Protoscope []string `yaml:"protoscope"`

	Specimens [][]byte `yaml:"-"`
}

// codes maps the names used in the error key to error codes.
var codes = map[string]wirestream.ErrorCode{
	"truncated":           wirestream.ErrorTruncated,
	"unterminated_varint": wirestream.ErrorUnterminatedVarint,
	"overflow":            wirestream.ErrorOverflow,
	"reserved":            wirestream.ErrorReserved,
	"spurious_end_group":  wirestream.ErrorSpuriousEndGroup,
	"stack_overflow":      wirestream.ErrorStackOverflow,
	"unterminated_group":  wirestream.ErrorUnterminatedGroup,
}

// RunAll runs all of the test cases against the given harness.
func RunAll[T Harness[T]](t T, f func(T, *TestCase)) {
	t.Helper()

	err := fs.WalkDir(testdata, ".", func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err, "loading test %q", path)

		if d.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		t.Run(strings.TrimSuffix(path, ".yaml"), func(t T) {
			if t, ok := any(t).(*testing.T); ok {
				t.Parallel()
			}

			data, err := fs.ReadFile(testdata, path)
			require.NoError(t, err, "loading test %q", path)

			test := parseTestCase(t, path, data)
			if test != nil {
				f(t, test)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

// Run executes a single test case.
//
// Each specimen is decoded whole on both the checked and the slack path,
// and again split into two chunks at every possible point. The results are
// compared against proto.Unmarshal.
func (test *TestCase) Run(t *testing.T, verbose bool) {
	t.Helper()

	reg := Schema(t)
	run := func(t *testing.T, specimen []byte) {
		t.Helper()
		defer debug.WithTesting(t)()

		want := dynamicpb.NewMessage(test.Type)
		wantErr := proto.UnmarshalOptions{Resolver: reg.Types}.Unmarshal(specimen, want)

		check := func(t *testing.T, got proto.Message, err error) {
			t.Helper()
			if verbose {
				t.Logf("theirs: %v, ours: %v", wantErr, err)
			}

			if test.Code != wirestream.ErrorOk {
				require.Error(t, err)
				require.Equal(t, test.Code, wirestream.CodeOf(err), "%v", err)
				return
			}
			if wantErr != nil {
				require.Error(t, err, "protobuf-go error: %v", wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
				t.Fatalf("mismatch (-theirs +ours):\n%s", diff)
			}
		}

		// Exactly enough capacity, so the checked path is used.
		exact := append(make([]byte, 0, len(specimen)), specimen...)
		got := dynamicpb.NewMessage(test.Type)
		err := dynamic.Unmarshal(exact, got, dynamic.WithExtensions(reg.Types))
		check(t, got, err)

		slack := wirestream.NewSlack(specimen).Bytes()
		got = dynamicpb.NewMessage(test.Type)
		err = dynamic.Unmarshal(slack, got, dynamic.WithExtensions(reg.Types))
		check(t, got, err)

		for i := range len(specimen) + 1 {
			got := dynamicpb.NewMessage(test.Type)
			b := dynamic.New(got, dynamic.WithExtensions(reg.Types))
			s := wirestream.NewState(b)
			err := Feed(s, specimen, i)
			if err == nil {
				err = b.Err()
			}

			if test.Code != wirestream.ErrorOk || wantErr != nil {
				// The exact error may depend on whether the end of the
				// stream was known up front.
				require.Error(t, err, "split at %d", i)
				continue
			}
			require.NoError(t, err, "split at %d", i)
			if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
				t.Fatalf("mismatch when split at %d (-theirs +ours):\n%s", i, diff)
			}
		}
	}

	if len(test.Specimens) == 1 {
		run(t, test.Specimens[0])
		return
	}

	for i, specimen := range test.Specimens {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			t.Parallel()
			run(t, specimen)
		})
	}
}

// Feed parses data with s in several chunks, split at the given offsets,
// carrying over whatever each call leaves unconsumed. Then it calls
// [wirestream.State.Finish].
func Feed(s *wirestream.State, data []byte, splits ...int) error {
	var carry []byte
	pos := 0
	for _, end := range append(splits, len(data)) {
		if end < pos {
			continue
		}

		// A fresh buffer each time, so that nothing can observe the
		// previous chunk being reused.
		chunk := append(append([]byte(nil), carry...), data[pos:end]...)
		n, err := s.Parse(chunk)
		if err != nil {
			return err
		}
		carry = chunk[n:]
		pos = end
	}

	if len(carry) > 0 && s.Done() {
		return fmt.Errorf("%d trailing bytes after end of stream", len(carry))
	}
	return s.Finish()
}

// parseTestCase parses a single test case from the given data.
//
// This will call t.FailNow() if testing fails.
func parseTestCase(t testing.TB, path string, file []byte) *TestCase {
	t.Helper()
	defer debug.WithTesting(t)()

	require.True(t, bytes.HasSuffix(file, []byte("\n")), "missing trailing newline in %q", path)

	test := new(TestCase)
	dec := yaml.NewDecoder(bytes.NewReader(file))
	dec.KnownFields(true)
	err := dec.Decode(&test)
	require.NoError(t, err, "loading test %q", path)

	_, isBench := t.(*testing.B)
	if isBench && !test.Benchmark {
		t.SkipNow()
	}

	test.Name = strings.TrimSuffix(path, ".yaml")
	test.Type = Message(t, test.TypeName)

	if test.Error != "" {
		code, ok := codes[test.Error]
		require.True(t, ok, "unknown error %q in %q", test.Error, path)
		test.Code = code
	}

	for _, raw := range test.Hex {
		r := strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "")
		b, err := hex.DecodeString(r.Replace(raw))
		require.NoError(t, err, "loading test %q", path)

		test.Specimens = append(test.Specimens, b)
	}

	for _, raw := range test.TextProto {
		m := dynamicpb.NewMessage(test.Type)
		err = prototext.UnmarshalOptions{Resolver: Schema(t).Types}.Unmarshal([]byte(raw), m)
		require.NoError(t, err, "loading test %q", path)

		b, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
		require.NoError(t, err, "loading test %q", path)

		test.Specimens = append(test.Specimens, b)
	}

	for _, raw := range test.Protoscope {
		s := protoscope.NewScanner(raw)
		b, err := s.Exec()
		require.NoError(t, err, "loading test %q", path)

		test.Specimens = append(test.Specimens, b)
	}

	require.NotEmpty(t, test.Specimens, "no specimens in %q", path)
	return test
}
