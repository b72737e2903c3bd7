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

import (
	"errors"
	"fmt"
	"io"
)

const (
	ErrorOk ErrorCode = iota
	// The first few match the errors in protowire.
	ErrorTruncated
	ErrorUnterminatedVarint
	ErrorOverflow
	ErrorReserved
	ErrorSpuriousEndGroup
	ErrorStackOverflow

	ErrorUnterminatedGroup
	ErrorWireTypeMismatch
)

var errs = [...]error{
	ErrorOk:                 nil,
	ErrorTruncated:          io.ErrUnexpectedEOF,
	ErrorUnterminatedVarint: errors.New("unterminated variable length integer"),
	ErrorOverflow:           errors.New("length overflows stream offset"),
	ErrorReserved:           errors.New("cannot parse reserved wire type"),
	ErrorSpuriousEndGroup:   errors.New("mismatching end group marker"),
	ErrorStackOverflow:      errors.New("recursion depth exceeded"),
	ErrorUnterminatedGroup:  errors.New("group not terminated before end of message"),
	ErrorWireTypeMismatch:   errors.New("wire type does not match field type"),
}

// ErrorCode is one of the possible types of errors in [ParseError].
type ErrorCode int

// String implements [fmt.Stringer].
func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(errs) {
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
	if c == ErrorOk {
		return "ok"
	}
	return errs[c].Error()
}

// ParseError is an error returned by [State.Parse] and friends.
//
// A State that has returned a ParseError is dead: every later call returns
// the same error.
type ParseError struct {
	code   ErrorCode
	offset uint64
}

// Code returns the kind of error this is.
func (e *ParseError) Code() ErrorCode {
	return e.code
}

// Offset returns the absolute stream offset of the field that failed to
// parse.
func (e *ParseError) Offset() uint64 {
	return e.offset
}

// Unwrap implements error unwrapping viz [errors.Unwrap].
func (e *ParseError) Unwrap() error {
	return errs[e.code]
}

// Error implements [error].
func (e *ParseError) Error() string {
	return fmt.Sprintf("wirestream: parse error at offset %d/%#x: %v", e.offset, e.offset, e.Unwrap())
}

// CodeOf returns the [ErrorCode] carried by err, or [ErrorOk] if err is not
// a [ParseError].
func CodeOf(err error) ErrorCode {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.code
	}
	return ErrorOk
}
