// Copyright 2022 genmzy. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsadapter

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// ErrorKind tells transport failures apart from framing failures.
type ErrorKind int

const (
	// ConnectionError: cannot connect, connection reset, stream closed.
	ConnectionError ErrorKind = iota + 1
	// ProtocolFramingError: malformed headers, bad Content-Length, body short read.
	ProtocolFramingError
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionError:
		return "connection"
	case ProtocolFramingError:
		return "framing"
	}
	return "unknown"
}

// connection write/read may need a way to judge network error type
// here is the solution to:
//  1. keep original error
//  2. keep the operation chain that led to it
//
// if you want the original error, use errors.Is/errors.As
type Error struct {
	Kind     ErrorKind
	Original error
	Stack    string
}

func (e *Error) Error() string {
	buf := bytes.Buffer{}
	buf.WriteString(e.Stack)
	buf.WriteString(": ")
	buf.WriteString(e.Kind.String())
	buf.WriteString(" error: ")
	if e.Original != nil {
		buf.WriteString(e.Original.Error())
	}
	return buf.String()
}

func (e *Error) Unwrap() error {
	return e.Original
}

// WithStack prepends an operation name to the error stack.
func (e *Error) WithStack(more string) *Error {
	if e.Stack == "" {
		e.Stack = more
	} else {
		e.Stack = more + ": " + e.Stack
	}
	return e
}

func connErr(stack string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e.WithStack(stack)
	}
	return &Error{Kind: ConnectionError, Original: err, Stack: stack}
}

func framingErr(stack string, err error) *Error {
	return &Error{Kind: ProtocolFramingError, Original: err, Stack: stack}
}

// IsConnectionError reports whether err is (or wraps) a ConnectionError.
func IsConnectionError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ConnectionError
}

// IsFramingError reports whether err is (or wraps) a ProtocolFramingError.
func IsFramingError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ProtocolFramingError
}

// return value: { is_connection_error, is_connection_error_by_accident }
// never { false, true }
func connLost(err error, mode byte) (bool, bool) {
	switch mode {
	case 'r': // read
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return true, true
		}
		if errors.Is(err, io.EOF) {
			return true, true
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return true, true
		}
		if errors.Is(err, syscall.ECONNRESET) {
			return true, true
		}
		if errors.Is(err, net.ErrClosed) {
			return true, false
		}
		if errors.Is(err, io.ErrClosedPipe) {
			return true, false
		}
	case 'w': // write
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return true, true
		}
		if errors.Is(err, syscall.EPIPE) {
			return true, true
		}
		if errors.Is(err, syscall.ECONNRESET) {
			return true, true
		}
		if errors.Is(err, net.ErrClosed) {
			return true, false
		}
		if errors.Is(err, io.ErrClosedPipe) {
			return true, false
		}
	}
	return false, false
}
