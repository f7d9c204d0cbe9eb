// Package errs defines the error classes raised by the expression engine.
//
// Every error returned by the engine wraps exactly one class sentinel, so
// callers can tell a malformed statement from an unsupported feature or an
// internal inconsistency with errors.Is:
//
//	if errors.Is(err, errs.ErrType) { ... }
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrType reports an operator or context applied to the wrong kind of
	// input, e.g. a computed expression used as a column selector.
	ErrType = errors.New("type error")

	// ErrValue reports a bad value in an otherwise well-typed statement.
	ErrValue = errors.New("value error")

	// ErrNotImplemented reports a reserved opcode that has no evaluator.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInternal reports a broken contract between the tree builder and
	// the engine. It always indicates a bug upstream, never bad user input.
	ErrInternal = errors.New("internal error")
)

// Error is an engine error annotated with its class and the operation that
// raised it.
type Error struct {
	Class error
	Op    string
	Msg   string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Class, e.Msg)
	}
	return fmt.Sprintf("%v in %s: %s", e.Class, e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Class }

func newf(class error, op, format string, args ...any) error {
	return &Error{Class: class, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Type returns an ErrType error raised by op.
func Type(op, format string, args ...any) error {
	return newf(ErrType, op, format, args...)
}

// Value returns an ErrValue error raised by op.
func Value(op, format string, args ...any) error {
	return newf(ErrValue, op, format, args...)
}

// NotImplemented returns an ErrNotImplemented error raised by op.
func NotImplemented(op, format string, args ...any) error {
	return newf(ErrNotImplemented, op, format, args...)
}

// Internal returns an ErrInternal error raised by op.
func Internal(op, format string, args ...any) error {
	return newf(ErrInternal, op, format, args...)
}

// Internalw returns an ErrInternal error that also wraps cause.
func Internalw(op string, cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %w", newf(ErrInternal, op, format, args...), cause)
}
