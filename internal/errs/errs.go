package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Kind classifies an error for callers that translate failures (HTTP status, exit codes).
type Kind string

const (
	KindUnknown    Kind = ""
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
)

// Wrap adds context and preserves the error chain (errors.Is/As works).
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context and preserves the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	args = append(args, err)
	return fmt.Errorf(format+": %w", args...)
}

// WithKind tags err with a kind. The outermost kind in a chain wins in KindOf.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	return &KindError{err: err, kind: kind}
}

// KindOf reports the first kind found in the chain, or KindUnknown.
func KindOf(err error) Kind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}

// IsKind reports whether KindOf(err) is kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// WrapStore wraps err with msg and tags it KindStore unless the chain is already classified.
func WrapStore(err error, msg string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return Wrap(err, msg)
	}
	return WithKind(Wrap(err, msg), KindStore)
}

type KindError struct {
	err  error
	kind Kind
}

func (e *KindError) Error() string { return e.err.Error() }
func (e *KindError) Unwrap() error { return e.err }
func (e *KindError) Kind() Kind    { return e.kind }

// WithStack captures a stack trace once (recommended: only at the root cause boundary).
func WithStack(err error) error {
	if err == nil {
		return nil
	}

	var se *StackError
	if errors.As(err, &se) {
		return err
	}

	return &StackError{
		err:   err,
		stack: debug.Stack(),
	}
}

// StackError wraps an error and stores a stack trace.
type StackError struct {
	err   error
	stack []byte
}

func (e *StackError) Error() string { return e.err.Error() }
func (e *StackError) Unwrap() error { return e.err }
func (e *StackError) Stack() []byte { return e.stack }

// Loggable makes slog encode the error as structured fields.
// Usage: slog.Any("err", errs.Loggable(err))
type loggable struct{ err error }

func Loggable(err error) slog.LogValuer { return loggable{err: err} }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{
		slog.String("message", l.err.Error()),
		slog.Any("chain", ErrorChainStrings(l.err)),
	}
	if kind := KindOf(l.err); kind != KindUnknown {
		attrs = append(attrs, slog.String("kind", string(kind)))
	}

	var se *StackError
	if errors.As(l.err, &se) {
		attrs = append(attrs, slog.String("stack", string(se.Stack())))
	}

	return slog.GroupValue(attrs...)
}

// ErrorChainStrings returns the unwrap chain as strings (outer -> inner).
// Joined errors (multiple %w) are followed through their first branch only.
func ErrorChainStrings(err error) []string {
	if err == nil {
		return nil
	}

	out := make([]string, 0, 8)
	for e := err; e != nil; e = unwrapFirst(e) {
		out = append(out, e.Error())
	}
	return out
}

func unwrapFirst(err error) error {
	if next := errors.Unwrap(err); next != nil {
		return next
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		if list := multi.Unwrap(); len(list) > 0 {
			return list[0]
		}
	}
	return nil
}
