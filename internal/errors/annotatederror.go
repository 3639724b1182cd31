// Package errors wraps the standard library errors with slog-friendly
// annotations and source locations so that failures can be logged with
// structured context at the outermost caller.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError carries a message, optional slog annotations, and the source
// location where the error was wrapped.
type annotatedError struct {
	msg    string
	cause  error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// New is a drop-in replacement for [errors.New].
func New(msg string) error {
	return errors.New(msg)
}

// NewSentinel creates a sentinel error meant for comparison with [Is].
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with a message and optional slog attributes. The source
// location of the Wrap call is recorded for [SlogError].
//
// Wrapping a nil error yields an error with only the message so that careless
// call sites stay loggable instead of panicking.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:    msg,
		cause:  err,
		attrs:  attrs,
		source: callerLocation(2), //nolint:mnd // skip runtime.Callers and Wrap.
	}
}

// Is reports whether any error in err's tree matches target. See [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target. See [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target) //nolint:errorlint // direct delegation.
}

// Unwrap returns the result of calling the Unwrap method on err. See [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join wraps [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// DecoratePanic converts a recovered panic value into an error carrying the
// stack trace of the panicking goroutine.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	stackBuf := make([]byte, 8192) //nolint:mnd // enough for a useful trace.
	n := runtime.Stack(stackBuf, false)
	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", recovered),
		cause:  nil,
		attrs:  []slog.Attr{slog.String("stack", string(stackBuf[:n]))},
		source: callerLocation(2), //nolint:mnd // skip runtime.Callers and DecoratePanic.
	}
}

// SlogError renders err as a structured attribute group with the error
// message, the source location of the innermost Wrap call, and all
// annotations collected along the error chain.
//
// It tolerates nil errors and arbitrary error trees produced by [Join].
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []any
		source      string
	)
	collectAnnotations(err, &annotations, &source)

	args := []any{slog.String("message", err.Error())}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	if len(annotations) > 0 {
		args = append(args, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", args...)
}

// collectAnnotations walks the error tree gathering annotations. The source
// of the deepest annotated error wins since it is closest to the root cause.
func collectAnnotations(err error, annotations *[]any, source *string) {
	if err == nil {
		return
	}

	var annotated *annotatedError
	if errors.As(err, &annotated) {
		for _, attr := range annotated.attrs {
			*annotations = append(*annotations, attr)
		}
		*source = annotated.source
		collectAnnotations(annotated.cause, annotations, source)
		return
	}

	// Join errors expose Unwrap() []error.
	if joined, ok := err.(interface{ Unwrap() []error }); ok { //nolint:errorlint // inspecting this node only.
		for _, e := range joined.Unwrap() {
			collectAnnotations(e, annotations, source)
		}
		return
	}

	collectAnnotations(errors.Unwrap(err), annotations, source)
}

// callerLocation returns "file.go:line" for the caller skip frames up.
func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}
