package inference

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a detection failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from this package.
	KindUnknown Kind = iota
	// KindValidation is a malformed request, such as a nil or zero-size image.
	KindValidation
	// KindInferenceFailed is a failure of the engine or a malformed pixel buffer.
	KindInferenceFailed
	// KindBusy is returned when a call overlaps an in-flight call under the
	// reject policy.
	KindBusy
	// KindClosed is returned for calls made after Close.
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInferenceFailed:
		return "inference failed"
	case KindBusy:
		return "busy"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is. Any *Error of the same Kind matches.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrInferenceFailed = &Error{Kind: KindInferenceFailed}
	ErrBusy            = &Error{Kind: KindBusy}
	ErrClosed          = &Error{Kind: KindClosed}
)

// Error is the error type returned by adapters and the detector.
type Error struct {
	Kind Kind
	// Reason is a short human readable description.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewValidationError returns a KindValidation error.
func NewValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// NewInferenceError wraps cause as a KindInferenceFailed error. The stack of
// the call site is attached to the cause.
func NewInferenceError(reason string, cause error) error {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &Error{Kind: KindInferenceFailed, Reason: reason, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
