package flake

import (
	"fmt"

	"github.com/mewkiz/pkg/errutil"
)

// Kind classifies an encoder error, per the error taxonomy this encoder
// surfaces: bad parameters, ordering violations (encoding after the stream
// already ended) and unrecoverable bitstream overflows.
type Kind uint8

// Error kinds.
const (
	KindValidation Kind = iota
	KindOrdering
	KindOverflow
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindOrdering:
		return "ordering"
	case KindOverflow:
		return "overflow"
	case KindUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// Error is the error type returned by the stream driver's public API.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("flake: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newValidationError(format string, a ...interface{}) error {
	return &Error{Kind: KindValidation, Err: errutil.Newf(format, a...)}
}

func newOrderingError(format string, a ...interface{}) error {
	return &Error{Kind: KindOrdering, Err: errutil.Newf(format, a...)}
}

func newOverflowError(format string, a ...interface{}) error {
	return &Error{Kind: KindOverflow, Err: errutil.Newf(format, a...)}
}
