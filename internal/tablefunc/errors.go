package tablefunc

import (
	"github.com/cockroachdb/errors"
)

// Error classes. Every error returned by this package, or by a Function
// through it, can be classified with errors.Is against these markers.
var (
	// ErrInvalidArgument marks malformed or out-of-range bind arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAllocation marks a failure to copy an argument into owned storage.
	ErrAllocation = errors.New("allocation failure")
	// ErrEncoding marks text that is not valid UTF-8 at formatting time.
	ErrEncoding = errors.New("encoding error")
	// ErrFormat marks a failure to construct an output value.
	ErrFormat = errors.New("format error")
	// ErrLifecycle marks a call made out of the Bind → Init → InitLocal →
	// Produce → Close order.
	ErrLifecycle = errors.New("table function lifecycle violation")
)

// Phase markers added by the runner.
var (
	// ErrBindFailed marks every error returned from Registry.Bind.
	ErrBindFailed = errors.New("table function bind failed")
	// ErrScanFailed marks every error returned after a successful bind.
	ErrScanFailed = errors.New("table function scan failed")
)

// InvalidArgumentf returns a new InvalidArgument-class error.
func InvalidArgumentf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}

// AllocationError wraps cause as an Allocation-class error.
func AllocationError(cause error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrAllocation)
}

// EncodingErrorf returns a new Encoding-class error.
func EncodingErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrEncoding)
}

// FormatError wraps cause as a Format-class error.
func FormatError(cause error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrFormat)
}

func lifecycleErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), ErrLifecycle)
}

// IsPreparationError reports whether err happened while binding, before
// any row could be produced.
func IsPreparationError(err error) bool {
	return errors.Is(err, ErrBindFailed)
}

// IsExecutionError reports whether err happened after a successful bind.
func IsExecutionError(err error) bool {
	return errors.Is(err, ErrScanFailed)
}
