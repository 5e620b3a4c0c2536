// Package errors provides the error taxonomy used across coffeestats.
//
// Every typed error carries the operation that produced it and matches a sentinel
// through errors.Is, so callers can branch on the kind of failure without
// depending on concrete types:
//
//   - DataLoadError: missing or malformed input, fatal for the whole run
//   - InsufficientDataError: not enough rows for the requested k or test
//   - DegenerateInputError: zero-variance input to a statistical test
//   - LengthMismatchError: paired sequences of different length
//   - ValueError, DimensionError, NotFittedError, ModelError, ValidationError
//
// The package is built on github.com/cockroachdb/errors, whose helpers (New, Newf,
// Wrap, Wrapf, Is, As) are re-exported so callers only import one errors package.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors.
var (
	ErrEmptyData         = errors.New("empty data")
	ErrSingularMatrix    = errors.New("singular matrix")
	ErrNotImplemented    = errors.New("not implemented")
	ErrNotFitted         = errors.New("not fitted")
	ErrDataLoad          = errors.New("data load failed")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrDegenerateInput   = errors.New("degenerate input")
	ErrLengthMismatch    = errors.New("length mismatch")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidValue      = errors.New("invalid value")
)

// Re-exported helpers from cockroachdb/errors.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// DataLoadError reports a dataset that could not be read into an observation table.
type DataLoadError struct {
	Path   string
	Column string
	Reason string
	Err    error
}

// NewDataLoadError creates a DataLoadError. column may be empty.
func NewDataLoadError(path, column, reason string, cause error) *DataLoadError {
	return &DataLoadError{Path: path, Column: column, Reason: reason, Err: cause}
}

func (e *DataLoadError) Error() string {
	msg := fmt.Sprintf("coffeestats: load %s: %s", e.Path, e.Reason)
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// InsufficientDataError reports that a computation needs more observations than it got.
type InsufficientDataError struct {
	Op       string
	What     string
	Required int
	Got      int
}

// NewInsufficientDataError creates an InsufficientDataError.
func NewInsufficientDataError(op, what string, required, got int) *InsufficientDataError {
	return &InsufficientDataError{Op: op, What: what, Required: required, Got: got}
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("coffeestats: %s: insufficient data: %s requires %d, got %d", e.Op, e.What, e.Required, e.Got)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// DegenerateInputError reports input for which a statistic is undefined.
// Callers usually keep going with a NaN result.
type DegenerateInputError struct {
	Op     string
	Reason string
}

// NewDegenerateInputError creates a DegenerateInputError.
func NewDegenerateInputError(op, reason string) *DegenerateInputError {
	return &DegenerateInputError{Op: op, Reason: reason}
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("coffeestats: %s: degenerate input: %s", e.Op, e.Reason)
}

func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }

// LengthMismatchError reports paired sequences of different length.
type LengthMismatchError struct {
	Op    string
	Left  int
	Right int
}

// NewLengthMismatchError creates a LengthMismatchError.
func NewLengthMismatchError(op string, left, right int) *LengthMismatchError {
	return &LengthMismatchError{Op: op, Left: left, Right: right}
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("coffeestats: %s: length mismatch: %d != %d", e.Op, e.Left, e.Right)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// DimensionError reports a matrix whose shape does not match what an operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 = rows, 1 = columns
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("coffeestats: %s: dimension mismatch on %s: expected %d, got %d", e.Op, axis, e.Expected, e.Got)
}

func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }

// NotFittedError is returned when a model is used before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("coffeestats: %s: this instance is not fitted yet, call Fit before %s", e.ModelName, e.Method)
}

func (e *NotFittedError) Is(target error) bool { return target == ErrNotFitted }

// ValueError reports an invalid argument.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("coffeestats: %s: %s", e.Op, e.Message)
}

func (e *ValueError) Is(target error) bool { return target == ErrInvalidValue }

// ModelError wraps a failure inside a model with the operation and a short kind.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

// NewModelError creates a ModelError.
func NewModelError(op, kind string, err error) *ModelError {
	return &ModelError{Op: op, Kind: kind, Err: err}
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("coffeestats: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// ValidationError reports a parameter that failed validation.
type ValidationError struct {
	Param  string
	Reason string
	Value  interface{}
}

// NewValidationError creates a ValidationError.
func NewValidationError(param, reason string, value interface{}) *ValidationError {
	return &ValidationError{Param: param, Reason: reason, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("coffeestats: invalid %s (%v): %s", e.Param, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidValue }

// Recover converts a panic raised inside op (typically from gonum on bad shapes)
// into an error stored in *err. Use it as `defer errors.Recover(&err, "Op")`.
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = errors.Wrapf(e, "%s: recovered from panic", op)
			return
		}
		*err = errors.Newf("%s: recovered from panic: %v", op, r)
	}
}
