package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass represents the classification of infrastructure errors.
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Build-time error kinds. Every failed directive compilation wraps exactly
// one of these so pipeline-construction callers can report which directive
// in a configuration failed and why.
var (
	// ErrMalformedDirective indicates a directive string whose operator name
	// token is missing, empty, or lacks the '+' prefix.
	ErrMalformedDirective = errors.New("malformed directive")
	// ErrInvalidArity indicates a directive with the wrong number of arguments
	// for its operator.
	ErrInvalidArity = errors.New("invalid number of parameters")
	// ErrRegexCompile indicates a regular-expression pattern that failed to
	// compile.
	ErrRegexCompile = errors.New("regex compilation failed")
	// ErrInvalidIntegerLiteral indicates a literal operand that could not be
	// parsed as an integer.
	ErrInvalidIntegerLiteral = errors.New("invalid integer literal")
	// ErrInvalidNetworkSpec indicates an IPv4 address, mask, or prefix length
	// that could not be parsed, or an empty required network argument.
	ErrInvalidNetworkSpec = errors.New("invalid network specification")
	// ErrInvalidFieldPath indicates an empty or structurally invalid field path.
	ErrInvalidFieldPath = errors.New("invalid field path")
)

// Standard error variables for common infrastructure conditions
var (
	// Component lifecycle errors
	ErrAlreadyStarted = errors.New("component already started")
	ErrNotStarted     = errors.New("component not started")

	// Connection and networking errors
	ErrNoConnection       = errors.New("no connection available")
	ErrConnectionLost     = errors.New("connection lost")
	ErrSubscriptionFailed = errors.New("subscription failed")

	// Data processing errors
	ErrInvalidData   = errors.New("invalid data format")
	ErrParsingFailed = errors.New("parsing failed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// BuildError is the fatal, non-retryable result of compiling a directive.
// It carries the offending field path and raw directive text so a
// configuration-level caller can point at the exact source of the failure.
type BuildError struct {
	Kind      error  // one of the build-time sentinel kinds above
	Field     string // condition field path as written in the configuration
	Directive string // raw directive text, e.g. "+r_match/(\\w{"
	Detail    string // human-readable detail, e.g. the expected arity
	Cause     error  // underlying error (regex compiler diagnostic, parse error)
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("build %q: %v", e.Directive, e.Kind)
	if e.Field != "" {
		msg = fmt.Sprintf("build {%s: %s}: %v", e.Field, e.Directive, e.Kind)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel kind and the underlying cause to
// errors.Is/errors.As.
func (e *BuildError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// NewBuild creates a BuildError with a detail message.
func NewBuild(kind error, field, directive, detail string) *BuildError {
	return &BuildError{Kind: kind, Field: field, Directive: directive, Detail: detail}
}

// NewBuildCause creates a BuildError wrapping an underlying cause, such as
// the diagnostic from the regexp compiler.
func NewBuildCause(kind error, field, directive string, cause error) *BuildError {
	return &BuildError{Kind: kind, Field: field, Directive: directive, Cause: cause}
}

// IsBuild reports whether err is (or wraps) a directive build error.
func IsBuild(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}

// ClassifiedError wraps an infrastructure error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	return errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrNoConnection) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrParsingFailed) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// IsFatal checks if an error is fatal and should stop processing.
// All build errors are fatal: no partially-built pipeline is usable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	if IsBuild(err) {
		return true
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return false
}

// newClassified creates a new classified error.
// This is an internal helper - use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorTransient, Wrap(err, component, method, action), component, method)
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorInvalid, Wrap(err, component, method, action), component, method)
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ErrorFatal, Wrap(err, component, method, action), component, method)
}
