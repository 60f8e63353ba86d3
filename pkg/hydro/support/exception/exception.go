// Package exception provides the error type and error classification used
// throughout hydrocli. Every failure is tagged with a Kind that defines its
// scope of containment: configuration errors abort the run before any file is
// touched, while ingest/interval/builder/submission errors are contained to
// the project or series they occurred in so that siblings keep going.
package exception

import (
	"errors"
	"fmt"
)

// Kind classifies a CLIError by where it is contained.
type Kind int

const (
	// KindConfig is fatal: bad or missing required configuration keys.
	// Aborts the run before any file is processed.
	KindConfig Kind = iota
	// KindIngest is contained per file: unreadable file, empty header.
	// The owning project is skipped, other projects continue.
	KindIngest
	// KindInterval is contained per project: no interval was configured and
	// none could be inferred from the data.
	KindInterval
	// KindBuilder is contained per project: no data rows in the selected range.
	KindBuilder
	// KindSubmission is contained per series: a single store call failed.
	// Logged and counted, never aborts sibling submissions.
	KindSubmission
	// KindClient marks transport-level failures from the data-service client.
	KindClient
)

// String returns the kind name as used in log output.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindIngest:
		return "ingest"
	case KindInterval:
		return "interval"
	case KindBuilder:
		return "builder"
	case KindSubmission:
		return "submission"
	case KindClient:
		return "client"
	default:
		return "unknown"
	}
}

// CLIError is the error type produced by hydrocli components.
// It carries the module that raised it, a message, the wrapped original
// error, and the containment Kind.
type CLIError struct {
	// Kind is the containment classification of this error.
	Kind Kind
	// Module indicates the component where the error occurred (e.g., "ingest", "loader", "client").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error, if any.
	OriginalErr error
}

// New creates a new CLIError.
func New(kind Kind, module, message string, originalErr error) *CLIError {
	return &CLIError{
		Kind:        kind,
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// Newf creates a new CLIError with a formatted message and no wrapped error.
func Newf(kind Kind, module, format string, a ...interface{}) *CLIError {
	return &CLIError{
		Kind:    kind,
		Module:  module,
		Message: fmt.Sprintf(format, a...),
	}
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *CLIError) Unwrap() error {
	return e.OriginalErr
}

// KindOf returns the Kind of err if it is (or wraps) a CLIError.
// Unclassified errors report KindClient, the most conservative containment:
// they are never treated as fatal configuration errors.
func KindOf(err error) Kind {
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindClient
}

// IsKind reports whether err is (or wraps) a CLIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// IsFatal reports whether err should abort the whole run.
// Only configuration errors are fatal; everything else is skip-and-report.
func IsFatal(err error) bool {
	return IsKind(err, KindConfig)
}

// ExtractMessage returns the cleaner Message field for CLIErrors,
// or the standard Error() string otherwise.
func ExtractMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
