// Package uccerr implements the error taxonomy from spec §7: a small set of
// typed errors the Orchestrator classifies at segment boundaries to decide
// between retry, warning, and terminal failure.
package uccerr

import "errors"

// Kind is the semantic error class.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindParseError         Kind = "parse_error"
	KindEmbeddingTransient Kind = "embedding_transient"
	KindStorageTransient   Kind = "storage_transient"
	KindTimeout            Kind = "timeout"
	KindCancelled          Kind = "cancelled"
	KindInternal           Kind = "internal"
)

// Error wraps an underlying cause with a Kind for classification.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Cause: cause}
}

func InvalidInput(msg string, cause error) *Error       { return newErr(KindInvalidInput, msg, cause) }
func ParseError(msg string, cause error) *Error         { return newErr(KindParseError, msg, cause) }
func EmbeddingTransient(msg string, cause error) *Error { return newErr(KindEmbeddingTransient, msg, cause) }
func StorageTransient(msg string, cause error) *Error   { return newErr(KindStorageTransient, msg, cause) }
func Timeout(msg string, cause error) *Error            { return newErr(KindTimeout, msg, cause) }
func Cancelled(msg string) *Error                       { return newErr(KindCancelled, msg, nil) }
func Internal(msg string, cause error) *Error           { return newErr(KindInternal, msg, cause) }

// KindOf classifies any error, defaulting to Internal if it is not one of
// ours (or wraps one of ours).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsTransient reports whether the error class is retryable per §5/§7:
// embedding/storage transients only.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindEmbeddingTransient, KindStorageTransient:
		return true
	default:
		return false
	}
}
