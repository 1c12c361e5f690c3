package auth

import (
	"errors"
	"fmt"
)

// Kind classifies an authorization failure.
type Kind string

// Failure kinds.
const (
	// UserDeclined means the user aborted the interactive consent flow.
	UserDeclined Kind = "user_declined"

	// NetworkError means the authorization or token endpoint was
	// unreachable. Retryable.
	NetworkError Kind = "network_error"

	// InvalidGrant means the server rejected the refresh or exchange as
	// invalid. Not retryable without re-authorization.
	InvalidGrant Kind = "invalid_grant"

	// StorageError means reading or writing the persisted credential
	// failed.
	StorageError Kind = "storage_error"

	// ConfigMissing means the OAuth client secrets file is absent or
	// malformed. A configuration error, not an auth failure.
	ConfigMissing Kind = "config_missing"

	// Timeout means the user did not complete consent within the
	// configured bound.
	Timeout Kind = "timeout"
)

// Failure is a classified authorization failure.
type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("auth failure (%s): %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// failuref builds a Failure from a format string.
func failuref(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

// KindOf returns the failure kind of err, or the empty string if err is not
// a Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
