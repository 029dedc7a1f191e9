// Package errors defines domain-level errors used throughout the application.
// These errors represent the three ways a listing build can fail and are mapped to exit codes at the CLI boundary
// and to HTTP status codes by the serve command.
//
// NOTE: Important for developers
// When adding a new Kind here, you MUST consider how it should be handled by the listing failure policy
// (internal/listing) and by mapError (internal/server/server.go).
package errors

import (
	"errors"
	"fmt"
)

// Kind enumerates the categories of failure that can occur while building a listing.
type Kind int

const (
	// KindUnknown is the zero value and should not be used deliberately.
	KindUnknown Kind = iota

	// KindConfiguration indicates invalid local state: a missing or unparsable manifest, a blank version,
	// or missing repository coordinates. Always fatal, never retried.
	KindConfiguration

	// KindAssetNotFound indicates that a release does not carry the expected manifest asset.
	KindAssetNotFound

	// KindNetwork indicates a transport failure or a non-success response from the hosting service.
	KindNetwork
)

var (
	// ErrConfiguration is matched by any *Error with KindConfiguration.
	ErrConfiguration = errors.New("configuration error")

	// ErrAssetNotFound is matched by any *Error with KindAssetNotFound.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrNetwork is matched by any *Error with KindNetwork.
	ErrNetwork = errors.New("network error")
)

// Error carries a Kind alongside the operation that failed and the underlying cause.
type Error struct {
	// Kind is the category of failure.
	Kind Kind

	// Op describes what was being attempted, e.g. "read manifest" or "download asset".
	Op string

	// Err is the underlying cause, may be nil.
	Err error
}

// New returns an *Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Configuration returns a KindConfiguration error with a formatted cause.
func Configuration(op string, format string, args ...any) *Error {
	return New(KindConfiguration, op, fmt.Errorf(format, args...))
}

// AssetNotFound returns a KindAssetNotFound error with a formatted cause.
func AssetNotFound(op string, format string, args ...any) *Error {
	return New(KindAssetNotFound, op, fmt.Errorf(format, args...))
}

// Network wraps err as a KindNetwork error.
func Network(op string, err error) *Error {
	return New(KindNetwork, op, err)
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// String implements fmt.Stringer for Kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return ErrConfiguration.Error()
	case KindAssetNotFound:
		return ErrAssetNotFound.Error()
	case KindNetwork:
		return ErrNetwork.Error()
	default:
		return "unknown error"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindAssetNotFound:
		return ErrAssetNotFound
	case KindNetwork:
		return ErrNetwork
	default:
		return nil
	}
}

// KindOf returns the Kind of the first *Error found in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
