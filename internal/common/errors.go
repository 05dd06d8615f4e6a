// Package common defines shared constants and sentinel errors used across
// client and server layers of authkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Validation errors, always resolved before any I/O.
	ErrInvalidEmail  = errors.New("invalid email")
	ErrWeakPassword  = errors.New("weak password")
	ErrMissingFields = errors.New("missing fields")

	// Conflict errors.
	ErrUsernameTaken = errors.New("username taken")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Repository-level errors.
	ErrorNotFound         = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Service-level catch-all.
	ErrorInternal = errors.New("internal error")
)

// Kind is the category of an error as seen by callers.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "auth"
	KindStorage    Kind = "storage"
	KindUnknown    Kind = "unknown"
)

type classified struct {
	err     error
	kind    Kind
	message string
}

// ordered: more specific sentinels first
var taxonomy = []classified{
	{ErrInvalidEmail, KindValidation, "invalid email address"},
	{ErrWeakPassword, KindValidation, "password must be 8 to 72 characters and contain upper and lower case letters, a digit and a symbol"},
	{ErrMissingFields, KindValidation, "username, email and password are required"},
	{ErrUsernameTaken, KindConflict, "username is already taken"},
	{ErrInvalidCredentials, KindAuth, "invalid username or password"},
	{ErrTokenExpired, KindAuth, "session has expired"},
	{ErrInvalidToken, KindAuth, "invalid token"},
	{ErrStorageUnavailable, KindStorage, "service is temporarily unavailable"},
	{ErrorNotFound, KindStorage, "not found"},
	{ErrConflict, KindStorage, "already exists"},
}

const unknownMessage = "an unknown error occurred"

func lookup(err error) (classified, bool) {
	for _, c := range taxonomy {
		if errors.Is(err, c.err) {
			return c, true
		}
	}
	return classified{}, false
}

// KindOf reports the category of err. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if c, ok := lookup(err); ok {
		return c.kind
	}
	return KindUnknown
}

// Message returns the human-readable text for err. It never includes the
// wrapped cause, so driver errors, hashes or tokens do not reach end users.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if c, ok := lookup(err); ok {
		return c.message
	}
	return unknownMessage
}

// FromMessage returns the sentinel whose user-facing message is msg. It lets
// a remote client turn an API error body back into a matchable error.
func FromMessage(msg string) (error, bool) {
	for _, c := range taxonomy {
		if c.message == msg {
			return c.err, true
		}
	}
	return nil, false
}
