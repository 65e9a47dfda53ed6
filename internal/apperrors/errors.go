// Package apperrors defines the error taxonomy shared by the security pipeline.
//
// Every error that crosses a use-case boundary carries one of five codes:
//
//	VALIDATION      bad input shape, surfaced as field feedback, not logged as a failure
//	AUTHENTICATION  bad credentials, generic message, logged at warning level
//	TECHNICAL       persistence/notification/storage failure, logged at error level
//	SECURITY        CSRF failure or unauthenticated access, rejected before handlers
//	REGISTRATION    enrollment could not be stored (duplicate or backend failure), retryable
//
// Each error also carries a public message that is safe to show to the client.
// Internal detail stays in the wrapped cause and only reaches the logs.
package apperrors

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes attached with oops.Code.
const (
	CodeValidation     = "VALIDATION"
	CodeAuthentication = "AUTHENTICATION"
	CodeTechnical      = "TECHNICAL"
	CodeSecurity       = "SECURITY"
	CodeRegistration   = "REGISTRATION"
)

// Kind classifies an error for logging and response mapping.
type Kind string

const (
	KindUnknown        Kind = "unknown"
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindTechnical      Kind = "technical"
	KindSecurity       Kind = "security"
	KindRegistration   Kind = "registration"
)

const publicKey = "public_message"

// Messages shown to clients for failures whose detail must not leak.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgTechnical          = "A technical error occurred. Please try again later."
	MsgRegistrationFailed = "Registration failed. Please try again or use a different username/email"
)

// Validation returns a VALIDATION error whose message is shown to the user as-is.
func Validation(msg string) error {
	return oops.Code(CodeValidation).With(publicKey, msg).Errorf("%s", msg)
}

// ValidationWrap is Validation for a failure that has a sentinel cause callers match with errors.Is.
func ValidationWrap(cause error, msg string) error {
	return oops.Code(CodeValidation).With(publicKey, msg).Wrapf(cause, "%s", msg)
}

// Authentication returns an AUTHENTICATION error with the generic credentials message.
// reason is kept for logs only.
func Authentication(reason string) error {
	return oops.Code(CodeAuthentication).With(publicKey, MsgInvalidCredentials).Errorf("authentication failed: %s", reason)
}

// Technical wraps a backend failure. The cause is never shown to the client.
func Technical(err error, op string) error {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return oops.Code(CodeTechnical).With(publicKey, MsgTechnical).With("op", op).Wrapf(err, "%s", op)
}

// Security returns a SECURITY rejection with a client-facing explanation.
func Security(msg string) error {
	return oops.Code(CodeSecurity).With(publicKey, msg).Errorf("security rejection: %s", msg)
}

// Registration returns a retryable REGISTRATION error. cause may be nil for duplicates.
func Registration(cause error) error {
	b := oops.Code(CodeRegistration).With(publicKey, MsgRegistrationFailed)
	if cause == nil {
		return b.Errorf("principal already exists")
	}
	return b.Wrapf(cause, "create principal")
}

// KindOf reports the taxonomy kind of err. Uncoded errors are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindUnknown
	}
	switch oopsErr.Code() {
	case CodeValidation:
		return KindValidation
	case CodeAuthentication:
		return KindAuthentication
	case CodeTechnical:
		return KindTechnical
	case CodeSecurity:
		return KindSecurity
	case CodeRegistration:
		return KindRegistration
	}
	return KindUnknown
}

// Is reports whether err belongs to kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// PublicMessage returns the client-safe message for err.
// Errors without one (including unknown ones) map to the generic technical message.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return MsgTechnical
	}
	if msg, ok := oopsErr.Context()[publicKey].(string); ok && msg != "" {
		return msg
	}
	return MsgTechnical
}
