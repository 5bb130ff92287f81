package failure

import (
	"errors"
	"strings"
)

type Kind string

const (
	Configuration     Kind = "configuration_error"
	CredentialInvalid Kind = "credential_invalid"
	ResultMissing     Kind = "result_missing"
	Generation        Kind = "generation_failure"
	MalformedResponse Kind = "malformed_response"
)

// entityNotFound is the upstream message returned when the referenced key or job
// no longer exists. The service exposes no structured code for it.
const entityNotFound = "Requested entity was not found"

// Error carries a message meant to be shown to the user verbatim. The cause is
// kept for logging only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Classify maps a raw upstream error to a Kind. Errors that are already
// classified keep their kind.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	if kind, ok := KindOf(err); ok {
		return kind
	}
	if strings.Contains(err.Error(), entityNotFound) {
		return CredentialInvalid
	}
	return Generation
}
