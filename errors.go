package admin

import (
	"fmt"

	"github.com/friendsofgo/errors"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrUnknownResource is raised before any network call when a resource
	// has no backend type.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrUnresolvableOperation is raised when a query document has no
	// definitions or its operation kind cannot be determined.
	ErrUnresolvableOperation = errors.New("unable to determine operation")

	// ErrBackendRejected wraps any failure of the remote call itself.
	ErrBackendRejected = errors.New("backend rejected request")

	// ErrDeletionNotConfirmed is raised when a delete response does not
	// affirmatively confirm the removal.
	ErrDeletionNotConfirmed = errors.New("deletion not confirmed")
)

// Error is the error type returned by data providers.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind     error
	Resource string
	Verb     Verb
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Kind == ErrDeletionNotConfirmed && e.Resource != "" {
		msg = fmt.Sprintf("could not delete %s", e.Resource)
	} else if e.Resource != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Resource)
	}
	if e.Verb != 0 {
		msg = fmt.Sprintf("%s: %s", e.Verb, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UnknownResource returns an ErrUnknownResource error.
func UnknownResource(verb Verb, resource string) error {
	return &Error{Kind: ErrUnknownResource, Resource: resource, Verb: verb}
}

// UnresolvableOperation returns an ErrUnresolvableOperation error.
func UnresolvableOperation(verb Verb, resource string, cause error) error {
	return &Error{Kind: ErrUnresolvableOperation, Resource: resource, Verb: verb, Err: cause}
}

// BackendRejected returns an ErrBackendRejected error wrapping cause.
// Errors that already carry a kind are returned unchanged.
func BackendRejected(verb Verb, resource string, cause error) error {
	var typed *Error
	if errors.As(cause, &typed) {
		return cause
	}
	return &Error{Kind: ErrBackendRejected, Resource: resource, Verb: verb, Err: cause}
}

// DeletionNotConfirmed returns an ErrDeletionNotConfirmed error.
func DeletionNotConfirmed(resource string) error {
	return &Error{Kind: ErrDeletionNotConfirmed, Resource: resource, Verb: Delete}
}
