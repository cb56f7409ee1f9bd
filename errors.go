package quarry

import (
	"errors"

	"github.com/jward/quarry/internal/store"
)

// Binding failures. Every error returned by the registry, the method binder
// and the proxy matches one of these with errors.Is.
var (
	ErrAlreadyRegistered        = errors.New("type is already known to the registry")
	ErrUnknownType              = errors.New("type is not known to the registry")
	ErrStatementNotFound        = errors.New("invalid bound statement (not found)")
	ErrUnknownCommandType       = errors.New("unknown execution method")
	ErrMultiplePageWindowParams = errors.New("cannot have multiple RowBounds parameters")
	ErrMultipleCallbackParams   = errors.New("cannot have multiple ResultHandler parameters")
	ErrMultipleContextParams    = errors.New("cannot have multiple context.Context parameters")
	ErrProxyCreationFailed      = errors.New("error getting mapper instance")
	ErrInvalidParamNames        = errors.New("more parameter names declared than ordinary parameters")
	ErrInvalidArguments         = errors.New("arguments do not match method signature")
	ErrUnknownMethod            = errors.New("method is not declared by the mapper interface")
	ErrUnsupportedSignature     = errors.New("unsupported method signature")
	ErrRowCountOverflow         = errors.New("row count does not fit the declared result type")
)

// Catalog and session failures.
var (
	ErrDuplicateStatement = errors.New("statement already registered")
	ErrTooManyResults     = store.ErrTooManyResults
)

// BindingError reports a failure to bind a mapper interface or one of its
// methods. Kind is one of the Err* sentinels above; Cause, when set, is the
// underlying failure. Both are reachable through errors.Is and errors.As.
type BindingError struct {
	Kind    error
	Subject string
	Cause   error
}

func (e *BindingError) Error() string {
	msg := "quarry: " + e.Kind.Error()
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BindingError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

var _ error = (*BindingError)(nil)

func bindingError(kind error, subject string, cause error) *BindingError {
	return &BindingError{Kind: kind, Subject: subject, Cause: cause}
}
