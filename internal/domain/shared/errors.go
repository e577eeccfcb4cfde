// Package shared holds the error type domain packages report through.
package shared

// DomainError carries a stable code that the HTTP layer maps to a status,
// and a message that is returned to the caller verbatim.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// NewDomainError creates a sentinel error for code
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError creates a domain error carrying the given cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, cause: cause}
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.cause }

// Is matches any DomainError with the same code, so copies made with
// WithMessage or Wrap still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy with the same code and cause
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message, cause: e.cause}
}

// Wrap returns a copy carrying cause, whose message is appended
func (e *DomainError) Wrap(cause error) *DomainError {
	if cause == nil {
		return e.WithMessage(e.Message)
	}
	return &DomainError{Code: e.Code, Message: e.Message + ": " + cause.Error(), cause: cause}
}
