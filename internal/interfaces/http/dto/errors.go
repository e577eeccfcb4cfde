package dto

import (
	"net/http"

	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
)

// API error codes, ERR_<DESCRIPTION>
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE" // body over http.max_body_size
	ErrCodeNotFound        = "ERR_NOT_FOUND"

	ErrCodeConfigurationNotFound = "ERR_CONFIGURATION_NOT_FOUND"
	ErrCodeConfigurationInvalid  = "ERR_CONFIGURATION_INVALID"
	ErrCodeMalformedInput        = "ERR_MALFORMED_INPUT"
	ErrCodePersistenceFailure    = "ERR_PERSISTENCE_FAILURE"
)

type apiError struct {
	code   string
	status int
}

// mapping engine failures as the API reports them
var domainErrors = map[string]apiError{
	integration.CodeConfigurationNotFound: {ErrCodeConfigurationNotFound, http.StatusNotFound},
	integration.CodeConfigurationInvalid:  {ErrCodeConfigurationInvalid, http.StatusBadRequest},
	integration.CodeMalformedInput:        {ErrCodeMalformedInput, http.StatusBadRequest},
	integration.CodePersistenceFailure:    {ErrCodePersistenceFailure, http.StatusInternalServerError},
}

// ResolveDomainError returns the API code and HTTP status for a domain
// error code. Unknown codes are internal errors.
func ResolveDomainError(domainCode string) (code string, status int) {
	if e, ok := domainErrors[domainCode]; ok {
		return e.code, e.status
	}
	return ErrCodeInternal, http.StatusInternalServerError
}
