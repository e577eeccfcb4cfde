package integration

import "github.com/wozzarvl/InterfazInAction/internal/domain/shared"

// Error codes surfaced by the mapping engine
const (
	CodeConfigurationNotFound = "CONFIGURATION_NOT_FOUND"
	CodeConfigurationInvalid  = "CONFIGURATION_INVALID"
	CodeMalformedInput        = "MALFORMED_INPUT"
	CodePersistenceFailure    = "PERSISTENCE_FAILURE"
)

var (
	ErrConfigurationNotFound = shared.NewDomainError(CodeConfigurationNotFound, "integration: no process configured")
	ErrConfigurationInvalid  = shared.NewDomainError(CodeConfigurationInvalid, "integration: invalid process configuration")
	ErrMalformedInput        = shared.NewDomainError(CodeMalformedInput, "integration: malformed XML input")
	ErrPersistenceFailure    = shared.NewDomainError(CodePersistenceFailure, "integration: persistence failure")
)

// NewPersistenceFailure wraps a SQL error, keeping the driver message verbatim
func NewPersistenceFailure(cause error) error {
	return shared.WrapDomainError(CodePersistenceFailure, cause.Error(), cause)
}
