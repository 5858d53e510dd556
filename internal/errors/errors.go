package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ProjectNotFound indicates no project has the requested name
	ProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	// IssueNotFound indicates no issue has the requested external id
	IssueNotFound ErrorCode = "ISSUE_NOT_FOUND"
	// CollectionNotFound indicates the store has no collection with that name
	CollectionNotFound ErrorCode = "COLLECTION_NOT_FOUND"
	// UnsupportedFunction indicates a function name outside the catalog
	UnsupportedFunction ErrorCode = "UNSUPPORTED_FUNCTION"
	// InvalidArguments indicates a tool call whose arguments could not be decoded
	InvalidArguments ErrorCode = "INVALID_ARGUMENTS"
	// StorageFailure indicates the document store returned an error
	StorageFailure ErrorCode = "STORAGE_FAILURE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// UnsupportedFunctionMessage is the exact text returned for unknown function names.
const UnsupportedFunctionMessage = "Unsupported function call."

// SebotError represents an error with a stable code and a user-facing message
type SebotError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// NewSebotError creates a new SebotError
func NewSebotError(code ErrorCode, message string, cause error) *SebotError {
	return &SebotError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *SebotError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SebotError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SebotError) WithDetails(details interface{}) *SebotError {
	e.Details = details
	return e
}

// NewProjectNotFoundError reports a project name with no matching record.
func NewProjectNotFoundError(name string) *SebotError {
	return NewSebotError(ProjectNotFound, fmt.Sprintf("Project '%s' not found.", name), nil)
}

// NewIssueNotFoundError reports an issue identifier with no exact match.
func NewIssueNotFoundError(identifier string) *SebotError {
	return NewSebotError(IssueNotFound, fmt.Sprintf("Issue matching '%s' not found.", identifier), nil)
}

// NewCollectionNotFoundError reports an unknown collection name.
func NewCollectionNotFoundError(name string) *SebotError {
	return NewSebotError(CollectionNotFound, fmt.Sprintf("Collection '%s' does not exist.", name), nil)
}

// NewUnsupportedFunctionError reports a function name outside the catalog.
func NewUnsupportedFunctionError(name string) *SebotError {
	return NewSebotError(UnsupportedFunction, UnsupportedFunctionMessage, nil).
		WithDetails(map[string]string{"function": name})
}

// NewInvalidArgumentsError reports a tool call whose arguments failed to decode.
func NewInvalidArgumentsError(function string, cause error) *SebotError {
	return NewSebotError(InvalidArguments, fmt.Sprintf("Invalid arguments for %s", function), cause)
}

// NewStorageError wraps a failure surfaced by the document store.
func NewStorageError(operation string, cause error) *SebotError {
	return NewSebotError(StorageFailure, operation+" failed", cause)
}

// Code returns the error code carried by err, or InternalError when err is
// not a SebotError.
func Code(err error) ErrorCode {
	var se *SebotError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return InternalError
}

// Text returns the user-facing message for err. Storage failures keep the
// underlying cause so the agent can report it.
func Text(err error) string {
	var se *SebotError
	if !stderrors.As(err, &se) {
		return err.Error()
	}
	if se.cause != nil {
		return fmt.Sprintf("%s: %v", se.Message, se.cause)
	}
	return se.Message
}

// Result converts err into the tool-output error shape.
func Result(err error) map[string]interface{} {
	return map[string]interface{}{"error": Text(err)}
}
