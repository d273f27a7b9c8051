package domain

import "fmt"

type ErrorCode string

// Validation codes.
const (
	CodeRequiredField      ErrorCode = "REQUIRED_FIELD"
	CodeFieldTooLong       ErrorCode = "FIELD_TOO_LONG"
	CodeInvalidFormat      ErrorCode = "INVALID_FORMAT"
	CodeInvalidRange       ErrorCode = "INVALID_RANGE"
	CodeInvalidValue       ErrorCode = "INVALID_VALUE"
	CodeInvalidDateRange   ErrorCode = "INVALID_DATE_RANGE"
	CodeReferenceNotFound  ErrorCode = "REFERENCE_NOT_FOUND"
	CodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
)

// Commit codes.
const (
	CodeImportError     ErrorCode = "IMPORT_ERROR"
	CodeDependencyError ErrorCode = "DEPENDENCY_ERROR"
)

// RowError attributes one problem to a source line and field.
type RowError struct {
	LineNumber int       `json:"lineNumber"`
	Field      string    `json:"field"`
	Value      string    `json:"value,omitempty"`
	Code       ErrorCode `json:"errorCode"`
	Message    string    `json:"errorMessage"`
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d: %s %s: %s", e.LineNumber, e.Field, e.Code, e.Message)
}
