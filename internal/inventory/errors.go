package inventory

import (
	"errors"
	"fmt"
)

// ErrCorruptData matches every error raised while loading or importing a
// document that cannot become the working set.
var ErrCorruptData = errors.New("corrupt data")

// ErrorCode categorizes document errors.
type ErrorCode string

const (
	// CodeCorruptData indicates the document does not parse.
	CodeCorruptData ErrorCode = "CORRUPT_DATA"

	// CodeInvalidRecord indicates a record with a blank required field.
	CodeInvalidRecord ErrorCode = "INVALID_RECORD"

	// CodeDanglingReference indicates an assignment pointing to an unknown
	// article or location.
	CodeDanglingReference ErrorCode = "DANGLING_REFERENCE"
)

// DataError describes why a document was rejected.
type DataError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Entity is "article", "location", or "assignment" when a single
	// record is at fault.
	Entity string

	// ID is the offending record's id when Entity is set.
	ID uint32

	// Err is the underlying parse or validation error, if any.
	Err error
}

// Error implements the error interface.
func (e *DataError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Entity != "" {
		msg = fmt.Sprintf("%s (%s %d)", msg, e.Entity, e.ID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *DataError) Unwrap() error {
	return e.Err
}

// Is makes every DataError match ErrCorruptData.
func (e *DataError) Is(target error) bool {
	return target == ErrCorruptData
}

// IsCorruptData returns true if err rejected a document for any reason.
func IsCorruptData(err error) bool {
	return errors.Is(err, ErrCorruptData)
}

// IsInvalidRecord returns true if err is a blank-field validation error.
// Uses errors.As to handle wrapped errors.
func IsInvalidRecord(err error) bool {
	return hasCode(err, CodeInvalidRecord)
}

// IsDanglingReference returns true if err is a referential validation error.
// Uses errors.As to handle wrapped errors.
func IsDanglingReference(err error) bool {
	return hasCode(err, CodeDanglingReference)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DataError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

func newParseError(err error) *DataError {
	return &DataError{
		Code:    CodeCorruptData,
		Message: "document does not parse",
		Err:     err,
	}
}

func newInvalidRecordError(entity string, id uint32, err error) *DataError {
	return &DataError{
		Code:    CodeInvalidRecord,
		Message: fmt.Sprintf("%s has an invalid field", entity),
		Entity:  entity,
		ID:      id,
		Err:     err,
	}
}

func newDanglingReferenceError(assignmentID uint32, target string, targetID uint32) *DataError {
	return &DataError{
		Code:    CodeDanglingReference,
		Message: fmt.Sprintf("assignment refers to non-existent %s %d", target, targetID),
		Entity:  "assignment",
		ID:      assignmentID,
	}
}
