package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrorRecordNotFound = errors.New("record not found")
var ErrorTenantIdRequired = errors.New("tenant id is required")

// ValidationError rejects a request before any computation is attempted:
// malformed/out-of-order dates, missing required date parameters, missing
// comparison type when comparison is enabled.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AuditWriteError fails the entire report-generation call even though the
// report was computed. "Computed but not audited" is worse than "not computed".
type AuditWriteError struct {
	Err error
}

func (e *AuditWriteError) Error() string { return "audit write failed: " + e.Err.Error() }
func (e *AuditWriteError) Unwrap() error { return e.Err }

func IsAuditWriteError(err error) bool {
	var ae *AuditWriteError
	return errors.As(err, &ae)
}

// CacheError is soft: logged, cache bypassed, computation proceeds normally.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string { return "report cache " + e.Op + ": " + e.Err.Error() }
func (e *CacheError) Unwrap() error { return e.Err }

// ImmutabilityViolationError is raised when an UPDATE against an audit row
// unexpectedly succeeds. It means the store-level append-only constraint is
// not being enforced.
type ImmutabilityViolationError struct {
	LogId int
}

func (e *ImmutabilityViolationError) Error() string {
	return fmt.Sprintf("audit log %d was mutated; append-only constraint is not enforced", e.LogId)
}

func IsImmutabilityViolation(err error) bool {
	var ie *ImmutabilityViolationError
	return errors.As(err, &ie)
}

// IsMissingTableError reports whether err is MySQL's "table doesn't exist"
// (error 1146). Aggregators degrade such failures to all-zero breakdowns.
func IsMissingTableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1146") || strings.Contains(msg, "doesn't exist")
}
