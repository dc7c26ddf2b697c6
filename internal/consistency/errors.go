package consistency

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotAutoFixable    = errors.New("issue is not marked as auto-fixable")
	ErrFixPending        = errors.New("auto-fix implementation pending")
	ErrFixNotImplemented = errors.New("contradiction standardization is not yet implemented")
	ErrFixNoMatch        = errors.New("no matching text found in scenes")
	ErrBadSuggestion     = errors.New("issue suggestion does not carry a usable fix value")
	ErrIssueNotFound     = errors.New("issue not found in report")
)

// DetectorError records a detector that failed unexpectedly. The run keeps
// going; the detector contributes no issues.
type DetectorError struct {
	Detector string
	Cause    interface{}
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %s failed: %v", e.Detector, e.Cause)
}

// FixError explains why an auto-fix attempt was refused
type FixError struct {
	IssueID  string
	Category string
	Err      error
}

func (e *FixError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("auto-fix for issue %s: %v", e.IssueID, e.Err)
	}
	return fmt.Sprintf("auto-fix for %s issue %s: %v", e.Category, e.IssueID, e.Err)
}

func (e *FixError) Unwrap() error {
	return e.Err
}

// IsFixError checks if an error is an auto-fix refusal
func IsFixError(err error) bool {
	if err == nil {
		return false
	}
	var fixErr *FixError
	return errors.As(err, &fixErr)
}
