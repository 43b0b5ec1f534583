package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrDuplicateRuleID is returned when inserting a rule whose id already exists
	ErrDuplicateRuleID = errors.New("duplicate rule id")

	// ErrRuleNotFound is returned when a rule is not found
	ErrRuleNotFound = errors.New("rule not found")

	// ErrInvalidRule is returned when a rule fails structural validation
	ErrInvalidRule = errors.New("invalid rule")

	// ErrDocumentNotFound is returned when a document is not found
	ErrDocumentNotFound = errors.New("document not found")
)

// DuplicateRuleIDError represents a duplicate rule id error with context
type DuplicateRuleIDError struct {
	RuleID string
}

func (e *DuplicateRuleIDError) Error() string {
	return fmt.Sprintf("rule with id '%s' already exists", e.RuleID)
}

func (e *DuplicateRuleIDError) Is(target error) bool {
	return target == ErrDuplicateRuleID
}

// NewDuplicateRuleIDError creates a new DuplicateRuleIDError
func NewDuplicateRuleIDError(ruleID string) *DuplicateRuleIDError {
	return &DuplicateRuleIDError{RuleID: ruleID}
}

// RuleNotFoundError represents a rule not found error with context
type RuleNotFoundError struct {
	RuleID string
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("rule with id '%s' not found", e.RuleID)
}

func (e *RuleNotFoundError) Is(target error) bool {
	return target == ErrRuleNotFound
}

// NewRuleNotFoundError creates a new RuleNotFoundError
func NewRuleNotFoundError(ruleID string) *RuleNotFoundError {
	return &RuleNotFoundError{RuleID: ruleID}
}

// InvalidRuleError represents a structural rule validation failure, with
// enough detail to point a caller at the offending field.
type InvalidRuleError struct {
	RuleID  string
	Field   string
	Message string
}

func (e *InvalidRuleError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("invalid rule '%s': %s: %s", e.RuleID, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid rule: %s: %s", e.Field, e.Message)
}

func (e *InvalidRuleError) Is(target error) bool {
	return target == ErrInvalidRule
}

// NewInvalidRuleError creates a new InvalidRuleError
func NewInvalidRuleError(ruleID, field, message string) *InvalidRuleError {
	return &InvalidRuleError{RuleID: ruleID, Field: field, Message: message}
}

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocumentID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document with id '%s' not found", e.DocumentID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(documentID string) *DocumentNotFoundError {
	return &DocumentNotFoundError{DocumentID: documentID}
}
