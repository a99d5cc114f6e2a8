package plan

import (
	"errors"
	"fmt"
)

var (
	ErrPercentageOutOfRange  = errors.New("percentage out of range")
	ErrCommissionSumExceeded = errors.New("business and agent commission exceed 100%")
	ErrReadOnlyField         = errors.New("field is read-only")
	ErrUnknownField          = errors.New("unknown field")
	ErrNotFinite             = errors.New("value is not a finite number")
	ErrUnsupportedTimeFrame  = errors.New("time frame not supported by plan variant")
	ErrUnknownVariant        = errors.New("unknown plan variant")
	ErrAgentNotFound         = errors.New("agent not found in plan")
	ErrDuplicateAgent        = errors.New("agent already exists in plan")
	ErrEmptyAgentName        = errors.New("agent name is empty")
)

// ValidationError reports a rejected input mutation. The plan is left unchanged.
type ValidationError struct {
	Agent string
	Field Field
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("%s.%s: %v", e.Agent, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Code is the stable machine-readable name of the failure.
func (e *ValidationError) Code() string {
	switch {
	case errors.Is(e.Err, ErrPercentageOutOfRange):
		return "PercentageOutOfRange"
	case errors.Is(e.Err, ErrCommissionSumExceeded):
		return "CommissionSumExceeded"
	case errors.Is(e.Err, ErrReadOnlyField):
		return "ReadOnlyField"
	case errors.Is(e.Err, ErrUnknownField):
		return "UnknownField"
	case errors.Is(e.Err, ErrAgentNotFound):
		return "AgentNotFound"
	case errors.Is(e.Err, ErrNotFinite):
		return "NotFinite"
	default:
		return "ValidationError"
	}
}
