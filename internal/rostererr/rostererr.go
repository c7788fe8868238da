// Package rostererr defines the error taxonomy the roster builder's
// stages return. Every type implements error; the CLI boundary
// type-switches on them to fill the "status" field of the response
// envelope (spec.md §6/§7) and never constructs the envelope itself.
package rostererr

import (
	"fmt"
	"strings"
)

// ConfigError reports that a daily wallet template is missing a duty.
type ConfigError struct {
	Template string // "weekday" or "weekend"
	Missing  string // duty code
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s template is missing duty %s", e.Template, e.Missing)
}

// ValidationError wraps an ordered, non-empty list of input problems
// found by the Input Validator (spec.md §4.3). The request fails
// atomically with all of them reported together.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Problems, "; "))
}

// MinNTooLow reports that the requested min_N falls below the feasible
// lower bound derived from residual N supply (spec.md §4.2 Step 4).
type MinNTooLow struct {
	Requested int
	LowerBound int
	UpperBound int
}

func (e *MinNTooLow) Error() string {
	return fmt.Sprintf(
		"min_N too low: requested %d, but min_N >= %d is required (upper bound %d)",
		e.Requested, e.LowerBound, e.UpperBound,
	)
}

// MinNTooHigh reports that the requested min_N exceeds the feasible
// upper bound derived from residual N supply (spec.md §4.2 Step 4).
type MinNTooHigh struct {
	Requested  int
	LowerBound int
	UpperBound int
}

func (e *MinNTooHigh) Error() string {
	return fmt.Sprintf(
		"min_N too high: requested %d, but min_N <= %d is required (lower bound %d)",
		e.Requested, e.UpperBound, e.LowerBound,
	)
}

// LowGradeOverflow reports more low-grade nurses than the tightest
// per-day D/E/N slot can host without violating C9.
type LowGradeOverflow struct {
	LowGradeCount int
	TightestSlot  int
}

func (e *LowGradeOverflow) Error() string {
	return fmt.Sprintf(
		"low-grade overflow: %d low-grade nurses exceed the tightest D/E/N slot of %d",
		e.LowGradeCount, e.TightestSlot,
	)
}

// SolverError reports that the solver could not produce a roster:
// infeasible, an invalid model, or a timeout.
type SolverError struct {
	Reason          string // "infeasible", "invalid_model", "timeout"
	NurseCount      int
	SampleDailyRows []string // representative DailyWallet rows for diagnostics
	Suggestions     []string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver error: %s (nurses=%d)", e.Reason, e.NurseCount)
}

// InternalError wraps an unexpected failure with a traceback for
// diagnostics. It is the catch-all the CLI boundary falls back to.
type InternalError struct {
	Cause     error
	Traceback string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}
