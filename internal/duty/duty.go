// Package duty defines the four-valued shift enum the roster builder
// assigns to every nurse on every day, and the contractual duty subsets a
// nurse's keep-type restricts them to.
package duty

import "fmt"

// Duty is one of the four shifts a nurse can be assigned on a calendar
// day. Ordinal values are stable and load-bearing: zrules.Table indexes
// on 16*w[0]+4*w[1]+w[2], so the weights below must never change.
type Duty int

const (
	D Duty = iota // day shift
	E             // evening shift
	N             // night shift
	X             // day off
)

// All enumerates the four duties in ordinal order.
var All = [4]Duty{D, E, N, X}

func (d Duty) String() string {
	switch d {
	case D:
		return "D"
	case E:
		return "E"
	case N:
		return "N"
	case X:
		return "X"
	default:
		return fmt.Sprintf("Duty(%d)", int(d))
	}
}

// Parse converts a wire code ("D", "E", "N", "X") into a Duty.
func Parse(code string) (Duty, error) {
	switch code {
	case "D":
		return D, nil
	case "E":
		return E, nil
	case "N":
		return N, nil
	case "X":
		return X, nil
	default:
		return 0, fmt.Errorf("invalid duty code: %q", code)
	}
}

// MarshalJSON encodes the duty as its single-letter wire code.
func (d Duty) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a single-letter wire code into a Duty.
func (d *Duty) UnmarshalJSON(b []byte) error {
	if len(b) < 3 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid duty literal: %s", b)
	}
	parsed, err := Parse(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// KeepType governs which duties a nurse may ever receive.
type KeepType string

const (
	// All nurses are unrestricted rotating nurses, eligible for D, E, N, X.
	KeepAll KeepType = "All"
	// DayFixed nurses are restricted to D and X.
	KeepDayFixed KeepType = "DayFixed"
	// NightFixed nurses are restricted to N and X.
	KeepNightFixed KeepType = "NightFixed"
)

// Allowed reports whether duty is permitted for the keep-type, per C7.
func (k KeepType) Allowed(d Duty) bool {
	switch k {
	case KeepDayFixed:
		return d == D || d == X
	case KeepNightFixed:
		return d == N || d == X
	default:
		return true
	}
}

// DEPreference is the soft D-vs-E bias an All-type nurse may declare.
type DEPreference string

const (
	PreferNone DEPreference = "="
	PreferD    DEPreference = "D"
	PreferE    DEPreference = "E"
)
