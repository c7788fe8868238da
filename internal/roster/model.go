// Package roster defines the request-scoped domain model shared by every
// stage of the roster builder: nurses, their wallets, the daily demand,
// and the resulting schedule. All types are plain data; no stage-specific
// logic lives here (mirrors the teacher's internal/model package, which
// holds persisted entities with no business logic of their own).
package roster

import (
	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/holiday"
)

// DutyCounts is a per-duty headcount, used both for the daily wallet
// template and for recomputed daily actuals.
type DutyCounts struct {
	D int `json:"D"`
	E int `json:"E"`
	N int `json:"N"`
	X int `json:"X"`
}

// RawDutyTemplate is the wire shape of a weekday/weekend duty template
// before it is known to carry all four duties. Decoding into a plain map
// (rather than DutyCounts directly) lets the Calendar & Demand Builder
// distinguish "duty omitted" from "duty explicitly set to 0"
// (spec.md §4.1: "Fails with ConfigError if either template is missing
// any of the four duties").
type RawDutyTemplate map[string]int

// MissingDuties returns the subset of {"D","E","N","X"} absent from the
// raw template, in that fixed order.
func (t RawDutyTemplate) MissingDuties() []string {
	var missing []string
	for _, key := range []string{"D", "E", "N", "X"} {
		if _, ok := t[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Counts converts a complete raw template into DutyCounts. Callers must
// check MissingDuties first.
func (t RawDutyTemplate) Counts() DutyCounts {
	return DutyCounts{D: t["D"], E: t["E"], N: t["N"], X: t["X"]}
}

// Sum returns D+E+N+X.
func (c DutyCounts) Sum() int {
	return c.D + c.E + c.N + c.X
}

// Get returns the count for a specific duty.
func (c DutyCounts) Get(d duty.Duty) int {
	switch d {
	case duty.D:
		return c.D
	case duty.E:
		return c.E
	case duty.N:
		return c.N
	default:
		return c.X
	}
}

// DailyWalletConfig is the raw weekday/weekend templates from the
// request; the Calendar & Demand Builder expands it into a per-day
// DailyWallet.
type DailyWalletConfig struct {
	Weekday RawDutyTemplate `json:"weekday"`
	Weekend RawDutyTemplate `json:"weekend"`
}

// DailyWallet maps a calendar day (1-indexed) to the ward's per-duty
// staffing target for that day.
type DailyWallet map[int]DutyCounts

// Nurse is a single roster participant and their fixed, request-scoped
// attributes (spec.md §3).
type Nurse struct {
	Name         string         `json:"name"`
	KeepType     duty.KeepType  `json:"keep_type"`
	Past3Days    [3]duty.Duty   `json:"past_3days"`
	IsLowGrade   bool           `json:"is_low_grade,omitempty"`
	DEPreference duty.DEPreference `json:"de_preference,omitempty"`
	SpecialDays  int            `json:"special_days,omitempty"`
}

// JoinerRecord declares a nurse whose active window is a prefix of the
// month: forced X before StartDay, working from StartDay onward.
type JoinerRecord struct {
	Name     string `json:"name"`
	StartDay int    `json:"start_day"`
	NCount   int    `json:"n_count"`
	XCount   int    `json:"x_count,omitempty"`
}

// LeaverRecord declares a nurse whose active window is a suffix of the
// month: working through LastDay, forced X afterward.
type LeaverRecord struct {
	Name    string `json:"name"`
	LastDay int    `json:"last_day"`
	NCount  int    `json:"n_count"`
	XCount  int    `json:"x_count,omitempty"`
}

// Preference is one nurse's submitted day->duty wishes.
type Preference struct {
	NurseName   string           `json:"name"`
	Schedule    map[int]duty.Duty `json:"schedule"`
	IsSubmitted bool             `json:"is_submitted,omitempty"`
}

// NurseWallet is a nurse's monthly N/X budget, derived by the Nurse
// Classifier & Wallet Allocator (spec.md §4.2). D and E are not tracked
// per nurse; they are implicit in the daily wallet.
type NurseWallet struct {
	TargetN int
	TargetX int
}

// WalletEntry records one named adjustment applied to a nurse's wallet,
// for the diagnostic trace surfaced in the response (SPEC_FULL.md §4.2).
type WalletEntry struct {
	Reason string
	DeltaN int
	DeltaX int
}

// Request is the full roster-generation request (spec.md §6).
type Request struct {
	Year               int               `json:"year"`
	Month              int               `json:"month"`
	// Region selects the ward's operating Bundesland for holiday lookup;
	// empty means "use the deployment default" (SPEC_FULL.md §4.1).
	Region             holiday.State     `json:"region,omitempty"`
	DailyWalletConfig  DailyWalletConfig `json:"daily_wallet_config"`
	NurseWalletMin     struct {
		N int `json:"N"`
	} `json:"nurse_wallet_min"`
	MaxConsecutiveWork int            `json:"max_consecutive_work"`
	Nurses             []Nurse        `json:"nurses"`
	New                []JoinerRecord `json:"new"`
	Quit               []LeaverRecord `json:"quit"`
	Preferences        []Preference   `json:"preferences"`
}

// Schedule maps a nurse name to their day->duty assignment, including
// the synthetic -3/-2/-1 slots carrying past_3days verbatim.
type Schedule map[string]map[int]duty.Duty

// ValidationReport is the Result Validator's structured output
// (spec.md §4.5).
type ValidationReport struct {
	DailyWalletSatisfied bool     `json:"daily_wallet_satisfied"`
	NurseWalletSatisfied bool     `json:"nurse_wallet_satisfied"`
	LowGradeSatisfied    bool     `json:"low_grade_satisfied"`
	Violations           []string `json:"violations"`
}

// SolverStats reports solver-run metadata for the response envelope.
type SolverStats struct {
	ObjectiveValue float64 `json:"objective_value"`
	WallTime       float64 `json:"wall_time"`
	NumBranches    int64   `json:"num_branches"`
	Seed           int64   `json:"seed"`
	Engine         string  `json:"engine"`
}

// Response is the success envelope (spec.md §6).
type Response struct {
	Status        string                      `json:"status"`
	Schedule      Schedule                    `json:"schedule"`
	NurseWallets  map[string]NurseWalletWire  `json:"nurse_wallets"`
	Validation    ValidationReport            `json:"validation"`
	SolverStats   SolverStats                 `json:"solver_stats"`
}

// NurseWalletWire is the wire shape of a nurse's wallet in the response.
type NurseWalletWire struct {
	N int `json:"N"`
	X int `json:"X"`
}
