package result_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tolga/wardroster/internal/calendar"
	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/holiday"
	"github.com/tolga/wardroster/internal/result"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/wallet"
)

func tinyDemand(t *testing.T) *calendar.Demand {
	t.Helper()
	cfg := calendar.Config{
		Templates: roster.DailyWalletConfig{
			Weekday: roster.RawDutyTemplate{"D": 1, "E": 0, "N": 0, "X": 0},
			Weekend: roster.RawDutyTemplate{"D": 1, "E": 0, "N": 0, "X": 0},
		},
		Region: holiday.StateBY,
	}
	demand, err := calendar.Build(2025, 2, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Trim to a single day for a minimal, exact-match fixture.
	demand.NumDays = 1
	return demand
}

func TestValidate_DailyWalletMatch(t *testing.T) {
	demand := tinyDemand(t)
	schedule := roster.Schedule{
		"n0": {-3: duty.X, -2: duty.X, -1: duty.X, 1: duty.D},
	}
	alloc := &wallet.Result{
		Nurses:  map[string]wallet.NurseInfo{"n0": {Nurse: roster.Nurse{Name: "n0"}}},
		Wallets: map[string]roster.NurseWallet{"n0": {TargetN: 0, TargetX: 0}},
	}

	report := result.Validate(schedule, demand, alloc)
	assert.True(t, report.DailyWalletSatisfied)
	assert.True(t, report.NurseWalletSatisfied)
	assert.True(t, report.LowGradeSatisfied)
	assert.Empty(t, report.Violations)
}

func TestValidate_DailyWalletMismatchReported(t *testing.T) {
	demand := tinyDemand(t)
	schedule := roster.Schedule{
		"n0": {-3: duty.X, -2: duty.X, -1: duty.X, 1: duty.X}, // should be D
	}
	alloc := &wallet.Result{
		Nurses:  map[string]wallet.NurseInfo{"n0": {Nurse: roster.Nurse{Name: "n0"}}},
		Wallets: map[string]roster.NurseWallet{"n0": {TargetN: 0, TargetX: 1}},
	}

	report := result.Validate(schedule, demand, alloc)
	assert.False(t, report.DailyWalletSatisfied)
	assert.NotEmpty(t, report.Violations)
}

func TestValidate_LowGradeOverflowReported(t *testing.T) {
	demand := tinyDemand(t)
	demand.Wallet[1] = roster.DutyCounts{D: 2, E: 0, N: 0, X: 0}
	schedule := roster.Schedule{
		"n0": {-3: duty.X, -2: duty.X, -1: duty.X, 1: duty.D},
		"n1": {-3: duty.X, -2: duty.X, -1: duty.X, 1: duty.D},
	}
	alloc := &wallet.Result{
		Nurses: map[string]wallet.NurseInfo{
			"n0": {Nurse: roster.Nurse{Name: "n0", IsLowGrade: true}},
			"n1": {Nurse: roster.Nurse{Name: "n1", IsLowGrade: true}},
		},
		Wallets: map[string]roster.NurseWallet{
			"n0": {TargetN: 0, TargetX: 0},
			"n1": {TargetN: 0, TargetX: 0},
		},
	}

	report := result.Validate(schedule, demand, alloc)
	assert.False(t, report.LowGradeSatisfied)
}

func TestValidate_NurseWalletShortfallReported(t *testing.T) {
	demand := tinyDemand(t)
	demand.Wallet[1] = roster.DutyCounts{D: 0, E: 0, N: 1, X: 0}
	schedule := roster.Schedule{
		"n0": {-3: duty.X, -2: duty.X, -1: duty.X, 1: duty.N},
	}
	alloc := &wallet.Result{
		Nurses:  map[string]wallet.NurseInfo{"n0": {Nurse: roster.Nurse{Name: "n0"}}},
		Wallets: map[string]roster.NurseWallet{"n0": {TargetN: 4, TargetX: 0}}, // shortfall of 3
	}

	report := result.Validate(schedule, demand, alloc)
	assert.NotEmpty(t, report.Violations)
}
