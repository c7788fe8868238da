// Package result is the Result Validator (spec.md §4.5): it recomputes
// daily and per-nurse duty counts from the solved schedule and reports
// deviations, mirroring the teacher's CalculationResult "HasError bool +
// ErrorCodes []string + Warnings []string" status shape, renamed here to
// the spec's booleans and violation-string list.
package result

import (
	"fmt"

	"github.com/tolga/wardroster/internal/calendar"
	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/wallet"
)

// Validate recomputes actuals from schedule and compares them against the
// daily wallet (exact) and each nurse's wallet (N within ±1 of target_N;
// X at most target_X+1, with no lower bound checked), plus the Low-Grade
// co-assignment rule.
func Validate(schedule roster.Schedule, demand *calendar.Demand, alloc *wallet.Result) roster.ValidationReport {
	report := roster.ValidationReport{
		DailyWalletSatisfied: true,
		NurseWalletSatisfied: true,
		LowGradeSatisfied:    true,
	}

	checkDailyWallet(schedule, demand, &report)
	checkNurseWallets(schedule, alloc, &report)
	checkLowGrade(schedule, demand, alloc, &report)

	return report
}

func checkDailyWallet(schedule roster.Schedule, demand *calendar.Demand, report *roster.ValidationReport) {
	for day := 1; day <= demand.NumDays; day++ {
		actual := roster.DutyCounts{}
		for _, days := range schedule {
			switch days[day] {
			case duty.D:
				actual.D++
			case duty.E:
				actual.E++
			case duty.N:
				actual.N++
			case duty.X:
				actual.X++
			}
		}
		want := demand.Wallet[day]
		if actual != want {
			report.DailyWalletSatisfied = false
			report.Violations = append(report.Violations, fmt.Sprintf(
				"day %d: actual wallet %+v does not match daily wallet %+v", day, actual, want))
		}
	}
}

func checkNurseWallets(schedule roster.Schedule, alloc *wallet.Result, report *roster.ValidationReport) {
	for name, days := range schedule {
		w := alloc.Wallets[name]
		actualN, actualX := 0, 0
		for day, d := range days {
			if day < 1 {
				continue // synthetic past_3days slots are not counted.
			}
			switch d {
			case duty.N:
				actualN++
			case duty.X:
				actualX++
			}
		}

		if abs(actualN-w.TargetN) > 1 {
			report.NurseWalletSatisfied = false
			report.Violations = append(report.Violations, fmt.Sprintf(
				"nurse %q: actual_N %d deviates from target_N %d by more than 1", name, actualN, w.TargetN))
		}
		if actualX > w.TargetX+1 {
			report.NurseWalletSatisfied = false
			report.Violations = append(report.Violations, fmt.Sprintf(
				"nurse %q: actual_X %d exceeds target_X %d + 1", name, actualX, w.TargetX))
		}
		if w.TargetN-actualN >= 2 {
			report.Violations = append(report.Violations, fmt.Sprintf(
				"nurse %q: N shortfall of %d (target_N %d, actual_N %d)", name, w.TargetN-actualN, w.TargetN, actualN))
		}
	}
}

func checkLowGrade(schedule roster.Schedule, demand *calendar.Demand, alloc *wallet.Result, report *roster.ValidationReport) {
	lowGradeDuties := [3]duty.Duty{duty.D, duty.E, duty.N}
	for day := 1; day <= demand.NumDays; day++ {
		for _, d := range lowGradeDuties {
			count := 0
			for name, days := range schedule {
				if alloc.Nurses[name].Nurse.IsLowGrade && days[day] == d {
					count++
				}
			}
			if count > 1 {
				report.LowGradeSatisfied = false
				report.Violations = append(report.Violations, fmt.Sprintf(
					"day %d: %d low-grade nurses assigned duty %s", day, count, d))
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
