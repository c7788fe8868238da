// Package validate is the Input Validator (spec.md §4.3): it rejects
// requests whose invariants cannot hold before any solver variable is ever
// created. Every check that fails contributes one problem string; the
// request fails atomically once all checks have run, mirroring the
// teacher's calculation package convention of returning every violation
// found rather than stopping at the first.
package validate

import (
	goerrors "github.com/go-openapi/errors"

	"github.com/tolga/wardroster/internal/calendar"
	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/rostererr"
	"github.com/tolga/wardroster/internal/zrules"
)

// Request runs all four spec.md §4.3 checks against req and demand. It
// returns a *rostererr.ValidationError (never a bare error) when any check
// fails, aggregated via go-openapi/errors' composite validation error so
// every problem is reported in one message, not just the first.
func Request(req *roster.Request, demand *calendar.Demand) error {
	var problems []error

	problems = append(problems, checkPast3Days(req)...)
	problems = append(problems, checkDailyWalletSums(req, demand)...)
	problems = append(problems, checkActiveWindowRange(req, demand)...)
	problems = append(problems, checkPreferenceOverflow(req, demand)...)

	if len(problems) == 0 {
		return nil
	}

	composite := goerrors.CompositeValidationError(problems...)
	messages := make([]string, len(composite.Errors))
	for i, e := range composite.Errors {
		messages[i] = e.Error()
	}
	return &rostererr.ValidationError{Problems: messages}
}

// checkPast3Days implements spec.md §4.3 check 1: the 3-day pattern
// encoded from past_3days must be a key of Z_RULES.
func checkPast3Days(req *roster.Request) []error {
	var problems []error
	for _, n := range req.Nurses {
		idx := zrules.Index(n.Past3Days[0], n.Past3Days[1], n.Past3Days[2])
		if !zrules.Allowed(idx) {
			problems = append(problems, goerrors.New(422,
				"nurse %q: past_3days pattern %v is not a legal Z_RULES pattern (index %d)",
				n.Name, n.Past3Days, idx))
		}
	}
	return problems
}

// checkDailyWalletSums implements spec.md §4.3 check 2: every day's
// DailyWallet must sum to the roster's nurse count.
func checkDailyWalletSums(req *roster.Request, demand *calendar.Demand) []error {
	var problems []error
	nurseCount := len(req.Nurses)
	for day := 1; day <= demand.NumDays; day++ {
		if sum := demand.Wallet[day].Sum(); sum != nurseCount {
			problems = append(problems, goerrors.New(422,
				"day %d: daily wallet sums to %d, want nurse_count %d", day, sum, nurseCount))
		}
	}
	return problems
}

// checkActiveWindowRange implements spec.md §4.3 check 3: start_day and
// last_day must fall inside [1, num_days].
func checkActiveWindowRange(req *roster.Request, demand *calendar.Demand) []error {
	var problems []error
	for _, j := range req.New {
		if j.StartDay < 1 || j.StartDay > demand.NumDays {
			problems = append(problems, goerrors.New(422,
				"joiner %q: start_day %d out of range [1, %d]", j.Name, j.StartDay, demand.NumDays))
		}
	}
	for _, l := range req.Quit {
		if l.LastDay < 1 || l.LastDay > demand.NumDays {
			problems = append(problems, goerrors.New(422,
				"leaver %q: last_day %d out of range [1, %d]", l.Name, l.LastDay, demand.NumDays))
		}
	}
	return problems
}

// checkPreferenceOverflow implements spec.md §4.3 check 4: the number of
// nurses preferring a duty on a day may not exceed that day's demand for
// the duty.
func checkPreferenceOverflow(req *roster.Request, demand *calendar.Demand) []error {
	var problems []error
	type dayDuty struct {
		day int
		d   duty.Duty
	}
	counts := make(map[dayDuty]int)
	for _, pref := range req.Preferences {
		for day, d := range pref.Schedule {
			counts[dayDuty{day, d}]++
		}
	}
	for key, count := range counts {
		if key.day < 1 || key.day > demand.NumDays {
			continue // out-of-range preference days are skipped here and not reported by any check
		}
		if limit := demand.Wallet[key.day].Get(key.d); count > limit {
			problems = append(problems, goerrors.New(422,
				"day %d: %d nurses prefer duty %s, exceeding demand of %d",
				key.day, count, key.d, limit))
		}
	}
	return problems
}

// LowGradeFeasible implements the C9 pre-build feasibility guard: reject
// the request before the model is ever built if there are more low-grade
// nurses than the tightest per-day D/E/N slot can host.
func LowGradeFeasible(req *roster.Request, cfg roster.DailyWalletConfig) error {
	lowGrade := 0
	for _, n := range req.Nurses {
		if n.IsLowGrade {
			lowGrade++
		}
	}
	if lowGrade == 0 {
		return nil
	}

	weekday := cfg.Weekday.Counts()
	weekend := cfg.Weekend.Counts()
	tightest := min6(weekday.D, weekday.E, weekday.N, weekend.D, weekend.E, weekend.N)

	if lowGrade > tightest {
		return &rostererr.LowGradeOverflow{LowGradeCount: lowGrade, TightestSlot: tightest}
	}
	return nil
}

func min6(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
