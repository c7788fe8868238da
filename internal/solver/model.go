// Package solver is the Constraint Model Builder & Solver Driver
// (spec.md §4.4). It declares the boolean assignment grid, attaches
// constraints C1-C10, and drives the external MIP engine
// (github.com/nextmv-io/sdk/mip) to an assignment.
package solver

import (
	"github.com/nextmv-io/sdk/mip"

	"github.com/tolga/wardroster/internal/calendar"
	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/wallet"
)

// Model wraps the mip.Model together with the boolean variable grid and
// the bookkeeping needed to extract a schedule from a solution.
type Model struct {
	M       mip.Model
	X       map[string]map[int]map[duty.Duty]mip.Bool // nurse -> day -> duty -> var
	Order   []string                                  // nurse names, stable request order
	NumDays int
	MinN    int
}

// Build declares x[nurse,day,duty] for every nurse and day in [1,num_days]
// and attaches constraints C1-C10 plus the objective (spec.md §4.4).
func Build(req *roster.Request, demand *calendar.Demand, alloc *wallet.Result) (*Model, error) {
	m := mip.NewModel()

	md := &Model{
		M:       m,
		X:       make(map[string]map[int]map[duty.Duty]mip.Bool, len(alloc.Nurses)),
		Order:   make([]string, 0, len(alloc.Nurses)),
		NumDays: demand.NumDays,
		MinN:    req.NurseWalletMin.N,
	}

	for _, name := range alloc.Order {
		md.Order = append(md.Order, name)
		md.X[name] = make(map[int]map[duty.Duty]mip.Bool, demand.NumDays)
		for day := 1; day <= demand.NumDays; day++ {
			slots := make(map[duty.Duty]mip.Bool, 4)
			for _, d := range duty.All {
				slots[d] = m.NewBool()
			}
			md.X[name][day] = slots
		}
	}

	addUniqueDutyConstraints(m, md)
	addDailyDemandConstraints(m, md, demand)
	addWalletConstraints(m, md, alloc, demand, req.MaxConsecutiveWork)
	addPreferenceConstraints(m, md, req, alloc)
	addJoinerLeaverForcing(m, md, alloc)
	addKeepTypeRestrictions(m, md, alloc)
	addTransitionConstraints(m, md, alloc)
	addLowGradeConstraints(m, md, alloc, demand)
	addConsecutiveWorkCap(m, md, alloc, req.MaxConsecutiveWork)
	addObjective(m, md, alloc)

	return md, nil
}

// C1 — unique duty: for each (nurse, day), exactly one duty is assigned.
func addUniqueDutyConstraints(m mip.Model, md *Model) {
	for _, name := range md.Order {
		for day := 1; day <= md.NumDays; day++ {
			c := m.NewConstraint(mip.Equal, 1.0)
			for _, d := range duty.All {
				c.NewTerm(1.0, md.X[name][day][d])
			}
		}
	}
}

// C2 — daily demand: for each (day, duty), the sum across nurses matches
// the daily wallet.
func addDailyDemandConstraints(m mip.Model, md *Model, demand *calendar.Demand) {
	for day := 1; day <= md.NumDays; day++ {
		counts := demand.Wallet[day]
		for _, d := range duty.All {
			c := m.NewConstraint(mip.Equal, float64(counts.Get(d)))
			for _, name := range md.Order {
				c.NewTerm(1.0, md.X[name][day][d])
			}
		}
	}
}

// addActualTerms builds a linear expression (as constraint terms) for the
// count of a given duty across a nurse's active window.
func addActualTerms(c mip.Constraint, coef float64, md *Model, name string, d duty.Duty, from, to int) {
	for day := from; day <= to; day++ {
		if day < 1 || day > md.NumDays {
			continue
		}
		c.NewTerm(coef, md.X[name][day][d])
	}
}

// C3 — per-nurse wallet bounds, per spec.md §4.2 table / §4.4 C3.
func addWalletConstraints(m mip.Model, md *Model, alloc *wallet.Result, demand *calendar.Demand, maxConsecutiveWork int) {
	for _, name := range md.Order {
		info := alloc.Nurses[name]
		w := alloc.Wallets[name]
		from, to := info.ActiveWindow()

		switch {
		case info.Category.IsJoiner() || info.Category.IsLeaver():
			// |actual_N - target_N| <= 1
			upperN := m.NewConstraint(mip.LessThanOrEqual, float64(w.TargetN)+1)
			addActualTerms(upperN, 1.0, md, name, duty.N, from, to)
			lowerN := m.NewConstraint(mip.GreaterThanOrEqual, float64(w.TargetN)-1)
			addActualTerms(lowerN, 1.0, md, name, duty.N, from, to)
			// actual_X <= target_X + 1
			upperX := m.NewConstraint(mip.LessThanOrEqual, float64(w.TargetX)+1)
			addActualTerms(upperX, 1.0, md, name, duty.X, from, to)

		case info.Category == wallet.NightFixedExisting:
			eqN := m.NewConstraint(mip.Equal, float64(wallet.NightFixedNCap))
			addActualTerms(eqN, 1.0, md, name, duty.N, from, to)
			eqD := m.NewConstraint(mip.Equal, 0)
			addActualTerms(eqD, 1.0, md, name, duty.D, from, to)
			eqE := m.NewConstraint(mip.Equal, 0)
			addActualTerms(eqE, 1.0, md, name, duty.E, from, to)
			upperX := m.NewConstraint(mip.LessThanOrEqual, float64(w.TargetX)+1)
			addActualTerms(upperX, 1.0, md, name, duty.X, from, to)

		case info.Category == wallet.DayFixedExisting:
			eqN := m.NewConstraint(mip.Equal, 0)
			addActualTerms(eqN, 1.0, md, name, duty.N, from, to)
			eqE := m.NewConstraint(mip.Equal, 0)
			addActualTerms(eqE, 1.0, md, name, duty.E, from, to)
			upperX := m.NewConstraint(mip.LessThanOrEqual, float64(w.TargetX)+1)
			addActualTerms(upperX, 1.0, md, name, duty.X, from, to)
			upperD := m.NewConstraint(mip.LessThanOrEqual, float64(demand.WeekdaysInMonth)+1)
			addActualTerms(upperD, 1.0, md, name, duty.D, from, to)
			lowerD := m.NewConstraint(mip.GreaterThanOrEqual, float64(demand.WeekdaysInMonth)-1)
			addActualTerms(lowerD, 1.0, md, name, duty.D, from, to)

		default: // AllExisting
			lowerN := m.NewConstraint(mip.GreaterThanOrEqual, float64(md.MinN))
			addActualTerms(lowerN, 1.0, md, name, duty.N, from, to)
			upperN := m.NewConstraint(mip.LessThanOrEqual, float64(w.TargetN)+1)
			addActualTerms(upperN, 1.0, md, name, duty.N, from, to)
			upperX := m.NewConstraint(mip.LessThanOrEqual, float64(w.TargetX)+1)
			addActualTerms(upperX, 1.0, md, name, duty.X, from, to)
		}

		if info.Nurse.SpecialDays > 0 {
			lowerX := m.NewConstraint(mip.GreaterThanOrEqual, float64(w.TargetX)-1)
			addActualTerms(lowerX, 1.0, md, name, duty.X, from, to)
		}
	}
}

// C4 — preferences: fix x[nurse,day,duty]=1 for each preference whose day
// falls inside the nurse's active window.
func addPreferenceConstraints(m mip.Model, md *Model, req *roster.Request, alloc *wallet.Result) {
	for _, pref := range req.Preferences {
		info, ok := alloc.Nurses[pref.NurseName]
		if !ok {
			continue
		}
		for day, d := range pref.Schedule {
			if day < 1 || day > md.NumDays || !info.InWindow(day) {
				continue
			}
			fixVar(m, md.X[pref.NurseName][day][d], 1)
		}
	}
}

// C5/C6 — joiner pre-start and leaver post-end days are forced to X.
func addJoinerLeaverForcing(m mip.Model, md *Model, alloc *wallet.Result) {
	for _, name := range md.Order {
		info := alloc.Nurses[name]
		if info.Category.IsJoiner() {
			for day := 1; day < info.StartDay && day <= md.NumDays; day++ {
				fixVar(m, md.X[name][day][duty.X], 1)
			}
		}
		if info.Category.IsLeaver() {
			for day := info.LastDay + 1; day <= md.NumDays; day++ {
				fixVar(m, md.X[name][day][duty.X], 1)
			}
		}
	}
}

// C7 — keep-type restrictions.
func addKeepTypeRestrictions(m mip.Model, md *Model, alloc *wallet.Result) {
	for _, name := range md.Order {
		kt := alloc.Nurses[name].Category.KeepType()
		for day := 1; day <= md.NumDays; day++ {
			for _, d := range duty.All {
				if !kt.Allowed(d) {
					fixVar(m, md.X[name][day][d], 0)
				}
			}
		}
	}
}

// fixVar pins a boolean variable to a constant via an equality constraint.
func fixVar(m mip.Model, v mip.Bool, value float64) {
	c := m.NewConstraint(mip.Equal, value)
	c.NewTerm(1.0, v)
}

// C9 — Low-Grade: at most one low-grade nurse per (day, duty in {D,E,N}).
// The pre-build feasibility guard lives in internal/validate.
func addLowGradeConstraints(m mip.Model, md *Model, alloc *wallet.Result, demand *calendar.Demand) {
	var lowGrade []string
	for _, name := range md.Order {
		if alloc.Nurses[name].Nurse.IsLowGrade {
			lowGrade = append(lowGrade, name)
		}
	}
	if len(lowGrade) == 0 {
		return
	}

	lowGradeDuties := [3]duty.Duty{duty.D, duty.E, duty.N}
	for day := 1; day <= demand.NumDays; day++ {
		for _, d := range lowGradeDuties {
			c := m.NewConstraint(mip.LessThanOrEqual, 1.0)
			for _, name := range lowGrade {
				c.NewTerm(1.0, md.X[name][day][d])
			}
		}
	}
}

// C10 — consecutive-work cap: in every window of length max_consecutive_work+1
// fully inside the nurse's active window, at least one day is X.
func addConsecutiveWorkCap(m mip.Model, md *Model, alloc *wallet.Result, maxConsecutiveWork int) {
	w := maxConsecutiveWork + 1
	for _, name := range md.Order {
		info := alloc.Nurses[name]
		from, to := info.ActiveWindow()
		for start := from; start+w-1 <= to; start++ {
			c := m.NewConstraint(mip.GreaterThanOrEqual, 1.0)
			for day := start; day < start+w; day++ {
				c.NewTerm(1.0, md.X[name][day][duty.X])
			}
		}
		// Additional guard: if past_3days carries zero X entries, at
		// least one X must occur in days [1, w-3] (spec.md §4.4 C10).
		if noXInPast(info.Nurse.Past3Days) {
			lastDay := w - 3
			if lastDay > to {
				lastDay = to
			}
			if lastDay >= from {
				c := m.NewConstraint(mip.GreaterThanOrEqual, 1.0)
				for day := from; day <= lastDay; day++ {
					c.NewTerm(1.0, md.X[name][day][duty.X])
				}
			}
		}
	}
}

func noXInPast(past [3]duty.Duty) bool {
	for _, d := range past {
		if d == duty.X {
			return false
		}
	}
	return true
}

// Objective: maximize D-vs-E preference balance if any All nurse declared
// one, else a trivial constant (any feasible solution is acceptable).
func addObjective(m mip.Model, md *Model, alloc *wallet.Result) {
	m.Objective().SetMaximize()
	for _, name := range md.Order {
		info := alloc.Nurses[name]
		if info.Category.KeepType() != duty.KeepAll {
			continue
		}
		from, to := info.ActiveWindow()
		switch info.Nurse.DEPreference {
		case duty.PreferD:
			for day := from; day <= to; day++ {
				m.Objective().NewTerm(1.0, md.X[name][day][duty.D])
				m.Objective().NewTerm(-1.0, md.X[name][day][duty.E])
			}
		case duty.PreferE:
			for day := from; day <= to; day++ {
				m.Objective().NewTerm(1.0, md.X[name][day][duty.E])
				m.Objective().NewTerm(-1.0, md.X[name][day][duty.D])
			}
		}
	}
	// If no nurse declared a preference, the objective carries no terms:
	// every feasible solution is then optimal (spec.md §4.4 Objective).
}
