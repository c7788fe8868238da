package solver

import (
	"github.com/nextmv-io/sdk/mip"

	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/wallet"
	"github.com/tolga/wardroster/internal/zrules"
)

// window is one 3-day sliding window touching a nurse's schedule, plus
// the day whose duty it constrains.
type window struct {
	days [3]int // may be negative (synthetic past_3days slots -3,-2,-1)
	next int
}

// nurseWindows enumerates every 3-day window spec.md §4.4 C8 requires:
// the three windows bridging past_3days into the month, then every
// (t, t+1, t+2) sliding window inside it.
func nurseWindows(numDays int) []window {
	windows := []window{
		{days: [3]int{-3, -2, -1}, next: 1},
		{days: [3]int{-2, -1, 1}, next: 2},
		{days: [3]int{-1, 1, 2}, next: 3},
	}
	for t := 1; t <= numDays-2; t++ {
		windows = append(windows, window{days: [3]int{t, t + 1, t + 2}, next: t + 3})
	}
	return windows
}

// literal is one slot of a candidate pattern: either a solver variable or
// a compile-time-known constant (from a fixed past_3days day).
type literal struct {
	isConst bool
	constOK bool // only meaningful if isConst
	v       mip.Bool
}

func slotLiteral(md *Model, name string, day int, want duty.Duty, past [3]duty.Duty) literal {
	if day < 0 {
		// Synthetic slot: -3, -2, -1 map to past[0], past[1], past[2].
		actual := past[day+3]
		return literal{isConst: true, constOK: actual == want}
	}
	return literal{v: md.X[name][day][want]}
}

// addTransitionConstraints implements spec.md §4.4 C8: for every 3-day
// window and every candidate pattern, either forbid the conjunction
// outright (pattern absent from Z_RULES) or, for an allowed pattern,
// forbid every next-day duty not in Z_RULES[index] whenever the
// conjunction holds. Fixed past_3days slots collapse to constants before
// any solver variable is touched (Design Note "Reified pattern matches").
func addTransitionConstraints(m mip.Model, md *Model, alloc *wallet.Result) {
	for _, name := range md.Order {
		info := alloc.Nurses[name]
		from, to := info.ActiveWindow()
		past := info.Nurse.Past3Days

		for _, w := range nurseWindows(md.NumDays) {
			if windowOutsideActiveWindow(w, from, to, md.NumDays) {
				continue // forced-X region; legal by construction.
			}

			for _, p1 := range duty.All {
				for _, p2 := range duty.All {
					for _, p3 := range duty.All {
						addPatternConstraint(m, md, name, w, [3]duty.Duty{p1, p2, p3}, past)
					}
				}
			}
		}
	}
}

// windowOutsideActiveWindow reports whether any in-month day touched by w
// falls outside [from, to]. Synthetic past_3days slots (day < 1) and the
// virtual "day after the month" a trailing window's next may point to
// (day > numDays) are never considered outside: they carry no variable to
// check in the first place.
func windowOutsideActiveWindow(w window, from, to, numDays int) bool {
	touched := [4]int{w.days[0], w.days[1], w.days[2], w.next}
	for _, day := range touched {
		if day < 1 || day > numDays {
			continue
		}
		if day < from || day > to {
			return true
		}
	}
	return false
}

func addPatternConstraint(m mip.Model, md *Model, name string, w window, pattern [3]duty.Duty, past [3]duty.Duty) {
	lits := [3]literal{
		slotLiteral(md, name, w.days[0], pattern[0], past),
		slotLiteral(md, name, w.days[1], pattern[1], past),
		slotLiteral(md, name, w.days[2], pattern[2], past),
	}

	// Collapse fixed slots first: a mismatched constant means this
	// pattern can never hold in this window, so there is nothing to
	// constrain (short-circuit, per Design Note "Reified pattern
	// matches").
	var vars []mip.Bool
	for _, l := range lits {
		if l.isConst {
			if !l.constOK {
				return
			}
			continue
		}
		vars = append(vars, l.v)
	}

	idx := zrules.Index(pattern[0], pattern[1], pattern[2])
	allowedNext, isAllowed := zrules.Table[idx]

	if len(vars) == 0 {
		// All three slots fixed and matching: the pattern is a certainty
		// for this nurse. An allowed certainty restricts the next day
		// directly; a forbidden certainty cannot occur (the Input
		// Validator already rejects this nurse before the model is
		// built).
		if isAllowed {
			forbidNextDuties(m, md, name, w.next, allowedNext)
		}
		return
	}

	if !isAllowed {
		// Forbid the conjunction outright: not all literals may be true
		// at once.
		c := m.NewConstraint(mip.LessThanOrEqual, float64(len(vars)-1))
		for _, v := range vars {
			c.NewTerm(1.0, v)
		}
		return
	}

	// Allowed pattern: reify the conjunction into an auxiliary y (the
	// AND-gate encoding of Design Note "Reified pattern matches"), then
	// forbid every next-day duty not in Z_RULES[idx] whenever y holds.
	y := reifyConjunction(m, vars)
	forbidNextDutiesGivenY(m, md, name, w.next, allowedNext, y)
}

// reifyConjunction builds an auxiliary boolean y == AND(vars), using the
// standard linearization: y <= v_i for every i, and y >= sum(v_i) - (k-1).
func reifyConjunction(m mip.Model, vars []mip.Bool) mip.Bool {
	y := m.NewBool()
	for _, v := range vars {
		upper := m.NewConstraint(mip.LessThanOrEqual, 0)
		upper.NewTerm(1.0, y)
		upper.NewTerm(-1.0, v)
	}
	lower := m.NewConstraint(mip.GreaterThanOrEqual, float64(-(len(vars) - 1)))
	lower.NewTerm(1.0, y)
	for _, v := range vars {
		lower.NewTerm(-1.0, v)
	}
	return y
}

// forbidNextDuties fixes x[name,next,duty]=0 for every duty not allowed,
// used when the preceding pattern is a compile-time certainty.
func forbidNextDuties(m mip.Model, md *Model, name string, next int, allowed map[duty.Duty]struct{}) {
	if next < 1 || next > md.NumDays {
		return
	}
	for _, d := range duty.All {
		if _, ok := allowed[d]; !ok {
			fixVar(m, md.X[name][next][d], 0)
		}
	}
}

// forbidNextDutiesGivenY adds x[name,next,duty] + y <= 1 for every
// disallowed next-day duty, the linearized form of "y => duty forbidden".
func forbidNextDutiesGivenY(m mip.Model, md *Model, name string, next int, allowed map[duty.Duty]struct{}, y mip.Bool) {
	if next < 1 || next > md.NumDays {
		return
	}
	for _, d := range duty.All {
		if _, ok := allowed[d]; !ok {
			c := m.NewConstraint(mip.LessThanOrEqual, 1.0)
			c.NewTerm(1.0, md.X[name][next][d])
			c.NewTerm(1.0, y)
		}
	}
}
