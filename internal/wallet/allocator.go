// Package wallet is the Nurse Classifier & Wallet Allocator: the
// arithmetic heart of the roster builder (spec.md §4.2). It partitions
// nurses into keep-type x lifecycle categories, derives the residual N/X
// supply available to rotating (All, existing) nurses, and allocates a
// per-nurse {N, X} monthly wallet, applying special_days credit and
// preference deductions last.
package wallet

import (
	"math"
	"sort"

	"github.com/tolga/wardroster/internal/calendar"
	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/rostererr"
)

// NightFixedNCap is the legal night-shift cap for NightFixed existing
// nurses, fixed by policy (spec.md §4.2 Step 3).
const NightFixedNCap = 15

// NurseInfo is a nurse's resolved category and active window, computed
// once by Allocate and reused by the Constraint Model Builder and the
// Result Validator.
type NurseInfo struct {
	Nurse    roster.Nurse
	Category Category
	StartDay int // first active day, 1 for existing/leavers
	LastDay  int // last active day, num_days for existing/joiners
	NCount   int // declared n_count, for joiners/leavers only
}

// ActiveWindow returns the inclusive [StartDay, LastDay] range during
// which the nurse is actually working.
func (n NurseInfo) ActiveWindow() (int, int) {
	return n.StartDay, n.LastDay
}

// InWindow reports whether day falls inside the nurse's active window.
func (n NurseInfo) InWindow(day int) bool {
	return day >= n.StartDay && day <= n.LastDay
}

// Result is the output of Allocate.
type Result struct {
	// Order lists every nurse name in the request's original stable order
	// (spec.md §4.2 Step 5 "by stable order"), the order the Constraint
	// Model Builder declares its variables in, for deterministic,
	// reproducible model construction — Nurses and Wallets are maps and
	// carry no order of their own.
	Order       []string
	Nurses      map[string]NurseInfo
	Wallets     map[string]roster.NurseWallet
	Trace       map[string][]roster.WalletEntry
	SpecialDaysRemaining map[string]int
	MinNLowerBound int
	MinNUpperBound int
}

// Allocate runs spec.md §4.2 Steps 1-8 and returns each nurse's {N, X}
// wallet.
func Allocate(req *roster.Request, demand *calendar.Demand) (*Result, error) {
	nurses, order, err := partition(req, demand.NumDays)
	if err != nil {
		return nil, err
	}

	_, _, totalN, totalX := monthlyTotals(demand)

	residualN, residualX, err := adjustForFixedCategories(nurses, demand, totalN, totalX)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Order:                order,
		Nurses:               nurses,
		Wallets:              make(map[string]roster.NurseWallet, len(nurses)),
		Trace:                make(map[string][]roster.WalletEntry, len(nurses)),
		SpecialDaysRemaining: make(map[string]int, len(nurses)),
	}

	allExisting := namesInCategory(order, nurses, AllExisting)

	lower, upper, err := nBounds(residualN, len(allExisting))
	if err != nil {
		return nil, err
	}
	res.MinNLowerBound, res.MinNUpperBound = lower, upper

	if len(allExisting) > 0 {
		minN := req.NurseWalletMin.N
		if minN < lower {
			return nil, &rostererr.MinNTooLow{Requested: minN, LowerBound: lower, UpperBound: upper}
		}
		if minN > upper {
			return nil, &rostererr.MinNTooHigh{Requested: minN, LowerBound: lower, UpperBound: upper}
		}
		targetN := minN + 1
		for _, name := range allExisting {
			res.Wallets[name] = roster.NurseWallet{TargetN: targetN}
			res.Trace[name] = append(res.Trace[name], roster.WalletEntry{
				Reason: "all-existing N allocation (min_N+1 buffer)", DeltaN: targetN,
			})
		}
	}

	allocateX(res, allExisting, residualX)

	for name, info := range nurses {
		fixedWallet(res, name, info, demand)
	}

	for name, info := range nurses {
		w := res.Wallets[name]
		w.TargetX += info.Nurse.SpecialDays
		res.Wallets[name] = w
		res.SpecialDaysRemaining[name] = info.Nurse.SpecialDays
		if info.Nurse.SpecialDays > 0 {
			res.Trace[name] = append(res.Trace[name], roster.WalletEntry{
				Reason: "special_days credit", DeltaX: info.Nurse.SpecialDays,
			})
		}
	}

	deductPreferences(res, req.Preferences, nurses)

	return res, nil
}

// partition implements spec.md §4.2 Step 1: classify every nurse by
// keep-type and lifecycle (existing/joiner/leaver), resolved from the
// nurses/new/quit arrays joined by name.
func partition(req *roster.Request, numDays int) (map[string]NurseInfo, []string, error) {
	joiners := make(map[string]roster.JoinerRecord, len(req.New))
	for _, j := range req.New {
		joiners[j.Name] = j
	}
	leavers := make(map[string]roster.LeaverRecord, len(req.Quit))
	for _, l := range req.Quit {
		leavers[l.Name] = l
	}

	out := make(map[string]NurseInfo, len(req.Nurses))
	order := make([]string, 0, len(req.Nurses))
	for _, n := range req.Nurses {
		j, isJoiner := joiners[n.Name]
		l, isLeaver := leavers[n.Name]

		info := NurseInfo{
			Nurse:    n,
			Category: classify(n.KeepType, isJoiner, isLeaver),
			StartDay: 1,
			LastDay:  numDays,
		}
		if isJoiner {
			info.StartDay = j.StartDay
			info.NCount = j.NCount
		}
		if isLeaver {
			info.LastDay = l.LastDay
			info.NCount = l.NCount
		}
		out[n.Name] = info
		order = append(order, n.Name)
	}
	return out, order, nil
}

// monthlyTotals implements spec.md §4.2 Step 2.
func monthlyTotals(demand *calendar.Demand) (d, e, n, x int) {
	for day := 1; day <= demand.NumDays; day++ {
		counts := demand.Wallet[day]
		d += counts.D
		e += counts.E
		n += counts.N
		x += counts.X
	}
	return
}

// autoX implements the auto_x_in_work_period formula of spec.md §4.2
// Step 3: floor(weekends_in_month * (work_days/num_days)).
func autoX(weekendsInMonth, workDays, numDays int) int {
	if numDays == 0 {
		return 0
	}
	return int(math.Floor(float64(weekendsInMonth) * float64(workDays) / float64(numDays)))
}

func weekendsInRange(demand *calendar.Demand, from, to int) int {
	count := 0
	for day := from; day <= to; day++ {
		if demand.WeekendLike[day] {
			count++
		}
	}
	return count
}

// adjustForFixedCategories implements spec.md §4.2 Step 3: subtract
// everything consumed by fixed categories and transients from the
// month's total N/X to get the residual available to All-existing
// nurses.
func adjustForFixedCategories(nurses map[string]NurseInfo, demand *calendar.Demand, totalN, totalX int) (int, int, error) {
	residualN, residualX := totalN, totalX
	numDays := demand.NumDays
	weekendsInMonth := demand.WeekendsInMonth

	for _, info := range nurses {
		switch info.Category {
		case NightFixedExisting:
			residualN -= NightFixedNCap
			residualX -= numDays - NightFixedNCap
		case DayFixedExisting:
			residualX -= weekendsInMonth
		case NightFixedJoiner, NightFixedLeaver:
			residualN -= info.NCount
			residualX -= numDays - info.NCount
		case DayFixedJoiner:
			workWeekends := weekendsInRange(demand, info.StartDay, numDays)
			residualX -= (info.StartDay - 1) + workWeekends
		case DayFixedLeaver:
			workWeekends := weekendsInRange(demand, 1, info.LastDay)
			residualX -= workWeekends + (numDays - info.LastDay)
		case AllJoiner:
			workDays := numDays - info.StartDay + 1
			residualN -= info.NCount
			residualX -= (info.StartDay - 1) + autoX(weekendsInMonth, workDays, numDays)
		case AllLeaver:
			workDays := info.LastDay
			residualN -= info.NCount
			residualX -= autoX(weekendsInMonth, workDays, numDays) + (numDays - info.LastDay)
		}
		residualX -= info.Nurse.SpecialDays
	}

	return residualN, residualX, nil
}

// nBounds implements spec.md §4.2 Step 4's feasibility check:
// ceil(Nr/K) - 1 <= min_N <= floor(Nr/K).
func nBounds(residualN, k int) (lower, upper int, err error) {
	if k == 0 {
		return 0, 0, nil
	}
	upper = residualN / k
	lower = int(math.Ceil(float64(residualN)/float64(k))) - 1
	return lower, upper, nil
}

// allocateX implements spec.md §4.2 Step 5: distribute residual X among
// All-existing nurses, floor(Xr/K) each plus one more to the first
// Xr mod K by stable order, then add the +1 solver-room buffer to every
// All-existing nurse's target_X.
func allocateX(res *Result, allExisting []string, residualX int) {
	k := len(allExisting)
	if k == 0 {
		return
	}
	base := residualX / k
	remainder := residualX % k
	if remainder < 0 {
		remainder = 0
	}

	for i, name := range allExisting {
		x := base
		if i < remainder {
			x++
		}
		x++ // +1 buffer, mirrors the N allocation's min_N+1 buffer.
		w := res.Wallets[name]
		w.TargetX = x
		res.Wallets[name] = w
		res.Trace[name] = append(res.Trace[name], roster.WalletEntry{
			Reason: "all-existing X allocation (+1 buffer)", DeltaX: x,
		})
	}
}

// fixedWallet implements spec.md §4.2 Step 6 for every non-AllExisting
// category (AllExisting's N/X were already set by the Step 4/5 loops).
func fixedWallet(res *Result, name string, info NurseInfo, demand *calendar.Demand) {
	numDays := demand.NumDays
	weekendsInMonth := demand.WeekendsInMonth

	var w roster.NurseWallet
	var reason string

	switch info.Category {
	case DayFixedExisting:
		w = roster.NurseWallet{TargetN: 0, TargetX: weekendsInMonth}
		reason = "day-fixed existing wallet"
	case NightFixedExisting:
		w = roster.NurseWallet{TargetN: NightFixedNCap, TargetX: numDays - NightFixedNCap}
		reason = "night-fixed existing wallet"
	case DayFixedJoiner:
		workWeekends := weekendsInRange(demand, info.StartDay, numDays)
		w = roster.NurseWallet{TargetN: 0, TargetX: (info.StartDay - 1) + workWeekends}
		reason = "day-fixed joiner wallet"
	case DayFixedLeaver:
		workWeekends := weekendsInRange(demand, 1, info.LastDay)
		w = roster.NurseWallet{TargetN: 0, TargetX: workWeekends + (numDays - info.LastDay)}
		reason = "day-fixed leaver wallet"
	case NightFixedJoiner, NightFixedLeaver:
		n := info.NCount
		w = roster.NurseWallet{TargetN: n, TargetX: numDays - n}
		reason = "night-fixed joiner/leaver wallet"
	case AllJoiner:
		workDays := numDays - info.StartDay + 1
		n := info.NCount
		w = roster.NurseWallet{
			TargetN: n,
			TargetX: (info.StartDay - 1) + autoX(weekendsInMonth, workDays, numDays),
		}
		reason = "all-type joiner wallet"
	case AllLeaver:
		workDays := info.LastDay
		n := info.NCount
		w = roster.NurseWallet{
			TargetN: n,
			TargetX: autoX(weekendsInMonth, workDays, numDays) + (numDays - info.LastDay),
		}
		reason = "all-type leaver wallet"
	default:
		return // AllExisting already populated.
	}

	res.Wallets[name] = w
	res.Trace[name] = append(res.Trace[name], roster.WalletEntry{Reason: reason, DeltaN: w.TargetN, DeltaX: w.TargetX})
}

// deductPreferences implements spec.md §4.2 Step 8: decrement the N/X
// wallet for preferences inside the active window, honoring the first
// special_days X-preferences for free.
func deductPreferences(res *Result, prefs []roster.Preference, nurses map[string]NurseInfo) {
	for _, pref := range prefs {
		info, ok := nurses[pref.NurseName]
		if !ok {
			continue
		}
		// Days already stable-ordered by map key for determinism.
		days := make([]int, 0, len(pref.Schedule))
		for day := range pref.Schedule {
			days = append(days, day)
		}
		sort.Ints(days)

		for _, day := range days {
			d := pref.Schedule[day]
			if !info.InWindow(day) {
				continue // forced-X period; silently skipped (spec.md §4.2 Step 8).
			}
			if d != duty.N && d != duty.X {
				continue // D/E preferences are consumed by the daily wallet, not the nurse wallet.
			}

			w := res.Wallets[pref.NurseName]
			if d == duty.X {
				remaining := res.SpecialDaysRemaining[pref.NurseName]
				if remaining > 0 {
					res.SpecialDaysRemaining[pref.NurseName] = remaining - 1
					continue
				}
				w.TargetX--
			} else {
				w.TargetN--
			}
			res.Wallets[pref.NurseName] = w
			res.Trace[pref.NurseName] = append(res.Trace[pref.NurseName], roster.WalletEntry{
				Reason: "preference deduction",
				DeltaN: boolToInt(d == duty.N) * -1,
				DeltaX: boolToInt(d == duty.X) * -1,
			})
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// namesInCategory returns the names in cat, preserving the nurses array's
// original request order (spec.md §4.2 Step 5: "by stable order").
func namesInCategory(order []string, nurses map[string]NurseInfo, cat Category) []string {
	var names []string
	for _, name := range order {
		if nurses[name].Category == cat {
			names = append(names, name)
		}
	}
	return names
}
