// Package zrules holds the fixed 3-day transition legality table: the
// fatigue/safety policy that constrains which duty may follow any three
// consecutive days of duties. It is pure data (Design Note "3-day pattern
// table as data, not code"); nothing in this package depends on the rest
// of the roster builder.
package zrules

import "github.com/tolga/wardroster/internal/duty"

// Index computes the pattern index for three consecutive duties, per
// spec.md §3: 16*w[first] + 4*w[second] + w[third].
func Index(first, second, third duty.Duty) int {
	return 16*int(first) + 4*int(second) + int(third)
}

// Table maps each allowed pattern index (0-63) to the set of duties
// permitted on the day immediately following that pattern. An index
// absent from Table is forbidden: those three duties may never occur on
// three consecutive days.
var Table = buildTable()

// Allowed reports whether idx is an allowed pattern.
func Allowed(idx int) bool {
	_, ok := Table[idx]
	return ok
}

func buildTable() map[int]map[duty.Duty]struct{} {
	set := func(codes ...duty.Duty) map[duty.Duty]struct{} {
		s := make(map[duty.Duty]struct{}, len(codes))
		for _, c := range codes {
			s[c] = struct{}{}
		}
		return s
	}
	denx := set(duty.D, duty.E, duty.N, duty.X)
	enx := set(duty.E, duty.N, duty.X)
	n := set(duty.N)
	nx := set(duty.N, duty.X)
	xOnly := set(duty.X)
	ex := set(duty.E, duty.X)

	return map[int]map[duty.Duty]struct{}{
		0:  denx,
		1:  enx,
		2:  n,
		3:  denx,
		5:  enx,
		6:  n,
		7:  denx,
		10: nx,
		12: denx,
		13: enx,
		14: n,
		15: denx,
		21: enx,
		22: n,
		23: denx,
		26: nx,
		28: denx,
		29: enx,
		30: n,
		31: denx,
		42: xOnly,
		43: xOnly,
		45: ex,
		47: denx,
		48: denx,
		49: enx,
		50: n,
		51: denx,
		53: enx,
		54: n,
		55: denx,
		58: nx,
		60: denx,
		61: enx,
		62: n,
		63: denx,
	}
}
