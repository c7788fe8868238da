package wallet

import "github.com/tolga/wardroster/internal/duty"

// Category is the cross-product of keep-type and {existing, joiner,
// leaver} spec.md §4.2 Step 1 partitions nurses into.
type Category int

const (
	AllExisting Category = iota
	AllJoiner
	AllLeaver
	DayFixedExisting
	DayFixedJoiner
	DayFixedLeaver
	NightFixedExisting
	NightFixedJoiner
	NightFixedLeaver
)

// KeepType returns the duty.KeepType this category belongs to.
func (c Category) KeepType() duty.KeepType {
	switch c {
	case DayFixedExisting, DayFixedJoiner, DayFixedLeaver:
		return duty.KeepDayFixed
	case NightFixedExisting, NightFixedJoiner, NightFixedLeaver:
		return duty.KeepNightFixed
	default:
		return duty.KeepAll
	}
}

// IsJoiner reports whether the category is any joiner variant.
func (c Category) IsJoiner() bool {
	return c == AllJoiner || c == DayFixedJoiner || c == NightFixedJoiner
}

// IsLeaver reports whether the category is any leaver variant.
func (c Category) IsLeaver() bool {
	return c == AllLeaver || c == DayFixedLeaver || c == NightFixedLeaver
}

// IsExisting reports whether the category is neither a joiner nor a leaver.
func (c Category) IsExisting() bool {
	return !c.IsJoiner() && !c.IsLeaver()
}

func classify(kt duty.KeepType, joiner, leaver bool) Category {
	switch kt {
	case duty.KeepDayFixed:
		switch {
		case joiner:
			return DayFixedJoiner
		case leaver:
			return DayFixedLeaver
		default:
			return DayFixedExisting
		}
	case duty.KeepNightFixed:
		switch {
		case joiner:
			return NightFixedJoiner
		case leaver:
			return NightFixedLeaver
		default:
			return NightFixedExisting
		}
	default:
		switch {
		case joiner:
			return AllJoiner
		case leaver:
			return AllLeaver
		default:
			return AllExisting
		}
	}
}
