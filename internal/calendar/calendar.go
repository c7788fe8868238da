// Package calendar builds the per-day staffing demand (the "daily
// wallet") for a given month, and the weekend/holiday aggregates the
// Nurse Classifier & Wallet Allocator needs (spec.md §4.1).
package calendar

import (
	"fmt"
	"time"

	"github.com/tolga/wardroster/internal/holiday"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/rostererr"
)

// Demand is the output of the Calendar & Demand Builder.
type Demand struct {
	NumDays          int
	Wallet           roster.DailyWallet
	WeekendLike      map[int]bool // day -> is this day weekend-like
	WeekendsInMonth  int
	WeekdaysInMonth  int
}

// Config is the Calendar & Demand Builder's per-ward input: the
// weekday/weekend staffing templates plus the ward's operating region,
// which selects the holiday set used to classify a day weekend-like
// (SPEC_FULL.md §4.1). Two wards running the same month in different
// regions can get different DailyWallet expansions purely from Region,
// since a region-specific holiday shifts a weekday to weekend-like.
//
// Oracle overrides the default German calculator; tests that need a
// deterministic or fake holiday set set it directly, leaving it nil
// elsewhere to get holiday.GermanOracle{State: Region}.
type Config struct {
	Templates roster.DailyWalletConfig
	Region    holiday.State
	Oracle    holiday.Oracle
}

// Build derives num_days, the per-day DailyWallet, and the weekend/weekday
// aggregates for (year, month), given the ward's config.
func Build(year, month int, cfg Config) (*Demand, error) {
	weekday, err := requireAllDuties(cfg.Templates.Weekday, "weekday")
	if err != nil {
		return nil, err
	}
	weekend, err := requireAllDuties(cfg.Templates.Weekend, "weekend")
	if err != nil {
		return nil, err
	}

	oracle := cfg.Oracle
	if oracle == nil {
		oracle = holiday.GermanOracle{State: cfg.Region}
	}
	holidays, err := oracle.Holidays(year)
	if err != nil {
		return nil, fmt.Errorf("holiday oracle: %w", err)
	}

	numDays := daysInMonth(year, month)
	demand := &Demand{
		NumDays:     numDays,
		Wallet:      make(roster.DailyWallet, numDays),
		WeekendLike: make(map[int]bool, numDays),
	}

	for day := 1; day <= numDays; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		_, isHoliday := holidays[holiday.MonthDay{Month: date.Month(), Day: date.Day()}]
		weekendLike := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday || isHoliday

		demand.WeekendLike[day] = weekendLike
		if weekendLike {
			demand.Wallet[day] = weekend
			demand.WeekendsInMonth++
		} else {
			demand.Wallet[day] = weekday
			demand.WeekdaysInMonth++
		}
	}

	return demand, nil
}

// requireAllDuties rejects a template missing any of the four duties
// (spec.md §4.1: "Fails with ConfigError if either template is missing
// any of the four duties").
func requireAllDuties(raw roster.RawDutyTemplate, name string) (roster.DutyCounts, error) {
	if missing := raw.MissingDuties(); len(missing) > 0 {
		return roster.DutyCounts{}, &rostererr.ConfigError{Template: name, Missing: missing[0]}
	}
	return raw.Counts(), nil
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
