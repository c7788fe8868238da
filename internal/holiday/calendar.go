// Package holiday supplies the roster builder's holiday oracle: a pure
// function from (year) to the set of calendar dates observed as public
// holidays, injected into the Calendar & Demand Builder so a day can be
// classified weekend-like without a network lookup.
package holiday

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MonthDay identifies a day within a year, independent of weekday.
type MonthDay struct {
	Month time.Month
	Day   int
}

// Oracle resolves the set of public holidays observed in a given year.
// Implementations must be pure: the same year always yields the same set,
// so a caller may cache results across requests.
type Oracle interface {
	Holidays(year int) (map[MonthDay]struct{}, error)
}

// GermanOracle implements Oracle using the Bundesland holiday calendar
// generated by Generate. A ward's region determines not just which extra
// holidays apply but how many weekend-like days fall in a given month,
// which in turn shifts the Calendar & Demand Builder's weekend/weekday
// aggregates the wallet allocator depends on (SPEC_FULL.md §4.1) — two
// wards in different states running the same month can get different
// DailyWallet expansions purely from their Region.
type GermanOracle struct {
	State State
}

var (
	holidayCacheMu sync.Mutex
	holidayCache   = make(map[cacheKey]map[MonthDay]struct{})
)

type cacheKey struct {
	year  int
	state State
}

// Holidays returns the set of (month, day) pairs observed as holidays in
// the given year for the oracle's configured Bundesland, memoized per
// (year, state) since Generate is pure and a ward's operating region
// rarely changes between requests.
func (o GermanOracle) Holidays(year int) (map[MonthDay]struct{}, error) {
	key := cacheKey{year: year, state: o.State}

	holidayCacheMu.Lock()
	if cached, ok := holidayCache[key]; ok {
		holidayCacheMu.Unlock()
		return cached, nil
	}
	holidayCacheMu.Unlock()

	defs, err := Generate(year, o.State)
	if err != nil {
		return nil, err
	}
	out := make(map[MonthDay]struct{}, len(defs))
	for _, d := range defs {
		out[MonthDay{Month: d.Date.Month(), Day: d.Date.Day()}] = struct{}{}
	}

	holidayCacheMu.Lock()
	holidayCache[key] = out
	holidayCacheMu.Unlock()

	return out, nil
}

// State represents a German federal state (Bundesland).
type State string

const (
	StateBW State = "BW" // Baden-Wuerttemberg
	StateBY State = "BY" // Bayern
	StateBE State = "BE" // Berlin
	StateBB State = "BB" // Brandenburg
	StateHB State = "HB" // Bremen
	StateHH State = "HH" // Hamburg
	StateHE State = "HE" // Hessen
	StateMV State = "MV" // Mecklenburg-Vorpommern
	StateNI State = "NI" // Niedersachsen
	StateNW State = "NW" // Nordrhein-Westfalen
	StateRP State = "RP" // Rheinland-Pfalz
	StateSL State = "SL" // Saarland
	StateSN State = "SN" // Sachsen
	StateST State = "ST" // Sachsen-Anhalt
	StateSH State = "SH" // Schleswig-Holstein
	StateTH State = "TH" // Thueringen
)

var states = map[State]struct{}{
	StateBW: {}, StateBY: {}, StateBE: {}, StateBB: {}, StateHB: {}, StateHH: {},
	StateHE: {}, StateMV: {}, StateNI: {}, StateNW: {}, StateRP: {}, StateSL: {},
	StateSN: {}, StateST: {}, StateSH: {}, StateTH: {},
}

// Definition represents a generated holiday.
type Definition struct {
	Date time.Time
	Name string
}

// ParseState parses a Bundesland code (case-insensitive).
func ParseState(code string) (State, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	state := State(normalized)
	if _, ok := states[state]; !ok {
		return "", fmt.Errorf("unknown state: %s", code)
	}
	return state, nil
}

// holidayRule is one row of the Bundesland holiday table: a date anchored
// either to a fixed month/day or to an offset from Easter Sunday, plus the
// subset of states observing it (nil/empty means nationwide). Expressing
// the calendar this way collapses what the original generator spread
// across nine separate per-state switch statements into one table walked
// once, so adding or re-scoping a holiday is a one-row edit instead of a
// new switch arm.
type holidayRule struct {
	name       string
	month      time.Month
	day        int
	hasOffset  bool
	easterDays int
	states     []State // empty => nationwide
}

func (r holidayRule) appliesTo(state State) bool {
	if len(r.states) == 0 {
		return true
	}
	for _, s := range r.states {
		if s == state {
			return true
		}
	}
	return false
}

func (r holidayRule) date(year int, easter time.Time) time.Time {
	if r.hasOffset {
		return easter.AddDate(0, 0, r.easterDays)
	}
	return time.Date(year, r.month, r.day, 0, 0, 0, 0, time.UTC)
}

var holidayRules = []holidayRule{
	{name: "Neujahr", month: time.January, day: 1},
	{name: "Heilige Drei Koenige", month: time.January, day: 6, states: []State{StateBW, StateBY, StateST}},
	{name: "Internationaler Frauentag", month: time.March, day: 8, states: []State{StateBE, StateMV}},
	{name: "Karfreitag", hasOffset: true, easterDays: -2},
	{name: "Ostersonntag", hasOffset: true, easterDays: 0, states: []State{StateBB}},
	{name: "Ostermontag", hasOffset: true, easterDays: 1},
	{name: "Tag der Arbeit", month: time.May, day: 1},
	{name: "Christi Himmelfahrt", hasOffset: true, easterDays: 39},
	{name: "Pfingstsonntag", hasOffset: true, easterDays: 49, states: []State{StateBB}},
	{name: "Pfingstmontag", hasOffset: true, easterDays: 50},
	{name: "Fronleichnam", hasOffset: true, easterDays: 60, states: []State{StateBW, StateBY, StateHE, StateNW, StateRP, StateSL}},
	{name: "Mariae Himmelfahrt", month: time.August, day: 15, states: []State{StateBY, StateSL}},
	{name: "Tag der Deutschen Einheit", month: time.October, day: 3},
	{name: "Reformationstag", month: time.October, day: 31, states: []State{StateBB, StateMV, StateSN, StateST, StateTH, StateHB, StateHH, StateNI, StateSH}},
	{name: "Allerheiligen", month: time.November, day: 1, states: []State{StateBW, StateBY, StateNW, StateRP, StateSL}},
	{name: "Weltkindertag", month: time.September, day: 20, states: []State{StateTH}},
	{name: "1. Weihnachtstag", month: time.December, day: 25},
	{name: "2. Weihnachtstag", month: time.December, day: 26},
}

// Generate returns holidays for a given year and state.
func Generate(year int, state State) ([]Definition, error) {
	if year < 1900 || year > 2200 {
		return nil, fmt.Errorf("invalid year: %d", year)
	}
	if _, ok := states[state]; !ok {
		return nil, fmt.Errorf("unknown state: %s", state)
	}

	easter := easterSunday(year)
	holidayList := make([]Definition, 0, len(holidayRules)+1)
	for _, rule := range holidayRules {
		if !rule.appliesTo(state) {
			continue
		}
		holidayList = append(holidayList, Definition{Date: rule.date(year, easter), Name: rule.name})
	}

	// Buss- und Bettag isn't expressible as a fixed date or an Easter
	// offset: it's the Wednesday strictly before November 23rd, so it
	// gets its own computation rather than a table row.
	if state == StateSN {
		holidayList = append(holidayList, repentanceDay(year))
	}

	sort.Slice(holidayList, func(i, j int) bool {
		return holidayList[i].Date.Before(holidayList[j].Date)
	})

	return holidayList, nil
}

func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func repentanceDay(year int) Definition {
	date := time.Date(year, time.November, 23, 0, 0, 0, 0, time.UTC)
	// Step back one day to ensure the Wednesday is strictly before Nov 23.
	date = date.AddDate(0, 0, -1)
	for date.Weekday() != time.Wednesday {
		date = date.AddDate(0, 0, -1)
	}
	return Definition{Date: date, Name: "Buss- und Bettag"}
}
