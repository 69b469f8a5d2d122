package utils

import "time"

// EasternLocation is the timezone for US equity markets.
var EasternLocation *time.Location

func init() {
	var err error
	EasternLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		EasternLocation = time.FixedZone("ET", -5*60*60)
	}
}

// MarketStatus describes the current session state.
type MarketStatus int

// Market session states.
const (
	MarketClosed MarketStatus = iota
	MarketPreOpen
	MarketOpen
)

// GetMarketStatus returns the current market status.
func GetMarketStatus(now time.Time) MarketStatus {
	now = now.In(EasternLocation)

	if IsWeekend(now) {
		return MarketClosed
	}

	timeMinutes := now.Hour()*60 + now.Minute()

	// Pre-open: 9:00 - 9:30
	if timeMinutes >= 540 && timeMinutes < 570 {
		return MarketPreOpen
	}

	// Regular session: 9:30 - 16:00
	if timeMinutes >= 570 && timeMinutes < 960 {
		return MarketOpen
	}

	return MarketClosed
}

// IsWeekend reports whether the given time falls on a Saturday or Sunday
// in US Eastern time.
func IsWeekend(t time.Time) bool {
	wd := t.In(EasternLocation).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SameTradingDay reports whether both times fall on the same calendar
// day in US Eastern time.
func SameTradingDay(a, b time.Time) bool {
	ae := a.In(EasternLocation)
	be := b.In(EasternLocation)
	return ae.Year() == be.Year() && ae.YearDay() == be.YearDay()
}

// MarketClose returns the 16:00 ET close for the given day.
func MarketClose(t time.Time) time.Time {
	e := t.In(EasternLocation)
	return time.Date(e.Year(), e.Month(), e.Day(), 16, 0, 0, 0, EasternLocation)
}

// HoursToClose returns the hours remaining until today's 16:00 ET
// close. For a same-day expiration this is the option's remaining life.
// Returns 0 once the close has passed.
func HoursToClose(now time.Time) float64 {
	return HoursUntilClose(now, now)
}

// HoursUntilClose returns the hours from now until the 16:00 ET close
// on the expiration's day. Returns 0 once that close has passed.
func HoursUntilClose(expiration, now time.Time) float64 {
	remaining := MarketClose(expiration).Sub(now.In(EasternLocation)).Hours()
	if remaining < 0 {
		return 0
	}
	return remaining
}
