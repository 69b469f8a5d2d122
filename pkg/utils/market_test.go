package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eastern(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, EasternLocation)
}

func TestGetMarketStatus(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want MarketStatus
	}{
		{"weekday before preopen", eastern(2026, 3, 4, 8, 59), MarketClosed},
		{"preopen start", eastern(2026, 3, 4, 9, 0), MarketPreOpen},
		{"open bell", eastern(2026, 3, 4, 9, 30), MarketOpen},
		{"midday", eastern(2026, 3, 4, 12, 30), MarketOpen},
		{"last minute", eastern(2026, 3, 4, 15, 59), MarketOpen},
		{"close", eastern(2026, 3, 4, 16, 0), MarketClosed},
		{"saturday midday", eastern(2026, 3, 7, 12, 0), MarketClosed},
		{"sunday midday", eastern(2026, 3, 8, 12, 0), MarketClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetMarketStatus(tc.at))
		})
	}
}

func TestIsWeekend(t *testing.T) {
	assert.False(t, IsWeekend(eastern(2026, 3, 4, 12, 0)))
	assert.True(t, IsWeekend(eastern(2026, 3, 7, 12, 0)))
	assert.True(t, IsWeekend(eastern(2026, 3, 8, 12, 0)))

	// Friday 23:00 UTC is still Friday evening in New York.
	fridayLateUTC := time.Date(2026, 3, 6, 23, 0, 0, 0, time.UTC)
	assert.False(t, IsWeekend(fridayLateUTC))

	// Saturday 02:00 UTC is Friday evening Eastern.
	saturdayEarlyUTC := time.Date(2026, 3, 7, 2, 0, 0, 0, time.UTC)
	assert.False(t, IsWeekend(saturdayEarlyUTC))
}

func TestSameTradingDay(t *testing.T) {
	morning := eastern(2026, 3, 4, 9, 30)
	afternoon := eastern(2026, 3, 4, 15, 59)
	nextDay := eastern(2026, 3, 5, 9, 30)

	assert.True(t, SameTradingDay(morning, afternoon))
	assert.False(t, SameTradingDay(morning, nextDay))

	// UTC midnight boundary: Mar 5 01:00 UTC is Mar 4 Eastern.
	utcAfterMidnight := time.Date(2026, 3, 5, 1, 0, 0, 0, time.UTC)
	assert.True(t, SameTradingDay(morning, utcAfterMidnight))
}

func TestHoursToClose(t *testing.T) {
	assert.InDelta(t, 6.5, HoursToClose(eastern(2026, 3, 4, 9, 30)), 1e-9)
	assert.InDelta(t, 1.0, HoursToClose(eastern(2026, 3, 4, 15, 0)), 1e-9)
	assert.Zero(t, HoursToClose(eastern(2026, 3, 4, 17, 0)))
}

func TestHoursUntilClose(t *testing.T) {
	now := eastern(2026, 3, 4, 10, 0)

	// Same-day expiration matches HoursToClose.
	assert.Equal(t, HoursToClose(now), HoursUntilClose(now, now))

	// A next-day expiration carries a full extra day.
	tomorrow := eastern(2026, 3, 5, 16, 0)
	assert.InDelta(t, 30.0, HoursUntilClose(tomorrow, now), 1e-9)

	// An already-expired contract reports zero.
	yesterday := eastern(2026, 3, 3, 16, 0)
	assert.Zero(t, HoursUntilClose(yesterday, now))
}
