package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

const day = int64(24 * 60 * 60 * 1000)

func TestRecurrenceFromLegacyPeriod(t *testing.T) {
	tests := []struct {
		name       string
		millis     int64
		wantPeriod domain.PeriodType
		wantMult   int
	}{
		{"one day", day, domain.PeriodDay, 1},
		{"three days", 3 * day, domain.PeriodDay, 3},
		{"exactly a week", 7 * day, domain.PeriodWeek, 1},
		{"two weeks", 14 * day, domain.PeriodWeek, 2},
		{"thirty days is a month", 30 * day, domain.PeriodMonth, 1},
		{"ninety days is a quarter", 90 * day, domain.PeriodMonth, 3},
		{"a year", 365 * day, domain.PeriodYear, 1},
		{"two years", 730 * day, domain.PeriodYear, 2},
		{"sub-day clamps to one day", day / 2, domain.PeriodDay, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.RecurrenceFromLegacyPeriod(tt.millis)
			assert.Equal(t, tt.wantPeriod, r.PeriodType)
			assert.Equal(t, tt.wantMult, r.Multiplier)
		})
	}
}

func TestRecurrence_PeriodMillisRoundTrip(t *testing.T) {
	for _, millis := range []int64{day, 7 * day, 30 * day, 365 * day, 60 * day} {
		r := domain.RecurrenceFromLegacyPeriod(millis)
		assert.Equal(t, millis, r.PeriodMillis(), "period %d should survive the round trip", millis)
	}
}

func TestNewRecurrence_ClampsMultiplier(t *testing.T) {
	r := domain.NewRecurrence(domain.PeriodMonth, 0)
	assert.Equal(t, 1, r.Multiplier)

	r = domain.NewRecurrence(domain.PeriodMonth, -5)
	assert.Equal(t, 1, r.Multiplier)
}
