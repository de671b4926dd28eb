package service

import (
	"time"
)

// SubscriptionDebugInterval is the charge interval when debug timing is enabled
const SubscriptionDebugInterval = time.Minute

// GetNextChargeTime returns the next subscription charge after now: Monday 00:00 UTC, or one
// minute from now with debug timing
func GetNextChargeTime(now time.Time, debugTiming bool) time.Time {
	if debugTiming {
		return now.Add(SubscriptionDebugInterval)
	}

	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	daysUntilMonday := (int(time.Monday) - int(midnight.Weekday()) + 7) % 7
	chargeTime := midnight.AddDate(0, 0, daysUntilMonday)

	// Monday midnight itself has already been charged
	if !chargeTime.After(now) {
		chargeTime = chargeTime.AddDate(0, 0, 7)
	}

	return chargeTime
}

// GetCurrentPeriodStart returns the start of the charge week containing now
func GetCurrentPeriodStart(now time.Time) time.Time {
	return GetNextChargeTime(now, false).AddDate(0, 0, -7)
}
