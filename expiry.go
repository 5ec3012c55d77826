package ledger

import (
	"fmt"
	"time"
)

// Day is the unit a validity period is counted in.
const Day = 24 * time.Hour

// DatetimeFormat is the format used to persist timestamps.
const DatetimeFormat = time.RFC3339

// ExpiryTime computes the expiry timestamp for a validity period starting now.
func ExpiryTime(now time.Time, validDays int) time.Time {
	return now.Add(time.Duration(validDays) * Day)
}

// Expired reports whether the expiry timestamp is strictly in the past.
func Expired(now, expiry time.Time) bool {
	return now.After(expiry)
}

// RemainingDays returns the number of whole days between now and expiry,
// clamped at zero.
func RemainingDays(now, expiry time.Time) int {
	if Expired(now, expiry) {
		return 0
	}
	return int(expiry.Sub(now) / Day)
}

// FormatRemaining renders the time left before expiry for display.
// Inside the last day it switches to whole hours.
func FormatRemaining(now, expiry time.Time) string {
	if Expired(now, expiry) {
		return "expired"
	}
	days := RemainingDays(now, expiry)
	if days == 0 {
		hours := int(expiry.Sub(now) / time.Hour)
		if hours < 0 {
			hours = 0
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd", days)
}
