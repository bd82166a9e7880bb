package models

import "time"

// AdmitReward reports whether enough time has passed since the previous ad
// reward. A user who never watched an ad is always admitted. When refused,
// the second return value is the number of whole seconds left, rounded up:
// a caller is never told "0 seconds left" while still blocked.
func AdmitReward(now time.Time, lastAdAt *time.Time, cooldown time.Duration) (bool, int64) {
	if lastAdAt == nil || lastAdAt.IsZero() {
		return true, 0
	}

	elapsed := now.Sub(*lastAdAt)
	if elapsed >= cooldown {
		return true, 0
	}

	rem := cooldown - elapsed
	left := int64(rem / time.Second)
	if rem%time.Second != 0 {
		left++
	}
	return false, left
}
