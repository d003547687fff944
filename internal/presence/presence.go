package presence

import "time"

// Status is the derived online/away/offline classification.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusOffline Status = "offline"
)

const (
	// OnlineWindow is how recently a user must have been seen to count as online.
	OnlineWindow = 2 * time.Minute
	// AwayWindow is the cutoff between away and offline.
	AwayWindow = 10 * time.Minute
)

// Classify derives a status from the last-seen timestamp. The comparison is
// strict: exactly 2 minutes ago is away, exactly 10 minutes ago is offline.
func Classify(lastSeen, now time.Time) Status {
	elapsed := now.Sub(lastSeen)
	switch {
	case elapsed < OnlineWindow:
		return StatusOnline
	case elapsed < AwayWindow:
		return StatusAway
	default:
		return StatusOffline
	}
}
