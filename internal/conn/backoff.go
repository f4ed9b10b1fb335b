package conn

import "time"

const (
	// Base delay doubles per attempt up to the cap: 1s, 2s, 4s, 8s, 16s.
	baseRetryDelay = time.Second
	maxRetryDelay  = 30 * time.Second

	// Automatic attempts per disconnect episode. Beyond this the manager
	// stays disconnected until ManualReconnect.
	maxAutoAttempts = 5
)

// reconnectPlan is computed fresh for each scheduled attempt.
type reconnectPlan struct {
	attempt int // 1-based attempt number within the episode
	delay   time.Duration
}

// planReconnect returns the schedule for the given attempt number.
// delay = min(base * 2^(attempt-1), max).
func planReconnect(attempt int) reconnectPlan {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	}
	delay := maxRetryDelay
	if shift < 16 { // past here the shift alone exceeds the cap
		if d := baseRetryDelay << shift; d < maxRetryDelay {
			delay = d
		}
	}
	return reconnectPlan{attempt: attempt, delay: delay}
}
