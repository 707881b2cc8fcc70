package models

import "time"

// Duo is a pairing of exactly two users. User1 occupies slot A.
type Duo struct {
	ID                string    `json:"id"`
	User1             string    `json:"user1"`
	User2             string    `json:"user2"`
	Streak            int       `json:"streak"`
	TrustScore        int       `json:"trust_score"`
	LastCompletionDay string    `json:"last_completion_day,omitempty"` // YYYY-MM-DD format
	ProtectionWeek    string    `json:"protection_week,omitempty"`     // ISO week key, e.g. 2026-W07
	CreatedAt         time.Time `json:"created_at"`
}

// SlotFor reports which slot userID occupies. ok is false when the user
// is not part of the duo.
func (d Duo) SlotFor(userID string) (userIsA bool, ok bool) {
	switch userID {
	case d.User1:
		return true, true
	case d.User2:
		return false, true
	}
	return false, false
}
