package models

import (
	"time"

	"github.com/tandrum/tandrum/internal/constants"
)

// Habit is a shared habit owned by a duo. Each slot keeps the last time
// that duo member checked in.
type Habit struct {
	ID           string              `json:"id"`
	DuoID        string              `json:"duo_id"`
	Title        string              `json:"title"`
	TitleKey     string              `json:"title_key"` // case-folded title, unique per duo
	Frequency    constants.Frequency `json:"frequency"`
	LastCheckinA *time.Time          `json:"last_checkin_a,omitempty"`
	LastCheckinB *time.Time          `json:"last_checkin_b,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Slots returns the caller's last check-in followed by the partner's.
func (h Habit) Slots(userIsA bool) (mine, other *time.Time) {
	if userIsA {
		return h.LastCheckinA, h.LastCheckinB
	}
	return h.LastCheckinB, h.LastCheckinA
}

// SetCheckin records t in the slot of the given user.
func (h *Habit) SetCheckin(userIsA bool, t time.Time) {
	if userIsA {
		h.LastCheckinA = &t
	} else {
		h.LastCheckinB = &t
	}
}

// ClearCheckins wipes both members' progress.
func (h *Habit) ClearCheckins() {
	h.LastCheckinA = nil
	h.LastCheckinB = nil
}

// MillisToTime converts a nullable epoch-millisecond column value.
func MillisToTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

// TimeToMillis converts a nullable instant to epoch milliseconds.
func TimeToMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
