package storage

import "time"

// Status is the lifecycle state of an Entry. It only ever moves forward:
// pending -> pending_confirmation -> paid | rejected.
type Status string

const (
	StatusPending             Status = "pending"
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusPaid                Status = "paid"
	StatusRejected            Status = "rejected"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusRejected
}

// Participant is a registered player. At most one row per Telegram identity;
// a resubmitted nickname overwrites the previous one.
type Participant struct {
	UserID   int64
	Nickname string
}

// Entry is one attempt to register and pay for a tournament slot.
// Rows are immutable except for Status.
type Entry struct {
	ID        int64
	UserID    int64
	Amount    int
	Status    Status
	CreatedAt time.Time
}
