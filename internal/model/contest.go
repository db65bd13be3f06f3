package model

import (
	"time"

	"github.com/google/uuid"
)

type Referral struct {
	ID         int64
	ReferrerID int64
	ReferredID int64
	CreatedAt  time.Time
}

// PendingReferral is an ephemeral marker created when a user requests an
// invite link. It is consumed by the first group-join event matched to it.
type PendingReferral struct {
	ID           int64
	ReferralCode string
	ReferrerID   int64
	CreatedAt    time.Time
}

type ContestSettings struct {
	ContestDate     string
	Status          string
	WinnersSelected bool
	CreatedAt       time.Time
}

type Admin struct {
	AdminID     int64
	Username    string
	Permissions string
	AddedAt     time.Time
}

type Winner struct {
	DrawID     uuid.UUID
	UserID     int64
	Username   string
	FirstName  string
	Prize      string
	SelectedAt time.Time
}

// DrawResult is the outcome of a single winner draw: one first-place winner
// and the voucher winners, all sampled without replacement from the
// eligible pool.
type DrawResult struct {
	DrawID         uuid.UUID
	FirstPlace     *Participant
	VoucherWinners []*Participant
}

// DrawSummary aggregates the winners recorded under one draw round.
type DrawSummary struct {
	DrawID     uuid.UUID
	UserIDs    []int64
	Prizes     []string
	SelectedAt time.Time
}
