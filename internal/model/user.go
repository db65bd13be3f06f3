package model

import "time"

type User struct {
	TelegramID    int64
	Username      string
	FirstName     string
	Phone         *string
	ReferralCode  string
	ReferralCount int
	Eligible      bool
	JoinedAt      time.Time
}

// Participant is the eligible-pool view of a user used for listings and
// winner draws.
type Participant struct {
	TelegramID    int64
	Username      string
	FirstName     string
	ReferralCount int
}

type ReferralStats struct {
	ReferralCount int
	Eligible      bool
	Needed        int
}
