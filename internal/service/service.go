package service

import (
	"context"
	"errors"

	"referral-contest-bot/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUnknownReferralCode   = errors.New("unknown referral code")
	ErrSelfReferral          = errors.New("self referral is not allowed")
	ErrAlreadyAttributed     = errors.New("referral already attributed")
	ErrNotEnoughParticipants = errors.New("not enough eligible participants")
	ErrDrawAlreadyCompleted  = errors.New("winners already selected")
	ErrInvalidContestDate    = errors.New("invalid contest date")
)

type Service struct {
	*ReferralService
	*ContestService
	*AdminService
}

func NewService(referral *ReferralService, contest *ContestService, admin *AdminService) *Service {
	return &Service{
		ReferralService: referral,
		ContestService:  contest,
		AdminService:    admin,
	}
}

type ReferralServiceI interface {
	Register(ctx context.Context, telegramID int64, username, firstName string) (*model.User, error)
	Attribute(ctx context.Context, code string, referredID int64) (*model.User, error)
	AttributeManual(ctx context.Context, referrerID, referredID int64) error
	AttributeGroupJoin(ctx context.Context, joinedID int64) (*model.User, bool, error)
	CreatePendingInvite(ctx context.Context, telegramID int64) (string, error)
	Stats(ctx context.Context, telegramID int64) (*model.ReferralStats, error)
	GetUser(ctx context.Context, telegramID int64) (*model.User, error)
	SavePhone(ctx context.Context, telegramID int64, phone string) error
	Link(code string) string
}

type ContestServiceI interface {
	Participants(ctx context.Context) ([]*model.Participant, error)
	Leaderboard(ctx context.Context) ([]*model.Participant, error)
	Settings(ctx context.Context) (*model.ContestSettings, error)
	SetContestDate(ctx context.Context, date string) error
	Draw(ctx context.Context) (*model.DrawResult, error)
	Winners(ctx context.Context) ([]*model.Winner, error)
	DrawSummaries(ctx context.Context) ([]*model.DrawSummary, error)
}

type AdminServiceI interface {
	IsAdmin(ctx context.Context, telegramID int64) bool
	AddAdmin(ctx context.Context, telegramID int64, username string) error
	Seed(ctx context.Context, ids []int64) error
}

type UserRepository interface {
	UpsertUser(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	GetEligibleParticipants(ctx context.Context) ([]*model.Participant, error)
	GetTopReferrers(ctx context.Context, limit int) ([]*model.Participant, error)
}

type ReferralRepository interface {
	UserRepository
	AddReferral(ctx context.Context, referrerID, referredID int64, threshold int) error
	AddPendingReferral(ctx context.Context, code string, referrerID int64) error
	GetLatestPendingReferral(ctx context.Context) (*model.PendingReferral, error)
	DeletePendingReferral(ctx context.Context, id int64) error
}

type ContestRepository interface {
	GetEligibleParticipants(ctx context.Context) ([]*model.Participant, error)
	GetTopReferrers(ctx context.Context, limit int) ([]*model.Participant, error)
	GetSettings(ctx context.Context) (*model.ContestSettings, error)
	SetContestDate(ctx context.Context, date string) error
	RecordDraw(ctx context.Context, drawID uuid.UUID, winners []*model.Winner) error
	GetWinners(ctx context.Context) ([]*model.Winner, error)
	GetDrawSummaries(ctx context.Context) ([]*model.DrawSummary, error)
}

type AdminRepository interface {
	AddAdmin(ctx context.Context, adminID int64, username string) error
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
}
