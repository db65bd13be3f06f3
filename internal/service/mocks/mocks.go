package mocks

import (
	"context"

	"referral-contest-bot/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) UpsertUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockReferralRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockReferralRepository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockReferralRepository) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	args := m.Called(ctx, telegramID, phone)
	return args.Error(0)
}

func (m *MockReferralRepository) GetEligibleParticipants(ctx context.Context) ([]*model.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Participant), args.Error(1)
}

func (m *MockReferralRepository) GetTopReferrers(ctx context.Context, limit int) ([]*model.Participant, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Participant), args.Error(1)
}

func (m *MockReferralRepository) AddReferral(ctx context.Context, referrerID, referredID int64, threshold int) error {
	args := m.Called(ctx, referrerID, referredID, threshold)
	return args.Error(0)
}

func (m *MockReferralRepository) AddPendingReferral(ctx context.Context, code string, referrerID int64) error {
	args := m.Called(ctx, code, referrerID)
	return args.Error(0)
}

func (m *MockReferralRepository) GetLatestPendingReferral(ctx context.Context) (*model.PendingReferral, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingReferral), args.Error(1)
}

func (m *MockReferralRepository) DeletePendingReferral(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockContestRepository struct {
	mock.Mock
}

func (m *MockContestRepository) GetEligibleParticipants(ctx context.Context) ([]*model.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Participant), args.Error(1)
}

func (m *MockContestRepository) GetTopReferrers(ctx context.Context, limit int) ([]*model.Participant, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Participant), args.Error(1)
}

func (m *MockContestRepository) GetSettings(ctx context.Context) (*model.ContestSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContestSettings), args.Error(1)
}

func (m *MockContestRepository) SetContestDate(ctx context.Context, date string) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockContestRepository) RecordDraw(ctx context.Context, drawID uuid.UUID, winners []*model.Winner) error {
	args := m.Called(ctx, drawID, winners)
	return args.Error(0)
}

func (m *MockContestRepository) GetWinners(ctx context.Context) ([]*model.Winner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Winner), args.Error(1)
}

func (m *MockContestRepository) GetDrawSummaries(ctx context.Context) ([]*model.DrawSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DrawSummary), args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) AddAdmin(ctx context.Context, adminID int64, username string) error {
	args := m.Called(ctx, adminID, username)
	return args.Error(0)
}

func (m *MockAdminRepository) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	args := m.Called(ctx, telegramID)
	return args.Bool(0), args.Error(1)
}
