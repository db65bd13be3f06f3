package service

import (
	"context"
	"math/rand"
	"testing"

	"referral-contest-bot/internal/model"
	"referral-contest-bot/internal/repository"
	"referral-contest-bot/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testPool(n int) []*model.Participant {
	pool := make([]*model.Participant, n)
	for i := range pool {
		pool[i] = &model.Participant{
			TelegramID:    int64(1000 + i),
			Username:      "user",
			FirstName:     "User",
			ReferralCount: n - i,
		}
	}
	return pool
}

func TestContestService_Draw_RefusesSmallPool(t *testing.T) {
	for _, size := range []int{0, 1, 5} {
		mockRepo := &mocks.MockContestRepository{}
		mockRepo.On("GetEligibleParticipants", mock.Anything).
			Return(testPool(size), nil)

		s := NewContestService(mockRepo, rand.New(rand.NewSource(1)))
		result, err := s.Draw(context.Background())

		assert.ErrorIs(t, err, ErrNotEnoughParticipants)
		assert.Nil(t, result)

		// RecordDraw must never be reached, so the winners table stays
		// untouched.
		mockRepo.AssertNotCalled(t, "RecordDraw", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestContestService_Draw_ExactPool(t *testing.T) {
	pool := testPool(6)

	mockRepo := &mocks.MockContestRepository{}
	mockRepo.On("GetEligibleParticipants", mock.Anything).Return(pool, nil)

	var recorded []*model.Winner
	mockRepo.On("RecordDraw", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(2).([]*model.Winner)
		}).
		Return(nil)

	s := NewContestService(mockRepo, rand.New(rand.NewSource(42)))
	result, err := s.Draw(context.Background())

	assert.NoError(t, err)
	assert.NotNil(t, result.FirstPlace)
	assert.Len(t, result.VoucherWinners, 5)
	assert.Len(t, recorded, 6)

	poolIDs := map[int64]bool{}
	for _, p := range pool {
		poolIDs[p.TelegramID] = true
	}

	seen := map[int64]bool{}
	firstPlaceRows := 0
	voucherRows := 0
	for _, w := range recorded {
		assert.True(t, poolIDs[w.UserID], "winner %d not in eligible pool", w.UserID)
		assert.False(t, seen[w.UserID], "winner %d drawn twice", w.UserID)
		seen[w.UserID] = true
		assert.Equal(t, result.DrawID, w.DrawID)

		switch w.Prize {
		case FirstPrize:
			firstPlaceRows++
		case VoucherPrize:
			voucherRows++
		}
	}

	assert.Equal(t, 1, firstPlaceRows)
	assert.Equal(t, 5, voucherRows)
	assert.NotContains(t, result.VoucherWinners, result.FirstPlace)

	mockRepo.AssertExpectations(t)
}

func TestContestService_Draw_SamplesWithoutReplacement(t *testing.T) {
	pool := testPool(20)

	mockRepo := &mocks.MockContestRepository{}
	mockRepo.On("GetEligibleParticipants", mock.Anything).Return(pool, nil)
	mockRepo.On("RecordDraw", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.Anything).
		Return(nil)

	s := NewContestService(mockRepo, rand.New(rand.NewSource(7)))
	result, err := s.Draw(context.Background())

	assert.NoError(t, err)

	seen := map[int64]bool{result.FirstPlace.TelegramID: true}
	for _, w := range result.VoucherWinners {
		assert.False(t, seen[w.TelegramID])
		seen[w.TelegramID] = true
	}
	assert.Len(t, seen, DrawSize)
}

func TestContestService_Draw_AlreadyCompleted(t *testing.T) {
	mockRepo := &mocks.MockContestRepository{}
	mockRepo.On("GetEligibleParticipants", mock.Anything).Return(testPool(6), nil)
	mockRepo.On("RecordDraw", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.Anything).
		Return(repository.ErrDrawCompleted)

	s := NewContestService(mockRepo, rand.New(rand.NewSource(1)))
	result, err := s.Draw(context.Background())

	assert.ErrorIs(t, err, ErrDrawAlreadyCompleted)
	assert.Nil(t, result)
}

func TestContestService_SetContestDate(t *testing.T) {
	tests := []struct {
		name          string
		date          string
		expectedError error
	}{
		{name: "valid date", date: "25.12.2026"},
		{name: "valid date with padding", date: " 01.01.2027 "},
		{name: "malformed date", date: "next friday", expectedError: ErrInvalidContestDate},
		{name: "wrong format", date: "2026-12-25", expectedError: ErrInvalidContestDate},
		{name: "empty", date: "", expectedError: ErrInvalidContestDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockContestRepository{}
			if tt.expectedError == nil {
				mockRepo.On("SetContestDate", mock.Anything, mock.AnythingOfType("string")).
					Return(nil)
			}

			s := NewContestService(mockRepo, rand.New(rand.NewSource(1)))
			err := s.SetContestDate(context.Background(), tt.date)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				mockRepo.AssertNotCalled(t, "SetContestDate", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContestService_Settings_DefaultsWhenUnset(t *testing.T) {
	mockRepo := &mocks.MockContestRepository{}
	mockRepo.On("GetSettings", mock.Anything).Return(nil, repository.ErrNotFound)

	s := NewContestService(mockRepo, rand.New(rand.NewSource(1)))
	settings, err := s.Settings(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "pending", settings.Status)
	assert.Empty(t, settings.ContestDate)
	assert.False(t, settings.WinnersSelected)
}

func TestContestService_Winners(t *testing.T) {
	drawID := uuid.New()
	mockRepo := &mocks.MockContestRepository{}
	mockRepo.On("GetWinners", mock.Anything).Return([]*model.Winner{
		{DrawID: drawID, UserID: 1, Prize: FirstPrize},
		{DrawID: drawID, UserID: 2, Prize: VoucherPrize},
	}, nil)

	s := NewContestService(mockRepo, rand.New(rand.NewSource(1)))
	winners, err := s.Winners(context.Background())

	assert.NoError(t, err)
	assert.Len(t, winners, 2)
}
