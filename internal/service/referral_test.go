package service

import (
	"context"
	"regexp"
	"testing"

	"referral-contest-bot/internal/model"
	"referral-contest-bot/internal/repository"
	"referral-contest-bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testSecret    = "contest_bot_secret_2024"
	testBot       = "ContestBot"
	testThreshold = 1
)

func newTestReferralService(repo ReferralRepository, threshold int) *ReferralService {
	return NewReferralService(repo, testSecret, testBot, threshold)
}

func TestReferralService_GenerateCode(t *testing.T) {
	s := newTestReferralService(&mocks.MockReferralRepository{}, testThreshold)

	codeFormat := regexp.MustCompile(`^ref_[A-Za-z0-9_-]{8}$`)

	ids := []int64{1, 42, 123456789, 9007199254740993}
	seen := map[string]int64{}
	for _, id := range ids {
		code := s.GenerateCode(id)
		assert.Regexp(t, codeFormat, code)
		assert.Equal(t, code, s.GenerateCode(id), "code must be stable for one user")
		assert.True(t, ValidCode(code))

		if prev, ok := seen[code]; ok {
			t.Fatalf("code %q generated for both %d and %d", code, prev, id)
		}
		seen[code] = id
	}
}

func TestReferralService_Link(t *testing.T) {
	s := newTestReferralService(&mocks.MockReferralRepository{}, testThreshold)

	code := s.GenerateCode(777)
	link := s.Link(code)

	assert.Regexp(t, regexp.MustCompile(`^https://t\.me/ContestBot\?start=ref_[A-Za-z0-9_-]{8}$`), link)
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("ref_AbCd12-_"))
	assert.False(t, ValidCode(""))
	assert.False(t, ValidCode("ref_short"))
	assert.False(t, ValidCode("ref_waytoolongcode"))
	assert.False(t, ValidCode("xyz_AbCd1234"))
}

func TestReferralService_Register_RoundTrip(t *testing.T) {
	mockRepo := &mocks.MockReferralRepository{}
	s := newTestReferralService(mockRepo, testThreshold)

	code := s.GenerateCode(100)
	stored := &model.User{
		TelegramID:   100,
		Username:     "alice",
		FirstName:    "Alice",
		ReferralCode: code,
	}

	mockRepo.On("UpsertUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.TelegramID == 100 && u.ReferralCode == code
	})).Return(nil)
	mockRepo.On("GetUserByTelegramID", mock.Anything, int64(100)).Return(stored, nil)
	mockRepo.On("GetUserByReferralCode", mock.Anything, code).Return(stored, nil)

	user, err := s.Register(context.Background(), 100, "alice", "Alice")
	assert.NoError(t, err)
	assert.Equal(t, code, user.ReferralCode)

	// Resolving the generated code returns the same user that generated it.
	resolved, err := mockRepo.GetUserByReferralCode(context.Background(), code)
	assert.NoError(t, err)
	assert.Equal(t, user.TelegramID, resolved.TelegramID)

	mockRepo.AssertExpectations(t)
}

func TestReferralService_Attribute(t *testing.T) {
	referrer := &model.User{
		TelegramID:    10,
		Username:      "bob",
		FirstName:     "Bob",
		ReferralCode:  "ref_AAAABBBB",
		ReferralCount: 0,
	}

	tests := []struct {
		name          string
		code          string
		referredID    int64
		mockSetup     func(m *mocks.MockReferralRepository)
		expectedError error
	}{
		{
			name:       "successful attribution",
			code:       "ref_AAAABBBB",
			referredID: 20,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetUserByReferralCode", mock.Anything, "ref_AAAABBBB").
					Return(referrer, nil)
				m.On("AddReferral", mock.Anything, int64(10), int64(20), testThreshold).
					Return(nil)
			},
		},
		{
			name:          "malformed code is rejected without lookup",
			code:          "not-a-code",
			referredID:    20,
			mockSetup:     func(m *mocks.MockReferralRepository) {},
			expectedError: ErrUnknownReferralCode,
		},
		{
			name:       "unknown code",
			code:       "ref_ZZZZZZZZ",
			referredID: 20,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetUserByReferralCode", mock.Anything, "ref_ZZZZZZZZ").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrUnknownReferralCode,
		},
		{
			name:       "self referral never succeeds",
			code:       "ref_AAAABBBB",
			referredID: 10,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetUserByReferralCode", mock.Anything, "ref_AAAABBBB").
					Return(referrer, nil)
			},
			expectedError: ErrSelfReferral,
		},
		{
			name:       "duplicate pair is idempotent",
			code:       "ref_AAAABBBB",
			referredID: 20,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetUserByReferralCode", mock.Anything, "ref_AAAABBBB").
					Return(referrer, nil)
				m.On("AddReferral", mock.Anything, int64(10), int64(20), testThreshold).
					Return(repository.ErrAlreadyAttributed)
			},
			expectedError: ErrAlreadyAttributed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			tt.mockSetup(mockRepo)

			s := newTestReferralService(mockRepo, testThreshold)
			got, err := s.Attribute(context.Background(), tt.code, tt.referredID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, referrer.TelegramID, got.TelegramID)
			}

			// No AddReferral call may happen on rejected paths.
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_AttributeManual(t *testing.T) {
	mockRepo := &mocks.MockReferralRepository{}
	s := newTestReferralService(mockRepo, 5)

	err := s.AttributeManual(context.Background(), 7, 7)
	assert.ErrorIs(t, err, ErrSelfReferral)

	mockRepo.On("GetUserByTelegramID", mock.Anything, int64(7)).
		Return(&model.User{TelegramID: 7}, nil)
	mockRepo.On("AddReferral", mock.Anything, int64(7), int64(8), 5).Return(nil)

	err = s.AttributeManual(context.Background(), 7, 8)
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestReferralService_AttributeGroupJoin(t *testing.T) {
	tests := []struct {
		name               string
		joinedID           int64
		mockSetup          func(m *mocks.MockReferralRepository)
		expectedAttributed bool
		expectedReferrerID int64
	}{
		{
			name:     "no outstanding marker",
			joinedID: 30,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetLatestPendingReferral", mock.Anything).
					Return(nil, repository.ErrNotFound)
			},
		},
		{
			name:     "marker owner joins their own group event",
			joinedID: 10,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetLatestPendingReferral", mock.Anything).
					Return(&model.PendingReferral{ID: 1, ReferralCode: "ref_AAAABBBB", ReferrerID: 10}, nil)
			},
		},
		{
			name:     "join matched to most recent marker and marker consumed",
			joinedID: 31,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetLatestPendingReferral", mock.Anything).
					Return(&model.PendingReferral{ID: 2, ReferralCode: "ref_AAAABBBB", ReferrerID: 10}, nil)
				m.On("AddReferral", mock.Anything, int64(10), int64(31), testThreshold).
					Return(nil)
				m.On("DeletePendingReferral", mock.Anything, int64(2)).Return(nil)
				m.On("GetUserByTelegramID", mock.Anything, int64(10)).
					Return(&model.User{TelegramID: 10, ReferralCount: 1, Eligible: true}, nil)
			},
			expectedAttributed: true,
			expectedReferrerID: 10,
		},
		{
			name:     "duplicate join consumes marker without re-attributing",
			joinedID: 31,
			mockSetup: func(m *mocks.MockReferralRepository) {
				m.On("GetLatestPendingReferral", mock.Anything).
					Return(&model.PendingReferral{ID: 3, ReferralCode: "ref_AAAABBBB", ReferrerID: 10}, nil)
				m.On("AddReferral", mock.Anything, int64(10), int64(31), testThreshold).
					Return(repository.ErrAlreadyAttributed)
				m.On("DeletePendingReferral", mock.Anything, int64(3)).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			tt.mockSetup(mockRepo)

			s := newTestReferralService(mockRepo, testThreshold)
			referrer, attributed, err := s.AttributeGroupJoin(context.Background(), tt.joinedID)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedAttributed, attributed)
			if tt.expectedAttributed {
				assert.Equal(t, tt.expectedReferrerID, referrer.TelegramID)
			} else {
				assert.Nil(t, referrer)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_CreatePendingInvite(t *testing.T) {
	mockRepo := &mocks.MockReferralRepository{}
	s := newTestReferralService(mockRepo, testThreshold)

	mockRepo.On("GetUserByTelegramID", mock.Anything, int64(10)).
		Return(&model.User{TelegramID: 10, ReferralCode: "ref_AAAABBBB"}, nil)
	mockRepo.On("AddPendingReferral", mock.Anything, "ref_AAAABBBB", int64(10)).Return(nil)

	link, err := s.CreatePendingInvite(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, "https://t.me/ContestBot?start=ref_AAAABBBB", link)

	mockRepo.AssertExpectations(t)
}

func TestReferralService_Stats(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		user      *model.User
		userErr   error
		expected  *model.ReferralStats
	}{
		{
			name:      "unknown user gets zero stats",
			threshold: 5,
			userErr:   repository.ErrNotFound,
			expected:  &model.ReferralStats{ReferralCount: 0, Eligible: false, Needed: 5},
		},
		{
			name:      "below threshold",
			threshold: 5,
			user:      &model.User{TelegramID: 10, ReferralCount: 2, Eligible: false},
			expected:  &model.ReferralStats{ReferralCount: 2, Eligible: false, Needed: 3},
		},
		{
			name:      "at threshold",
			threshold: 1,
			user:      &model.User{TelegramID: 10, ReferralCount: 1, Eligible: true},
			expected:  &model.ReferralStats{ReferralCount: 1, Eligible: true, Needed: 0},
		},
		{
			name:      "above threshold never reports negative remainder",
			threshold: 1,
			user:      &model.User{TelegramID: 10, ReferralCount: 7, Eligible: true},
			expected:  &model.ReferralStats{ReferralCount: 7, Eligible: true, Needed: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			if tt.userErr != nil {
				mockRepo.On("GetUserByTelegramID", mock.Anything, int64(10)).
					Return(nil, tt.userErr)
			} else {
				mockRepo.On("GetUserByTelegramID", mock.Anything, int64(10)).
					Return(tt.user, nil)
			}

			s := newTestReferralService(mockRepo, tt.threshold)
			stats, err := s.Stats(context.Background(), 10)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, stats)
		})
	}
}
