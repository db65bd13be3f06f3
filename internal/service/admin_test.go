package service

import (
	"context"
	"testing"

	"referral-contest-bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAdminService_IsAdmin(t *testing.T) {
	mockRepo := &mocks.MockAdminRepository{}
	mockRepo.On("IsAdmin", mock.Anything, int64(1)).Return(true, nil)
	mockRepo.On("IsAdmin", mock.Anything, int64(2)).Return(false, nil)
	mockRepo.On("IsAdmin", mock.Anything, int64(3)).Return(false, assert.AnError)

	s := NewAdminService(mockRepo)

	assert.True(t, s.IsAdmin(context.Background(), 1))
	assert.False(t, s.IsAdmin(context.Background(), 2))
	// Lookup failures deny access.
	assert.False(t, s.IsAdmin(context.Background(), 3))
}

func TestAdminService_Seed(t *testing.T) {
	mockRepo := &mocks.MockAdminRepository{}
	mockRepo.On("AddAdmin", mock.Anything, int64(10), "").Return(nil)
	mockRepo.On("AddAdmin", mock.Anything, int64(20), "").Return(nil)

	s := NewAdminService(mockRepo)

	err := s.Seed(context.Background(), []int64{10, 20})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
