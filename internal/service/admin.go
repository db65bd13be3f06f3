package service

import (
	"context"
	"fmt"

	"referral-contest-bot/pkg/logger"

	"go.uber.org/zap"
)

type AdminService struct {
	repo AdminRepository
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{
		repo: repo,
	}
}

// IsAdmin is a binary capability check over the admins table. Lookup
// failures deny access.
func (s *AdminService) IsAdmin(ctx context.Context, telegramID int64) bool {
	ok, err := s.repo.IsAdmin(ctx, telegramID)
	if err != nil {
		logger.Logger().Error("failed to check admin status",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
		return false
	}
	return ok
}

func (s *AdminService) AddAdmin(ctx context.Context, telegramID int64, username string) error {
	err := s.repo.AddAdmin(ctx, telegramID, username)
	if err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}
	return nil
}

// Seed applies the configured operator list idempotently at startup.
func (s *AdminService) Seed(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := s.repo.AddAdmin(ctx, id, ""); err != nil {
			return fmt.Errorf("failed to seed admin %d: %w", id, err)
		}
	}
	return nil
}
