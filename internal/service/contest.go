package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"referral-contest-bot/internal/model"
	"referral-contest-bot/internal/repository"

	"github.com/google/uuid"
)

const (
	// DrawSize is the number of winners per draw round and the minimum
	// eligible pool size for a draw to proceed.
	DrawSize = 6

	FirstPrize   = "Blender (1st place)"
	VoucherPrize = "100,000 soum voucher"

	contestDateLayout = "02.01.2006"
	leaderboardSize   = 100
)

type ContestService struct {
	repo ContestRepository
	rng  *rand.Rand
}

func NewContestService(repo ContestRepository, rng *rand.Rand) *ContestService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ContestService{
		repo: repo,
		rng:  rng,
	}
}

func (s *ContestService) Participants(ctx context.Context) ([]*model.Participant, error) {
	participants, err := s.repo.GetEligibleParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return participants, nil
}

func (s *ContestService) Leaderboard(ctx context.Context) ([]*model.Participant, error) {
	participants, err := s.repo.GetTopReferrers(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return participants, nil
}

func (s *ContestService) Settings(ctx context.Context) (*model.ContestSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.ContestSettings{Status: "pending"}, nil
		}
		return nil, err
	}
	return settings, nil
}

func (s *ContestService) SetContestDate(ctx context.Context, date string) error {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(contestDateLayout, date); err != nil {
		return ErrInvalidContestDate
	}

	err := s.repo.SetContestDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to set contest date: %w", err)
	}
	return nil
}

// Draw samples DrawSize distinct users uniformly from the eligible pool,
// records one first-place winner and the rest as voucher winners under a
// fresh draw id. The pool must hold at least DrawSize users; below that the
// draw refuses with no state change. A completed draw cannot be repeated.
func (s *ContestService) Draw(ctx context.Context) (*model.DrawResult, error) {
	pool, err := s.repo.GetEligibleParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible pool: %w", err)
	}

	if len(pool) < DrawSize {
		return nil, ErrNotEnoughParticipants
	}

	drawn := make([]*model.Participant, 0, DrawSize)
	for _, i := range s.rng.Perm(len(pool))[:DrawSize] {
		drawn = append(drawn, pool[i])
	}

	drawID := uuid.New()
	winners := make([]*model.Winner, DrawSize)
	for i, p := range drawn {
		prize := VoucherPrize
		if i == 0 {
			prize = FirstPrize
		}
		winners[i] = &model.Winner{
			DrawID:    drawID,
			UserID:    p.TelegramID,
			Username:  p.Username,
			FirstName: p.FirstName,
			Prize:     prize,
		}
	}

	err = s.repo.RecordDraw(ctx, drawID, winners)
	if err != nil {
		if errors.Is(err, repository.ErrDrawCompleted) {
			return nil, ErrDrawAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to record draw: %w", err)
	}

	return &model.DrawResult{
		DrawID:         drawID,
		FirstPlace:     drawn[0],
		VoucherWinners: drawn[1:],
	}, nil
}

func (s *ContestService) Winners(ctx context.Context) ([]*model.Winner, error) {
	winners, err := s.repo.GetWinners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners: %w", err)
	}
	return winners, nil
}

func (s *ContestService) DrawSummaries(ctx context.Context) ([]*model.DrawSummary, error) {
	summaries, err := s.repo.GetDrawSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw summaries: %w", err)
	}
	return summaries, nil
}
