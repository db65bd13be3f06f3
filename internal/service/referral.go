package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"referral-contest-bot/internal/model"
	"referral-contest-bot/internal/repository"
)

const codePrefix = "ref_"

type ReferralService struct {
	repo        ReferralRepository
	secret      string
	botUsername string
	threshold   int
}

func NewReferralService(repo ReferralRepository, secret, botUsername string, threshold int) *ReferralService {
	return &ReferralService{
		repo:        repo,
		secret:      secret,
		botUsername: botUsername,
		threshold:   threshold,
	}
}

// GenerateCode derives the referral code for a user: sha256 over the
// identifier and the application secret, first 8 hex characters re-encoded
// URL-safe and truncated to 8. Deterministic; the code is persisted at
// first registration and never regenerated after.
func (s *ReferralService) GenerateCode(telegramID int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d_%s", telegramID, s.secret)))
	hexDigest := hex.EncodeToString(sum[:])
	encoded := base64.URLEncoding.EncodeToString([]byte(hexDigest[:8]))
	return codePrefix + encoded[:8]
}

// Link builds the deep link a referrer shares with invitees.
func (s *ReferralService) Link(code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, code)
}

// ValidCode reports whether a string has the referral code shape:
// "ref_" followed by 8 characters.
func ValidCode(code string) bool {
	return strings.HasPrefix(code, codePrefix) && len(code) == len(codePrefix)+8
}

// Register creates the user on first contact and refreshes profile fields
// on later contacts. The returned user carries the persisted referral code.
func (s *ReferralService) Register(ctx context.Context, telegramID int64, username, firstName string) (*model.User, error) {
	u := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		ReferralCode: s.GenerateCode(telegramID),
	}

	err := s.repo.UpsertUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	stored, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load registered user: %w", err)
	}

	return stored, nil
}

// Attribute resolves a referral code presented by a new arrival and records
// the edge. The edge, count increment and eligibility recompute happen in
// one repository transaction. Returns the referrer so the caller can send a
// best-effort notification.
func (s *ReferralService) Attribute(ctx context.Context, code string, referredID int64) (*model.User, error) {
	if !ValidCode(code) {
		return nil, ErrUnknownReferralCode
	}

	referrer, err := s.repo.GetUserByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownReferralCode
		}
		return nil, err
	}

	if referrer.TelegramID == referredID {
		return nil, ErrSelfReferral
	}

	err = s.repo.AddReferral(ctx, referrer.TelegramID, referredID, s.threshold)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyAttributed) {
			return nil, ErrAlreadyAttributed
		}
		return nil, err
	}

	return referrer, nil
}

// AttributeManual records an edge between two known identifiers, used by
// the operator command. Same transaction semantics as Attribute.
func (s *ReferralService) AttributeManual(ctx context.Context, referrerID, referredID int64) error {
	if referrerID == referredID {
		return ErrSelfReferral
	}

	_, err := s.repo.GetUserByTelegramID(ctx, referrerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	err = s.repo.AddReferral(ctx, referrerID, referredID, s.threshold)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyAttributed) {
			return ErrAlreadyAttributed
		}
		return err
	}

	return nil
}

// AttributeGroupJoin matches a code-less group join against the most
// recently created pending marker and consumes it. This is a best-effort
// heuristic: it is correct only while a single invite is outstanding. The
// deep-link start flow remains the primary attribution path.
func (s *ReferralService) AttributeGroupJoin(ctx context.Context, joinedID int64) (*model.User, bool, error) {
	marker, err := s.repo.GetLatestPendingReferral(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if marker.ReferrerID == joinedID {
		return nil, false, nil
	}

	err = s.repo.AddReferral(ctx, marker.ReferrerID, joinedID, s.threshold)
	if err != nil && !errors.Is(err, repository.ErrAlreadyAttributed) {
		return nil, false, err
	}
	attributed := err == nil

	if delErr := s.repo.DeletePendingReferral(ctx, marker.ID); delErr != nil {
		return nil, attributed, delErr
	}

	if !attributed {
		return nil, false, nil
	}

	referrer, err := s.repo.GetUserByTelegramID(ctx, marker.ReferrerID)
	if err != nil {
		return nil, true, err
	}

	return referrer, true, nil
}

// CreatePendingInvite records an invite marker for the user's code and
// returns the shareable link.
func (s *ReferralService) CreatePendingInvite(ctx context.Context, telegramID int64) (string, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	err = s.repo.AddPendingReferral(ctx, user.ReferralCode, user.TelegramID)
	if err != nil {
		return "", err
	}

	return s.Link(user.ReferralCode), nil
}

func (s *ReferralService) Stats(ctx context.Context, telegramID int64) (*model.ReferralStats, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.ReferralStats{Needed: s.threshold}, nil
		}
		return nil, err
	}

	needed := s.threshold - user.ReferralCount
	if needed < 0 {
		needed = 0
	}

	return &model.ReferralStats{
		ReferralCount: user.ReferralCount,
		Eligible:      user.Eligible,
		Needed:        needed,
	}, nil
}

func (s *ReferralService) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *ReferralService) SavePhone(ctx context.Context, telegramID int64, phone string) error {
	err := s.repo.UpdateUserPhone(ctx, telegramID, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
