package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"referral-contest-bot/internal/model"

	"github.com/Masterminds/squirrel"
)

type User struct {
	TelegramID    int64     `db:"telegram_id"`
	Username      string    `db:"username"`
	FirstName     string    `db:"first_name"`
	Phone         *string   `db:"phone"`
	ReferralCode  string    `db:"referral_code"`
	ReferralCount int       `db:"referral_count"`
	Eligible      bool      `db:"eligible"`
	JoinedAt      time.Time `db:"joined_at"`
}

type participant struct {
	TelegramID    int64  `db:"telegram_id"`
	Username      string `db:"username"`
	FirstName     string `db:"first_name"`
	ReferralCount int    `db:"referral_count"`
}

func (u *User) toModel() *model.User {
	return &model.User{
		TelegramID:    u.TelegramID,
		Username:      u.Username,
		FirstName:     u.FirstName,
		Phone:         u.Phone,
		ReferralCode:  u.ReferralCode,
		ReferralCount: u.ReferralCount,
		Eligible:      u.Eligible,
		JoinedAt:      u.JoinedAt,
	}
}

// UpsertUser inserts the user on first contact. On later contacts only the
// profile fields are refreshed; referral code, count and eligibility keep
// their stored values.
func (r *Repository) UpsertUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id":   user.TelegramID,
			"username":      user.Username,
			"first_name":    user.FirstName,
			"referral_code": user.ReferralCode,
		}).
		Suffix("ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username, first_name = EXCLUDED.first_name").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user upsert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"referral_code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	query, args, err := squirrel.
		Update("users").
		Set("phone", phone).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user phone: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// GetEligibleParticipants returns the eligible pool ordered by referral
// count descending.
func (r *Repository) GetEligibleParticipants(ctx context.Context) ([]*model.Participant, error) {
	query, args, err := squirrel.
		Select("telegram_id", "username", "first_name", "referral_count").
		From("users").
		Where(squirrel.Eq{"eligible": true}).
		OrderBy("referral_count DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []participant
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible participants: %w", err)
	}

	participants := make([]*model.Participant, len(rows))
	for i, row := range rows {
		participants[i] = &model.Participant{
			TelegramID:    row.TelegramID,
			Username:      row.Username,
			FirstName:     row.FirstName,
			ReferralCount: row.ReferralCount,
		}
	}

	return participants, nil
}

func (r *Repository) GetTopReferrers(ctx context.Context, limit int) ([]*model.Participant, error) {
	query, args, err := squirrel.
		Select("telegram_id", "username", "first_name", "referral_count").
		From("users").
		OrderBy("referral_count DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []participant
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}

	participants := make([]*model.Participant, len(rows))
	for i, row := range rows {
		participants[i] = &model.Participant{
			TelegramID:    row.TelegramID,
			Username:      row.Username,
			FirstName:     row.FirstName,
			ReferralCount: row.ReferralCount,
		}
	}

	return participants, nil
}
