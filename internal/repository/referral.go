package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"referral-contest-bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type pendingReferral struct {
	ID           int64     `db:"id"`
	ReferralCode string    `db:"referral_code"`
	ReferrerID   int64     `db:"referrer_id"`
	CreatedAt    time.Time `db:"created_at"`
}

// AddReferral records the (referrer, referred) edge, increments the
// referrer's count and recomputes eligibility against the threshold, all in
// one transaction. A duplicate pair returns ErrAlreadyAttributed and leaves
// every row untouched.
func (r *Repository) AddReferral(ctx context.Context, referrerID, referredID int64, threshold int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("referrals").
			Columns("referrer_id", "referred_id").
			Values(referrerID, referredID).
			Suffix("ON CONFLICT (referrer_id, referred_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build referral insert query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert referral: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrAlreadyAttributed
		}

		updateQuery, updateArgs, err := squirrel.
			Update("users").
			Set("referral_count", squirrel.Expr("referral_count + 1")).
			Where(squirrel.Eq{"telegram_id": referrerID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build referrer update query: %w", err)
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update referrer count: %w", err)
		}

		eligibleQuery, eligibleArgs, err := squirrel.
			Update("users").
			Set("eligible", true).
			Where(squirrel.Eq{"telegram_id": referrerID}).
			Where(squirrel.GtOrEq{"referral_count": threshold}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build eligibility update query: %w", err)
		}

		_, err = tx.ExecContext(ctx, eligibleQuery, eligibleArgs...)
		if err != nil {
			return fmt.Errorf("failed to update eligibility: %w", err)
		}

		return nil
	})
}

// AddPendingReferral creates the invite marker. At most one marker exists
// per (code, referrer) pair; re-creating it is a no-op.
func (r *Repository) AddPendingReferral(ctx context.Context, code string, referrerID int64) error {
	query, args, err := squirrel.
		Insert("pending_referrals").
		Columns("referral_code", "referrer_id").
		Values(code, referrerID).
		Suffix("ON CONFLICT (referral_code, referrer_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build pending referral insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert pending referral: %w", err)
	}

	return nil
}

// GetLatestPendingReferral returns the most recently created marker
// system-wide. Group joins are matched against it best-effort.
func (r *Repository) GetLatestPendingReferral(ctx context.Context) (*model.PendingReferral, error) {
	query, args, err := squirrel.
		Select("id", "referral_code", "referrer_id", "created_at").
		From("pending_referrals").
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row pendingReferral
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.PendingReferral{
		ID:           row.ID,
		ReferralCode: row.ReferralCode,
		ReferrerID:   row.ReferrerID,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (r *Repository) DeletePendingReferral(ctx context.Context, id int64) error {
	query, args, err := squirrel.
		Delete("pending_referrals").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete pending referral: %w", err)
	}

	return nil
}
