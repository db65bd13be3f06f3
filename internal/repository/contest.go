package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"referral-contest-bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type contestSettings struct {
	ID              int       `db:"id"`
	ContestDate     string    `db:"contest_date"`
	Status          string    `db:"status"`
	WinnersSelected bool      `db:"winners_selected"`
	CreatedAt       time.Time `db:"created_at"`
}

type winnerRow struct {
	DrawID     uuid.UUID `db:"draw_id"`
	UserID     int64     `db:"user_id"`
	Username   string    `db:"username"`
	FirstName  string    `db:"first_name"`
	Prize      string    `db:"prize"`
	SelectedAt time.Time `db:"selected_at"`
}

type drawSummaryRow struct {
	DrawID     uuid.UUID      `db:"draw_id"`
	UserIDs    pq.Int64Array  `db:"user_ids"`
	Prizes     pq.StringArray `db:"prizes"`
	SelectedAt time.Time      `db:"selected_at"`
}

func (r *Repository) GetSettings(ctx context.Context) (*model.ContestSettings, error) {
	var row contestSettings
	query, args, err := squirrel.
		Select("*").
		From("contest_settings").
		Where(squirrel.Eq{"id": 1}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.ContestSettings{
		ContestDate:     row.ContestDate,
		Status:          row.Status,
		WinnersSelected: row.WinnersSelected,
		CreatedAt:       row.CreatedAt,
	}, nil
}

// SetContestDate overwrites the singleton settings row, keeping the draw
// guard as it is.
func (r *Repository) SetContestDate(ctx context.Context, date string) error {
	query, args, err := squirrel.
		Insert("contest_settings").
		Columns("id", "contest_date").
		Values(1, date).
		Suffix("ON CONFLICT (id) DO UPDATE SET contest_date = EXCLUDED.contest_date").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build contest date upsert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set contest date: %w", err)
	}

	return nil
}

// RecordDraw appends the winner rows of one draw round after atomically
// checking and setting the winners_selected guard. A second draw attempt
// returns ErrDrawCompleted with no rows written.
func (r *Repository) RecordDraw(ctx context.Context, drawID uuid.UUID, winners []*model.Winner) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		ensureQuery, ensureArgs, err := squirrel.
			Insert("contest_settings").
			Columns("id").
			Values(1).
			Suffix("ON CONFLICT (id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, ensureQuery, ensureArgs...)
		if err != nil {
			return fmt.Errorf("failed to ensure settings row: %w", err)
		}

		guardQuery, guardArgs, err := squirrel.
			Select("winners_selected").
			From("contest_settings").
			Where(squirrel.Eq{"id": 1}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var selected bool
		err = tx.GetContext(ctx, &selected, guardQuery, guardArgs...)
		if err != nil {
			return fmt.Errorf("failed to read draw guard: %w", err)
		}
		if selected {
			return ErrDrawCompleted
		}

		builder := squirrel.
			Insert("winners").
			Columns("draw_id", "user_id", "prize")
		for _, w := range winners {
			builder = builder.Values(drawID, w.UserID, w.Prize)
		}

		query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build winners insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert winners: %w", err)
		}

		markQuery, markArgs, err := squirrel.
			Update("contest_settings").
			Set("winners_selected", true).
			Set("status", "completed").
			Where(squirrel.Eq{"id": 1}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, markQuery, markArgs...)
		if err != nil {
			return fmt.Errorf("failed to set draw guard: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetWinners(ctx context.Context) ([]*model.Winner, error) {
	query, args, err := squirrel.
		Select("w.draw_id", "w.user_id", "u.username", "u.first_name", "w.prize", "w.selected_at").
		From("winners w").
		Join("users u ON u.telegram_id = w.user_id").
		OrderBy("w.selected_at DESC", "w.id DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []winnerRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners: %w", err)
	}

	winners := make([]*model.Winner, len(rows))
	for i, row := range rows {
		winners[i] = &model.Winner{
			DrawID:     row.DrawID,
			UserID:     row.UserID,
			Username:   row.Username,
			FirstName:  row.FirstName,
			Prize:      row.Prize,
			SelectedAt: row.SelectedAt,
		}
	}

	return winners, nil
}

// GetDrawSummaries groups recorded winners per draw round.
func (r *Repository) GetDrawSummaries(ctx context.Context) ([]*model.DrawSummary, error) {
	query, args, err := squirrel.
		Select(
			"draw_id",
			"array_agg(user_id ORDER BY id) as user_ids",
			"array_agg(prize ORDER BY id) as prizes",
			"max(selected_at) as selected_at",
		).
		From("winners").
		GroupBy("draw_id").
		OrderBy("selected_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []drawSummaryRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw summaries: %w", err)
	}

	summaries := make([]*model.DrawSummary, len(rows))
	for i, row := range rows {
		summaries[i] = &model.DrawSummary{
			DrawID:     row.DrawID,
			UserIDs:    []int64(row.UserIDs),
			Prizes:     []string(row.Prizes),
			SelectedAt: row.SelectedAt,
		}
	}

	return summaries, nil
}

func (r *Repository) AddAdmin(ctx context.Context, adminID int64, username string) error {
	query, args, err := squirrel.
		Insert("admins").
		Columns("admin_id", "username").
		Values(adminID, username).
		Suffix("ON CONFLICT (admin_id) DO UPDATE SET username = EXCLUDED.username").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build admin upsert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}

	return nil
}

func (r *Repository) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	query, args, err := squirrel.
		Select("count(*)").
		From("admins").
		Where(squirrel.Eq{"admin_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check admin status: %w", err)
	}

	return count > 0, nil
}
