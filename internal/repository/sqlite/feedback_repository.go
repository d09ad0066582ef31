package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobby-api/internal/domain"
	"jobby-api/internal/repository"
)

const createFeedbackTable = `
CREATE TABLE IF NOT EXISTS feedback (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const feedbackColumns = `id, username, email, message, created_at, updated_at`

type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) repository.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFeedbackTable); err != nil {
		return fmt.Errorf("create feedback table: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) (string, error) {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	feedback.UpdatedAt = feedback.CreatedAt
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO feedback (`+feedbackColumns+`)
VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		feedback.Username,
		feedback.Email,
		feedback.Message,
		feedback.CreatedAt,
		feedback.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert feedback: %w", err)
	}
	feedback.ID = id
	return id, nil
}

func (r *FeedbackRepository) Get(ctx context.Context, id string) (*domain.Feedback, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	return scanFeedback(row)
}

func (r *FeedbackRepository) List(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}

func (r *FeedbackRepository) Update(ctx context.Context, id string, update domain.FeedbackUpdate) (*domain.Feedback, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if update.Message != nil {
		sets = append(sets, "message = ?")
		args = append(args, *update.Message)
	}
	if update.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *update.Email)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE feedback SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) (*domain.Feedback, error) {
	fb, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("delete feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}
	return fb, nil
}

func (r *FeedbackRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback`)
	if err != nil {
		return 0, fmt.Errorf("delete feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleted feedback count: %w", err)
	}
	return n, nil
}

func scanFeedback(row rowScanner) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := row.Scan(
		&fb.ID,
		&fb.Username,
		&fb.Email,
		&fb.Message,
		&fb.CreatedAt,
		&fb.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	return &fb, nil
}
