package repository

import (
	"context"

	"jobby-api/internal/domain"
)

// FeedbackRepository manages user feedback records.
type FeedbackRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, feedback *domain.Feedback) (string, error)
	Get(ctx context.Context, id string) (*domain.Feedback, error)
	List(ctx context.Context) ([]domain.Feedback, error)
	Update(ctx context.Context, id string, update domain.FeedbackUpdate) (*domain.Feedback, error)
	Delete(ctx context.Context, id string) (*domain.Feedback, error)
	DeleteAll(ctx context.Context) (int64, error)
}
