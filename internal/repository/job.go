package repository

import (
	"context"

	"jobby-api/internal/domain"
)

// JobRepository exposes persistence operations for job postings.
type JobRepository interface {
	Init(ctx context.Context) error
	// CreateMany stores the jobs in order and fills in their identifiers and timestamps.
	CreateMany(ctx context.Context, jobs []*domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
	// ListSummaries returns every job with only the list-view fields populated.
	ListSummaries(ctx context.Context) ([]domain.Job, error)
	UpdateLogoURL(ctx context.Context, id, logoURL string) (*domain.Job, error)
	Delete(ctx context.Context, id string) (*domain.Job, error)
	DeleteAll(ctx context.Context) (int64, error)
}
