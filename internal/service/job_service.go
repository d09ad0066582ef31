package service

import (
	"context"
	"strings"

	"jobby-api/internal/domain"
	"jobby-api/internal/repository"
)

const maxRating = 5

// JobService coordinates job catalog operations backed by repositories.
type JobService interface {
	CreateJobs(ctx context.Context, jobs []*domain.Job) ([]*domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	ListJobs(ctx context.Context) ([]domain.Job, error)
	SetLogoURL(ctx context.Context, id, logoURL string) (*domain.Job, error)
	DeleteJob(ctx context.Context, id string) (*domain.Job, error)
	DeleteAllJobs(ctx context.Context) (int64, error)
}

type jobService struct {
	jobs repository.JobRepository
}

func NewJobService(jobs repository.JobRepository) JobService {
	return &jobService{jobs: jobs}
}

// CreateJobs validates every job before storing any of them.
func (s *jobService) CreateJobs(ctx context.Context, jobs []*domain.Job) ([]*domain.Job, error) {
	if len(jobs) == 0 {
		return nil, invalidInput("at least one job is required")
	}
	for i, job := range jobs {
		if job == nil {
			return nil, invalidInput("job %d is empty", i)
		}
		normalizeJob(job)
		if job.Title == "" {
			return nil, invalidInput("job %d: title is required", i)
		}
		if job.Rating < 0 || job.Rating > maxRating {
			return nil, invalidInput("job %d: rating must be between 0 and %d", i, maxRating)
		}
		for j, skill := range job.Skills {
			if skill.Name == "" {
				return nil, invalidInput("job %d: skill %d: name is required", i, j)
			}
		}
	}

	if err := s.jobs.CreateMany(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *jobService) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (s *jobService) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return s.jobs.ListSummaries(ctx)
}

func (s *jobService) SetLogoURL(ctx context.Context, id, logoURL string) (*domain.Job, error) {
	logoURL = strings.TrimSpace(logoURL)
	if logoURL == "" {
		return nil, invalidInput("logo url is required")
	}
	job, err := s.jobs.UpdateLogoURL(ctx, id, logoURL)
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (s *jobService) DeleteJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (s *jobService) DeleteAllJobs(ctx context.Context) (int64, error) {
	return s.jobs.DeleteAll(ctx)
}

func normalizeJob(job *domain.Job) {
	job.Title = strings.TrimSpace(job.Title)
	job.Location = strings.TrimSpace(job.Location)
	job.EmploymentType = strings.TrimSpace(job.EmploymentType)
	job.PackagePerAnnum = strings.TrimSpace(job.PackagePerAnnum)
	job.CompanyLogoURL = strings.TrimSpace(job.CompanyLogoURL)
	job.CompanyWebsiteURL = strings.TrimSpace(job.CompanyWebsiteURL)
	for i := range job.Skills {
		job.Skills[i].Name = strings.TrimSpace(job.Skills[i].Name)
	}
}
