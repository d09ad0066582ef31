package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobby-api/internal/domain"
	"jobby-api/internal/repository"
)

const createJobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	job_description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	employment_type TEXT NOT NULL DEFAULT '',
	package_per_annum TEXT NOT NULL DEFAULT '',
	company_logo_url TEXT NOT NULL DEFAULT '',
	rating REAL NOT NULL DEFAULT 0,
	company_website_url TEXT NOT NULL DEFAULT '',
	life_at_company TEXT NOT NULL DEFAULT '',
	skills TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const (
	jobColumns        = `id, title, job_description, location, employment_type, package_per_annum, company_logo_url, rating, company_website_url, life_at_company, skills, created_at, updated_at`
	jobSummaryColumns = `id, title, job_description, location, employment_type, package_per_annum, company_logo_url, rating`
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) repository.JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createJobsTable); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	return nil
}

func (r *JobRepository) CreateMany(ctx context.Context, jobs []*domain.Job) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin job insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO jobs (`+jobColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare job insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	ids := make([]string, len(jobs))
	for i, job := range jobs {
		life, skills, err := encodeJobDetails(job)
		if err != nil {
			return err
		}
		ids[i] = uuid.NewString()
		if _, err := stmt.ExecContext(ctx,
			ids[i],
			job.Title,
			job.Description,
			job.Location,
			job.EmploymentType,
			job.PackagePerAnnum,
			job.CompanyLogoURL,
			job.Rating,
			job.CompanyWebsiteURL,
			life,
			skills,
			now,
			now,
		); err != nil {
			return fmt.Errorf("insert job %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit job insert: %w", err)
	}

	for i, job := range jobs {
		job.ID = ids[i]
		job.CreatedAt = now
		job.UpdatedAt = now
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

func (r *JobRepository) ListSummaries(ctx context.Context) ([]domain.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobSummaryColumns+` FROM jobs ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Description,
			&job.Location,
			&job.EmploymentType,
			&job.PackagePerAnnum,
			&job.CompanyLogoURL,
			&job.Rating,
		); err != nil {
			return nil, fmt.Errorf("scan job summary: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) UpdateLogoURL(ctx context.Context, id, logoURL string) (*domain.Job, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE jobs SET company_logo_url = ?, updated_at = ?
WHERE id = ?`,
		logoURL,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update job logo: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *JobRepository) Delete(ctx context.Context, id string) (*domain.Job, error) {
	job, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("delete job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}
	return job, nil
}

func (r *JobRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("delete jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleted jobs count: %w", err)
	}
	return n, nil
}

type lifeAtCompanyRecord struct {
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type skillRecord struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

func encodeJobDetails(job *domain.Job) (string, string, error) {
	var life, skills string
	if job.LifeAtCompany != nil {
		b, err := json.Marshal(lifeAtCompanyRecord{
			Description: job.LifeAtCompany.Description,
			ImageURL:    job.LifeAtCompany.ImageURL,
		})
		if err != nil {
			return "", "", fmt.Errorf("encode life at company: %w", err)
		}
		life = string(b)
	}
	if len(job.Skills) > 0 {
		records := make([]skillRecord, len(job.Skills))
		for i, s := range job.Skills {
			records[i] = skillRecord{Name: s.Name, ImageURL: s.ImageURL}
		}
		b, err := json.Marshal(records)
		if err != nil {
			return "", "", fmt.Errorf("encode skills: %w", err)
		}
		skills = string(b)
	}
	return life, skills, nil
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job    domain.Job
		life   string
		skills string
	)
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.Location,
		&job.EmploymentType,
		&job.PackagePerAnnum,
		&job.CompanyLogoURL,
		&job.Rating,
		&job.CompanyWebsiteURL,
		&life,
		&skills,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if life != "" {
		var rec lifeAtCompanyRecord
		if err := json.Unmarshal([]byte(life), &rec); err != nil {
			return nil, fmt.Errorf("decode life at company: %w", err)
		}
		job.LifeAtCompany = &domain.LifeAtCompany{Description: rec.Description, ImageURL: rec.ImageURL}
	}
	if skills != "" {
		var recs []skillRecord
		if err := json.Unmarshal([]byte(skills), &recs); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
		job.Skills = make([]domain.Skill, len(recs))
		for i, s := range recs {
			job.Skills[i] = domain.Skill{Name: s.Name, ImageURL: s.ImageURL}
		}
	}
	return &job, nil
}
