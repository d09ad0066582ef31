package http

import (
	"time"

	"jobby-api/internal/domain"
)

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type LifeAtCompanyBody struct {
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type SkillBody struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// JobSummaryResponse is the list-view projection of a job.
type JobSummaryResponse struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	CompanyLogoURL  string  `json:"company_logo_url"`
	EmploymentType  string  `json:"employment_type"`
	JobDescription  string  `json:"job_description"`
	Location        string  `json:"location"`
	PackagePerAnnum string  `json:"package_per_annum"`
	Rating          float64 `json:"rating"`
}

type JobResponse struct {
	JobSummaryResponse
	CompanyWebsiteURL string             `json:"company_website_url,omitempty"`
	LifeAtCompany     *LifeAtCompanyBody `json:"life_at_company,omitempty"`
	Skills            []SkillBody        `json:"skills"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
}

type FeedbackResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func jobToSummary(job domain.Job) JobSummaryResponse {
	return JobSummaryResponse{
		ID:              job.ID,
		Title:           job.Title,
		CompanyLogoURL:  job.CompanyLogoURL,
		EmploymentType:  job.EmploymentType,
		JobDescription:  job.Description,
		Location:        job.Location,
		PackagePerAnnum: job.PackagePerAnnum,
		Rating:          job.Rating,
	}
}

func jobToResponse(job domain.Job) JobResponse {
	resp := JobResponse{
		JobSummaryResponse: jobToSummary(job),
		CompanyWebsiteURL:  job.CompanyWebsiteURL,
		Skills:             make([]SkillBody, len(job.Skills)),
		CreatedAt:          job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          job.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if job.LifeAtCompany != nil {
		resp.LifeAtCompany = &LifeAtCompanyBody{
			Description: job.LifeAtCompany.Description,
			ImageURL:    job.LifeAtCompany.ImageURL,
		}
	}
	for i, s := range job.Skills {
		resp.Skills[i] = SkillBody{Name: s.Name, ImageURL: s.ImageURL}
	}
	return resp
}

func feedbackToResponse(fb domain.Feedback, loc *time.Location) FeedbackResponse {
	return FeedbackResponse{
		ID:        fb.ID,
		Username:  fb.Username,
		Email:     fb.Email,
		Message:   fb.Message,
		CreatedAt: fb.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt: fb.UpdatedAt.In(loc).Format(time.RFC3339),
	}
}
