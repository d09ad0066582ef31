package domain

import "time"

// Job is a single job posting.
type Job struct {
	ID                string
	Title             string
	Description       string
	Location          string
	EmploymentType    string
	PackagePerAnnum   string
	CompanyLogoURL    string
	Rating            float64
	CompanyWebsiteURL string
	LifeAtCompany     *LifeAtCompany
	Skills            []Skill
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LifeAtCompany describes the culture section shown on the job detail page.
type LifeAtCompany struct {
	Description string
	ImageURL    string
}

// Skill is a named skill requirement with an optional icon.
type Skill struct {
	Name     string
	ImageURL string
}
