package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobby-api/internal/domain"
	"jobby-api/internal/storage"
)

type jobRequest struct {
	Title             string             `json:"title"`
	JobDescription    string             `json:"job_description"`
	Location          string             `json:"location"`
	EmploymentType    string             `json:"employment_type"`
	PackagePerAnnum   string             `json:"package_per_annum"`
	CompanyLogoURL    string             `json:"company_logo_url"`
	Rating            float64            `json:"rating"`
	CompanyWebsiteURL string             `json:"company_website_url"`
	LifeAtCompany     *LifeAtCompanyBody `json:"life_at_company"`
	Skills            []SkillBody        `json:"skills"`
}

func (r jobRequest) toDomain() *domain.Job {
	job := &domain.Job{
		Title:             r.Title,
		Description:       r.JobDescription,
		Location:          r.Location,
		EmploymentType:    r.EmploymentType,
		PackagePerAnnum:   r.PackagePerAnnum,
		CompanyLogoURL:    r.CompanyLogoURL,
		Rating:            r.Rating,
		CompanyWebsiteURL: r.CompanyWebsiteURL,
	}
	if r.LifeAtCompany != nil {
		job.LifeAtCompany = &domain.LifeAtCompany{
			Description: r.LifeAtCompany.Description,
			ImageURL:    r.LifeAtCompany.ImageURL,
		}
	}
	for _, s := range r.Skills {
		job.Skills = append(job.Skills, domain.Skill{Name: s.Name, ImageURL: s.ImageURL})
	}
	return job
}

// decodeJobs accepts either a single job object or an array of them and
// reports which shape was sent.
func decodeJobs(body []byte) ([]*domain.Job, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, errors.New("request body is empty")
	}

	switch trimmed[0] {
	case '[':
		var reqs []jobRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, true, fmt.Errorf("decode jobs: %w", err)
		}
		jobs := make([]*domain.Job, len(reqs))
		for i := range reqs {
			jobs[i] = reqs[i].toDomain()
		}
		return jobs, true, nil
	case '{':
		var req jobRequest
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return nil, false, fmt.Errorf("decode job: %w", err)
		}
		return []*domain.Job{req.toDomain()}, false, nil
	default:
		return nil, false, errors.New("request body must be a job object or an array of jobs")
	}
}

func (h *Handler) createJobs(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxJobBytes)
	body, err := c.GetRawData()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "job payload is too large"})
			return
		}
		badRequest(c, err)
		return
	}
	jobs, many, err := decodeJobs(body)
	if err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.jobs.CreateJobs(c.Request.Context(), jobs)
	if err != nil {
		h.writeError(c, err, "Job not found")
		return
	}

	if !many {
		c.JSON(http.StatusCreated, gin.H{"job": jobToResponse(*created[0])})
		return
	}
	resp := make([]JobResponse, len(created))
	for i := range created {
		resp[i] = jobToResponse(*created[i])
	}
	c.JSON(http.StatusCreated, gin.H{"jobs": resp})
}

func (h *Handler) listJobs(c *gin.Context) {
	jobs, err := h.jobs.ListJobs(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Job not found")
		return
	}

	resp := make([]JobSummaryResponse, len(jobs))
	for i := range jobs {
		resp[i] = jobToSummary(jobs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getJob(c *gin.Context) {
	job, err := h.jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Job not found")
		return
	}
	c.JSON(http.StatusOK, jobToResponse(*job))
}

func (h *Handler) deleteJob(c *gin.Context) {
	deleteLogo, err := strconv.ParseBool(c.DefaultQuery("delete_logo", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag delete_logo"})
		return
	}
	if deleteLogo && !h.storageConfigured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "storage service not configured"})
		return
	}

	job, err := h.jobs.DeleteJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Job not found")
		return
	}

	var warnings []string
	if deleteLogo {
		if warning := h.removeLogo(c.Request.Context(), job.CompanyLogoURL); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	resp := gin.H{"message": "Job deleted successfully", "job": jobToResponse(*job)}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteAllJobs(c *gin.Context) {
	n, err := h.jobs.DeleteAllJobs(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Job not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

func (h *Handler) uploadJobLogo(c *gin.Context) {
	if !h.storageConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage service not configured"})
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Job not found")
		return
	}

	// leave room for the multipart envelope around the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxLogoBytes+64<<10)
	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "logo is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is required", "details": err.Error()})
		return
	}
	if header.Size > h.maxLogoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "logo is too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.writeError(c, fmt.Errorf("open logo: %w", err), "Job not found")
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.writeError(c, fmt.Errorf("read logo: %w", err), "Job not found")
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo must be an image", "details": contentType})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.writeError(c, fmt.Errorf("rewind logo: %w", err), "Job not found")
		return
	}

	key := storage.LogoKey(h.keyPrefix, job.ID, logoExtension(header.Filename, contentType))
	uploadCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()
	if err := h.storage.PutObject(uploadCtx, file, storage.PutOptions{
		Bucket:      h.bucket,
		Key:         key,
		ContentType: contentType,
	}); err != nil {
		h.writeError(c, err, "Job not found")
		return
	}

	updated, err := h.jobs.SetLogoURL(c.Request.Context(), job.ID, storage.PublicURL(h.publicBaseURL, h.bucket, h.region, key))
	if err != nil {
		h.writeError(c, err, "Job not found")
		return
	}

	if warning := h.removeLogo(c.Request.Context(), job.CompanyLogoURL); warning != "" {
		h.logger.WithField("request_id", c.GetString(requestIDKey)).Warn(warning)
	}

	c.JSON(http.StatusOK, jobToResponse(*updated))
}

func (h *Handler) storageConfigured() bool {
	return h.storage != nil && h.bucket != ""
}

// removeLogo deletes a previously uploaded logo object. Logos hosted outside
// the bucket are left alone. It returns a warning instead of failing.
func (h *Handler) removeLogo(ctx context.Context, logoURL string) string {
	if !h.storageConfigured() {
		return ""
	}
	key, ok := storage.KeyFromURL(logoURL, h.publicBaseURL, h.bucket, h.region)
	if !ok {
		return ""
	}
	deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := h.storage.DeleteObject(deleteCtx, h.bucket, key); err != nil {
		return fmt.Sprintf("delete logo %s: %v", key, err)
	}
	return ""
}

func logoExtension(filename, contentType string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
