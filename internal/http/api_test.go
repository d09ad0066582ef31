package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobby-api/internal/auth"
	"jobby-api/internal/repository/sqlite"
	"jobby-api/internal/service"
	"jobby-api/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutObject(_ context.Context, body io.Reader, opts storage.PutOptions) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[opts.Bucket+"/"+opts.Key] = b
	return nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	f.deleted = append(f.deleted, key)
	return nil
}

type testServer struct {
	router  *gin.Engine
	storage *fakeStorage
}

func newTestServer(t *testing.T, withStorage bool, opts ...func(*Config)) *testServer {
	t.Helper()

	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	jobs := sqlite.NewJobRepository(db)
	feedback := sqlite.NewFeedbackRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, jobs.Init(ctx))
	require.NoError(t, feedback.Init(ctx))

	issuer := auth.NewIssuer("test-secret", 0)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ts := &testServer{}
	cfg := Config{
		Users:         service.NewUserService(users, issuer),
		Jobs:          service.NewJobService(jobs),
		Feedback:      service.NewFeedbackService(feedback),
		Tokens:        issuer,
		Bucket:        "jobby-logos",
		KeyPrefix:     "logos",
		Region:        "ap-south-1",
		PublicBaseURL: "https://cdn.example.com",
		Logger:        logger,
	}
	if withStorage {
		ts.storage = newFakeStorage()
		cfg.Storage = ts.storage
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	router := gin.New()
	NewHandler(cfg).RegisterRoutes(router)
	ts.router = router
	return ts
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) signup(t *testing.T, username, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/signup", map[string]string{
		"username": username,
		"password": "pw1",
		"email":    email,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]string](t, rec)["token"]
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func threeJobs() []map[string]any {
	return []map[string]any{
		{"title": "Backend Engineer", "location": "Bangalore", "employment_type": "Full Time", "package_per_annum": "20 LPA", "rating": 4,
			"skills": []map[string]string{{"name": "Go", "image_url": "https://img/go.png"}}},
		{"title": "Frontend Engineer", "location": "Chennai", "employment_type": "Internship"},
		{"title": "Data Analyst", "location": "Delhi", "life_at_company": map[string]string{"description": "Flexible hours"}},
	}
}

func TestSignupScenario(t *testing.T) {
	s := newTestServer(t, false)

	payload := map[string]string{"username": "alice", "password": "pw1", "email": "a@x.com"}
	rec := s.do(t, http.MethodPost, "/signup", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Signup successful", body["message"])
	assert.Len(t, strings.Split(body["token"], "."), 3)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = s.do(t, http.MethodPost, "/signup", payload, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decode[map[string]string](t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/signup", map[string]string{"username": "bob", "password": "pw", "email": "a@x.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]map[string]any](t, rec)
	require.Len(t, users, 1)
	assert.NotContains(t, users[0], "password")
	assert.NotContains(t, users[0], "password_hash")
}

func TestSignupRejectsMissingFields(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/signup", map[string]string{"username": "alice", "password": "pw1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/signup", `{"username":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "alice",
		"password": strings.Repeat("p", 80),
		"email":    "a@x.com",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Invalid request", body["error"])
	assert.Contains(t, body["details"], "at most 72 bytes")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, false)
	s.signup(t, "alice", "a@x.com")

	rec := s.do(t, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "pw1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, body["token"])

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "nope"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[map[string]string](t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"username": "ghost", "password": "pw1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoute(t *testing.T) {
	s := newTestServer(t, false)
	token := s.signup(t, "alice", "a@x.com")

	rec := s.do(t, http.MethodGet, "/protected", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/protected", nil, map[string]string{"Authorization": token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/protected", nil, bearer(token+"x"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/protected", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}](t, rec)
	assert.Equal(t, "alice", body.User["username"])
	assert.Equal(t, "a@x.com", body.User["email"])
	assert.NotContains(t, body.User, "password")

	rec = s.do(t, http.MethodGet, "/api/users/me", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)

	id := body.User["id"].(string)
	rec = s.do(t, http.MethodDelete, "/api/users/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/protected", nil, bearer(token))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsScenario(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/api/jobs", threeJobs(), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Jobs []JobResponse `json:"jobs"`
	}](t, rec)
	require.Len(t, created.Jobs, 3)
	for _, job := range created.Jobs {
		require.NotEmpty(t, job.ID)

		rec := s.do(t, http.MethodGet, "/api/jobs/"+job.ID, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, job.Title, decode[JobResponse](t, rec).Title)
	}

	rec = s.do(t, http.MethodGet, "/api/jobs", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, "Backend Engineer", list[0]["title"])
	assert.NotContains(t, list[0], "skills")
	assert.NotContains(t, list[0], "life_at_company")

	rec = s.do(t, http.MethodGet, "/api/jobs/"+created.Jobs[0].ID, nil, nil)
	detail := decode[JobResponse](t, rec)
	require.Len(t, detail.Skills, 1)
	assert.Equal(t, "Go", detail.Skills[0].Name)
	assert.EqualValues(t, 4, detail.Rating)

	rec = s.do(t, http.MethodGet, "/api/jobs/"+created.Jobs[2].ID, nil, nil)
	detail = decode[JobResponse](t, rec)
	require.NotNil(t, detail.LifeAtCompany)
	assert.Equal(t, "Flexible hours", detail.LifeAtCompany.Description)
	assert.EqualValues(t, 0, detail.Rating)
}

func TestCreateSingleJob(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/api/jobs", map[string]any{"title": "SRE", "location": "Pune"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Job JobResponse `json:"job"`
	}](t, rec)
	assert.NotEmpty(t, body.Job.ID)
	assert.Equal(t, "SRE", body.Job.Title)

	rec = s.do(t, http.MethodGet, "/api/jobs", nil, nil)
	assert.Len(t, decode[[]JobSummaryResponse](t, rec), 1)
}

func TestCreateJobsRejectsInvalidPayloads(t *testing.T) {
	s := newTestServer(t, false)

	for _, body := range []string{"", "42", `"job"`, "[]", `[{"title":"ok"},{"location":"no title"}]`, `{"title":`} {
		rec := s.do(t, http.MethodPost, "/api/jobs", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}

	rec := s.do(t, http.MethodGet, "/api/jobs", nil, nil)
	assert.Empty(t, decode[[]JobSummaryResponse](t, rec))
}

func TestCreateJobsRejectsOversizedPayload(t *testing.T) {
	s := newTestServer(t, false, func(cfg *Config) {
		cfg.MaxJobPayloadBytes = 256
	})

	big := map[string]any{"title": "Writer", "job_description": strings.Repeat("x", 1024)}
	rec := s.do(t, http.MethodPost, "/api/jobs", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/jobs", map[string]any{"title": "Writer"}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/jobs", nil, nil)
	assert.Len(t, decode[[]JobSummaryResponse](t, rec), 1)
}

func TestDeleteJobs(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/api/jobs", threeJobs(), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[struct {
		Jobs []JobResponse `json:"jobs"`
	}](t, rec)

	rec = s.do(t, http.MethodDelete, "/api/jobs/does-not-exist", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", decode[map[string]string](t, rec)["error"])

	rec = s.do(t, http.MethodGet, "/api/jobs", nil, nil)
	assert.Len(t, decode[[]JobSummaryResponse](t, rec), 3)

	rec = s.do(t, http.MethodDelete, "/api/jobs/"+created.Jobs[0].ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/jobs/"+created.Jobs[0].ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/jobs/"+created.Jobs[1].ID+"?delete_logo=maybe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/jobs/"+created.Jobs[1].ID+"?delete_logo=true", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/jobs", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[map[string]float64](t, rec)["deletedCount"])
}

func TestFeedbackScenario(t *testing.T) {
	s := newTestServer(t, false)
	token := s.signup(t, "alice", "a@x.com")

	rec := s.do(t, http.MethodPost, "/api/feedback", map[string]string{"message": "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/feedback", map[string]string{"message": "hi"}, bearer("garbage"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, body := range []any{map[string]string{"username": "alice"}, map[string]string{"message": "  ", "email": "x@y.z"}, ""} {
		rec = s.do(t, http.MethodPost, "/api/feedback", body, bearer(token))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}

	rec = s.do(t, http.MethodPost, "/api/feedback", map[string]string{"username": "mallory", "message": "Love the app"}, bearer(token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fb := decode[FeedbackResponse](t, rec)
	assert.Equal(t, "alice", fb.Username)
	assert.Equal(t, "a@x.com", fb.Email)
	assert.Equal(t, "Love the app", fb.Message)
	assert.True(t, strings.HasSuffix(fb.CreatedAt, "Z"), fb.CreatedAt)

	rec = s.do(t, http.MethodGet, "/api/feedback", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]FeedbackResponse](t, rec), 1)

	rec = s.do(t, http.MethodPut, "/api/feedback/"+fb.ID, map[string]string{"message": "Still love it"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Still love it", decode[FeedbackResponse](t, rec).Message)

	rec = s.do(t, http.MethodPut, "/api/feedback/"+fb.ID, map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/feedback/"+fb.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/feedback/"+fb.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/feedback/"+fb.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/feedback/"+fb.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/feedback", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]float64](t, rec)["deletedCount"])
}

func TestFeedbackRenderedInDisplayZone(t *testing.T) {
	s := newTestServer(t, false, func(cfg *Config) {
		cfg.FeedbackLocation = time.FixedZone("UTC+05:30", 330*60)
	})
	token := s.signup(t, "alice", "a@x.com")

	rec := s.do(t, http.MethodPost, "/api/feedback", map[string]string{"message": "hello"}, bearer(token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fb := decode[FeedbackResponse](t, rec)
	assert.True(t, strings.HasSuffix(fb.CreatedAt, "+05:30"), fb.CreatedAt)
	assert.True(t, strings.HasSuffix(fb.UpdatedAt, "+05:30"), fb.UpdatedAt)

	created, err := time.Parse(time.RFC3339, fb.CreatedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), created, time.Minute)

	rec = s.do(t, http.MethodGet, "/api/feedback", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]FeedbackResponse](t, rec)
	require.Len(t, list, 1)
	assert.True(t, strings.HasSuffix(list[0].CreatedAt, "+05:30"), list[0].CreatedAt)
}

func TestCreateFeedbackBlankMessageForDeletedUser(t *testing.T) {
	s := newTestServer(t, false)
	token := s.signup(t, "alice", "a@x.com")

	rec := s.do(t, http.MethodGet, "/api/users", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]UserResponse](t, rec)
	require.Len(t, users, 1)
	rec = s.do(t, http.MethodDelete, "/api/users/"+users[0].ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/feedback", map[string]string{"message": "   "}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/feedback", map[string]string{"message": "hello"}, bearer(token))
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
}

func (s *testServer) uploadLogo(t *testing.T, jobID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+jobID+"/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadJobLogo(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, "/api/jobs", map[string]any{"title": "Designer"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	jobID := decode[struct {
		Job JobResponse `json:"job"`
	}](t, rec).Job.ID

	rec = s.uploadLogo(t, "missing", "logo.png", pngBytes())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.uploadLogo(t, jobID, "notes.txt", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.uploadLogo(t, jobID, "logo.png", pngBytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[JobResponse](t, rec).CompanyLogoURL
	assert.True(t, strings.HasPrefix(first, "https://cdn.example.com/logos/"+jobID+"/"), first)
	assert.True(t, strings.HasSuffix(first, ".png"), first)
	assert.Len(t, s.storage.objects, 1)

	rec = s.uploadLogo(t, jobID, "logo2.png", pngBytes())
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[JobResponse](t, rec).CompanyLogoURL
	assert.NotEqual(t, first, second)
	assert.Len(t, s.storage.objects, 1)
	require.Len(t, s.storage.deleted, 1)

	rec = s.do(t, http.MethodDelete, "/api/jobs/"+jobID+"?delete_logo=true", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, s.storage.objects)
	assert.Len(t, s.storage.deleted, 2)
}

func TestUploadJobLogoWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.uploadLogo(t, "any", "logo.png", pngBytes())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodOptions, "/api/jobs", nil, map[string]string{"Origin": "https://jobby.example"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSAllowList(t *testing.T) {
	router := gin.New()
	router.Use(corsMiddleware([]string{"https://jobby.example"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://jobby.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://jobby.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(t, http.MethodGet, "/api/health", nil, map[string]string{requestIDHeader: "req-123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}
