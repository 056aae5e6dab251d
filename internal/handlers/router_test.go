package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/database"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/services"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterSuite) SetupTest() {
	db := database.NewTestDB(s.T())
	logger := zap.NewNop()
	tokens := auth.NewIssuer("test-secret", time.Hour, 24*time.Hour)
	users := services.NewUserService(db, tokens, logger)
	userJobs := services.NewUserJobService(db, nil, logger)

	s.router = NewRouter(Deps{
		DB:        db,
		Tokens:    tokens,
		Users:     users,
		UserJobs:  userJobs,
		Jobs:      services.NewJobService(db, userJobs, logger),
		Documents: services.NewDocumentService(db, logger),
		Analytics: services.NewAnalyticsService(db, users, 20000),
		Logger:    logger,
	})
	s.token = s.register("ada@example.com").AccessToken
}

func (s *RouterSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) decode(rec *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *RouterSuite) register(email string) auth.TokenPair {
	rec := s.do(http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "password123"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var pair auth.TokenPair
	s.decode(rec, &pair)
	return pair
}

func (s *RouterSuite) createJob(token, employer, title string) dtos.JobResponse {
	rec := s.do(http.MethodPost, "/Jobs/new", token, gin.H{"employerName": employer, "title": title, "minSalary": 100000})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var job dtos.JobResponse
	s.decode(rec, &job)
	return job
}

func (s *RouterSuite) TestHealthIsPublic() {
	rec := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestRequiresBearerToken() {
	rec := s.do(http.MethodGet, "/UserJobs/my", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	var body map[string]string
	s.decode(rec, &body)
	s.NotEmpty(body["error"])

	rec = s.do(http.MethodGet, "/UserJobs/my", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestRefreshTokenIsNotAnAccessToken() {
	pair := s.register("grace@example.com")
	rec := s.do(http.MethodGet, "/UserJobs/my", pair.RefreshToken, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": pair.RefreshToken})
	s.Require().Equal(http.StatusOK, rec.Code)
	var next auth.TokenPair
	s.decode(rec, &next)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/UserJobs/my", next.AccessToken, nil).Code)
}

func (s *RouterSuite) TestCreateAndListJobs() {
	job := s.createJob(s.token, "Stripe", "Backend Engineer")
	s.Require().NotNil(job.Status)
	s.Equal("New", *job.Status)
	s.True(job.MinSalary.Valid)
	s.createJob(s.token, "Acme", "Go Developer")

	rec := s.do(http.MethodGet, "/UserJobs/my?page=1&pageSize=1&sortColumn=employerName", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var page dtos.PagedResponse[dtos.JobResponse]
	s.decode(rec, &page)
	s.Equal(int64(2), page.TotalCount)
	s.Require().Len(page.Items, 1)
	s.Equal("Acme", *page.Items[0].EmployerName)

	rec = s.do(http.MethodGet, "/UserJobs/my?sortColumn=salary", s.token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/Jobs/search?searchTerm=stripe", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &page)
	s.Equal(int64(1), page.TotalCount)

	rec = s.do(http.MethodGet, "/Jobs/"+job.ID, s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/Jobs/nope", s.token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/Jobs/new", s.token, gin.H{"title": "No employer"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestStatusLifecycle() {
	job := s.createJob(s.token, "Stripe", "Backend Engineer")
	path := "/UserJobs/" + *job.UserJobID + "/status"

	rec := s.do(http.MethodPut, path, s.token, gin.H{"status": "technical-assessment"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated dtos.JobResponse
	s.decode(rec, &updated)
	s.Equal("Technical Assessment", *updated.Status)

	rec = s.do(http.MethodPut, path, s.token, gin.H{"status": "Hired"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/UserJobs/status/Technical%20Assessment", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var page dtos.PagedResponse[dtos.JobResponse]
	s.decode(rec, &page)
	s.Equal(int64(1), page.TotalCount)

	rec = s.do(http.MethodGet, "/UserJobs/status-counts", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var counts dtos.StatusCountsResponse
	s.decode(rec, &counts)
	s.Equal(int64(1), counts.Counts["Technical Assessment"])
	s.Equal(int64(0), counts.NewCount)

	other := s.register("grace@example.com").AccessToken
	s.Equal(http.StatusForbidden, s.do(http.MethodPut, path, other, gin.H{"status": "Applied"}).Code)

	rec = s.do(http.MethodGet, "/UserJobs/recent?limit=abc", s.token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/UserJobs/"+*job.UserJobID, s.token, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/UserJobs/"+*job.UserJobID, s.token, nil).Code)

	// The job stays in the catalog and can be tracked again.
	rec = s.do(http.MethodPost, "/UserJobs", s.token, gin.H{"jobId": job.ID})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/UserJobs", s.token, gin.H{"jobId": job.ID})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *RouterSuite) TestDocumentsAreOwnerOnly() {
	rec := s.do(http.MethodPost, "/documents/resumes", s.token, gin.H{"title": "Backend", "content": "Go"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resume struct {
		ID string `json:"id"`
	}
	s.decode(rec, &resume)

	other := s.register("grace@example.com").AccessToken
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/documents/resumes/"+resume.ID, other, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/documents/resumes/"+resume.ID, other, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/documents/resumes/"+resume.ID, s.token, nil).Code)

	rec = s.do(http.MethodPost, "/documents/cover-letters", s.token, gin.H{"title": "Letter", "jobId": "bad"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestExtractWithoutLLM() {
	rec := s.do(http.MethodPost, "/Jobs/extract", s.token, gin.H{"raw_html": "<p>job</p>"})
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *RouterSuite) TestSettingsAndAnalytics() {
	rec := s.do(http.MethodPut, "/users/me/settings", s.token, gin.H{"defaultPageSize": 2, "salaryCurrency": "eur"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var settings dtos.SettingsResponse
	s.decode(rec, &settings)
	s.Equal("EUR", settings.SalaryCurrency)

	for _, title := range []string{"A", "B", "C"} {
		s.createJob(s.token, "Acme", title)
	}
	rec = s.do(http.MethodGet, "/UserJobs/my", s.token, nil)
	var page dtos.PagedResponse[dtos.JobResponse]
	s.decode(rec, &page)
	s.Len(page.Items, 2, "page size comes from settings")

	rec = s.do(http.MethodGet, "/analytics/salary-distribution?bucket=-5", s.token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/analytics/salary-distribution?currency=USD", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var dist dtos.SalaryDistributionResponse
	s.decode(rec, &dist)
	s.Equal("USD", dist.Currency)
	s.Require().Len(dist.Buckets, 1)
	s.Equal(3, dist.Buckets[0].Count)

	rec = s.do(http.MethodPost, "/Jobs/new", s.token, gin.H{"employerName": "Globex", "title": "CTO", "minSalary": 3000000})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodGet, "/analytics/salary-distribution?currency=USD&bucket=1", s.token, nil)
	s.Equal(http.StatusBadRequest, rec.Code, "a one-unit width over a 2.9M range is too many buckets")
	rec = s.do(http.MethodGet, "/analytics/salary-distribution?currency=USD", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &dist)
	s.Equal(int64(40000), dist.BucketWidth)
	s.LessOrEqual(len(dist.Buckets), services.MaxSalaryBuckets)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/analytics/interview-funnel", s.token, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/analytics/response-rates", s.token, nil).Code)
}

func (s *RouterSuite) TestHugePageIsEmptyNotFirstPage() {
	s.createJob(s.token, "Acme", "SRE")
	rec := s.do(http.MethodGet, "/UserJobs/my?page=9223372036854775807", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var page dtos.PagedResponse[dtos.JobResponse]
	s.decode(rec, &page)
	s.Empty(page.Items)
	s.Equal(int64(1), page.TotalCount)
}
