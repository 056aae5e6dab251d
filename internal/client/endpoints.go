package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
)

const (
	EndpointMyJobs = "/UserJobs/my"
	EndpointSearch = "/Jobs/search"
)

// StatusEndpoint is the list endpoint for jobs currently in status.
func StatusEndpoint(status models.Status) string {
	return "/UserJobs/status/" + url.PathEscape(string(status))
}

func listValues(q dtos.ListQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", itoa(q.PageSize))
	}
	if q.SortColumn != "" {
		v.Set("sortColumn", q.SortColumn)
		v.Set("sortDescending", strconv.FormatBool(q.SortDescending))
	}
	if q.SearchTerm != "" {
		v.Set("searchTerm", q.SearchTerm)
	}
	return v
}

// ListJobs fetches one page from a paged job endpoint.
func (c *Client) ListJobs(ctx context.Context, endpoint string, q dtos.ListQuery) (dtos.PagedResponse[dtos.JobResponse], error) {
	var res dtos.PagedResponse[dtos.JobResponse]
	err := c.do(ctx, http.MethodGet, endpoint, listValues(q), nil, &res)
	return res, err
}

func (c *Client) Recent(ctx context.Context, limit int) (dtos.PagedResponse[dtos.JobResponse], error) {
	var res dtos.PagedResponse[dtos.JobResponse]
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {itoa(limit)}}
	}
	err := c.do(ctx, http.MethodGet, "/UserJobs/recent", q, nil, &res)
	return res, err
}

func (c *Client) StatusCounts(ctx context.Context) (dtos.StatusCountsResponse, error) {
	var res dtos.StatusCountsResponse
	err := c.do(ctx, http.MethodGet, "/UserJobs/status-counts", nil, nil, &res)
	return res, err
}

func (c *Client) TrackJob(ctx context.Context, jobID string, status models.Status) (dtos.JobResponse, error) {
	var res dtos.JobResponse
	err := c.do(ctx, http.MethodPost, "/UserJobs", nil, dtos.TrackJobRequest{JobID: jobID, Status: string(status)}, &res)
	return res, err
}

func (c *Client) UpdateStatus(ctx context.Context, userJobID string, status models.Status, notes *string) (dtos.JobResponse, error) {
	var res dtos.JobResponse
	req := dtos.StatusUpdateRequest{Status: string(status), Notes: notes}
	err := c.do(ctx, http.MethodPut, "/UserJobs/"+url.PathEscape(userJobID)+"/status", nil, req, &res)
	return res, err
}

func (c *Client) Untrack(ctx context.Context, userJobID string) error {
	return c.do(ctx, http.MethodDelete, "/UserJobs/"+url.PathEscape(userJobID), nil, nil, nil)
}

func (c *Client) GetJob(ctx context.Context, id string) (dtos.JobResponse, error) {
	var res dtos.JobResponse
	err := c.do(ctx, http.MethodGet, "/Jobs/"+url.PathEscape(id), nil, nil, &res)
	return res, err
}

func (c *Client) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (dtos.JobResponse, error) {
	var res dtos.JobResponse
	err := c.do(ctx, http.MethodPost, "/Jobs/new", nil, req, &res)
	return res, err
}

func (c *Client) UpdateJob(ctx context.Context, id string, req *dtos.JobUpdateRequest) (dtos.JobResponse, error) {
	var res dtos.JobResponse
	err := c.do(ctx, http.MethodPut, "/Jobs/"+url.PathEscape(id), nil, req, &res)
	return res, err
}

// ExtractJob asks the server to pull job fields out of a posting's HTML.
func (c *Client) ExtractJob(ctx context.Context, rawHTML, sourceURL string) (json.RawMessage, error) {
	var res struct {
		Data json.RawMessage `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/Jobs/extract", nil, dtos.JobExtractionRequest{RawHTML: rawHTML, URL: sourceURL}, &res)
	return res.Data, err
}

func (c *Client) ListResumes(ctx context.Context) ([]models.Resume, error) {
	var res []models.Resume
	err := c.do(ctx, http.MethodGet, "/documents/resumes", nil, nil, &res)
	return res, err
}

func (c *Client) GetResume(ctx context.Context, id string) (models.Resume, error) {
	var res models.Resume
	err := c.do(ctx, http.MethodGet, "/documents/resumes/"+url.PathEscape(id), nil, nil, &res)
	return res, err
}

func (c *Client) CreateResume(ctx context.Context, req *dtos.ResumeRequest) (models.Resume, error) {
	var res models.Resume
	err := c.do(ctx, http.MethodPost, "/documents/resumes", nil, req, &res)
	return res, err
}

func (c *Client) UpdateResume(ctx context.Context, id string, req *dtos.ResumeRequest) (models.Resume, error) {
	var res models.Resume
	err := c.do(ctx, http.MethodPut, "/documents/resumes/"+url.PathEscape(id), nil, req, &res)
	return res, err
}

func (c *Client) DeleteResume(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/documents/resumes/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListCoverLetters(ctx context.Context) ([]models.CoverLetter, error) {
	var res []models.CoverLetter
	err := c.do(ctx, http.MethodGet, "/documents/cover-letters", nil, nil, &res)
	return res, err
}

func (c *Client) GetCoverLetter(ctx context.Context, id string) (models.CoverLetter, error) {
	var res models.CoverLetter
	err := c.do(ctx, http.MethodGet, "/documents/cover-letters/"+url.PathEscape(id), nil, nil, &res)
	return res, err
}

func (c *Client) CreateCoverLetter(ctx context.Context, req *dtos.CoverLetterRequest) (models.CoverLetter, error) {
	var res models.CoverLetter
	err := c.do(ctx, http.MethodPost, "/documents/cover-letters", nil, req, &res)
	return res, err
}

func (c *Client) UpdateCoverLetter(ctx context.Context, id string, req *dtos.CoverLetterRequest) (models.CoverLetter, error) {
	var res models.CoverLetter
	err := c.do(ctx, http.MethodPut, "/documents/cover-letters/"+url.PathEscape(id), nil, req, &res)
	return res, err
}

func (c *Client) DeleteCoverLetter(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/documents/cover-letters/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SalaryDistribution(ctx context.Context, currency string, bucket int64) (dtos.SalaryDistributionResponse, error) {
	var res dtos.SalaryDistributionResponse
	q := url.Values{}
	if currency != "" {
		q.Set("currency", currency)
	}
	if bucket > 0 {
		q.Set("bucket", strconv.FormatInt(bucket, 10))
	}
	err := c.do(ctx, http.MethodGet, "/analytics/salary-distribution", q, nil, &res)
	return res, err
}

func (c *Client) InterviewFunnel(ctx context.Context) (dtos.FunnelResponse, error) {
	var res dtos.FunnelResponse
	err := c.do(ctx, http.MethodGet, "/analytics/interview-funnel", nil, nil, &res)
	return res, err
}

func (c *Client) ResponseRates(ctx context.Context) (dtos.ResponseRatesResponse, error) {
	var res dtos.ResponseRatesResponse
	err := c.do(ctx, http.MethodGet, "/analytics/response-rates", nil, nil, &res)
	return res, err
}

func (c *Client) Settings(ctx context.Context) (dtos.SettingsResponse, error) {
	var res dtos.SettingsResponse
	err := c.do(ctx, http.MethodGet, "/users/me/settings", nil, nil, &res)
	return res, err
}

func (c *Client) UpdateSettings(ctx context.Context, req *dtos.SettingsRequest) (dtos.SettingsResponse, error) {
	var res dtos.SettingsResponse
	err := c.do(ctx, http.MethodPut, "/users/me/settings", nil, req, &res)
	return res, err
}

// Register and Login are public: no token is sent and no refresh is tried.
func (c *Client) Register(ctx context.Context, req *dtos.RegisterRequest) (auth.TokenPair, error) {
	var pair auth.TokenPair
	err := c.send(ctx, http.MethodPost, "/auth/register", nil, req, &pair, false)
	return pair, err
}

func (c *Client) Login(ctx context.Context, req *dtos.LoginRequest) (auth.TokenPair, error) {
	var pair auth.TokenPair
	err := c.send(ctx, http.MethodPost, "/auth/login", nil, req, &pair, false)
	return pair, err
}
