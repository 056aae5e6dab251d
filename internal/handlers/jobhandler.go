package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/services"
	"go.uber.org/zap"
)

// JobHandler serves the shared job catalog.
type JobHandler struct {
	LLMService *services.LLMService
	JobService *services.JobService
	Users      *services.UserService
	Logger     *zap.Logger
}

// NewJobHandler creates the handler. llm may be nil when no API key is configured.
func NewJobHandler(llm *services.LLMService, j *services.JobService, users *services.UserService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		LLMService: llm,
		JobService: j,
		Users:      users,
		Logger:     logger,
	}
}

// ParseJob is the POST /Jobs/extract endpoint.
func (h *JobHandler) ParseJob(c *gin.Context) {
	if h.LLMService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "job extraction is not configured"})
		return
	}
	var req dtos.JobExtractionRequest
	if !bindJSON(c, &req) {
		return
	}
	extractedJSON, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		h.Logger.Warn("job extraction failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Extraction failed: " + err.Error()})
		return
	}
	if !json.Valid([]byte(extractedJSON)) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Extraction returned invalid JSON"})
		return
	}

	// RawMessage keeps the model output from being escaped as a string.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    json.RawMessage(extractedJSON),
	})
}

// CreateJob is POST /Jobs/new: the job is added to the catalog and tracked.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if !bindJSON(c, &req) {
		return
	}
	uj, err := h.JobService.CreateJob(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.ToJobResponse(uj.Job, uj))
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.JobUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), currentUser(c), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) SearchJobs(c *gin.Context) {
	q, ok := listQuery(c, h.Users)
	if !ok {
		return
	}
	res, err := h.JobService.SearchJobs(c.Request.Context(), currentUser(c), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// listQuery binds the paging parameters, defaulting the page size to the
// caller's setting.
func listQuery(c *gin.Context, users *services.UserService) (dtos.ListQuery, bool) {
	var q dtos.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query: "+err.Error())
		return q, false
	}
	q.Normalize(users.PageSize(c.Request.Context(), currentUser(c)))
	return q, true
}
