package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/justsurfingit/jobdash/internal/services"
)

// UserJobHandler serves the caller's pipeline under /UserJobs.
type UserJobHandler struct {
	UserJobs *services.UserJobService
	Users    *services.UserService
}

func NewUserJobHandler(userJobs *services.UserJobService, users *services.UserService) *UserJobHandler {
	return &UserJobHandler{UserJobs: userJobs, Users: users}
}

func (h *UserJobHandler) ListMine(c *gin.Context) {
	q, ok := listQuery(c, h.Users)
	if !ok {
		return
	}
	res, err := h.UserJobs.ListMine(c.Request.Context(), currentUser(c), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserJobHandler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be a number")
			return
		}
		limit = n
	}
	res, err := h.UserJobs.Recent(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserJobHandler) ListByStatus(c *gin.Context) {
	status, err := models.ParseStatus(c.Param("status"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	q, ok := listQuery(c, h.Users)
	if !ok {
		return
	}
	res, err := h.UserJobs.ListByStatus(c.Request.Context(), currentUser(c), status, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserJobHandler) StatusCounts(c *gin.Context) {
	res, err := h.UserJobs.StatusCounts(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Track is POST /UserJobs: start tracking an existing catalog job.
func (h *UserJobHandler) Track(c *gin.Context) {
	var req dtos.TrackJobRequest
	if !bindJSON(c, &req) {
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		badRequest(c, "invalid jobId: "+req.JobID)
		return
	}
	var status models.Status
	if req.Status != "" {
		if status, err = models.ParseStatus(req.Status); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	uj, err := h.UserJobs.Track(c.Request.Context(), currentUser(c), jobID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.ToJobResponse(uj.Job, uj))
}

func (h *UserJobHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.StatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	uj, err := h.UserJobs.UpdateStatus(c.Request.Context(), currentUser(c), id, status, req.Notes, "", "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.ToJobResponse(uj.Job, uj))
}

func (h *UserJobHandler) Untrack(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.UserJobs.Untrack(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
