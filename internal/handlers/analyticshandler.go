package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobdash/internal/services"
)

type AnalyticsHandler struct {
	Analytics *services.AnalyticsService
}

func NewAnalyticsHandler(a *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: a}
}

// SalaryDistribution takes optional ?bucket= width and ?currency= code.
func (h *AnalyticsHandler) SalaryDistribution(c *gin.Context) {
	var width int64
	if raw := c.Query("bucket"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			badRequest(c, "bucket must be a positive number")
			return
		}
		width = n
	}
	res, err := h.Analytics.SalaryDistribution(c.Request.Context(), currentUser(c), c.Query("currency"), width)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AnalyticsHandler) InterviewFunnel(c *gin.Context) {
	res, err := h.Analytics.InterviewFunnel(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AnalyticsHandler) ResponseRates(c *gin.Context) {
	res, err := h.Analytics.ResponseRates(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
