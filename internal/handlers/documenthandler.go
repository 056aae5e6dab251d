package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/services"
)

type DocumentHandler struct {
	Documents *services.DocumentService
}

func NewDocumentHandler(docs *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{Documents: docs}
}

func (h *DocumentHandler) ListResumes(c *gin.Context) {
	docs, err := h.Documents.ListResumes(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) GetResume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.Documents.GetResume(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) CreateResume(c *gin.Context) {
	var req dtos.ResumeRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.Documents.CreateResume(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) UpdateResume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.ResumeRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.Documents.UpdateResume(c.Request.Context(), currentUser(c), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteResume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Documents.DeleteResume(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) ListCoverLetters(c *gin.Context) {
	docs, err := h.Documents.ListCoverLetters(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) GetCoverLetter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.Documents.GetCoverLetter(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) CreateCoverLetter(c *gin.Context) {
	var req dtos.CoverLetterRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.Documents.CreateCoverLetter(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) UpdateCoverLetter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.CoverLetterRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.Documents.UpdateCoverLetter(c.Request.Context(), currentUser(c), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteCoverLetter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Documents.DeleteCoverLetter(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
