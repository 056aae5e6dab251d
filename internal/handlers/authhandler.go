package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/services"
)

// AuthHandler issues token pairs and serves the settings form.
type AuthHandler struct {
	Users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.Users.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pair)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.Users.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dtos.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.Users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) GetSettings(c *gin.Context) {
	s, err := h.Users.Settings(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	var req dtos.SettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Users.UpdateSettings(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
