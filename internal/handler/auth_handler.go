package handler

import (
	"net/http"

	"Chatline/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type authHandler struct {
	service   service.AuthService
	cookieTTL int // seconds
	secure    bool
}

func NewAuthHandler(svc service.AuthService, cookieTTLSeconds int, secureCookies bool) AuthHandler {
	return &authHandler{service: svc, cookieTTL: cookieTTLSeconds, secure: secureCookies}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	result, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	h.setTokenCookie(c, result.Token)
	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data": gin.H{
			"user": gin.H{
				"id":       result.User.ID,
				"username": result.User.Username,
				"email":    result.Email,
			},
			"token": result.Token,
		},
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	h.setTokenCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"user": gin.H{
				"id":       result.User.ID,
				"username": result.User.Username,
				"email":    result.Email,
			},
			"token": result.Token,
		},
	})
}

// setTokenCookie mirrors the browser flow: an httpOnly cookie the auth
// middleware falls back to when no Authorization header is present.
func (h *authHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("jwt", token, h.cookieTTL, "/", "", h.secure, true)
}
