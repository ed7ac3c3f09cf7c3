package handlers

import (
	"net/http"

	"tracker/internal/middleware"
	"tracker/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req CredentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	user, err := h.svc.Auth.Verify(ctx, req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	s, err := h.sessions.Create(ctx, session.Principal{UserID: user.ID, Username: user.Username})
	if err != nil {
		h.respondError(c, err)
		return
	}

	cookie := sessions.Default(c)
	cookie.Set(middleware.TokenKey, s.Token)
	if err := cookie.Save(); err != nil {
		h.logger.Error("Failed to save session cookie", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"user":       user,
	})
}

// Logout ends the caller's session if there is one; it never fails for an
// unknown or missing token.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c.Request.Context(), middleware.Token(c)); err != nil {
		h.respondError(c, err)
		return
	}

	cookie := sessions.Default(c)
	cookie.Clear()
	cookie.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := cookie.Save(); err != nil {
		h.logger.Error("Failed to clear session cookie", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) Profile(c *gin.Context) {
	p, _ := middleware.Principal(c)
	user, err := h.svc.Auth.Profile(c.Request.Context(), p.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
