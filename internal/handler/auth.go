package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/metrics"
	"knowledge-hub/internal/middleware"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	msgDomainRejected     = "Please use your university/company email to log in."
	msgInvalidCredentials = "Invalid credentials."
)

// AuthHandler serves login, logout and the current identity.
type AuthHandler struct {
	users    repository.UserRepository
	sessions *auth.SessionService
	hasher   *auth.Hasher
	cookies  *middleware.CookieHelper
	domains  []string
	metrics  *metrics.Metrics
}

func NewAuthHandler(
	users repository.UserRepository,
	sessions *auth.SessionService,
	hasher *auth.Hasher,
	cookies *middleware.CookieHelper,
	allowedDomains []string,
	m *metrics.Metrics,
) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		cookies:  cookies,
		domains:  allowedDomains,
		metrics:  m,
	}
}

type loginReq struct {
	Email    string `json:"email" binding:"max=255"`
	Password string `json:"password" binding:"max=1024"`
}

// Login checks the email domain before touching the credential store, then
// verifies the password and issues a session. Every credential failure gets
// the same answer.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.LoginAttempt("invalid_body")
		util.Error(c, http.StatusBadRequest, util.MsgInvalidBody)
		return
	}

	email := strings.TrimSpace(req.Email)
	if !util.EmailDomainAllowed(email, h.domains) {
		h.metrics.LoginAttempt("domain_rejected")
		util.Error(c, http.StatusUnauthorized, msgDomainRejected)
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.hasher.Burn(req.Password)
			h.metrics.LoginAttempt("invalid_credentials")
			util.Error(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.metrics.LoginAttempt("error")
		internalError(c, "login", err)
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		h.metrics.LoginAttempt("invalid_credentials")
		util.Error(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if !user.IsActive() {
		h.metrics.LoginAttempt("disabled")
		util.Error(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, _, err := h.sessions.Issue(ctx, user.ID)
	if err != nil {
		h.metrics.LoginAttempt("error")
		internalError(c, "login", err)
		return
	}

	h.cookies.SetLoginCookies(c, token, user.MustChangePassword, h.sessions.TTL())
	h.metrics.LoginAttempt("success")
	slog.InfoContext(ctx, "user logged in",
		"module", "handler",
		"operation", "login",
		"outcome", "success",
		"user_id", user.ID,
	)

	util.Success(c, util.Response{
		"success": true,
		"user": auth.AuthUser{
			ID:                 user.ID,
			Email:              user.Email,
			Role:               user.Role,
			MustChangePassword: user.MustChangePassword,
		},
	})
}

// Logout clears both cookies and deletes the presented session.
func (h *AuthHandler) Logout(c *gin.Context) {
	rc := middleware.Context(c)
	if err := h.sessions.Revoke(c.Request.Context(), rc.Token); err != nil {
		slog.WarnContext(c.Request.Context(), "session revoke failed",
			"module", "handler",
			"operation", "logout",
			"outcome", "failure",
			"error", err.Error(),
		)
	}
	h.cookies.ClearAuthCookies(c)
	util.Success(c, util.Response{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	util.Success(c, util.Response{"user": middleware.Identity(c)})
}
