package handler

import (
	"errors"
	"net/http"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/middleware"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the self-service password change.
type ProfileHandler struct {
	users    repository.UserRepository
	sessions *auth.SessionService
	hasher   *auth.Hasher
	cookies  *middleware.CookieHelper
}

func NewProfileHandler(users repository.UserRepository, sessions *auth.SessionService, hasher *auth.Hasher, cookies *middleware.CookieHelper) *ProfileHandler {
	return &ProfileHandler{users: users, sessions: sessions, hasher: hasher, cookies: cookies}
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

// ChangePassword replaces the caller's password and clears the
// forced-change flag. Other sessions of the user stay valid.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	me := middleware.Identity(c)

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.MsgInvalidBody)
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, me.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			util.Error(c, http.StatusUnauthorized, util.MsgUnauthorized)
			return
		}
		internalError(c, "change_password", err)
		return
	}

	if !h.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		util.Error(c, http.StatusUnauthorized, "Current password is incorrect.")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		internalError(c, "change_password", err)
		return
	}
	if err := h.users.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		internalError(c, "change_password", err)
		return
	}

	h.cookies.SetForceChange(c, false, h.sessions.TTL())
	util.Success(c, util.Response{"success": true})
}
