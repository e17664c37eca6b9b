package handler

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/config"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

// SeedSecretHeader carries the development seed secret.
const SeedSecretHeader = "X-Dev-Seed-Secret"

// SeedHandler bootstraps the first ADMIN account in development.
type SeedHandler struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	cfg    *config.Config
}

func NewSeedHandler(users repository.UserRepository, hasher *auth.Hasher, cfg *config.Config) *SeedHandler {
	return &SeedHandler{users: users, hasher: hasher, cfg: cfg}
}

func (h *SeedHandler) SeedAdmin(c *gin.Context) {
	if !h.cfg.IsDevelopment() {
		util.Error(c, http.StatusForbidden, util.MsgForbidden)
		return
	}
	secret := h.cfg.Seed.Secret
	given := c.GetHeader(SeedSecretHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
		util.Error(c, http.StatusForbidden, util.MsgForbidden)
		return
	}

	admin, err := auth.SeedAdmin(c.Request.Context(), h.users, h.hasher, h.cfg.Seed.AdminEmail, h.cfg.Seed.AdminPassword)
	if err != nil {
		if errors.Is(err, auth.ErrSeedCredentialsMissing) {
			util.Error(c, http.StatusBadRequest, "Admin email or password not configured.")
			return
		}
		internalError(c, "seed_admin", err)
		return
	}

	slog.WarnContext(c.Request.Context(), "admin account seeded",
		"module", "handler",
		"operation", "seed_admin",
		"outcome", "success",
		"user_id", admin.ID,
	)
	util.Success(c, util.Response{
		"success": true,
		"admin": gin.H{
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}
