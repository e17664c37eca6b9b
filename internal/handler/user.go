package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/middleware"
	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

// UserHandler is the ADMIN/HR user administration API.
type UserHandler struct {
	users   repository.UserRepository
	hasher  *auth.Hasher
	domains []string
}

func NewUserHandler(users repository.UserRepository, hasher *auth.Hasher, allowedDomains []string) *UserHandler {
	return &UserHandler{users: users, hasher: hasher, domains: allowedDomains}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		internalError(c, "list_users", err)
		return
	}
	util.Success(c, util.Response{"users": users})
}

type createUserReq struct {
	Email    string      `json:"email" binding:"required,email,max=255"`
	Password string      `json:"password" binding:"required,min=8,max=72"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=ADMIN HR EMPLOYEE"`
}

// Create adds an ACTIVE account that has to change its password on first
// login.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.MsgInvalidBody)
		return
	}
	if !util.EmailDomainAllowed(req.Email, h.domains) {
		util.Error(c, http.StatusBadRequest, "Email domain is not allowed.")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		internalError(c, "create_user", err)
		return
	}

	user := &models.User{
		Email:              req.Email,
		PasswordHash:       hash,
		Role:               role,
		Status:             models.StatusActive,
		MustChangePassword: true,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			util.Error(c, http.StatusBadRequest, "A user with this email already exists.")
			return
		}
		internalError(c, "create_user", err)
		return
	}

	slog.InfoContext(c.Request.Context(), "user created",
		"module", "handler",
		"operation", "create_user",
		"outcome", "success",
		"user_id", user.ID,
		"actor_id", middleware.Identity(c).ID,
	)
	util.Created(c, util.Response{"user": user})
}

type patchUserReq struct {
	Status        *models.Status `json:"status" binding:"omitempty,oneof=ACTIVE DISABLED"`
	Role          *models.Role   `json:"role" binding:"omitempty,oneof=ADMIN HR EMPLOYEE"`
	ResetPassword *string        `json:"resetPassword" binding:"omitempty,min=8,max=72"`
}

// Patch changes status, role or password of a user. Disabling revokes all
// sessions of that user in the same transaction.
func (h *UserHandler) Patch(c *gin.Context) {
	me := middleware.Identity(c)
	id := c.Param("id")

	var req patchUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.MsgInvalidBody)
		return
	}

	patch := repository.UserPatch{Status: req.Status, Role: req.Role}
	if me.ID == id && patch.Status != nil && *patch.Status == models.StatusDisabled {
		util.Error(c, http.StatusBadRequest, "You cannot disable your own account.")
		return
	}

	if req.ResetPassword != nil {
		hash, err := h.hasher.Hash(*req.ResetPassword)
		if err != nil {
			internalError(c, "patch_user", err)
			return
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		util.Error(c, http.StatusBadRequest, "No valid fields to update.")
		return
	}

	user, err := h.users.ApplyPatch(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			util.Error(c, http.StatusNotFound, "User not found.")
			return
		}
		internalError(c, "patch_user", err)
		return
	}

	slog.InfoContext(c.Request.Context(), "user updated",
		"module", "handler",
		"operation", "patch_user",
		"outcome", "success",
		"user_id", user.ID,
		"actor_id", me.ID,
		"status", user.Status,
		"role", user.Role,
	)
	util.Success(c, util.Response{"user": user})
}
