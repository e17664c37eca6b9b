package handler

import (
	"net/http"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/config"
	"knowledge-hub/internal/middleware"
	"knowledge-hub/internal/models"

	"github.com/gin-gonic/gin"
)

const appTitle = "IT Knowledge Hub"

// PageHandler renders the HTML shell of every page; data is loaded by the
// page scripts through the JSON API.
type PageHandler struct {
	cfg config.AuthConfig
}

func NewPageHandler(cfg config.AuthConfig) *PageHandler {
	return &PageHandler{cfg: cfg}
}

func (h *PageHandler) render(c *gin.Context, status int, tmpl, title string) {
	c.HTML(status, tmpl, gin.H{
		"title":    title + " - " + appTitle,
		"user":     middleware.Identity(c),
		"loginURL": h.cfg.LoginPath,
	})
}

func (h *PageHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, h.cfg.LandingPath)
}

func (h *PageHandler) Login(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", "Sign in")
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	h.render(c, http.StatusOK, "dashboard.html", "Dashboard")
}

func (h *PageHandler) Search(c *gin.Context) {
	h.render(c, http.StatusOK, "search.html", "Search")
}

func (h *PageHandler) ChangePassword(c *gin.Context) {
	h.render(c, http.StatusOK, "change_password.html", "Change password")
}

// AdminUsers is restricted to ADMIN and HR.
func (h *PageHandler) AdminUsers(c *gin.Context) {
	if v := auth.Authorize(middleware.Identity(c), models.RoleAdmin, models.RoleHR); !v.Allowed {
		h.render(c, v.Status, "forbidden.html", v.Message)
		return
	}
	h.render(c, http.StatusOK, "admin_users.html", "Users")
}
