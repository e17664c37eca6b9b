package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/config"
	"knowledge-hub/internal/handler"
	"knowledge-hub/internal/metrics"
	"knowledge-hub/internal/middleware"
	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"
	"knowledge-hub/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRouter wires stores, services, middleware and handlers into a gin
// engine. Collectors are registered with reg and served on /metrics.
func SetupRouter(cfg *config.Config, db *gorm.DB, logger *slog.Logger, reg *prometheus.Registry) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	m := metrics.New(reg)

	users := repository.NewUserRepository(db)
	sessionStore := repository.NewSessionRepository(db)
	knowledge := repository.NewKnowledgeRepository(db)
	audit := repository.NewAuditRepository(db)

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	sessions := auth.NewSessionService(sessionStore, cfg.Auth.SessionTTL,
		auth.WithMetrics(m),
		auth.WithLogger(logger),
	)
	cookies := middleware.NewCookieHelper(cfg.Auth)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger, m),
		middleware.EdgeFilter(cfg.Auth, cookies, m),
	)
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	health := handler.NewHealthHandler(db)
	r.GET("/healthz", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// ====== API ======
	api := r.Group("/api",
		middleware.CSRF(cfg.Security.AllowedOrigins),
		middleware.Session(sessions, cookies),
		middleware.Audit(audit),
	)

	authHandler := handler.NewAuthHandler(users, sessions, hasher, cookies, cfg.Auth.AllowedDomains, m)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	seedHandler := handler.NewSeedHandler(users, hasher, cfg)
	api.POST("/dev/seed-admin", seedHandler.SeedAdmin)

	// signed in, forced password change still allowed
	authed := api.Group("", middleware.RequireUser())
	authed.GET("/me", authHandler.Me)

	profileHandler := handler.NewProfileHandler(users, sessions, hasher, cookies)
	authed.POST("/users/change-password", profileHandler.ChangePassword)

	current := authed.Group("", middleware.RequirePasswordCurrent())

	knowledgeHandler := handler.NewKnowledgeHandler(knowledge)
	current.GET("/knowledge", knowledgeHandler.List)
	current.POST("/knowledge", knowledgeHandler.Create)
	current.GET("/knowledge/search", knowledgeHandler.Search)

	exportHandler := handler.NewExportHandler(knowledge)
	current.GET("/knowledge/export/csv", exportHandler.ExportCSV)
	current.GET("/knowledge/export/xlsx", exportHandler.ExportXLSX)

	userHandler := handler.NewUserHandler(users, hasher, cfg.Auth.AllowedDomains)
	admin := current.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleHR))
	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.PATCH("/users/:id", userHandler.Patch)

	logHandler := handler.NewLogHandler(audit, cfg.App.PageSize)
	current.GET("/audit-logs", middleware.RequireRoles(models.RoleAdmin), logHandler.ListLogs)

	// ====== Pages ======
	pages := handler.NewPageHandler(cfg.Auth)
	r.GET("/", pages.Root)
	r.GET(cfg.Auth.LoginPath, pages.Login)

	protected := r.Group("",
		middleware.Session(sessions, cookies),
		middleware.RequirePage(cfg.Auth, cookies),
	)
	protected.GET(cfg.Auth.LandingPath, pages.Dashboard)
	protected.GET("/search", pages.Search)
	protected.GET(cfg.Auth.ChangePasswordPath, pages.ChangePassword)
	protected.GET("/admin/users", pages.AdminUsers)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			util.Error(c, http.StatusNotFound, "Not found.")
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	return r, nil
}
