package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/config"
	"knowledge-hub/internal/database/dbtest"
	"knowledge-hub/internal/middleware"
	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	cfg       *config.Config
	users     repository.UserRepository
	sessions  repository.SessionRepository
	knowledge repository.KnowledgeRepository
	audit     repository.AuditRepository
	hasher    *auth.Hasher
	service   *auth.SessionService
	cookies   *middleware.CookieHelper
	engine    *gin.Engine
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			AllowedDomains:     []string{"fau.de"},
			SessionTTL:         8 * time.Hour,
			BcryptCost:         bcrypt.MinCost,
			SessionCookie:      "orchid_session",
			ForceChangeCookie:  "orchid_force_pw_change",
			LoginPath:          "/login",
			ChangePasswordPath: "/change-password",
			LandingPath:        "/dashboard",
		},
		App: config.AppSubConfig{Environment: "development", PageSize: 20},
	}
}

// newTestEnv mirrors the production API wiring on an in-memory database.
func newTestEnv(t *testing.T, users repository.UserRepository) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	cfg := testConfig()
	env := &testEnv{
		cfg:       cfg,
		users:     repository.NewUserRepository(db),
		sessions:  repository.NewSessionRepository(db),
		knowledge: repository.NewKnowledgeRepository(db),
		audit:     repository.NewAuditRepository(db),
		hasher:    auth.NewHasher(bcrypt.MinCost),
		cookies:   middleware.NewCookieHelper(cfg.Auth),
	}
	if users != nil {
		env.users = users
	}
	env.service = auth.NewSessionService(env.sessions, cfg.Auth.SessionTTL)

	r := gin.New()
	api := r.Group("/api", middleware.Session(env.service, env.cookies), middleware.Audit(env.audit))

	authHandler := NewAuthHandler(env.users, env.service, env.hasher, env.cookies, cfg.Auth.AllowedDomains, nil)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.POST("/dev/seed-admin", NewSeedHandler(env.users, env.hasher, cfg).SeedAdmin)

	authed := api.Group("", middleware.RequireUser())
	authed.GET("/me", authHandler.Me)
	authed.POST("/users/change-password", NewProfileHandler(env.users, env.service, env.hasher, env.cookies).ChangePassword)

	current := authed.Group("", middleware.RequirePasswordCurrent())
	kh := NewKnowledgeHandler(env.knowledge)
	current.GET("/knowledge", kh.List)
	current.POST("/knowledge", kh.Create)
	current.GET("/knowledge/search", kh.Search)
	eh := NewExportHandler(env.knowledge)
	current.GET("/knowledge/export/csv", eh.ExportCSV)
	current.GET("/knowledge/export/xlsx", eh.ExportXLSX)

	uh := NewUserHandler(env.users, env.hasher, cfg.Auth.AllowedDomains)
	admin := current.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleHR))
	admin.GET("/users", uh.List)
	admin.POST("/users", uh.Create)
	admin.PATCH("/users/:id", uh.Patch)
	current.GET("/audit-logs", middleware.RequireRoles(models.RoleAdmin), NewLogHandler(env.audit, 20).ListLogs)

	env.engine = r
	return env
}

func (e *testEnv) createUser(t *testing.T, email, password string, role models.Role, mustChange bool) *models.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Email:              email,
		PasswordHash:       hash,
		Role:               role,
		Status:             models.StatusActive,
		MustChangePassword: mustChange,
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// login issues a session directly and returns its token.
func (e *testEnv) login(t *testing.T, u *models.User) string {
	t.Helper()
	token, _, err := e.service.Issue(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return token
}

func (e *testEnv) do(method, target string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "orchid_session", Value: token})
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["error"].(string)
	return msg
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
