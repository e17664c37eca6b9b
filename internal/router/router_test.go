package router

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"knowledge-hub/internal/config"
	"knowledge-hub/internal/database/dbtest"
	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T) (*gin.Engine, repository.UserRepository) {
	t.Helper()
	db := dbtest.Open(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
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
		App: config.AppSubConfig{Environment: "production", PageSize: 20},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r, err := SetupRouter(cfg, db, logger, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("SetupRouter() error = %v", err)
	}
	return r, repository.NewUserRepository(db)
}

func createUser(t *testing.T, users repository.UserRepository, email, password string, role models.Role, mustChange bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Email:              email,
		PasswordHash:       string(hash),
		Role:               role,
		Status:             models.StatusActive,
		MustChangePassword: mustChange,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func serve(r *gin.Engine, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func login(t *testing.T, r *gin.Engine, email, password string) (*http.Cookie, *http.Cookie) {
	t.Helper()
	rec := serve(r, http.MethodPost, "/api/login", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	return responseCookie(rec, "orchid_session"), responseCookie(rec, "orchid_force_pw_change")
}

func TestScenario_LoginSetsBothCookies(t *testing.T) {
	r, users := setup(t)
	createUser(t, users, "a@fau.de", "Secret123!", models.RoleEmployee, false)

	session, force := login(t, r, "a@fau.de", "Secret123!")
	if session == nil || session.Value == "" {
		t.Fatal("session cookie missing")
	}
	if force == nil || force.Value != "0" {
		t.Fatalf("force cookie = %+v, want 0", force)
	}

	rec := serve(r, http.MethodGet, "/dashboard", "", session, force)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Knowledge feed") {
		t.Error("dashboard template not rendered")
	}
}

func TestScenario_AnonymousDashboardRedirects(t *testing.T) {
	r, _ := setup(t)

	rec := serve(r, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login?next=%2Fdashboard" {
		t.Errorf("Location = %q", got)
	}
}

func TestScenario_LoginPageWithSessionFollowsNext(t *testing.T) {
	r, _ := setup(t)

	rec := serve(r, http.MethodGet, "/login?next=/reports", "", &http.Cookie{Name: "orchid_session", Value: "anything"})
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/reports" {
		t.Errorf("Location = %q, want /reports", got)
	}
}

func TestStaleCookieIsClearedOnPage(t *testing.T) {
	r, _ := setup(t)

	rec := serve(r, http.MethodGet, "/search", "", &http.Cookie{Name: "orchid_session", Value: "stale"})
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login?next=%2Fsearch" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if c := responseCookie(rec, "orchid_session"); c == nil || c.MaxAge >= 0 {
		t.Errorf("stale session cookie not cleared: %+v", c)
	}

	// without the cookie the login page renders instead of bouncing back
	rec = serve(r, http.MethodGet, "/login?next=%2Fsearch", "")
	if rec.Code != http.StatusOK {
		t.Errorf("login page status = %d, want 200", rec.Code)
	}
}

func TestForcedPasswordChangeFlow(t *testing.T) {
	r, users := setup(t)
	createUser(t, users, "new@fau.de", "Temp12345", models.RoleEmployee, true)

	session, force := login(t, r, "new@fau.de", "Temp12345")
	if force.Value != "1" {
		t.Fatalf("force cookie = %q, want 1", force.Value)
	}

	rec := serve(r, http.MethodGet, "/dashboard", "", session, force)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/change-password" {
		t.Fatalf("dashboard got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// deleting the flag cookie does not bypass the server-side check
	rec = serve(r, http.MethodGet, "/api/knowledge", "", session)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("api status = %d, want 403", rec.Code)
	}

	rec = serve(r, http.MethodPost, "/api/users/change-password",
		`{"currentPassword":"Temp12345","newPassword":"NewSecret1"}`, session, force)
	if rec.Code != http.StatusOK {
		t.Fatalf("change status = %d, body %s", rec.Code, rec.Body.String())
	}
	cleared := responseCookie(rec, "orchid_force_pw_change")
	if cleared == nil || cleared.Value != "0" {
		t.Fatalf("force cookie = %+v", cleared)
	}

	if rec := serve(r, http.MethodGet, "/dashboard", "", session, cleared); rec.Code != http.StatusOK {
		t.Errorf("dashboard after change status = %d", rec.Code)
	}
}

func TestAdminPage(t *testing.T) {
	r, users := setup(t)
	createUser(t, users, "emp@fau.de", "Secret123!", models.RoleEmployee, false)
	createUser(t, users, "hr@fau.de", "Secret123!", models.RoleHR, false)

	emp, _ := login(t, r, "emp@fau.de", "Secret123!")
	if rec := serve(r, http.MethodGet, "/admin/users", "", emp); rec.Code != http.StatusForbidden {
		t.Errorf("employee status = %d, want 403", rec.Code)
	}

	hr, _ := login(t, r, "hr@fau.de", "Secret123!")
	rec := serve(r, http.MethodGet, "/admin/users", "", hr)
	if rec.Code != http.StatusOK {
		t.Fatalf("hr status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hr@fau.de") {
		t.Error("page does not show the signed-in user")
	}
}

func TestOperationalEndpoints(t *testing.T) {
	r, users := setup(t)
	createUser(t, users, "a@fau.de", "Secret123!", models.RoleEmployee, false)
	login(t, r, "a@fau.de", "Secret123!")

	if rec := serve(r, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec := serve(r, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	for _, want := range []string{
		`knowledge_hub_login_attempts_total{outcome="success"} 1`,
		"knowledge_hub_sessions_issued_total 1",
	} {
		if !bytes.Contains(rec.Body.Bytes(), []byte(want)) {
			t.Errorf("metrics output lacks %q", want)
		}
	}

	if rec := serve(r, http.MethodGet, "/static/app.js", ""); rec.Code != http.StatusOK {
		t.Errorf("static status = %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/", ""); rec.Code != http.StatusFound {
		t.Errorf("root status = %d, want 302", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/api/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown api status = %d, want 404", rec.Code)
	}
}

func TestDevSeedDisabledInProduction(t *testing.T) {
	r, _ := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/api/dev/seed-admin", nil)
	req.Header.Set("X-Dev-Seed-Secret", "anything")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
