package handler

import (
	"context"
	"net/http"
	"testing"

	"knowledge-hub/internal/models"
)

func TestSeedAdmin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.cfg.Seed.Secret = "s3cret"
	env.cfg.Seed.AdminEmail = "Admin@FAU.de"
	env.cfg.Seed.AdminPassword = "AdminPass1"

	post := func(secret string) int {
		var headers []string
		if secret != "" {
			headers = []string{SeedSecretHeader, secret}
		}
		return env.do(http.MethodPost, "/api/dev/seed-admin", nil, "", headers...).Code
	}

	if code := post(""); code != http.StatusForbidden {
		t.Errorf("no secret status = %d, want 403", code)
	}
	if code := post("wrong"); code != http.StatusForbidden {
		t.Errorf("wrong secret status = %d, want 403", code)
	}

	env.cfg.App.Environment = "production"
	if code := post("s3cret"); code != http.StatusForbidden {
		t.Errorf("production status = %d, want 403", code)
	}
	env.cfg.App.Environment = "development"

	env.cfg.Seed.AdminPassword = ""
	if code := post("s3cret"); code != http.StatusBadRequest {
		t.Errorf("missing credentials status = %d, want 400", code)
	}
	env.cfg.Seed.AdminPassword = "AdminPass1"

	if code := post("s3cret"); code != http.StatusOK {
		t.Fatalf("seed status = %d, want 200", code)
	}
	admin, err := env.users.FindByEmail(context.Background(), "admin@fau.de")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if admin.Role != models.RoleAdmin || admin.MustChangePassword || !env.hasher.Verify("AdminPass1", admin.PasswordHash) {
		t.Errorf("admin = %+v", admin)
	}

	env.cfg.Seed.Secret = ""
	if code := post(""); code != http.StatusForbidden {
		t.Errorf("unset secret status = %d, want 403", code)
	}
}

func TestAuditLogs(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.createUser(t, "admin@fau.de", "Secret123!", models.RoleAdmin, false)
	hr := env.createUser(t, "hr@fau.de", "Secret123!", models.RoleHR, false)
	token := env.login(t, admin)

	env.do(http.MethodGet, "/api/knowledge", nil, token)
	env.do(http.MethodGet, "/api/me", nil, token)

	if rec := env.do(http.MethodGet, "/api/audit-logs", nil, env.login(t, hr)); rec.Code != http.StatusForbidden {
		t.Errorf("hr status = %d, want 403", rec.Code)
	}

	rec := env.do(http.MethodGet, "/api/audit-logs?q=knowledge", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1", body["total"])
	}
	logs, _ := body["logs"].([]any)
	if len(logs) != 1 {
		t.Fatalf("logs = %v", logs)
	}
	if entry, _ := logs[0].(map[string]any); entry["path"] != "/api/knowledge" || entry["status"] != float64(200) {
		t.Errorf("entry = %v", entry)
	}
}
