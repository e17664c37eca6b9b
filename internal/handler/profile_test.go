package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"knowledge-hub/internal/models"
)

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, nil)
	u := env.createUser(t, "a@fau.de", "Temp12345", models.RoleEmployee, true)
	token := env.login(t, u)
	other := env.login(t, u)

	testCases := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"missing fields", map[string]string{"currentPassword": "Temp12345"}, http.StatusBadRequest},
		{"too short", map[string]string{"currentPassword": "Temp12345", "newPassword": "short"}, http.StatusBadRequest},
		{"too long", map[string]string{"currentPassword": "Temp12345", "newPassword": strings.Repeat("p", 73)}, http.StatusBadRequest},
		{"wrong current", map[string]string{"currentPassword": "wrong-one", "newPassword": "NewSecret1"}, http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/users/change-password", tc.body, token)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}

	rec := env.do(http.MethodPost, "/api/users/change-password",
		map[string]string{"currentPassword": "Temp12345", "newPassword": "NewSecret1"}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if force := cookie(rec, "orchid_force_pw_change"); force == nil || force.Value != "0" {
		t.Errorf("force cookie = %+v, want 0", force)
	}

	stored, err := env.users.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored.MustChangePassword {
		t.Error("MustChangePassword still set")
	}
	if !env.hasher.Verify("NewSecret1", stored.PasswordHash) {
		t.Error("new password does not verify")
	}

	// other sessions stay valid and are no longer blocked
	if rec := env.do(http.MethodGet, "/api/knowledge", nil, other); rec.Code != http.StatusOK {
		t.Errorf("other session status = %d, want 200", rec.Code)
	}
}

func TestChangePassword_Anonymous(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodPost, "/api/users/change-password",
		map[string]string{"currentPassword": "a", "newPassword": "bbbbbbbb"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
