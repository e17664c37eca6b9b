package auth

import (
	"net/http"

	"knowledge-hub/internal/models"
)

// AuthUser is the identity a valid session resolves to.
type AuthUser struct {
	ID                 string      `json:"id"`
	Email              string      `json:"email"`
	Role               models.Role `json:"role"`
	MustChangePassword bool        `json:"mustChangePassword"`
}

// Verdict is the outcome of Authorize. Status and Message are set only when
// access is denied.
type Verdict struct {
	Allowed bool
	Status  int
	Message string
}

// Authorize decides whether user may act with one of the allowed roles.
// It has no side effects and never fails.
func Authorize(user *AuthUser, allowed ...models.Role) Verdict {
	if user == nil {
		return Verdict{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	for _, r := range allowed {
		if user.Role == r {
			return Verdict{Allowed: true}
		}
	}
	return Verdict{Status: http.StatusForbidden, Message: "Forbidden"}
}
