package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/config"
	"knowledge-hub/internal/models"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

const requestContextKey = "requestContext"

// RequestContext is parsed once per request and shared by every handler.
type RequestContext struct {
	Token       string
	ForceChange bool
	User        *auth.AuthUser
}

// SessionResolver is the part of auth.SessionService the middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.AuthUser, error)
}

// Session reads the auth cookies and resolves the session token. A store
// failure ends the request with 500; an invalid token simply leaves User nil.
func Session(resolver SessionResolver, cookies *CookieHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := &RequestContext{
			Token:       cookies.SessionToken(c),
			ForceChange: cookies.ForceChange(c),
		}

		user, err := resolver.Resolve(c.Request.Context(), rc.Token)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "session lookup failed",
				"module", "middleware",
				"operation", "resolve_session",
				"outcome", "failure",
				"error", err.Error(),
			)
			util.Error(c, http.StatusInternalServerError, util.MsgInternal)
			return
		}
		rc.User = user

		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// Context returns the request context; it is never nil.
func Context(c *gin.Context) *RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(*RequestContext); ok && rc != nil {
			return rc
		}
	}
	return &RequestContext{}
}

// Identity returns the authenticated user or nil.
func Identity(c *gin.Context) *auth.AuthUser {
	return Context(c).User
}

// RequireUser rejects anonymous API calls with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Identity(c) == nil {
			util.Error(c, http.StatusUnauthorized, util.MsgUnauthorized)
			return
		}
		c.Next()
	}
}

// RequirePasswordCurrent blocks API calls of users who still have to change
// their password.
func RequirePasswordCurrent() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := Identity(c); u != nil && u.MustChangePassword {
			util.Error(c, http.StatusForbidden, util.MsgPasswordChange)
			return
		}
		c.Next()
	}
}

// RequireRoles applies auth.Authorize to an API route.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		verdict := auth.Authorize(Identity(c), roles...)
		if !verdict.Allowed {
			util.Error(c, verdict.Status, verdict.Message)
			return
		}
		c.Next()
	}
}

// RequirePage guards HTML pages. Without a valid session both cookies are
// cleared before redirecting to login, so a stale cookie cannot bounce the
// browser between the edge filter and this check.
func RequirePage(cfg config.AuthConfig, cookies *CookieHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Identity(c)
		if user == nil {
			cookies.ClearAuthCookies(c)
			c.Redirect(http.StatusFound, LoginRedirect(cfg.LoginPath, c.Request.URL))
			c.Abort()
			return
		}
		if user.MustChangePassword && c.Request.URL.Path != cfg.ChangePasswordPath {
			c.Redirect(http.StatusFound, cfg.ChangePasswordPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
