package middleware

import (
	"net/http"
	"time"

	"knowledge-hub/internal/config"

	"github.com/gin-gonic/gin"
)

// CookieHelper reads and writes the two auth cookies.
type CookieHelper struct {
	sessionName string
	forceName   string
	domain      string
	secure      bool
}

// NewCookieHelper creates a cookie helper from the auth configuration.
func NewCookieHelper(cfg config.AuthConfig) *CookieHelper {
	return &CookieHelper{
		sessionName: cfg.SessionCookie,
		forceName:   cfg.ForceChangeCookie,
		domain:      cfg.CookieDomain,
		secure:      cfg.CookieSecure,
	}
}

func (h *CookieHelper) SessionName() string { return h.sessionName }

func (h *CookieHelper) ForceName() string { return h.forceName }

// SetLoginCookies writes the session token and mirrors mustChange into the
// force-change flag.
func (h *CookieHelper) SetLoginCookies(c *gin.Context, token string, mustChange bool, ttl time.Duration) {
	h.setCookie(c, h.sessionName, token, int(ttl.Seconds()))
	h.SetForceChange(c, mustChange, ttl)
}

// SetForceChange writes "1" or "0" into the force-change cookie.
func (h *CookieHelper) SetForceChange(c *gin.Context, mustChange bool, ttl time.Duration) {
	value := "0"
	if mustChange {
		value = "1"
	}
	h.setCookie(c, h.forceName, value, int(ttl.Seconds()))
}

// ClearAuthCookies expires both cookies.
func (h *CookieHelper) ClearAuthCookies(c *gin.Context) {
	h.setCookie(c, h.sessionName, "", -1)
	h.setCookie(c, h.forceName, "", -1)
}

// SessionToken returns the session cookie value or "".
func (h *CookieHelper) SessionToken(c *gin.Context) string {
	token, err := c.Cookie(h.sessionName)
	if err != nil {
		return ""
	}
	return token
}

// ForceChange reports whether the force-change cookie is "1".
func (h *CookieHelper) ForceChange(c *gin.Context) bool {
	v, err := c.Cookie(h.forceName)
	return err == nil && v == "1"
}

func (h *CookieHelper) setCookie(c *gin.Context, name, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.domain,
		MaxAge:   maxAge,
		Secure:   h.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	http.SetCookie(c.Writer, cookie)
}
