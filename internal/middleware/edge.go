package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"knowledge-hub/internal/config"
	"knowledge-hub/internal/metrics"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

var bypassPrefixes = []string{"/api/", "/static/"}

var bypassPaths = map[string]bool{
	"/metrics":     true,
	"/healthz":     true,
	"/favicon.ico": true,
}

var assetExtensions = map[string]bool{
	".css": true, ".js": true, ".map": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".ico": true, ".webp": true,
	".woff": true, ".woff2": true, ".ttf": true,
	".txt": true, ".xml": true, ".webmanifest": true,
}

// EdgeFilter redirects page requests based on cookie presence alone. It
// never looks a session up; every handler resolves the session again.
func EdgeFilter(cfg config.AuthConfig, cookies *CookieHelper, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if bypassEdge(p) {
			c.Next()
			return
		}

		hasSession := cookies.SessionToken(c) != ""

		// a force flag without a session cookie is stale and would bounce
		// between the login and change-password pages
		if hasSession && cookies.ForceChange(c) && p != cfg.ChangePasswordPath {
			m.EdgeRedirect("force_change")
			c.Redirect(http.StatusFound, cfg.ChangePasswordPath)
			c.Abort()
			return
		}

		if p == cfg.LoginPath {
			if hasSession {
				target := c.Query("next")
				if !util.IsSafeRedirect(target) {
					target = cfg.LandingPath
				}
				m.EdgeRedirect("already_authenticated")
				c.Redirect(http.StatusFound, target)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if !hasSession {
			m.EdgeRedirect("anonymous")
			c.Redirect(http.StatusFound, LoginRedirect(cfg.LoginPath, c.Request.URL))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRedirect builds "/login?next=<path+query>". The path keeps its
// original escaping so "/search/a%2Fb" comes back unchanged.
func LoginRedirect(loginPath string, u *url.URL) string {
	next := u.EscapedPath()
	if u.RawQuery != "" {
		next += "?" + u.RawQuery
	}
	q := url.Values{}
	q.Set("next", next)
	return loginPath + "?" + q.Encode()
}

func bypassEdge(p string) bool {
	for _, prefix := range bypassPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	if bypassPaths[p] {
		return true
	}
	return assetExtensions[strings.ToLower(path.Ext(p))]
}
