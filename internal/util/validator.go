package util

import "strings"

// EmailDomainAllowed reports whether email ends with "@<domain>" for one of
// the allowed domains. Comparison is case-insensitive; domains are expected
// lowercase.
func EmailDomainAllowed(email string, domains []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	for _, d := range domains {
		if d != "" && strings.HasSuffix(email, "@"+d) {
			return true
		}
	}
	return false
}

// IsSafeRedirect accepts only path-relative targets such as "/reports?x=1".
// Scheme-relative ("//host") and backslash tricks are rejected.
func IsSafeRedirect(target string) bool {
	if target == "" || target[0] != '/' {
		return false
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return false
	}
	return !strings.ContainsAny(target, "\r\n")
}
