package session

import (
	"net/url"
	"strings"
)

// LoginPath — страница входа.
const LoginPath = "/login"

var (
	// ProtectedPrefixes — разделы, требующие сессии.
	ProtectedPrefixes = []string{"/dashboard", "/settings", "/users", "/table-demo"}
	// PublicPrefixes — разделы, доступные всегда.
	PublicPrefixes = []string{"/login", "/register"}
)

// CheckRoute решает, пускать ли на path. Без сессии защищённый раздел
// перенаправляется на /login?redirect=<path>.
func CheckRoute(path string, authenticated bool) (redirect string, allowed bool) {
	if hasPrefix(path, PublicPrefixes) {
		return "", true
	}
	if !hasPrefix(path, ProtectedPrefixes) || authenticated {
		return "", true
	}
	return LoginPath + "?" + url.Values{"redirect": {path}}.Encode(), false
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
