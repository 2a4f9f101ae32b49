package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/users", "/api/users"},
		{"/api/users/", "/api/users"},
		{"/api/roles/by-code", "/api/roles/by-code"},
		{"/api/permissions/tree", "/api/permissions/tree"},
		{"/api/users/8f14e45f-ceea-467f-a0e6-1c5ab3c0f7b1", "/api/other"},
		{"/dashboard", "/page"},
		{"/login", "/page"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.path, got, tt.want)
		}
	}
}
