package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	signer := NewKeySigner("a-signing-secret-that-is-long-enough", "laptop-request-catalog")
	other := NewKeySigner("another-signing-secret-long-enough!!", "laptop-request-catalog")

	serviceKey, err := signer.Sign("service_role", time.Hour, time.Now())
	require.NoError(t, err)
	anonKey, err := signer.Sign("anon", time.Hour, time.Now())
	require.NoError(t, err)
	expiredKey, err := signer.Sign("service_role", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	foreignKey, err := other.Sign("service_role", time.Hour, time.Now())
	require.NoError(t, err)

	var seen *KeyClaims
	handler := RequireRole(signer, "service_role")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, code: "MISSING_AUTH_HEADER"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: "INVALID_AUTH_FORMAT"},
		{name: "expired key", header: "Bearer " + expiredKey, status: http.StatusUnauthorized, code: "INVALID_KEY"},
		{name: "foreign signature", header: "Bearer " + foreignKey, status: http.StatusUnauthorized, code: "INVALID_KEY"},
		{name: "wrong role", header: "Bearer " + anonKey, status: http.StatusForbidden, code: "INSUFFICIENT_PERMISSIONS"},
		{name: "service role", header: "Bearer " + serviceKey, status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodPost, "/admin/imports/catalog", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Contains(t, w.Body.String(), tt.code)
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "service_role", seen.Role)
		})
	}
}
