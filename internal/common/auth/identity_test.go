// internal/common/auth/identity_test.go
package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *IdentityClient {
	return NewIdentityClient(config.IdentityConfig{
		BaseURL:           baseURL,
		ServiceCredential: "service-key",
		AnonCredential:    "anon-key",
		TimeoutMs:         2000,
	})
}

func TestResolveUser_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-123","email":"admin@example.com"}`))
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL).ResolveUser(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, "user-123", user.ID)
	assert.Equal(t, "admin@example.com", user.Email)
}

func TestResolveUser_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid JWT"}`))
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL).ResolveUser(context.Background(), "bad-token")
	assert.Nil(t, user)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthenticated))
}

func TestResolveUser_EmptyToken(t *testing.T) {
	user, err := newTestClient("http://identity.invalid").ResolveUser(context.Background(), "")
	assert.Nil(t, user)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthenticated))
}

func TestResolveUser_MissingUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"no-id@example.com"}`))
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL).ResolveUser(context.Background(), "token")
	assert.Nil(t, user)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthenticated))
}

func TestBearerFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer abc123", want: "abc123"},
		{name: "case insensitive scheme", header: "bearer abc123", want: "abc123"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc123", wantErr: true},
		{name: "no token", header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := BearerFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthenticated))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}
