// internal/common/auth/identity.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/errors"
)

// IdentityClient resolves bearer credentials against the external identity
// provider. It holds no mutable state and is safe for concurrent use.
type IdentityClient struct {
	baseURL           string
	serviceCredential string
	anonCredential    string
	httpClient        *http.Client
}

// UserIdentity is the resolved caller identity.
type UserIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewIdentityClient creates a new instance of IdentityClient.
func NewIdentityClient(cfg config.IdentityConfig) *IdentityClient {
	return &IdentityClient{
		baseURL:           strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceCredential: cfg.ServiceCredential,
		anonCredential:    cfg.AnonCredential,
		httpClient:        &http.Client{Timeout: config.GetDuration(cfg.TimeoutMs)},
	}
}

// ResolveUser exchanges a bearer token for the caller's identity. Any rejection
// by the provider, including malformed or expired tokens, surfaces as the
// Unauthenticated kind.
func (c *IdentityClient) ResolveUser(ctx context.Context, token string) (*UserIdentity, error) {
	if token == "" {
		return nil, errors.NewUnauthenticatedError("empty bearer token")
	}

	userURL := fmt.Sprintf("%s/auth/v1/user", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userURL, nil)
	if err != nil {
		return nil, errors.NewUnauthenticatedError(fmt.Sprintf("build identity request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.anonCredential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUnauthenticatedError(fmt.Sprintf("identity provider unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewUnauthenticatedError(
			fmt.Sprintf("identity provider rejected token: status %d: %s", resp.StatusCode, string(body)))
	}

	var user UserIdentity
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.NewUnauthenticatedError(fmt.Sprintf("decode identity response: %v", err))
	}
	if user.ID == "" {
		return nil, errors.NewUnauthenticatedError("identity response missing user id")
	}

	return &user, nil
}

// BearerFromHeader extracts the token from an Authorization header value.
func BearerFromHeader(header string) (string, error) {
	if header == "" {
		return "", errors.NewUnauthenticatedError("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.NewUnauthenticatedError("Authorization header is not a bearer credential")
	}
	return strings.TrimSpace(parts[1]), nil
}

// ServiceCredential exposes the privileged key for server-to-server calls.
func (c *IdentityClient) ServiceCredential() string {
	return c.serviceCredential
}

// WithTimeout clamps the client timeout, used by tests.
func (c *IdentityClient) WithTimeout(d time.Duration) *IdentityClient {
	c.httpClient.Timeout = d
	return c
}
