// internal/server/middleware.go
package server

import (
	"context"
	"net/http"

	"ridehail-platform/internal/common/auth"
	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
)

type contextKey string

const identityContextKey contextKey = "caller-identity"

// identityResolver exchanges bearer tokens for a caller identity.
type identityResolver interface {
	ResolveUser(ctx context.Context, token string) (*auth.UserIdentity, error)
}

// withCORS answers preflight requests with permissive headers and status 200,
// no body, and decorates every other response with the same headers.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, apikey")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withIdentity resolves the bearer credential and stores the caller identity
// in the request context. Requests without a resolvable identity are rejected
// before reaching any handler.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
				"path": r.URL.Path,
			})
			return
		}
		identity, err := s.identity.ResolveUser(r.Context(), token)
		if err != nil {
			s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
				"path": r.URL.Path,
			})
			return
		}
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerIdentity pulls the resolved identity out of the request context.
func callerIdentity(r *http.Request) *auth.UserIdentity {
	identity, _ := r.Context().Value(identityContextKey).(*auth.UserIdentity)
	return identity
}

// withRequestLogging emits one line per request with the caller's view of it.
func withRequestLogging(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		log.Debug("request handled", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	})
}

// writeJSON writes a 200 response with the given payload.
func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = jsonEncode(w, payload)
}

// requireIdentity is a guard for handlers mounted behind withIdentity; a nil
// identity means a routing mistake, reported as unauthenticated.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.UserIdentity, bool) {
	identity := callerIdentity(r)
	if identity == nil {
		s.errorHandler.WriteHTTPError(w, errors.NewUnauthenticatedError("no resolved identity on request"), nil)
		return nil, false
	}
	return identity, true
}
