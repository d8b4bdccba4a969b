// internal/authz/gate.go
// Package authz decides whether a resolved caller may run review actions.
// Identity resolution is delegated to the external provider; the role decision
// is made from the caller's profile row, cached in Redis to keep the hot path
// off Postgres.
package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/models"

	"github.com/redis/go-redis/v9"
)

const profileCachePrefix = "authz:profile:"

// ProfileSource loads the profile owned by an identity-provider user.
type ProfileSource interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// Principal is the authenticated and authorized caller of a review action.
type Principal struct {
	UserID  string
	Email   string
	Profile *models.Profile
}

// Gate authenticates bearer tokens and enforces the admin-only rule for
// review actions.
type Gate struct {
	profiles ProfileSource
	cache    redis.Cmdable
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewGate(profiles ProfileSource, cache redis.Cmdable, cacheTTL time.Duration, log logger.Logger) *Gate {
	return &Gate{
		profiles: profiles,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "authz-gate"}),
	}
}

// RequireAdmin loads the caller's profile and rejects anyone whose role is not
// admin. A missing profile row is treated the same as a non-admin role.
func (g *Gate) RequireAdmin(ctx context.Context, userID, email string) (*Principal, error) {
	profile, err := g.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.IsAdmin() {
		g.logger.Warn("admin gate rejected caller", map[string]interface{}{
			"userId":     userID,
			"hasProfile": profile != nil,
		})
		return nil, errors.NewForbiddenError(fmt.Sprintf("userId: %s", userID))
	}
	return &Principal{UserID: userID, Email: email, Profile: profile}, nil
}

// InvalidateProfile drops the cached profile after a role change so the next
// authorization decision sees the new role.
func (g *Gate) InvalidateProfile(ctx context.Context, userID string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Del(ctx, profileCachePrefix+userID).Err(); err != nil {
		g.logger.Warn("profile cache invalidation failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}
}

// loadProfile consults the cache before Postgres. Cache failures fall through
// to the database; a missing profile row resolves to (nil, nil).
func (g *Gate) loadProfile(ctx context.Context, userID string) (*models.Profile, error) {
	key := profileCachePrefix + userID

	if g.cache != nil {
		raw, err := g.cache.Get(ctx, key).Result()
		if err == nil {
			var p models.Profile
			if jsonErr := json.Unmarshal([]byte(raw), &p); jsonErr == nil {
				return &p, nil
			}
			// poisoned entry, drop it and fall through
			g.cache.Del(ctx, key)
		} else if err != redis.Nil {
			g.logger.Warn("profile cache read failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}

	profile, err := g.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if g.cache != nil {
		if raw, jsonErr := json.Marshal(profile); jsonErr == nil {
			if setErr := g.cache.Set(ctx, key, raw, g.cacheTTL).Err(); setErr != nil {
				g.logger.Warn("profile cache write failed", map[string]interface{}{
					"userId": userID,
					"error":  setErr.Error(),
				})
			}
		}
	}
	return profile, nil
}
