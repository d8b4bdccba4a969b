// internal/authz/gate_test.go
package authz

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfiles struct {
	profile *models.Profile
	err     error
	calls   int
}

func (s *stubProfiles) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func testRedis(t *testing.T) redis.Cmdable {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func adminProfile() *models.Profile {
	return &models.Profile{
		ID:       "profile-1",
		UserID:   "user-1",
		FullName: "Ada Admin",
		Email:    "ada@example.com",
		Role:     models.RoleAdmin,
	}
}

// ==========================
// RequireAdmin
// ==========================

func TestGate_RequireAdmin_AdminAllowed(t *testing.T) {
	profiles := &stubProfiles{profile: adminProfile()}
	gate := NewGate(profiles, testRedis(t), time.Minute, logger.NewTestLogger(t))

	principal, err := gate.RequireAdmin(context.Background(), "user-1", "ada@example.com")

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, models.RoleAdmin, principal.Profile.Role)
}

func TestGate_RequireAdmin_RiderForbidden(t *testing.T) {
	rider := adminProfile()
	rider.Role = models.RoleRider
	profiles := &stubProfiles{profile: rider}
	gate := NewGate(profiles, testRedis(t), time.Minute, logger.NewTestLogger(t))

	_, err := gate.RequireAdmin(context.Background(), "user-1", "")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
	assert.Contains(t, err.Error(), "Admin access required")
}

func TestGate_RequireAdmin_MissingProfileForbidden(t *testing.T) {
	profiles := &stubProfiles{err: errors.NewNotFoundError("Profile", "user-1")}
	gate := NewGate(profiles, testRedis(t), time.Minute, logger.NewTestLogger(t))

	_, err := gate.RequireAdmin(context.Background(), "user-1", "")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
}

func TestGate_RequireAdmin_LookupFailurePropagates(t *testing.T) {
	profiles := &stubProfiles{err: errors.NewUpstreamFailureError("load profile", assert.AnError)}
	gate := NewGate(profiles, testRedis(t), time.Minute, logger.NewTestLogger(t))

	_, err := gate.RequireAdmin(context.Background(), "user-1", "")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamFailure))
}

// ==========================
// Caching
// ==========================

func TestGate_RequireAdmin_SecondCallServedFromCache(t *testing.T) {
	profiles := &stubProfiles{profile: adminProfile()}
	gate := NewGate(profiles, testRedis(t), time.Minute, logger.NewTestLogger(t))

	_, err := gate.RequireAdmin(context.Background(), "user-1", "")
	require.NoError(t, err)
	_, err = gate.RequireAdmin(context.Background(), "user-1", "")
	require.NoError(t, err)

	assert.Equal(t, 1, profiles.calls)
}

func TestGate_InvalidateProfile_ForcesReload(t *testing.T) {
	profiles := &stubProfiles{profile: adminProfile()}
	gate := NewGate(profiles, testRedis(t), time.Minute, logger.NewTestLogger(t))

	_, err := gate.RequireAdmin(context.Background(), "user-1", "")
	require.NoError(t, err)

	gate.InvalidateProfile(context.Background(), "user-1")

	_, err = gate.RequireAdmin(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, profiles.calls)
}

func TestGate_PoisonedCacheEntryFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, cache.Set(context.Background(), profileCachePrefix+"user-1", "{not json", 0).Err())

	profiles := &stubProfiles{profile: adminProfile()}
	gate := NewGate(profiles, cache, time.Minute, logger.NewTestLogger(t))

	principal, err := gate.RequireAdmin(context.Background(), "user-1", "")

	require.NoError(t, err)
	assert.Equal(t, "profile-1", principal.Profile.ID)
	assert.Equal(t, 1, profiles.calls)
}

func TestGate_CacheOutageFallsThroughToDatabase(t *testing.T) {
	cache, cacheMock := redismock.NewClientMock()
	cacheMock.ExpectGet(profileCachePrefix + "user-1").SetErr(assert.AnError)
	cacheMock.Regexp().ExpectSet(profileCachePrefix+"user-1", `.*`, time.Minute).SetVal("OK")

	profiles := &stubProfiles{profile: adminProfile()}
	gate := NewGate(profiles, cache, time.Minute, logger.NewTestLogger(t))

	principal, err := gate.RequireAdmin(context.Background(), "user-1", "")

	require.NoError(t, err, "a cache outage must not block authorization")
	assert.Equal(t, "profile-1", principal.Profile.ID)
	assert.Equal(t, 1, profiles.calls)
}

func TestGate_NilCacheStillAuthorizes(t *testing.T) {
	profiles := &stubProfiles{profile: adminProfile()}
	gate := NewGate(profiles, nil, time.Minute, logger.NewTestLogger(t))

	principal, err := gate.RequireAdmin(context.Background(), "user-1", "")

	require.NoError(t, err)
	assert.NotNil(t, principal)

	raw, jsonErr := json.Marshal(principal.Profile)
	require.NoError(t, jsonErr)
	assert.Contains(t, string(raw), "admin")
}
