package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/upsimu/internal/cache"
	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/models"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_GetMissing(t *testing.T) {
	s, _ := newRedisStore(t, time.Minute)

	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Minute)
	require.NoError(t, s.Ping(ctx))

	a := newAttempt("redis-roundtrip")
	a.AddTurn(models.SpeakerUser, "ÖV4")
	a.FollowUps[models.CoverageState(2)] = 1
	a.FollowUps[models.CoverageState(5)] = 2
	a.State = models.StateAskingFollowUp
	require.NoError(t, s.Save(ctx, a))
	assert.True(t, mr.Exists("upsimu:attempt:redis-roundtrip"))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.ProfileID, got.ProfileID)
	assert.Equal(t, a.Transcript, got.Transcript)
	assert.Equal(t, a.FollowUps, got.FollowUps)
	assert.Equal(t, models.StateAskingFollowUp, got.State)
	assert.True(t, a.StartedAt.Equal(got.StartedAt))

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err = s.Get(ctx, a.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestRedisStore_EmptyFollowUps(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t, time.Minute)

	a := newAttempt("no-follow-ups")
	a.FollowUps = nil
	require.NoError(t, s.Save(ctx, a))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FollowUps)
	got.FollowUps[models.CoverageState(1)]++
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Minute)

	a := newAttempt("expiring")
	require.NoError(t, s.Save(ctx, a))
	assert.Equal(t, time.Minute, mr.TTL("upsimu:attempt:expiring"))

	mr.FastForward(30 * time.Second)
	_, err := s.Get(ctx, a.ID)
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)
	_, err = s.Get(ctx, a.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStore_PingFailsWhenServerDown(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	mr.Close()

	assert.Error(t, s.Ping(context.Background()))
}
