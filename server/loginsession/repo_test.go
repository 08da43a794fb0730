package loginsession_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-session-keeper/credential"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/server/loginsession"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testSession() loginsession.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return loginsession.Session{
		Credential: credential.Record{
			Principal:            credential.Principal{ID: "user-1", Email: "john.doe@example.com"},
			AccessToken:          "access-1",
			RefreshToken:         "refresh-1",
			AccessTokenExpiresAt: now.Add(time.Hour).UnixMilli(),
		},
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

func runRepoConformance(t *testing.T, repo loginsession.Repo) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		s := testSession()
		require.NoError(t, repo.Upsert(ctx, "sid-1", s))

		got, err := repo.Get(ctx, "sid-1")
		require.NoError(t, err)
		require.Equal(t, s, got)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		s := testSession()
		s.Credential.Error = credential.ErrorRefreshFailed
		require.NoError(t, repo.Upsert(ctx, "sid-1", s))

		got, err := repo.Get(ctx, "sid-1")
		require.NoError(t, err)
		require.Equal(t, credential.ErrorRefreshFailed, got.Credential.Error)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.Get(ctx, "nope")
		require.ErrorIs(t, err, errors.ErrSessionNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "sid-1"))
		require.NoError(t, repo.Delete(ctx, "sid-1"))
		_, err := repo.Get(ctx, "sid-1")
		require.ErrorIs(t, err, errors.ErrSessionNotFound)
	})

	t.Run("session id is required", func(t *testing.T) {
		require.Error(t, repo.Upsert(ctx, "", testSession()))
		_, err := repo.Get(ctx, "")
		require.Error(t, err)
		require.Error(t, repo.Delete(ctx, ""))
	})
}

func TestInMemoryLoginSessionRepo(t *testing.T) {
	runRepoConformance(t, loginsession.NewInMemoryLoginSessionRepo())
}

func TestInMemoryLoginSessionRepo_ExpiredSessionIsNotFound(t *testing.T) {
	repo := loginsession.NewInMemoryLoginSessionRepo()
	s := testSession()
	s.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, repo.Upsert(context.Background(), "sid-old", s))

	_, err := repo.Get(context.Background(), "sid-old")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestRedisLoginSessionRepo(t *testing.T) {
	_, client := newTestRedis(t)
	runRepoConformance(t, loginsession.NewRedisLoginSessionRepo(client, ""))
}

func TestRedisLoginSessionRepo_ExpiresWithSession(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := loginsession.NewRedisLoginSessionRepo(client, "test:")

	s := testSession()
	require.NoError(t, repo.Upsert(context.Background(), "sid-1", s))
	require.True(t, mr.Exists("test:sid-1"))
	require.Greater(t, mr.TTL("test:sid-1"), 23*time.Hour)

	mr.FastForward(25 * time.Hour)
	_, err := repo.Get(context.Background(), "sid-1")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestRedisLoginSessionRepo_UpsertPastExpiryDeletes(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := loginsession.NewRedisLoginSessionRepo(client, "test:")

	require.NoError(t, repo.Upsert(context.Background(), "sid-1", testSession()))

	s := testSession()
	s.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Upsert(context.Background(), "sid-1", s))
	require.False(t, mr.Exists("test:sid-1"))
}

func TestRedisLoginSessionRepo_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := loginsession.NewRedisLoginSessionRepo(client, "")
	mr.Close()

	_, err := repo.Get(context.Background(), "sid-1")
	require.Error(t, err)
	require.NotErrorIs(t, err, errors.ErrSessionNotFound)
}
