package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/registry/internal/apperr"
	"github.com/mvaleed/registry/internal/auth"
	"github.com/mvaleed/registry/internal/domain"
	"github.com/mvaleed/registry/internal/event"
	"github.com/mvaleed/registry/internal/storage"
)

// In-memory repository fakes. They honor the storage contracts: a missing
// row is a not-found taxonomy error, never a nil result.

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(context.Context, storage.UserFilter) ([]domain.User, int64, error) {
	return nil, 0, nil
}

type fakeTokenRepo struct {
	tokens            map[uuid.UUID]*domain.RefreshToken
	familyRevocations []uuid.UUID
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[uuid.UUID]*domain.RefreshToken{}}
}

func (f *fakeTokenRepo) Create(_ context.Context, t *domain.RefreshToken) error {
	f.tokens[t.ID] = t
	return nil
}

func (f *fakeTokenRepo) GetByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	for _, t := range f.tokens {
		if t.TokenHash == hash {
			return t, nil
		}
	}
	return nil, apperr.NotFound("token not found")
}

func (f *fakeTokenRepo) Revoke(_ context.Context, id uuid.UUID) error {
	t, ok := f.tokens[id]
	if !ok {
		return apperr.NotFound("token not found")
	}
	t.Revoke()
	return nil
}

func (f *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	f.familyRevocations = append(f.familyRevocations, userID)
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Revoke()
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(context.Context) (int64, error) {
	var n int64
	for id, t := range f.tokens {
		if t.IsExpired() {
			delete(f.tokens, id)
			n++
		}
	}
	return n, nil
}

func discardPublisher() event.Publisher {
	return event.NewLoggingPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeTokenRepo, *domain.User) {
	t.Helper()

	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()

	jwtCfg := auth.DefaultJWTConfig()
	jwtCfg.SecretKey = "test-secret"
	svc := NewAuthService(users, tokens, auth.NewJWTManager(jwtCfg), discardPublisher())

	user, err := domain.NewUser("dev@example.com", "dev", "Dev Eloper", domain.RoleEditor)
	require.NoError(t, err)
	require.NoError(t, user.Activate())
	require.NoError(t, users.Create(context.Background(), user))

	return svc, users, tokens, user
}

// seedToken stores a refresh token for user and returns its raw string.
func seedToken(t *testing.T, tokens *fakeTokenRepo, userID uuid.UUID, expiresAt time.Time) (string, *domain.RefreshToken) {
	t.Helper()

	raw, err := domain.GenerateTokenString()
	require.NoError(t, err)

	stored := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: auth.HashToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, tokens.Create(context.Background(), stored))
	return raw, stored
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _, tokens, user := newAuthFixture(t)
	raw, stored := seedToken(t, tokens, user.ID, time.Now().UTC().Add(time.Hour))

	result, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: raw})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, raw, result.RefreshToken, "the presented token must be rotated out")
	assert.Equal(t, user.ID, result.User.ID)

	// The old token is single-use.
	assert.True(t, stored.IsRevoked())
	assert.Len(t, tokens.tokens, 2)

	_, err = svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: result.RefreshToken})
	assert.NoError(t, err, "the rotated token must be usable")
}

func TestRefreshTokenReuseRevokesFamily(t *testing.T) {
	svc, _, tokens, user := newAuthFixture(t)

	// A previously rotated-out token and a still-valid sibling.
	reusedRaw, reused := seedToken(t, tokens, user.ID, time.Now().UTC().Add(time.Hour))
	reused.Revoke()
	_, sibling := seedToken(t, tokens, user.ID, time.Now().UTC().Add(time.Hour))

	_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: reusedRaw})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
	assert.Equal(t, "invalid credentials", ae.Message)

	// Presenting a revoked token means it may have been stolen: every
	// token the user holds is revoked, not just the presented one.
	assert.Equal(t, []uuid.UUID{user.ID}, tokens.familyRevocations)
	assert.True(t, sibling.IsRevoked())
}

func TestRefreshTokenExpiredDoesNotRevokeFamily(t *testing.T) {
	svc, _, tokens, user := newAuthFixture(t)

	expiredRaw, _ := seedToken(t, tokens, user.ID, time.Now().UTC().Add(-time.Hour))
	_, sibling := seedToken(t, tokens, user.ID, time.Now().UTC().Add(time.Hour))

	_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: expiredRaw})
	require.Error(t, err)

	// Expiry is normal aging, not reuse; siblings stay valid.
	assert.Empty(t, tokens.familyRevocations)
	assert.False(t, sibling.IsRevoked())
}

func TestRefreshTokenUnknownToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "never-issued"})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
	assert.Equal(t, "invalid credentials", ae.Message)
}

func TestRefreshTokenSuspendedUser(t *testing.T) {
	svc, _, tokens, user := newAuthFixture(t)
	raw, stored := seedToken(t, tokens, user.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, user.Suspend())

	_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: raw})
	require.Error(t, err)

	assert.True(t, stored.IsRevoked())
	assert.Empty(t, tokens.familyRevocations)
}

func TestLoginUniformCredentialFailures(t *testing.T) {
	svc, _, _, user := newAuthFixture(t)

	hash, err := auth.HashPassword("correct-horse-battery-1")
	require.NoError(t, err)
	user.PasswordHash = hash

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct-horse-battery-1"},
		{"wrong password", "dev@example.com", "wrong-password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), LoginInput{Email: tc.email, Password: tc.password})
			require.Error(t, err)

			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
			// Same message either way so callers cannot tell which
			// part was wrong.
			assert.Equal(t, "invalid credentials", ae.Message)
		})
	}

	result, err := svc.Login(context.Background(), LoginInput{Email: "dev@example.com", Password: "correct-horse-battery-1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
}
