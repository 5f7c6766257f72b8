package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/YouWantToPinch/hearth-api/internal/auth"
	"github.com/YouWantToPinch/hearth-api/internal/database"
)

type testEnv struct {
	ctx    context.Context
	store  *database.SQLStore
	issuer *Issuer
	codec  *auth.Codec
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store, err := database.Open(ctx, database.Config{Backend: database.BackendSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	codec, err := auth.NewCodec(auth.TokenConfig{
		Secret:     "test-secret",
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	hasher, err := auth.NewHasher(auth.HasherConfig{Argon2MemoryKiB: 8 * 1024, Argon2Iter: 1})
	require.NoError(t, err)

	issuer, err := NewIssuer(store, codec, hasher)
	require.NoError(t, err)
	return &testEnv{ctx: ctx, store: store, issuer: issuer, codec: codec}
}

func (e *testEnv) seedUser(t *testing.T, username, password, role string, active bool) database.User {
	t.Helper()
	hash, err := e.issuer.hasher.Hash(password)
	require.NoError(t, err)
	u, err := e.store.CreateUser(e.ctx, database.CreateUserParams{
		Name:         username,
		Username:     username,
		Email:        username + "@family.local",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	})
	require.NoError(t, err)
	return u
}

func TestLogin(t *testing.T) {
	env := setup(t)
	john := env.seedUser(t, "john", "john123", database.RoleMember, true)
	env.seedUser(t, "olga", "olga123", database.RoleMember, false)

	t.Run("valid credentials", func(t *testing.T) {
		tokens, user, err := env.issuer.Login(env.ctx, "john", "john123")
		require.NoError(t, err)
		assert.Equal(t, john.ID, user.ID)

		claims, err := env.codec.DecodeAccess(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, john.ID, claims.UserID)
		assert.Equal(t, database.RoleMember, claims.Role)

		stored, err := env.store.GetUserByID(env.ctx, john.ID)
		require.NoError(t, err)
		assert.Equal(t, tokens.RefreshToken, stored.RefreshToken)
		assert.NotNil(t, stored.LastLogin)
	})

	cases := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "unknown user", username: "ghost", password: "x", wantErr: ErrInvalidCredentials},
		{name: "wrong password", username: "john", password: "john124", wantErr: ErrInvalidCredentials},
		{name: "username is case sensitive", username: "John", password: "john123", wantErr: ErrInvalidCredentials},
		{name: "inactive user", username: "olga", password: "olga123", wantErr: ErrAccountDisabled},
		{name: "inactive user with wrong password", username: "olga", password: "nope", wantErr: ErrAccountDisabled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.issuer.Login(env.ctx, tc.username, tc.password)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoginWithLegacyBcryptHash(t *testing.T) {
	env := setup(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("jane123"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = env.store.CreateUser(env.ctx, database.CreateUserParams{
		Name: "Jane", Username: "jane", Email: "jane@family.local",
		PasswordHash: string(hash), Role: database.RoleMember, IsActive: true,
	})
	require.NoError(t, err)

	_, _, err = env.issuer.Login(env.ctx, "jane", "jane123")
	assert.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	env := setup(t)
	john := env.seedUser(t, "john", "john123", database.RoleMember, true)

	t.Run("live refresh token yields access token", func(t *testing.T) {
		tokens, _, err := env.issuer.Login(env.ctx, "john", "john123")
		require.NoError(t, err)

		access, err := env.issuer.Refresh(env.ctx, tokens.RefreshToken)
		require.NoError(t, err)
		claims, err := env.codec.DecodeAccess(access)
		require.NoError(t, err)
		assert.Equal(t, john.ID, claims.UserID)

		// not rotated: the same refresh token keeps working
		_, err = env.issuer.Refresh(env.ctx, tokens.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("second login invalidates first refresh token", func(t *testing.T) {
		t1, _, err := env.issuer.Login(env.ctx, "john", "john123")
		require.NoError(t, err)
		t2, _, err := env.issuer.Login(env.ctx, "john", "john123")
		require.NoError(t, err)
		require.NotEqual(t, t1.RefreshToken, t2.RefreshToken)

		_, err = env.issuer.Refresh(env.ctx, t1.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		_, err = env.issuer.Refresh(env.ctx, t2.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("logout then refresh", func(t *testing.T) {
		tokens, _, err := env.issuer.Login(env.ctx, "john", "john123")
		require.NoError(t, err)
		require.NoError(t, env.issuer.Logout(env.ctx, john.ID))
		require.NoError(t, env.issuer.Logout(env.ctx, john.ID))

		_, err = env.issuer.Refresh(env.ctx, tokens.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		tokens, _, err := env.issuer.Login(env.ctx, "john", "john123")
		require.NoError(t, err)
		_, err = env.issuer.Refresh(env.ctx, tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := env.issuer.Refresh(env.ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("deactivated after login", func(t *testing.T) {
		tokens, _, err := env.issuer.Login(env.ctx, "john", "john123")
		require.NoError(t, err)
		_, err = env.store.UpdateUser(env.ctx, database.UpdateUserParams{ID: john.ID, IsActive: ptr(false)})
		require.NoError(t, err)
		t.Cleanup(func() {
			env.store.UpdateUser(env.ctx, database.UpdateUserParams{ID: john.ID, IsActive: ptr(true)})
		})

		_, err = env.issuer.Refresh(env.ctx, tokens.RefreshToken)
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestRoleIsSnapshotAtIssuance(t *testing.T) {
	env := setup(t)
	john := env.seedUser(t, "john", "john123", database.RoleMember, true)

	tokens, _, err := env.issuer.Login(env.ctx, "john", "john123")
	require.NoError(t, err)

	_, err = env.store.UpdateUser(env.ctx, database.UpdateUserParams{ID: john.ID, Role: ptr(database.RoleAdmin)})
	require.NoError(t, err)

	old, err := env.codec.DecodeAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, database.RoleMember, old.Role)

	access, err := env.issuer.Refresh(env.ctx, tokens.RefreshToken)
	require.NoError(t, err)
	fresh, err := env.codec.DecodeAccess(access)
	require.NoError(t, err)
	assert.Equal(t, database.RoleAdmin, fresh.Role)
}

func TestRegister(t *testing.T) {
	env := setup(t)

	tokens, user, err := env.issuer.Register(env.ctx, RegisterParams{
		Name: "Jane Doe", Username: "jane", Email: "jane@family.local", Password: "jane123",
	})
	require.NoError(t, err)
	assert.Equal(t, database.RoleMember, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "jane123", user.PasswordHash)

	_, err = env.issuer.Refresh(env.ctx, tokens.RefreshToken)
	assert.NoError(t, err)

	_, _, err = env.issuer.Register(env.ctx, RegisterParams{
		Name: "Jane Again", Username: "jane", Email: "other@family.local", Password: "jane123",
	})
	assert.ErrorIs(t, err, database.ErrConflict)

	_, admin, err := env.issuer.Register(env.ctx, RegisterParams{
		Name: "Admin", Username: "admin", Email: "admin@family.local", Password: "admin123", Role: database.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, database.RoleAdmin, admin.Role)
}

func TestChangePassword(t *testing.T) {
	env := setup(t)
	john := env.seedUser(t, "john", "john123", database.RoleMember, true)

	err := env.issuer.ChangePassword(env.ctx, john, "wrong", "newpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.issuer.ChangePassword(env.ctx, john, "john123", "newpass1"))

	_, _, err = env.issuer.Login(env.ctx, "john", "john123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.issuer.Login(env.ctx, "john", "newpass1")
	assert.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
