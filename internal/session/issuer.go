// Package session issues, refreshes and revokes user sessions.
//
// A session is an access token plus a refresh token. Only the refresh
// token is stored, on the user record, and only the most recent one is
// honored. Concurrent login, refresh and logout calls for one user are
// last-write-wins; each write is a single UPDATE.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YouWantToPinch/hearth-api/internal/auth"
	"github.com/YouWantToPinch/hearth-api/internal/database"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDisabled     = errors.New("account has been deactivated")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type Issuer struct {
	users  database.UserStore
	tokens *auth.Codec
	hasher *auth.Hasher
	now    func() time.Time
	// dummyHash is verified against when a login names an unknown user.
	dummyHash string
}

func NewIssuer(users database.UserStore, tokens *auth.Codec, hasher *auth.Hasher) (*Issuer, error) {
	dummy, err := hasher.Hash("hearth-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("precomputing dummy hash: %w", err)
	}
	return &Issuer{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

func (i *Issuer) Tokens() *auth.Codec { return i.tokens }

func (i *Issuer) Hasher() *auth.Hasher { return i.hasher }

// Login checks credentials and starts a new session, replacing any
// refresh token issued earlier. An inactive account is reported before
// the password is checked.
func (i *Issuer) Login(ctx context.Context, username, password string) (Tokens, database.User, error) {
	user, err := i.users.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		_, _ = i.hasher.Verify(password, i.dummyHash)
		return Tokens{}, database.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return Tokens{}, database.User{}, fmt.Errorf("looking up user: %w", err)
	}

	if !user.IsActive {
		return Tokens{}, database.User{}, ErrAccountDisabled
	}

	match, err := i.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return Tokens{}, database.User{}, fmt.Errorf("verifying password for user %d: %w", user.ID, err)
	}
	if !match {
		return Tokens{}, database.User{}, ErrInvalidCredentials
	}

	tokens, err := i.issuePair(user)
	if err != nil {
		return Tokens{}, database.User{}, err
	}

	at := i.now().UTC().Truncate(time.Second)
	if err := i.users.RecordUserLogin(ctx, user.ID, tokens.RefreshToken, at); err != nil {
		return Tokens{}, database.User{}, fmt.Errorf("recording login: %w", err)
	}
	user.RefreshToken = tokens.RefreshToken
	user.LastLogin = &at
	return tokens, user, nil
}

// Refresh trades a live refresh token for a new access token. The refresh
// token itself is not rotated and stays valid until the next login or
// logout.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := i.tokens.DecodeRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	user, err := i.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("looking up user: %w", err)
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return "", ErrInvalidRefreshToken
	}
	if !user.IsActive {
		return "", ErrAccountDisabled
	}

	access, err := i.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("issuing access token: %w", err)
	}
	return access, nil
}

// Logout drops the stored refresh token. Access tokens already issued stay
// valid until they expire.
func (i *Issuer) Logout(ctx context.Context, userID int64) error {
	err := i.users.SetUserRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("clearing refresh token: %w", err)
	}
	return nil
}

type RegisterParams struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     string
}

// Register creates an active user and logs them in. Role defaults to
// member.
func (i *Issuer) Register(ctx context.Context, p RegisterParams) (Tokens, database.User, error) {
	hash, err := i.hasher.Hash(p.Password)
	if err != nil {
		return Tokens{}, database.User{}, fmt.Errorf("hashing password: %w", err)
	}
	role := p.Role
	if role == "" {
		role = database.RoleMember
	}

	user, err := i.users.CreateUser(ctx, database.CreateUserParams{
		Name:         p.Name,
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return Tokens{}, database.User{}, fmt.Errorf("creating user: %w", err)
	}

	tokens, err := i.issuePair(user)
	if err != nil {
		return Tokens{}, database.User{}, err
	}
	if err := i.users.SetUserRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return Tokens{}, database.User{}, fmt.Errorf("storing refresh token: %w", err)
	}
	user.RefreshToken = tokens.RefreshToken
	return tokens, user, nil
}

// ChangePassword replaces the user's password after checking the current
// one. Existing sessions are left alone.
func (i *Issuer) ChangePassword(ctx context.Context, user database.User, current, next string) error {
	match, err := i.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying password for user %d: %w", user.ID, err)
	}
	if !match {
		return ErrInvalidCredentials
	}
	hash, err := i.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := i.users.UpdateUser(ctx, database.UpdateUserParams{ID: user.ID, PasswordHash: &hash}); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}
	return nil
}

func (i *Issuer) issuePair(user database.User) (Tokens, error) {
	access, err := i.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return Tokens{}, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, err := i.tokens.IssueRefresh(user.ID)
	if err != nil {
		return Tokens{}, fmt.Errorf("issuing refresh token: %w", err)
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}
