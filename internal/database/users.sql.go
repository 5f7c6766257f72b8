package database

import (
	"context"
	"database/sql"
	"time"
)

const userColumns = `id, name, username, email, password_hash, role, is_active, last_login, refresh_token, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var refresh sql.NullString
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		nullTime{&u.LastLogin},
		&refresh,
		dbTime{&u.CreatedAt},
		dbTime{&u.UpdatedAt},
	)
	u.RefreshToken = refresh.String
	return u, err
}

const createUser = `
INSERT INTO users (name, username, email, password_hash, role, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

func (s *SQLStore) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	now := s.stamp()
	row := s.queryRow(ctx, createUser,
		arg.Name,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.IsActive,
		now,
		now,
	)
	u, err := scanUser(row)
	return u, classify(err)
}

func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, classify(err)
}

// GetUserByUsername matches the username exactly.
func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	return u, classify(err)
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const updateUser = `
UPDATE users SET
	name = COALESCE(?, name),
	username = COALESCE(?, username),
	email = COALESCE(?, email),
	password_hash = COALESCE(?, password_hash),
	role = COALESCE(?, role),
	is_active = COALESCE(?, is_active),
	updated_at = ?
WHERE id = ?
RETURNING ` + userColumns

func (s *SQLStore) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := s.queryRow(ctx, updateUser,
		nullString(arg.Name),
		nullString(arg.Username),
		nullString(arg.Email),
		nullString(arg.PasswordHash),
		nullString(arg.Role),
		nullBool(arg.IsActive),
		s.stamp(),
		arg.ID,
	)
	u, err := scanUser(row)
	return u, classify(err)
}

func (s *SQLStore) DeleteUser(ctx context.Context, id int64) error {
	return s.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
}

func (s *SQLStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// SetUserRefreshToken overwrites the stored refresh token. An empty token
// clears it.
func (s *SQLStore) SetUserRefreshToken(ctx context.Context, id int64, token string) error {
	var arg sql.NullString
	if token != "" {
		arg = sql.NullString{String: token, Valid: true}
	}
	return s.execOne(ctx, `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`, arg, s.stamp(), id)
}

// RecordUserLogin stores the new refresh token and the login time in one
// statement.
func (s *SQLStore) RecordUserLogin(ctx context.Context, id int64, token string, at time.Time) error {
	return s.execOne(ctx,
		`UPDATE users SET refresh_token = ?, last_login = ?, updated_at = ? WHERE id = ?`,
		token, s.d.timeArg(at), s.stamp(), id,
	)
}
