package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/patrickudo2004/parchments/core/errors"
)

// SetSetting stores a JSON-serializable value under key.
func (s *Store) SetSetting(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewStore("set", "settings", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data))
	if err != nil {
		return storeErr("set", "settings", err)
	}
	return nil
}

// GetSetting decodes the value stored under key into out.
func (s *Store) GetSetting(ctx context.Context, key string, out interface{}) error {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return errors.NewNotFound("setting", key)
	}
	if err != nil {
		return storeErr("get", "settings", err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return errors.NewStore("decode", "settings", err)
	}
	return nil
}

// CreateUser inserts a user record. Password hashing happens before the
// hash reaches the store.
func (s *Store) CreateUser(ctx context.Context, user User) (User, error) {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FullName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return User{}, storeErr("create", "users", err)
	}
	return user, nil
}

// GetUserByEmail returns the user registered under email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, created_at FROM users WHERE email = ?`, email)
	var user User
	var fullName sql.NullString
	err := row.Scan(&user.ID, &user.Email, &fullName, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, errors.NewNotFound("user", email)
	}
	if err != nil {
		return User{}, storeErr("get", "users", err)
	}
	user.FullName = fullName.String
	return user, nil
}
