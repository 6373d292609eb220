package service

import (
	"context"
	"database/sql"
	"fmt"
)

const sessionTokenKey = "token"

// TokenStore keeps the session token in the session_store table.
type TokenStore struct {
	DB *sql.DB
}

func (s TokenStore) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM session_store WHERE key = ?`, sessionTokenKey).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	return token, nil
}

func (s TokenStore) SaveToken(ctx context.Context, token string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO session_store(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, sessionTokenKey, token)
	if err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

func (s TokenStore) ClearToken(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM session_store WHERE key = ?`, sessionTokenKey); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
