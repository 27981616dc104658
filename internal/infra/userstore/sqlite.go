package userstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
)

// SQLite is the embedded-file store variant.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database file at path, creating it if absent.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// CreateTables applies the idempotent schema.
func (s *SQLite) CreateTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			pass TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS denylist (
			token TEXT PRIMARY KEY,
			expiration INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			date_time TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, email, pass FROM users WHERE email = ?`, email)
	var user auth.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, false, nil
		}
		return auth.User{}, false, err
	}
	return user, true, nil
}

func (s *SQLite) InsertUser(ctx context.Context, email, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (email, pass) VALUES (?, ?)`, email, passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLite) UpdateUserPassword(ctx context.Context, email, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET pass = ? WHERE email = ?`, passwordHash, email)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *SQLite) DeleteUser(ctx context.Context, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// DenyToken is an idempotent upsert keyed on the token string.
func (s *SQLite) DenyToken(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO denylist (token, expiration) VALUES (?, ?)
		ON CONFLICT (token) DO NOTHING
	`, token, expiresAt.UnixMilli())
	return err
}

func (s *SQLite) IsTokenDenied(ctx context.Context, token string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM denylist WHERE token = ?`, token)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SQLite) AddVisit(ctx context.Context, userID int64, dateTime string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO history (user_id, date_time) VALUES (?, ?)`, userID, dateTime)
	return err
}

func (s *SQLite) VisitsByUser(ctx context.Context, userID int64) ([]visits.Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date_time FROM history WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []visits.Visit
	for rows.Next() {
		var v visits.Visit
		if err := rows.Scan(&v.ID, &v.UserID, &v.DateTime); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
