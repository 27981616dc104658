package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
)

// Postgres is the remote managed-database store variant.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an established connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// CreateTables applies the idempotent schema.
func (s *Postgres) CreateTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			pass TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS denylist (
			token TEXT PRIMARY KEY,
			expiration BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			date_time TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, email, pass FROM users WHERE email = $1`, email)
	var user auth.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, false, nil
		}
		return auth.User{}, false, err
	}
	return user, true, nil
}

func (s *Postgres) InsertUser(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, pass) VALUES ($1, $2) RETURNING id
	`, email, passwordHash).Scan(&id)
	return id, err
}

func (s *Postgres) UpdateUserPassword(ctx context.Context, email, passwordHash string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET pass = $1 WHERE email = $2`, passwordHash, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) DeleteUser(ctx context.Context, email string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DenyToken is an idempotent upsert keyed on the token string.
func (s *Postgres) DenyToken(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO denylist (token, expiration) VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`, token, expiresAt.UnixMilli())
	return err
}

func (s *Postgres) IsTokenDenied(ctx context.Context, token string) (bool, error) {
	row := s.pool.QueryRow(ctx, `SELECT 1 FROM denylist WHERE token = $1`, token)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Postgres) AddVisit(ctx context.Context, userID int64, dateTime string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO history (user_id, date_time) VALUES ($1, $2)`, userID, dateTime)
	return err
}

func (s *Postgres) VisitsByUser(ctx context.Context, userID int64) ([]visits.Visit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, date_time FROM history WHERE user_id = $1 ORDER BY id
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

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*Postgres)(nil)
