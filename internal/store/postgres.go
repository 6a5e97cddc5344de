package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"replymate/internal/domain"
)

// PostgresBackend keeps one row per user with details and history as JSONB.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (s *PostgresBackend) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresBackend) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id TEXT PRIMARY KEY,
			style TEXT NOT NULL DEFAULT 'romantic',
			partner_name TEXT NOT NULL DEFAULT '',
			personal_details JSONB NOT NULL DEFAULT '{}'::jsonb,
			history JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_user_profiles_updated ON user_profiles(updated_at);`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresBackend) Load(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	var out domain.UserProfile
	var detailsRaw []byte
	var historyRaw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT style, partner_name, personal_details, history
		FROM user_profiles
		WHERE user_id=$1
	`, userID).Scan(&out.Style, &out.PartnerName, &detailsRaw, &historyRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, err
	}
	if err := json.Unmarshal(detailsRaw, &out.PersonalDetails); err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("decode personal_details: %w", err)
	}
	if err := json.Unmarshal(historyRaw, &out.History); err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("decode history: %w", err)
	}
	return out, true, nil
}

func (s *PostgresBackend) Save(ctx context.Context, userID string, profile domain.UserProfile) error {
	profile.Normalize()
	detailsJSON, err := json.Marshal(profile.PersonalDetails)
	if err != nil {
		return err
	}
	historyJSON, err := json.Marshal(profile.History)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_profiles(user_id, style, partner_name, personal_details, history)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb)
		ON CONFLICT (user_id)
		DO UPDATE SET style = EXCLUDED.style,
			partner_name = EXCLUDED.partner_name,
			personal_details = EXCLUDED.personal_details,
			history = EXCLUDED.history,
			updated_at = NOW();
	`, userID, profile.Style, profile.PartnerName, string(detailsJSON), string(historyJSON))
	return err
}
