package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Migration is one versioned schema change
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

const migration001 = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    phone VARCHAR(32) NOT NULL UNIQUE,
    name VARCHAR(80),
    avatar VARCHAR(256),
    push_token VARCHAR(256),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sounds (
    id UUID PRIMARY KEY,
    seq BIGSERIAL,
    user_id UUID,
    filename VARCHAR(256),
    url VARCHAR(1024) NOT NULL,
    original_name VARCHAR(256) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sounds_user_created ON sounds(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS alarms (
    id UUID PRIMARY KEY,
    seq BIGSERIAL,
    user_id UUID,
    alarm_time VARCHAR(5) NOT NULL,
    label VARCHAR(120) NOT NULL DEFAULT 'Alarm',
    sound VARCHAR(1024) NOT NULL DEFAULT 'default',
    challenge_type VARCHAR(20) NOT NULL DEFAULT 'sentence',
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_challenge_type CHECK (challenge_type IN ('sentence', 'math'))
);

CREATE INDEX IF NOT EXISTS idx_alarms_user_created ON alarms(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_alarms_enabled_time ON alarms(alarm_time) WHERE enabled;

-- owners and alarms are plain references: deleting either never rewrites
-- history, and alarm_id is stored as reported
CREATE TABLE IF NOT EXISTS wakeup_records (
    id UUID PRIMARY KEY,
    seq BIGSERIAL,
    user_id UUID,
    alarm_id TEXT,
    event VARCHAR(64) NOT NULL,
    response_time INTEGER,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_event CHECK (event IN ('alarm_triggered', 'success', 'failed', 'snooze'))
);

CREATE INDEX IF NOT EXISTS idx_wakeup_records_user_created ON wakeup_records(user_id, created_at DESC);
`

// Migrations returns the embedded schema migrations in order
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_alarm_clock_schema", UpSQL: migration001},
	}
}

// Migrate applies every migration not yet recorded in schema_migrations
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, mig := range Migrations() {
		if done[mig.Version] {
			continue
		}
		err := withTx(ctx, db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return err
		}
		log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("Migration applied")
	}

	return nil
}
