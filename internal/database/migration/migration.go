package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_units",
		SQL: `CREATE TABLE IF NOT EXISTS units (
  id              TEXT PRIMARY KEY,
  code            TEXT NOT NULL UNIQUE,
  name            TEXT NOT NULL,
  parent_id       TEXT NULL REFERENCES units (id) ON DELETE RESTRICT,
  number_template TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_classifications",
		SQL: `CREATE TABLE IF NOT EXISTS classifications (
  code                     TEXT PRIMARY KEY,
  main_issue_code          TEXT NOT NULL,
  description              TEXT NOT NULL DEFAULT '',
  retention_active_years   INT  NOT NULL DEFAULT 0 CHECK (retention_active_years >= 0),
  retention_inactive_years INT  NOT NULL DEFAULT 0 CHECK (retention_inactive_years >= 0)
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id      TEXT PRIMARY KEY,
  email   TEXT NOT NULL UNIQUE,
  name    TEXT NOT NULL,
  unit_id TEXT NOT NULL DEFAULT '',
  role    TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_sequence_counters",
		SQL: `CREATE TABLE IF NOT EXISTS sequence_counters (
  scope      TEXT   NOT NULL,
  unit_id    TEXT   NOT NULL,
  issue_code TEXT   NOT NULL DEFAULT '',
  year       INT    NOT NULL DEFAULT 0,
  value      BIGINT NOT NULL CHECK (value > 0),
  PRIMARY KEY (scope, unit_id, issue_code, year)
);`,
	},
	{
		Name: "create_table_letters",
		SQL: `CREATE TABLE IF NOT EXISTS letters (
  id                  TEXT        PRIMARY KEY,
  kind                TEXT        NOT NULL CHECK (kind IN ('masuk', 'keluar', 'memo')),
  agenda_number       BIGINT      NOT NULL,
  number              TEXT        NULL,
  subject             TEXT        NOT NULL,
  body                TEXT        NOT NULL DEFAULT '',
  main_issue_code     TEXT        NOT NULL,
  classification_code TEXT        NOT NULL,
  unit_id             TEXT        NOT NULL REFERENCES units (id),
  created_by          TEXT        NOT NULL,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  status              TEXT        NOT NULL DEFAULT '',
  version             INT         NOT NULL DEFAULT 0,
  approval_chain      JSONB       NOT NULL DEFAULT '[]',
  history             JSONB       NOT NULL DEFAULT '[]',
  signature           JSONB       NULL,
  sender              TEXT        NOT NULL DEFAULT '',
  received_at         TIMESTAMPTZ NULL,
  dispositions        JSONB       NOT NULL DEFAULT '[]',
  attachments         JSONB       NOT NULL DEFAULT '[]',
  lock_version        BIGINT      NOT NULL DEFAULT 1,
  year                INT         NOT NULL,
  UNIQUE (unit_id, agenda_number)
);`,
	},
	{
		Name: "create_index_letters_filter",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_letters_filter ON letters (kind, unit_id, main_issue_code, year);`,
	},
	{
		Name: "create_index_letters_number",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_letters_number ON letters (number) WHERE kind <> 'masuk';`,
	},
	{
		Name: "create_index_letters_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_letters_created_at ON letters (created_at);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id                TEXT        PRIMARY KEY,
  user_id           TEXT        NOT NULL,
  related_letter_id TEXT        NOT NULL,
  message           TEXT        NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  is_read           BOOLEAN     NOT NULL DEFAULT FALSE
);`,
	},
	{
		Name: "create_index_notifications_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read, created_at DESC);`,
	},
	{
		Name: "create_table_audit_log",
		SQL: `CREATE TABLE IF NOT EXISTS audit_log (
  id         TEXT        PRIMARY KEY,
  letter_id  TEXT        NOT NULL,
  actor      TEXT        NOT NULL,
  action     TEXT        NOT NULL,
  detail     TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_log_letter",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_log_letter ON audit_log (letter_id, created_at);`,
	},
}

// EnsureMigrated checks if the 'letters' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Msg("checking schema")

	var exists bool
	query := "SELECT to_regclass('public.letters') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Int("steps", len(steps)).Msg("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug().
			Str("event", "db_migration_step").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("migration step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema migrated")
	return nil
}
