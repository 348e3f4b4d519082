package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email                       TEXT        NOT NULL UNIQUE,
  normalized_email            TEXT        NOT NULL,
  first_name                  TEXT        NOT NULL DEFAULT '',
  last_name                   TEXT        NOT NULL DEFAULT '',
  password_hash               TEXT        NOT NULL,
  total_case_allowance        INTEGER     NOT NULL DEFAULT 0,
  case_allowance_remaining    INTEGER     NOT NULL DEFAULT 0,
  case_allowance_last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
  unlimited_access            BOOLEAN     NOT NULL DEFAULT false,
  harvard_access              BOOLEAN     NOT NULL DEFAULT false,
  unlimited_access_until      TIMESTAMPTZ,
  is_staff                    BOOLEAN     NOT NULL DEFAULT false,
  is_active                   BOOLEAN     NOT NULL DEFAULT true,
  email_verified              BOOLEAN     NOT NULL DEFAULT false,
  activation_nonce            TEXT        NOT NULL DEFAULT '',
  nonce_expires               TIMESTAMPTZ,
  date_joined                 TIMESTAMPTZ NOT NULL DEFAULT now(),
  agreed_to_tos               BOOLEAN     NOT NULL DEFAULT false,
  track_history               BOOLEAN     NOT NULL DEFAULT false,
  mailing_list                BOOLEAN     NOT NULL DEFAULT false,
  deactivated_by_user         BOOLEAN     NOT NULL DEFAULT false,
  deactivated_date            TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_users_normalized_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_normalized_email ON users (normalized_email);`,
	},
	{
		Name: "create_index_users_email_lower",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (lower(email));`,
	},
	{
		Name: "create_table_auth_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS auth_tokens (
  key        TEXT        PRIMARY KEY,
  user_id    UUID        NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_email_blocklist",
		SQL: `CREATE TABLE IF NOT EXISTS email_blocklist (
  id         BIGSERIAL   PRIMARY KEY,
  domain     TEXT        NOT NULL DEFAULT '',
  regex      TEXT        NOT NULL DEFAULT '',
  notes      TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_mailing_list",
		SQL: `CREATE TABLE IF NOT EXISTS mailing_list (
  id           BIGSERIAL   PRIMARY KEY,
  email        TEXT        NOT NULL UNIQUE,
  do_not_email BOOLEAN     NOT NULL DEFAULT false,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_site_limits",
		SQL: `CREATE TABLE IF NOT EXISTS site_limits (
  id                   INTEGER PRIMARY KEY,
  daily_signup_limit   INTEGER NOT NULL DEFAULT 50,
  daily_signups        INTEGER NOT NULL DEFAULT 0,
  daily_download_limit INTEGER NOT NULL DEFAULT 50000,
  daily_downloads      INTEGER NOT NULL DEFAULT 0
);`,
	},
	{
		Name: "create_table_jurisdictions",
		SQL: `CREATE TABLE IF NOT EXISTS jurisdictions (
  id          BIGSERIAL PRIMARY KEY,
  slug        TEXT      NOT NULL UNIQUE,
  name        TEXT      NOT NULL,
  whitelisted BOOLEAN   NOT NULL DEFAULT false
);`,
	},
	{
		Name: "create_table_reporters",
		SQL: `CREATE TABLE IF NOT EXISTS reporters (
  id              BIGSERIAL PRIMARY KEY,
  full_name       TEXT      NOT NULL,
  short_name      TEXT      NOT NULL,
  short_name_slug TEXT      NOT NULL
);`,
	},
	{
		Name: "create_index_reporters_slug",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reporters_slug ON reporters (short_name_slug);`,
	},
	{
		Name: "create_table_volumes",
		SQL: `CREATE TABLE IF NOT EXISTS volumes (
  barcode            TEXT   PRIMARY KEY,
  reporter_id        BIGINT NOT NULL REFERENCES reporters (id),
  volume_number      TEXT   NOT NULL,
  volume_number_slug TEXT   NOT NULL,
  pdf_key            TEXT   NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_cases",
		SQL: `CREATE TABLE IF NOT EXISTS cases (
  id                     BIGSERIAL   PRIMARY KEY,
  reporter_id            BIGINT      NOT NULL REFERENCES reporters (id),
  volume_barcode         TEXT        NOT NULL REFERENCES volumes (barcode),
  jurisdiction_id        BIGINT      NOT NULL REFERENCES jurisdictions (id),
  name                   TEXT        NOT NULL,
  name_abbreviation      TEXT        NOT NULL,
  decision_date_original TEXT        NOT NULL DEFAULT '',
  decision_date          DATE,
  first_page             TEXT        NOT NULL DEFAULT '',
  last_page              TEXT        NOT NULL DEFAULT '',
  frontend_url           TEXT        NOT NULL DEFAULT '',
  human_corrected        BOOLEAN     NOT NULL DEFAULT false,
  no_index               BOOLEAN     NOT NULL DEFAULT false,
  robots_txt_until       TIMESTAMPTZ,
  no_index_redacted      JSONB       NOT NULL DEFAULT '{}',
  no_index_elided        JSONB       NOT NULL DEFAULT '{}',
  pdf_key                TEXT        NOT NULL DEFAULT '',
  last_updated           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_citations",
		SQL: `CREATE TABLE IF NOT EXISTS citations (
  id              BIGSERIAL PRIMARY KEY,
  case_id         BIGINT    NOT NULL REFERENCES cases (id) ON DELETE CASCADE,
  type            TEXT      NOT NULL DEFAULT 'official',
  cite            TEXT      NOT NULL,
  normalized_cite TEXT      NOT NULL
);`,
	},
	{
		Name: "create_index_citations_normalized_cite",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_citations_normalized_cite ON citations (normalized_cite);`,
	},
	{
		Name: "create_table_case_bodies",
		SQL: `CREATE TABLE IF NOT EXISTS case_bodies (
  case_id    BIGINT      PRIMARY KEY REFERENCES cases (id) ON DELETE CASCADE,
  html       TEXT        NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_case_pages",
		SQL: `CREATE TABLE IF NOT EXISTS case_pages (
  id      TEXT   PRIMARY KEY,
  case_id BIGINT NOT NULL REFERENCES cases (id) ON DELETE CASCADE,
  blocks  JSONB  NOT NULL DEFAULT '{}'
);`,
	},
	{
		Name: "create_table_correction_logs",
		SQL: `CREATE TABLE IF NOT EXISTS correction_logs (
  id          BIGSERIAL   PRIMARY KEY,
  case_id     BIGINT      NOT NULL REFERENCES cases (id) ON DELETE CASCADE,
  user_id     UUID        NOT NULL REFERENCES users (id),
  description TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_user_history",
		SQL: `CREATE TABLE IF NOT EXISTS user_history (
  id        BIGSERIAL   PRIMARY KEY,
  user_id   UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  case_id   BIGINT      NOT NULL,
  viewed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_user_history_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_user_history_user ON user_history (user_id, viewed_at);`,
	},
	{
		Name: "create_table_research_contracts",
		SQL: `CREATE TABLE IF NOT EXISTS research_contracts (
  id                      UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id                 UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  name                    TEXT        NOT NULL,
  email                   TEXT        NOT NULL,
  institution             TEXT        NOT NULL DEFAULT '',
  title                   TEXT        NOT NULL DEFAULT '',
  area_of_interest        TEXT        NOT NULL DEFAULT '',
  contract_html           TEXT        NOT NULL DEFAULT '',
  status                  TEXT        NOT NULL DEFAULT 'pending',
  approver_id             UUID        REFERENCES users (id),
  approver_signature_date TIMESTAMPTZ,
  approver_notes          TEXT        NOT NULL DEFAULT '',
  user_signature_date     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_harvard_contracts",
		SQL: `CREATE TABLE IF NOT EXISTS harvard_contracts (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id             UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  name                TEXT        NOT NULL,
  title               TEXT        NOT NULL,
  area_of_interest    TEXT        NOT NULL DEFAULT '',
  contract_html       TEXT        NOT NULL DEFAULT '',
  user_signature_date TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_timelines",
		SQL: `CREATE TABLE IF NOT EXISTS timelines (
  id         TEXT        PRIMARY KEY,
  created_by UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  timeline   JSONB       NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_case_exports",
		SQL: `CREATE TABLE IF NOT EXISTS case_exports (
  id          BIGSERIAL   PRIMARY KEY,
  file_name   TEXT        NOT NULL,
  storage_key TEXT        NOT NULL UNIQUE,
  size        BIGINT      NOT NULL CHECK (size >= 0),
  public      BOOLEAN     NOT NULL DEFAULT false,
  superseded  BOOLEAN     NOT NULL DEFAULT false,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks if the 'users' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.users') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
