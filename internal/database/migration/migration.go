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
		Name: "create_table_kyc_processes",
		SQL: `CREATE TABLE IF NOT EXISTS kyc_processes (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id          UUID        NOT NULL,
  status           TEXT        NOT NULL,
  session_token    TEXT        NOT NULL UNIQUE,
  last_activity_at TIMESTAMPTZ NOT NULL,
  review_comment   TEXT,
  reviewed_by      UUID,
  reviewed_at      TIMESTAMPTZ,
  created_by       TEXT        NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  modified_by      TEXT,
  modified_at      TIMESTAMPTZ,
  deleted_by       TEXT,
  deleted_at       TIMESTAMPTZ,
  is_deleted       BOOLEAN     NOT NULL DEFAULT false
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id        UUID        NOT NULL,
  original_name  TEXT        NOT NULL,
  extension      TEXT        NOT NULL,
  content_type   TEXT        NOT NULL,
  size           BIGINT      NOT NULL CHECK (size >= 0),
  category       TEXT        NOT NULL,
  status         TEXT        NOT NULL,
  hash           TEXT        NOT NULL,
  storage_path   TEXT        NOT NULL,
  bucket         TEXT        NOT NULL,
  kyc_process_id UUID        REFERENCES kyc_processes (id) ON DELETE SET NULL,
  reference      TEXT,
  description    TEXT,
  expires_at     TIMESTAMPTZ,
  created_by     TEXT        NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  modified_by    TEXT,
  modified_at    TIMESTAMPTZ,
  deleted_by     TEXT,
  deleted_at     TIMESTAMPTZ,
  is_deleted     BOOLEAN     NOT NULL DEFAULT false
);`,
	},
	{
		Name: "create_index_files_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_user_id ON files (user_id);`,
	},
	{
		Name: "create_index_files_kyc_process_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_kyc_process_id ON files (kyc_process_id);`,
	},
	{
		Name: "create_index_files_reference",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_reference ON files (reference);`,
	},
	{
		Name: "create_index_files_status_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_status_expires_at ON files (status, expires_at);`,
	},
	{
		Name: "create_index_kyc_processes_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_kyc_processes_user_id ON kyc_processes (user_id);`,
	},
	{
		Name: "create_index_kyc_processes_user_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_kyc_processes_user_status ON kyc_processes (user_id, status, last_activity_at);`,
	},
}

// EnsureMigrated checks if the 'files' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.files') IS NOT NULL"
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
