package repository

import (
	"context"
	"fmt"
)

const schemaQuery = `
		CREATE TABLE IF NOT EXISTS public.geocode_tasks (
			task_id            SERIAL PRIMARY KEY,
			address            TEXT NOT NULL,
			latitude           DOUBLE PRECISION,
			longitude          DOUBLE PRECISION,
			address_name       TEXT,
			geocoding_attempts INTEGER NOT NULL DEFAULT 0,
			geocoding_error    TEXT,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

// EnsureSchema creates the geocode_tasks table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaQuery); err != nil {
		return fmt.Errorf("failed to create geocode_tasks table: %w", err)
	}

	return nil
}
