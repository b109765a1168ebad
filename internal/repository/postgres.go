package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/kakao-geocoder/internal/models"
)

// MaxGeocodingAttempts is the number of failed lookups after which a task is no longer picked up.
const MaxGeocodingAttempts = 5

const fetchTasksQuery = `
		SELECT task_id, address
		FROM public.geocode_tasks
		WHERE
			latitude IS NULL
			AND geocoding_attempts < $1
			AND address IS NOT NULL AND address <> ''
		ORDER BY created_at ASC
		LIMIT $2;
	`

const updateLocationQuery = `
		UPDATE public.geocode_tasks
		SET
			latitude = $1,
			longitude = $2,
			address_name = $3,
			geocoding_error = NULL
		WHERE
			task_id = $4;
	`

const incrementFailureQuery = `
		UPDATE public.geocode_tasks
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE task_id = $2;
	`

// FetchTasksForGeocoding retrieves a list of tasks that require geocoding.
// It returns tasks that have a NULL latitude, fewer than MaxGeocodingAttempts attempts,
// and a non-empty address. The results are ordered by creation date and limited to the specified count.
func (r *Repository) FetchTasksForGeocoding(ctx context.Context, limit int) ([]models.Task, error) {
	var tasks []models.Task

	rows, err := r.db.Query(ctx, fetchTasksQuery, MaxGeocodingAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks with address: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.Address); errScan != nil {
			return nil, fmt.Errorf("failed to scan task with address: %w", errScan)
		}
		r.log.DebugContext(ctx, "A new task without coordinates has been received.",
			"ID", task.ID, "Address", task.Address)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateTaskLocation stores the coordinates and formal address of doc on the task
// and clears geocoding_error.
func (r *Repository) UpdateTaskLocation(ctx context.Context, taskID int, doc models.GeocodeDocument) error {
	coords := doc.Coordinates()

	_, err := r.db.Exec(ctx, updateLocationQuery, coords.Latitude, coords.Longitude, doc.AddressName, taskID)
	if err != nil {
		return fmt.Errorf("failed to update task location: %w", err)
	}

	return nil
}

// IncrementFailureCount increments the geocoding attempt count for a specific task
// and records the associated error message.
func (r *Repository) IncrementFailureCount(ctx context.Context, taskID int, errMsg string) error {
	_, err := r.db.Exec(ctx, incrementFailureQuery, errMsg, taskID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}
