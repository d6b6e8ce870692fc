package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"reservio/internal/models"
	"reservio/internal/store"
)

// CreateResource inserts a new resource row.
func (db *DB) CreateResource(ctx context.Context, res *models.Resource) error {
	metadata, err := marshalJSON(res.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	config, err := marshalJSON(res.BookingConfig)
	if err != nil {
		return fmt.Errorf("marshal booking config: %w", err)
	}

	now := time.Now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	_, err = db.ExecContext(ctx, `
		INSERT INTO resources (id, project_id, name, default_capacity, metadata, booking_config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.ProjectID, res.Name, res.DefaultCapacity, metadata, config, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// UpdateResource updates name, capacity, metadata and booking config.
// The id and project are immutable.
func (db *DB) UpdateResource(ctx context.Context, res *models.Resource) error {
	metadata, err := marshalJSON(res.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	config, err := marshalJSON(res.BookingConfig)
	if err != nil {
		return fmt.Errorf("marshal booking config: %w", err)
	}

	res.UpdatedAt = time.Now().UTC()
	result, err := db.ExecContext(ctx, `
		UPDATE resources
		SET name = ?, default_capacity = ?, metadata = ?, booking_config = ?, updated_at = ?
		WHERE id = ?`,
		res.Name, res.DefaultCapacity, metadata, config, res.UpdatedAt, res.ID,
	)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// FindResourceByID loads one resource.
func (db *DB) FindResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, project_id, name, default_capacity, metadata, booking_config, created_at, updated_at
		FROM resources WHERE id = ?`, id)
	res, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return res, err
}

// FindResourcesByProjectID lists a project's resources ordered by name.
func (db *DB) FindResourcesByProjectID(ctx context.Context, projectID string) ([]models.Resource, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, project_id, name, default_capacity, metadata, booking_config, created_at, updated_at
		FROM resources WHERE project_id = ? ORDER BY name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, *res)
	}
	return resources, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResource(row rowScanner) (*models.Resource, error) {
	var res models.Resource
	var metadata, config sql.NullString
	err := row.Scan(
		&res.ID, &res.ProjectID, &res.Name, &res.DefaultCapacity,
		&metadata, &config, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &res.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if config.Valid && config.String != "" {
		if err := json.Unmarshal([]byte(config.String), &res.BookingConfig); err != nil {
			return nil, fmt.Errorf("unmarshal booking config: %w", err)
		}
	}
	return &res, nil
}

// marshalJSON renders v as a JSON string, mapping nil to SQL NULL.
func marshalJSON(v interface{}) (sql.NullString, error) {
	switch val := v.(type) {
	case map[string]string:
		if val == nil {
			return sql.NullString{}, nil
		}
	case *models.BookingConfig:
		if val == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
