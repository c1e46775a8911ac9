package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreatePhoto records an imported photo for an existing world.
func (s *Store) CreatePhoto(ctx context.Context, input PhotoInput) (*Photo, error) {
	if strings.TrimSpace(input.FilePath) == "" {
		return nil, errors.New("photo file path is required")
	}
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := rowExists(ctx, tx, `SELECT 1 FROM worlds WHERE id = ?`, input.WorldID); err != nil {
			return fmt.Errorf("world %d: %w", input.WorldID, err)
		}
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO photos (world_id, file_path, original_file_name, blurhash, taken_at, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			input.WorldID,
			input.FilePath,
			input.OriginalFileName,
			nullableString(input.BlurHash),
			nullableTime(input.TakenAt),
			s.timestamp(),
		)
		if err != nil {
			return fmt.Errorf("insert photo: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPhoto(ctx, id)
}

// GetPhoto fetches a photo by row ID.
func (s *Store) GetPhoto(ctx context.Context, id int64) (*Photo, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = ?`, id)
	photo, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("photo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}

// ListPhotosByWorld returns a world's photos, newest capture first.
func (s *Store) ListPhotosByWorld(ctx context.Context, worldID int64) ([]*Photo, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+photoColumns+` FROM photos WHERE world_id = ?
         ORDER BY COALESCE(taken_at, created_at) DESC, id DESC`,
		worldID,
	)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}

// DeletePhoto removes a photo row. The copied file is the caller's concern.
func (s *Store) DeletePhoto(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return fmt.Errorf("photo %d: %w", id, err)
	}
	return nil
}
