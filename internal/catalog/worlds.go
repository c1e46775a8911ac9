package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// FindByExternalID returns the world carrying a VRChat world ID, or nil when
// none is cataloged.
func (s *Store) FindByExternalID(ctx context.Context, worldID string) (*World, error) {
	if strings.TrimSpace(worldID) == "" {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+worldColumns+` FROM worlds WHERE vrchat_world_id = ?`, worldID)
	world, err := scanWorld(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find world %s: %w", worldID, err)
	}
	if err := s.attachGroups(ctx, []*World{world}); err != nil {
		return nil, err
	}
	return world, nil
}

// CreateWorld inserts a world. A VRChat world ID that is already cataloged
// yields ErrDuplicateWorld.
func (s *Store) CreateWorld(ctx context.Context, input WorldInput) (*World, error) {
	return s.CreateWorldInGroup(ctx, input, 0)
}

// CreateWorldInGroup inserts a world and, when groupID is positive, links it
// to that group in the same transaction. A missing group yields ErrNotFound
// and leaves nothing cataloged.
func (s *Store) CreateWorldInGroup(ctx context.Context, input WorldInput, groupID int64) (*World, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("world name is required")
	}
	ctx = ensureContext(ctx)
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if groupID > 0 {
			if err := rowExists(ctx, tx, `SELECT 1 FROM groups WHERE id = ?`, groupID); err != nil {
				return fmt.Errorf("group %d: %w", groupID, err)
			}
		}
		timestamp := s.timestamp()
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO worlds (
            vrchat_world_id, name, author_name, description, thumbnail_url,
            user_memo, tags, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullableString(strings.TrimSpace(input.VRChatWorldID)),
			strings.TrimSpace(input.Name),
			nullableString(input.AuthorName),
			nullableString(input.Description),
			nullableString(input.ThumbnailURL),
			nullableString(input.UserMemo),
			encodeTags(input.Tags),
			timestamp,
			timestamp,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateWorld, input.VRChatWorldID)
			}
			return fmt.Errorf("insert world: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		if groupID > 0 {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO world_groups (world_id, group_id, added_at) VALUES (?, ?, ?)`,
				id,
				groupID,
				timestamp,
			); err != nil {
				return fmt.Errorf("link world to group: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetWorld(ctx, id)
}

// GetWorld fetches a world by row ID.
func (s *Store) GetWorld(ctx context.Context, id int64) (*World, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+worldColumns+` FROM worlds WHERE id = ?`, id)
	world, err := scanWorld(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("world %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get world: %w", err)
	}
	if err := s.attachGroups(ctx, []*World{world}); err != nil {
		return nil, err
	}
	return world, nil
}

// ListWorlds returns worlds ordered by name.
func (s *Store) ListWorlds(ctx context.Context, opts ListOptions) ([]*World, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + worldColumns + ` FROM worlds`
	var args []any
	if opts.GroupID > 0 {
		query += ` WHERE id IN (SELECT world_id FROM world_groups WHERE group_id = ?)`
		args = append(args, opts.GroupID)
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	var worlds []*World
	for rows.Next() {
		world, err := scanWorld(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan world: %w", err)
		}
		worlds = append(worlds, world)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate worlds: %w", err)
	}
	rows.Close()

	worlds = filterWorlds(worlds, opts.Search)
	if err := s.attachGroups(ctx, worlds); err != nil {
		return nil, err
	}
	return worlds, nil
}

func filterWorlds(worlds []*World, search string) []*World {
	search = strings.TrimSpace(search)
	if search == "" {
		return worlds
	}
	fold := cases.Fold()
	needle := fold.String(search)
	filtered := worlds[:0]
	for _, world := range worlds {
		fields := append([]string{world.Name, world.AuthorName, world.Description, world.UserMemo}, world.Tags...)
		for _, field := range fields {
			if strings.Contains(fold.String(field), needle) {
				filtered = append(filtered, world)
				break
			}
		}
	}
	return filtered
}

// UpdateWorld replaces the writable fields of a world.
func (s *Store) UpdateWorld(ctx context.Context, id int64, input WorldInput) (*World, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("world name is required")
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE worlds
         SET vrchat_world_id = ?, name = ?, author_name = ?, description = ?,
             thumbnail_url = ?, user_memo = ?, tags = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(strings.TrimSpace(input.VRChatWorldID)),
		strings.TrimSpace(input.Name),
		nullableString(input.AuthorName),
		nullableString(input.Description),
		nullableString(input.ThumbnailURL),
		nullableString(input.UserMemo),
		encodeTags(input.Tags),
		s.timestamp(),
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWorld, input.VRChatWorldID)
		}
		return nil, fmt.Errorf("update world: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return nil, fmt.Errorf("world %d: %w", id, err)
	}
	return s.GetWorld(ctx, id)
}

// DeleteWorld removes a world along with its memberships and photo rows.
func (s *Store) DeleteWorld(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM worlds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete world: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return fmt.Errorf("world %d: %w", id, err)
	}
	return nil
}

// DeleteWorlds removes several worlds and reports how many rows went away.
func (s *Store) DeleteWorlds(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM worlds WHERE id IN (`+makePlaceholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return 0, fmt.Errorf("delete worlds: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *Store) attachGroups(ctx context.Context, worlds []*World) error {
	if len(worlds) == 0 {
		return nil
	}
	byID := make(map[int64]*World, len(worlds))
	ids := make([]int64, 0, len(worlds))
	for _, world := range worlds {
		byID[world.ID] = world
		ids = append(ids, world.ID)
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT world_id, group_id FROM world_groups WHERE world_id IN (`+makePlaceholders(len(ids))+`) ORDER BY group_id`,
		int64Args(ids)...,
	)
	if err != nil {
		return fmt.Errorf("load world groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var worldID, groupID int64
		if err := rows.Scan(&worldID, &groupID); err != nil {
			return fmt.Errorf("scan world group: %w", err)
		}
		if world := byID[worldID]; world != nil {
			world.GroupIDs = append(world.GroupIDs, groupID)
		}
	}
	return rows.Err()
}
