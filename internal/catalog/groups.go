package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateGroup inserts a group.
func (s *Store) CreateGroup(ctx context.Context, input GroupInput) (*Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("group name is required")
	}
	timestamp := s.timestamp()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO groups (name, description, icon, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		strings.TrimSpace(input.Name),
		nullableString(input.Description),
		nullableString(input.Icon),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetGroup(ctx, id)
}

// GetGroup fetches a group with its world count.
func (s *Store) GetGroup(ctx context.Context, id int64) (*Group, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups g WHERE g.id = ?`, id)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// ListGroups returns every group ordered by name.
func (s *Store) ListGroups(ctx context.Context) ([]*Group, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM groups g ORDER BY g.name COLLATE NOCASE, g.id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup replaces the writable fields of a group.
func (s *Store) UpdateGroup(ctx context.Context, id int64, input GroupInput) (*Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("group name is required")
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE groups SET name = ?, description = ?, icon = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(input.Name),
		nullableString(input.Description),
		nullableString(input.Icon),
		s.timestamp(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return nil, fmt.Errorf("group %d: %w", id, err)
	}
	return s.GetGroup(ctx, id)
}

// DeleteGroup removes a group. With deleteWorlds set, the group's member
// worlds are deleted first; otherwise they stay cataloged without it.
func (s *Store) DeleteGroup(ctx context.Context, id int64, deleteWorlds bool) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if deleteWorlds {
			if _, err := tx.ExecContext(
				ctx,
				`DELETE FROM worlds WHERE id IN (SELECT world_id FROM world_groups WHERE group_id = ?)`,
				id,
			); err != nil {
				return fmt.Errorf("delete group worlds: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return affectedOrNotFound(res)
	})
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("group %d: %w", id, err)
	}
	return err
}

// AddWorldToGroup links a world to a group. Linking twice is a no-op.
func (s *Store) AddWorldToGroup(ctx context.Context, worldID, groupID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := rowExists(ctx, tx, `SELECT 1 FROM worlds WHERE id = ?`, worldID); err != nil {
			return fmt.Errorf("world %d: %w", worldID, err)
		}
		if err := rowExists(ctx, tx, `SELECT 1 FROM groups WHERE id = ?`, groupID); err != nil {
			return fmt.Errorf("group %d: %w", groupID, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO world_groups (world_id, group_id, added_at) VALUES (?, ?, ?)`,
			worldID,
			groupID,
			s.timestamp(),
		); err != nil {
			return fmt.Errorf("link world to group: %w", err)
		}
		return nil
	})
}

// RemoveWorldFromGroup unlinks a world from a group.
func (s *Store) RemoveWorldFromGroup(ctx context.Context, worldID, groupID int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM world_groups WHERE world_id = ? AND group_id = ?`, worldID, groupID)
	if err != nil {
		return fmt.Errorf("unlink world from group: %w", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return fmt.Errorf("world %d in group %d: %w", worldID, groupID, err)
	}
	return nil
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
