package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const worldColumns = "id, vrchat_world_id, name, author_name, description, thumbnail_url, user_memo, tags, created_at, updated_at"

func scanWorld(scanner rowScanner) (*World, error) {
	var (
		id          int64
		externalID  sql.NullString
		name        string
		author      sql.NullString
		description sql.NullString
		thumbnail   sql.NullString
		memo        sql.NullString
		tagsRaw     sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&externalID,
		&name,
		&author,
		&description,
		&thumbnail,
		&memo,
		&tagsRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	world := &World{
		ID:            id,
		VRChatWorldID: externalID.String,
		Name:          name,
		AuthorName:    author.String,
		Description:   description.String,
		ThumbnailURL:  thumbnail.String,
		UserMemo:      memo.String,
		Tags:          decodeTags(tagsRaw.String),
		GroupIDs:      []int64{},
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		world.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		world.UpdatedAt = updated
	}
	return world, nil
}

const groupColumns = "g.id, g.name, g.description, g.icon, g.created_at, g.updated_at, (SELECT COUNT(1) FROM world_groups wg WHERE wg.group_id = g.id)"

func scanGroup(scanner rowScanner) (*Group, error) {
	var (
		id          int64
		name        string
		description sql.NullString
		icon        sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
		count       int
	)
	if err := scanner.Scan(&id, &name, &description, &icon, &createdRaw, &updatedRaw, &count); err != nil {
		return nil, err
	}
	group := &Group{
		ID:          id,
		Name:        name,
		Description: description.String,
		Icon:        icon.String,
		WorldCount:  count,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		group.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		group.UpdatedAt = updated
	}
	return group, nil
}

const photoColumns = "id, world_id, file_path, original_file_name, blurhash, taken_at, created_at"

func scanPhoto(scanner rowScanner) (*Photo, error) {
	var (
		id         int64
		worldID    int64
		filePath   string
		original   string
		blurhash   sql.NullString
		takenRaw   sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &worldID, &filePath, &original, &blurhash, &takenRaw, &createdRaw); err != nil {
		return nil, err
	}
	photo := &Photo{
		ID:               id,
		WorldID:          worldID,
		FilePath:         filePath,
		OriginalFileName: original,
		BlurHash:         blurhash.String,
	}
	if takenRaw.Valid {
		if taken, err := parseTimeString(takenRaw.String); err == nil {
			photo.TakenAt = &taken
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		photo.CreatedAt = created
	}
	return photo, nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeTags tolerates malformed rows by treating them as untagged.
func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
