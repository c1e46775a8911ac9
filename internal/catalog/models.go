package catalog

import "time"

// World is a cataloged VRChat world.
type World struct {
	ID int64 `json:"id"`
	// VRChatWorldID is the wrld_ identifier; empty for worlds entered by hand.
	VRChatWorldID string    `json:"vrchatWorldId,omitempty"`
	Name          string    `json:"name"`
	AuthorName    string    `json:"authorName,omitempty"`
	Description   string    `json:"description,omitempty"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	UserMemo      string    `json:"userMemo,omitempty"`
	Tags          []string  `json:"tags"`
	GroupIDs      []int64   `json:"groupIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// WorldInput carries the writable fields of a world.
type WorldInput struct {
	VRChatWorldID string
	Name          string
	AuthorName    string
	Description   string
	ThumbnailURL  string
	UserMemo      string
	Tags          []string
}

// Group is a user-defined collection of worlds.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	WorldCount  int       `json:"worldCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GroupInput carries the writable fields of a group.
type GroupInput struct {
	Name        string
	Description string
	Icon        string
}

// Photo is an imported screenshot linked to a world.
type Photo struct {
	ID               int64      `json:"id"`
	WorldID          int64      `json:"worldId"`
	FilePath         string     `json:"filePath"`
	OriginalFileName string     `json:"originalFileName"`
	BlurHash         string     `json:"blurhash,omitempty"`
	TakenAt          *time.Time `json:"takenAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// PhotoInput carries the fields recorded when a photo is imported.
type PhotoInput struct {
	WorldID          int64
	FilePath         string
	OriginalFileName string
	BlurHash         string
	TakenAt          *time.Time
}

// ListOptions filters ListWorlds.
type ListOptions struct {
	// GroupID limits results to members of a group when positive.
	GroupID int64
	// Search matches name, author, description, and tags, ignoring case.
	Search string
}
