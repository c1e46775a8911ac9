package suggest

import (
	"context"
	"time"

	"worldshelf/internal/catalog"
	"worldshelf/internal/vrchat"
)

const (
	// MaxSuggestions bounds the number of suggestions a scan returns.
	MaxSuggestions = 4
	// UnknownWorldName names worlds whose details could not be fetched.
	UnknownWorldName = "Unknown World"
)

// Lookup reports whether a world is already cataloged.
type Lookup interface {
	FindByExternalID(ctx context.Context, worldID string) (*catalog.World, error)
}

// Enricher fetches remote world details.
type Enricher interface {
	GetWorld(ctx context.Context, worldID string) (*vrchat.World, error)
}

// Candidate is a screenshot naming an uncataloged world, found during one scan.
type Candidate struct {
	WorldID  string `json:"worldId"`
	FilePath string `json:"filePath"`
	// FileName is the path relative to the scan root, using forward slashes.
	FileName string `json:"fileName"`
}

// Suggestion proposes adding a world seen in a screenshot. WorldAuthor and
// WorldThumbnail are nil when the lookup failed or did not return them.
type Suggestion struct {
	ID             string    `json:"id"`
	PhotoFilePath  string    `json:"photoFilePath"`
	PhotoFileName  string    `json:"photoFileName"`
	WorldID        string    `json:"worldId"`
	WorldName      string    `json:"worldName"`
	WorldAuthor    *string   `json:"worldAuthor,omitempty"`
	WorldThumbnail *string   `json:"worldThumbnail,omitempty"`
	DetectedAt     time.Time `json:"detectedAt"`
}

func suggestionID(worldID, fileName string) string {
	return worldID + "_" + fileName
}
