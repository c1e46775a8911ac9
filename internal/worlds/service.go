package worlds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"worldshelf/internal/catalog"
	"worldshelf/internal/fileutil"
	"worldshelf/internal/logging"
	"worldshelf/internal/pngmeta"
	"worldshelf/internal/prefs"
	"worldshelf/internal/suggest"
	"worldshelf/internal/vrchat"
)

// Dependencies wires a Service.
type Dependencies struct {
	Catalog *catalog.Store
	Remote  vrchat.Fetcher
	Prefs   *prefs.Store
	Engine  *suggest.Engine
	// PhotoDir receives copies of imported photos.
	PhotoDir string
	Logger   *slog.Logger
}

// Service implements the catalog-facing world operations.
type Service struct {
	catalog  *catalog.Store
	remote   vrchat.Fetcher
	prefs    *prefs.Store
	engine   *suggest.Engine
	photoDir string
	logger   *slog.Logger
}

// New creates a Service.
func New(deps Dependencies) (*Service, error) {
	if deps.Catalog == nil {
		return nil, errors.New("worlds: catalog store required")
	}
	if deps.Remote == nil {
		return nil, errors.New("worlds: remote lookup required")
	}
	if deps.Prefs == nil {
		return nil, errors.New("worlds: preferences store required")
	}
	if deps.Engine == nil {
		return nil, errors.New("worlds: suggestion engine required")
	}
	if strings.TrimSpace(deps.PhotoDir) == "" {
		return nil, errors.New("worlds: photo directory required")
	}
	return &Service{
		catalog:  deps.Catalog,
		remote:   deps.Remote,
		prefs:    deps.Prefs,
		engine:   deps.Engine,
		photoDir: deps.PhotoDir,
		logger:   logging.NewComponentLogger(deps.Logger, "worlds"),
	}, nil
}

// WorldInput carries user-entered world fields.
type WorldInput struct {
	VRChatWorldID string   `json:"vrchatWorldId" validate:"omitempty,worldid,max=64"`
	Name          string   `json:"name" validate:"required,max=200"`
	AuthorName    string   `json:"authorName" validate:"max=200"`
	Description   string   `json:"description" validate:"max=4000"`
	ThumbnailURL  string   `json:"thumbnailUrl" validate:"omitempty,url"`
	UserMemo      string   `json:"userMemo" validate:"max=4000"`
	Tags          []string `json:"tags" validate:"dive,required,max=64"`
}

func (in WorldInput) normalized() WorldInput {
	in.VRChatWorldID = strings.TrimSpace(in.VRChatWorldID)
	in.Name = strings.TrimSpace(in.Name)
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	in.Tags = tags
	return in
}

func (in WorldInput) toCatalog() catalog.WorldInput {
	return catalog.WorldInput{
		VRChatWorldID: in.VRChatWorldID,
		Name:          in.Name,
		AuthorName:    in.AuthorName,
		Description:   in.Description,
		ThumbnailURL:  in.ThumbnailURL,
		UserMemo:      in.UserMemo,
		Tags:          in.Tags,
	}
}

// AcceptRequest names a world to add from VRChat and an optional group.
type AcceptRequest struct {
	WorldID string `json:"worldId" validate:"required,worldid"`
	GroupID int64  `json:"groupId" validate:"gte=0"`
}

// Suggestions scans the configured photo directory. Without a configured
// directory the result is empty.
func (s *Service) Suggestions(ctx context.Context) ([]suggest.Suggestion, error) {
	current, err := s.prefs.Load()
	if err != nil {
		return nil, err
	}
	if current.PhotoDirectoryPath == "" {
		s.logger.Info("photo directory not configured; no suggestions")
		return []suggest.Suggestion{}, nil
	}
	return s.engine.Scan(ctx, current.PhotoDirectoryPath, current.ScanPeriodDays, current.DismissedWorldIDs), nil
}

// Accept fetches a world's details and catalogs it, linking it to
// req.GroupID when positive. Lookup failures are returned.
func (s *Service) Accept(ctx context.Context, req AcceptRequest) (*catalog.World, error) {
	req.WorldID = strings.TrimSpace(req.WorldID)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.GroupID > 0 {
		if _, err := s.catalog.GetGroup(ctx, req.GroupID); err != nil {
			return nil, err
		}
	}
	existing, err := s.catalog.FindByExternalID(ctx, req.WorldID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", catalog.ErrDuplicateWorld, req.WorldID)
	}

	remote, err := s.remote.GetWorld(ctx, req.WorldID)
	if err != nil {
		return nil, fmt.Errorf("fetch world %s: %w", req.WorldID, err)
	}
	world, err := s.createFromRemote(ctx, req.WorldID, remote, req.GroupID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("world added",
		logging.String(logging.FieldWorldID, req.WorldID),
		logging.String("name", world.Name),
		logging.Int64("group_id", req.GroupID),
	)
	return world, nil
}

// Dismiss records a world the user does not want suggested again. It reports
// false when the world was already dismissed.
func (s *Service) Dismiss(worldID string) (bool, error) {
	return s.prefs.Dismiss(worldID)
}

// FetchRemote returns the VRChat details of a world without cataloging it.
func (s *Service) FetchRemote(ctx context.Context, worldID string) (*vrchat.World, error) {
	worldID = strings.TrimSpace(worldID)
	if err := validateStruct(AcceptRequest{WorldID: worldID}); err != nil {
		return nil, err
	}
	return s.remote.GetWorld(ctx, worldID)
}

// CreateWorld validates and catalogs a hand-entered world.
func (s *Service) CreateWorld(ctx context.Context, input WorldInput) (*catalog.World, error) {
	input = input.normalized()
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	return s.catalog.CreateWorld(ctx, input.toCatalog())
}

// UpdateWorld validates and replaces a world's fields.
func (s *Service) UpdateWorld(ctx context.Context, id int64, input WorldInput) (*catalog.World, error) {
	input = input.normalized()
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	return s.catalog.UpdateWorld(ctx, id, input.toCatalog())
}

// DeleteWorld removes a world and the photo copies it owned.
func (s *Service) DeleteWorld(ctx context.Context, id int64) error {
	photos, err := s.catalog.ListPhotosByWorld(ctx, id)
	if err != nil {
		return err
	}
	if err := s.catalog.DeleteWorld(ctx, id); err != nil {
		return err
	}
	for _, photo := range photos {
		s.removePhotoFile(photo)
	}
	return nil
}

// DeletePhoto removes a photo row and its stored copy.
func (s *Service) DeletePhoto(ctx context.Context, id int64) error {
	photo, err := s.catalog.GetPhoto(ctx, id)
	if err != nil {
		return err
	}
	if err := s.catalog.DeletePhoto(ctx, id); err != nil {
		return err
	}
	s.removePhotoFile(photo)
	return nil
}

// createFromRemote catalogs a fetched world, linking it to groupID in the same
// transaction when groupID is positive.
func (s *Service) createFromRemote(ctx context.Context, worldID string, remote *vrchat.World, groupID int64) (*catalog.World, error) {
	input := catalog.WorldInput{VRChatWorldID: worldID, Name: suggest.UnknownWorldName, Tags: []string{}}
	if remote != nil {
		if remote.Name != "" {
			input.Name = remote.Name
		}
		input.AuthorName, _ = remote.Author()
		input.Description = remote.Description
		input.ThumbnailURL, _ = remote.Thumbnail()
		input.Tags = remote.AuthorTags()
	}
	return s.catalog.CreateWorldInGroup(ctx, input, groupID)
}

// removePhotoFile deletes a stored copy. Files outside the photo store are
// never touched.
func (s *Service) removePhotoFile(photo *catalog.Photo) {
	rel, err := filepath.Rel(s.photoDir, photo.FilePath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return
	}
	if err := fileutil.RemoveIfExists(photo.FilePath); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove stored photo", "photo_remove_failed",
			logging.String(logging.FieldPath, photo.FilePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file by hand"),
			logging.String(logging.FieldImpact, "orphaned file left in the photo store"),
		)
	}
}

// ImportResult describes an imported photo.
type ImportResult struct {
	World        *catalog.World `json:"world"`
	Photo        *catalog.Photo `json:"photo"`
	CreatedWorld bool           `json:"createdWorld"`
	SHA256       string         `json:"sha256"`
}

// ImportPhoto copies a screenshot into the photo store and links it to a
// world. With worldRowID > 0 that catalog world is used. Otherwise the world
// is read from the photo metadata, and when it is not cataloged yet it is
// created from its VRChat details.
func (s *Service) ImportPhoto(ctx context.Context, path string, worldRowID int64) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("import photo: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("import photo %s: is a directory", path)
	}

	result := &ImportResult{}
	if worldRowID > 0 {
		result.World, err = s.catalog.GetWorld(ctx, worldRowID)
		if err != nil {
			return nil, err
		}
	} else {
		result.World, result.CreatedWorld, err = s.worldFromMetadata(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	dst := filepath.Join(s.photoDir, uuid.NewString()+strings.ToLower(filepath.Ext(path)))
	digest, err := fileutil.CopyFileVerified(path, dst)
	if err != nil {
		return nil, fmt.Errorf("copy photo into store: %w", err)
	}
	result.SHA256 = digest.SHA256

	hash, err := computeBlurHash(dst)
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to compute photo placeholder", "photo_blurhash_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "photo stored without a placeholder"),
		)
	}

	takenAt := info.ModTime().UTC()
	result.Photo, err = s.catalog.CreatePhoto(ctx, catalog.PhotoInput{
		WorldID:          result.World.ID,
		FilePath:         dst,
		OriginalFileName: filepath.Base(path),
		BlurHash:         hash,
		TakenAt:          &takenAt,
	})
	if err != nil {
		_ = fileutil.RemoveIfExists(dst)
		return nil, err
	}

	s.logger.Info("photo imported",
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldWorldID, result.World.VRChatWorldID),
		logging.Bool("created_world", result.CreatedWorld),
	)
	return result, nil
}

func (s *Service) worldFromMetadata(ctx context.Context, path string) (*catalog.World, bool, error) {
	meta, err := pngmeta.Extract(path)
	if err != nil {
		return nil, false, err
	}
	if !meta.HasWorld() {
		return nil, false, ErrWorldIDNotFound
	}
	world, err := s.catalog.FindByExternalID(ctx, meta.WorldID)
	if err != nil {
		return nil, false, err
	}
	if world != nil {
		return world, false, nil
	}

	remote, err := s.remote.GetWorld(ctx, meta.WorldID)
	if err != nil {
		return nil, false, fmt.Errorf("%w for %s: %w", ErrFetchDetails, meta.WorldID, err)
	}
	world, err = s.createFromRemote(ctx, meta.WorldID, remote, 0)
	if err != nil {
		return nil, false, err
	}
	return world, true, nil
}
