package worlds

import (
	"context"
	"strings"

	"worldshelf/internal/catalog"
	"worldshelf/internal/logging"
)

// GroupInput carries user-entered group fields.
type GroupInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Icon        string `json:"icon" validate:"max=64"`
}

func (in GroupInput) toCatalog() catalog.GroupInput {
	return catalog.GroupInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
	}
}

// CreateGroup validates and stores a new group.
func (s *Service) CreateGroup(ctx context.Context, input GroupInput) (*catalog.Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	return s.catalog.CreateGroup(ctx, input.toCatalog())
}

// UpdateGroup validates and replaces a group's fields.
func (s *Service) UpdateGroup(ctx context.Context, id int64, input GroupInput) (*catalog.Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	return s.catalog.UpdateGroup(ctx, id, input.toCatalog())
}

// DeleteGroup removes a group. With withWorlds set its member worlds and
// their stored photos go too.
func (s *Service) DeleteGroup(ctx context.Context, id int64, withWorlds bool) error {
	var photos []*catalog.Photo
	if withWorlds {
		members, err := s.catalog.ListWorlds(ctx, catalog.ListOptions{GroupID: id})
		if err != nil {
			return err
		}
		for _, world := range members {
			owned, err := s.catalog.ListPhotosByWorld(ctx, world.ID)
			if err != nil {
				return err
			}
			photos = append(photos, owned...)
		}
	}
	if err := s.catalog.DeleteGroup(ctx, id, withWorlds); err != nil {
		return err
	}
	for _, photo := range photos {
		s.removePhotoFile(photo)
	}
	s.logger.Info("group deleted",
		logging.Int64("group_id", id),
		logging.Bool("with_worlds", withWorlds),
		logging.Int("photos_removed", len(photos)),
	)
	return nil
}

// DeleteWorlds removes several worlds and their stored photos, reporting how
// many worlds existed.
func (s *Service) DeleteWorlds(ctx context.Context, ids []int64) (int64, error) {
	var photos []*catalog.Photo
	for _, id := range ids {
		owned, err := s.catalog.ListPhotosByWorld(ctx, id)
		if err != nil {
			return 0, err
		}
		photos = append(photos, owned...)
	}
	removed, err := s.catalog.DeleteWorlds(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, photo := range photos {
		s.removePhotoFile(photo)
	}
	return removed, nil
}
