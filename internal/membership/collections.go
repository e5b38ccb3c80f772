package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

// CollectionInput is the payload for creating a collection.
type CollectionInput struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

// CollectionUpdate changes a collection. A blank Name and a nil Description
// leave the stored values alone.
type CollectionUpdate struct {
	Name        string  `validate:"max=100"`
	Description *string `validate:"omitempty,max=500"`
}

// CreateCollection creates a collection owned by the caller.
func (s *Service) CreateCollection(ctx context.Context, id Identity, in CollectionInput) (*models.Collection, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}
	c := &models.Collection{Name: in.Name, Description: in.Description, UserID: id.UserID}
	if err := s.store.CreateCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.log.Info().Uint("user_id", id.UserID).Uint("collection_id", c.ID).Msg("collection created")
	return c, nil
}

// ListCollections returns the caller's collections, newest first.
func (s *Service) ListCollections(ctx context.Context, id Identity) ([]models.Collection, error) {
	cs, err := s.store.FindCollectionsByOwner(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return cs, nil
}

// GetCollection returns one of the caller's collections.
func (s *Service) GetCollection(ctx context.Context, id Identity, collectionID uint) (*models.Collection, error) {
	return s.readableCollection(ctx, id, collectionID)
}

// UpdateCollection renames or re-describes one of the caller's collections.
func (s *Service) UpdateCollection(ctx context.Context, id Identity, collectionID uint, in CollectionUpdate) (*models.Collection, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}
	c, err := s.ownedCollection(ctx, id, collectionID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if err := s.store.SaveCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("update collection %d: %w", collectionID, err)
	}
	return c, nil
}

// DeleteCollection soft-deletes one of the caller's collections together
// with its memberships.
func (s *Service) DeleteCollection(ctx context.Context, id Identity, collectionID uint) error {
	if _, err := s.ownedCollection(ctx, id, collectionID); err != nil {
		return err
	}
	err := s.store.SoftDeleteCollection(ctx, collectionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete collection %d: %w", collectionID, err)
	}
	return nil
}
