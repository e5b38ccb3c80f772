package store

import (
	"context"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"gorm.io/gorm"
)

const joinActiveCollections = "JOIN collections ON collections.id = memberships.collection_id AND collections.deleted_at IS NULL"

// GetCollection returns an active collection.
func (s *Store) GetCollection(ctx context.Context, id uint) (*models.Collection, error) {
	var c models.Collection
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, translate("get collection", err)
	}
	return &c, nil
}

// FindCollectionsByOwner lists a user's active collections, newest first.
func (s *Store) FindCollectionsByOwner(ctx context.Context, userID uint) ([]models.Collection, error) {
	cs := []models.Collection{}
	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&cs).Error
	if err != nil {
		return nil, translate("list collections", err)
	}
	return cs, nil
}

func (s *Store) CreateCollection(ctx context.Context, c *models.Collection) error {
	return translate("create collection", s.conn(ctx).Omit("User", "Memberships").Create(c).Error)
}

func (s *Store) SaveCollection(ctx context.Context, c *models.Collection) error {
	return translate("save collection", s.conn(ctx).Omit("User", "Memberships").Save(c).Error)
}

// SoftDeleteCollection soft-deletes the collection and its active memberships.
func (s *Store) SoftDeleteCollection(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Collection{}, id)
		if res.Error != nil {
			return translate("delete collection", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		now := time.Now().UTC()
		err := tx.Model(&models.Membership{}).
			Where("collection_id = ?", id).
			UpdateColumns(map[string]any{"deleted_at": now, "updated_at": now}).Error
		return translate("delete collection memberships", err)
	})
}

// FindMembership returns the active membership of gameID in collectionID.
func (s *Store) FindMembership(ctx context.Context, collectionID, gameID uint) (*models.Membership, error) {
	var m models.Membership
	err := s.conn(ctx).
		Preload("Game").
		Where("collection_id = ? AND game_id = ?", collectionID, gameID).
		First(&m).Error
	if err != nil {
		return nil, translate("find membership", err)
	}
	return &m, nil
}

// ListMemberships lists the active memberships of a collection, newest first.
func (s *Store) ListMemberships(ctx context.Context, collectionID uint) ([]models.Membership, error) {
	ms := []models.Membership{}
	err := s.conn(ctx).
		Preload("Game").
		Where("collection_id = ?", collectionID).
		Order("date_added DESC, id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, translate("list memberships", err)
	}
	return ms, nil
}

// InsertMembership inserts m. A second active row for the same
// (collection, game) fails with apperr.ErrConflict.
func (s *Store) InsertMembership(ctx context.Context, m *models.Membership) error {
	return translate("insert membership", s.conn(ctx).Omit("Collection", "Game").Create(m).Error)
}

// UpdateMembership writes m's annotation columns.
func (s *Store) UpdateMembership(ctx context.Context, m *models.Membership) error {
	res := s.conn(ctx).Model(&models.Membership{ID: m.ID}).UpdateColumns(map[string]any{
		"rating":            m.Rating,
		"notes":             m.Notes,
		"completed":         m.Completed,
		"currently_playing": m.CurrentlyPlaying,
		"updated_at":        m.UpdatedAt,
	})
	if res.Error != nil {
		return translate("update membership", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SoftDeleteMembership marks m deleted at m.UpdatedAt.
func (s *Store) SoftDeleteMembership(ctx context.Context, m *models.Membership) error {
	at := time.Now().UTC()
	if m.UpdatedAt != nil {
		at = *m.UpdatedAt
	}
	res := s.conn(ctx).Model(&models.Membership{ID: m.ID}).UpdateColumns(map[string]any{
		"deleted_at": at,
		"updated_at": at,
	})
	if res.Error != nil {
		return translate("delete membership", res.Error)
	}
	m.DeletedAt = gorm.DeletedAt{Time: at, Valid: true}
	return nil
}

// ListCollectionsContaining returns the user's active collections with an
// active membership for gameID, ordered by name.
func (s *Store) ListCollectionsContaining(ctx context.Context, userID, gameID uint) ([]models.Collection, error) {
	cs := []models.Collection{}
	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Where("EXISTS (SELECT 1 FROM memberships WHERE memberships.collection_id = collections.id "+
			"AND memberships.game_id = ? AND memberships.deleted_at IS NULL)", gameID).
		Order("name ASC, id ASC").
		Find(&cs).Error
	if err != nil {
		return nil, translate("list collections containing game", err)
	}
	return cs, nil
}

// FindUserMembership returns the user's most recently added active
// membership for gameID.
func (s *Store) FindUserMembership(ctx context.Context, userID, gameID uint) (*models.Membership, error) {
	var m models.Membership
	err := s.conn(ctx).
		Select("memberships.*").
		Joins(joinActiveCollections).
		Preload("Collection").
		Preload("Game").
		Where("collections.user_id = ? AND memberships.game_id = ?", userID, gameID).
		Order("memberships.date_added DESC, memberships.id DESC").
		First(&m).Error
	if err != nil {
		return nil, translate("find user game", err)
	}
	return &m, nil
}
