// Package membership enforces collection ownership and the
// one-active-membership-per-(collection, game) invariant, and owns the
// collection CRUD that sits around it.
package membership

import (
	"context"

	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

// Identity is the caller on whose behalf an operation runs. It is passed
// explicitly into every call instead of being read from ambient state.
type Identity struct {
	UserID uint
	Role   string
}

// Annotations are the personal fields of a membership. Rating and Notes use
// present/absent semantics: nil leaves the stored value untouched on update.
// Completed and CurrentlyPlaying are always written.
type Annotations struct {
	Rating           *int    `validate:"omitempty,min=1,max=10"`
	Notes            *string `validate:"omitempty,max=1000"`
	Completed        bool
	CurrentlyPlaying bool
}

// Store is the persistence the service needs. Reads are active-only and
// return apperr.ErrNotFound for absent rows; InsertMembership returns
// apperr.ErrConflict when the active-membership unique index rejects the row.
type Store interface {
	GetGame(ctx context.Context, id uint) (*models.Game, error)
	GetCollection(ctx context.Context, id uint) (*models.Collection, error)
	FindCollectionsByOwner(ctx context.Context, userID uint) ([]models.Collection, error)
	CreateCollection(ctx context.Context, c *models.Collection) error
	SaveCollection(ctx context.Context, c *models.Collection) error
	// SoftDeleteCollection marks the collection and its active memberships deleted.
	SoftDeleteCollection(ctx context.Context, id uint) error

	FindMembership(ctx context.Context, collectionID, gameID uint) (*models.Membership, error)
	ListMemberships(ctx context.Context, collectionID uint) ([]models.Membership, error)
	InsertMembership(ctx context.Context, m *models.Membership) error
	UpdateMembership(ctx context.Context, m *models.Membership) error
	SoftDeleteMembership(ctx context.Context, m *models.Membership) error
	ListCollectionsContaining(ctx context.Context, userID, gameID uint) ([]models.Collection, error)
	// FindUserMembership returns the user's most recently added active
	// membership for gameID across all their collections.
	FindUserMembership(ctx context.Context, userID, gameID uint) (*models.Membership, error)
}
