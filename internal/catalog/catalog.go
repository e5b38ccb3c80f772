// Package catalog implements the game catalog read paths: the filtered,
// sorted, paginated listing, free-text search, top-rated lists and the
// related-games recommendations, plus the admin catalog mutations.
package catalog

import (
	"context"

	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

// Filter is a conjunction of predicates over the catalog. Nil pointers and
// empty values mean "no constraint".
type Filter struct {
	// Term is matched case-insensitively as a substring of title, developer,
	// publisher, franchise name or description.
	Term        string
	PlatformID  *uint
	GenreID     *uint
	FranchiseID *uint
	MinYear     *int
	MaxYear     *int
	MinScore    *int
	MaxScore    *int
	// ReleaseYear restricts to a single year when non-zero.
	ReleaseYear int
	HasScore    bool
	ExcludeIDs  []uint

	IncludeDeleted bool
}

// GameStore is the read side of the catalog persistence.
//
// Reads are active-only unless Filter.IncludeDeleted is set. GetGame returns
// apperr.ErrNotFound for missing or soft-deleted games.
type GameStore interface {
	GetGame(ctx context.Context, id uint) (*models.Game, error)
	// FindGames returns matching games in the given order. A limit <= 0 means unbounded.
	FindGames(ctx context.Context, f Filter, sort SortKey, offset, limit int) ([]models.Game, error)
	CountGames(ctx context.Context, f Filter) (int64, error)
	// ReadSnapshot runs fn against a consistent read-only view when the
	// backing database supports one.
	ReadSnapshot(ctx context.Context, fn func(GameStore) error) error
}
