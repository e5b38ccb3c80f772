package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

// MinReleaseYear is the earliest accepted release year.
const MinReleaseYear = 1950

// Store is the full catalog persistence used by the admin operations.
type Store interface {
	GameStore
	TagExists(ctx context.Context, kind models.TagKind, id uint) (bool, error)
	// CreateGame inserts g and links it to the given platforms and genres.
	CreateGame(ctx context.Context, g *models.Game, platformIDs, genreIDs []uint) error
	// SaveGame persists g's columns. Nil id slices leave the links untouched,
	// non-nil ones replace the active links.
	SaveGame(ctx context.Context, g *models.Game, platformIDs, genreIDs []uint) error
	// SoftDeleteGame marks the game and its tag links deleted.
	SoftDeleteGame(ctx context.Context, id uint) error
	CreateTag(ctx context.Context, tag *models.Tag) error
	ListTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error)
	// SoftDeleteTag marks the tag and every game link to it deleted.
	SoftDeleteTag(ctx context.Context, kind models.TagKind, id uint) error
}

// GameInput is the payload for creating a game.
type GameInput struct {
	Title           string `validate:"required,max=200"`
	ReleaseYear     int    `validate:"required"`
	Description     string `validate:"max=1000"`
	Developer       string `validate:"max=100"`
	Publisher       string `validate:"max=100"`
	ImageURL        string `validate:"omitempty,url"`
	MetacriticScore *int   `validate:"omitempty,min=0,max=100"`
	MetacriticURL   string `validate:"omitempty,url"`
	FranchiseID     *uint
	PlatformIDs     []uint
	GenreIDs        []uint
}

// GameUpdate carries the fields to change; nil means "leave unchanged".
// A FranchiseID pointing at 0 detaches the franchise.
type GameUpdate struct {
	Title           *string `validate:"omitempty,max=200"`
	ReleaseYear     *int
	Description     *string `validate:"omitempty,max=1000"`
	Developer       *string `validate:"omitempty,max=100"`
	Publisher       *string `validate:"omitempty,max=100"`
	ImageURL        *string
	MetacriticScore *int `validate:"omitempty,min=0,max=100"`
	MetacriticURL   *string
	FranchiseID     *uint
	PlatformIDs     []uint
	GenreIDs        []uint
}

// Manager implements the administrative catalog mutations.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a Manager writing through store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

func (m *Manager) checkYear(year int) error {
	maxYear := m.now().Year() + 2
	if year < MinReleaseYear || year > maxYear {
		return apperr.Invalid("release_year", "release year must be between %d and %d", MinReleaseYear, maxYear)
	}
	return nil
}

func (m *Manager) checkTags(ctx context.Context, franchiseID *uint, platformIDs, genreIDs []uint) error {
	check := func(kind models.TagKind, id uint) error {
		ok, err := m.store.TagExists(ctx, kind, id)
		if err != nil {
			return fmt.Errorf("check %s %d: %w", kind, id, err)
		}
		if !ok {
			return apperr.Invalid(string(kind)+"_id", "%s with ID %d not found", kind, id)
		}
		return nil
	}
	if franchiseID != nil && *franchiseID != 0 {
		if err := check(models.TagFranchise, *franchiseID); err != nil {
			return err
		}
	}
	for _, id := range platformIDs {
		if err := check(models.TagPlatform, id); err != nil {
			return err
		}
	}
	for _, id := range genreIDs {
		if err := check(models.TagGenre, id); err != nil {
			return err
		}
	}
	return nil
}

// CreateGame validates in and inserts a new game with its tag links.
func (m *Manager) CreateGame(ctx context.Context, in GameInput) (*models.Game, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := m.checkYear(in.ReleaseYear); err != nil {
		return nil, err
	}
	if err := m.checkTags(ctx, in.FranchiseID, in.PlatformIDs, in.GenreIDs); err != nil {
		return nil, err
	}

	g := &models.Game{
		Title:           in.Title,
		ReleaseYear:     in.ReleaseYear,
		Description:     in.Description,
		Developer:       in.Developer,
		Publisher:       in.Publisher,
		ImageURL:        in.ImageURL,
		MetacriticScore: in.MetacriticScore,
		MetacriticURL:   in.MetacriticURL,
		FranchiseID:     in.FranchiseID,
	}
	if err := m.store.CreateGame(ctx, g, dedupe(in.PlatformIDs), dedupe(in.GenreIDs)); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return m.store.GetGame(ctx, g.ID)
}

// UpdateGame applies the non-nil fields of in to an active game.
func (m *Manager) UpdateGame(ctx context.Context, id uint, in GameUpdate) (*models.Game, error) {
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.ReleaseYear != nil {
		if err := m.checkYear(*in.ReleaseYear); err != nil {
			return nil, err
		}
	}
	if err := m.checkTags(ctx, in.FranchiseID, in.PlatformIDs, in.GenreIDs); err != nil {
		return nil, err
	}

	g, err := m.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		g.Title = strings.TrimSpace(*in.Title)
	}
	if in.ReleaseYear != nil {
		g.ReleaseYear = *in.ReleaseYear
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	if in.Developer != nil {
		g.Developer = *in.Developer
	}
	if in.Publisher != nil {
		g.Publisher = *in.Publisher
	}
	if in.ImageURL != nil {
		g.ImageURL = *in.ImageURL
	}
	if in.MetacriticScore != nil {
		g.MetacriticScore = in.MetacriticScore
	}
	if in.MetacriticURL != nil {
		g.MetacriticURL = *in.MetacriticURL
	}
	if in.FranchiseID != nil {
		if *in.FranchiseID == 0 {
			g.FranchiseID = nil
		} else {
			g.FranchiseID = in.FranchiseID
		}
		g.Franchise = nil
	}

	var platformIDs, genreIDs []uint
	if in.PlatformIDs != nil {
		platformIDs = dedupe(in.PlatformIDs)
	}
	if in.GenreIDs != nil {
		genreIDs = dedupe(in.GenreIDs)
	}
	if err := m.store.SaveGame(ctx, g, platformIDs, genreIDs); err != nil {
		return nil, fmt.Errorf("update game %d: %w", id, err)
	}
	return m.store.GetGame(ctx, id)
}

// DeleteGame soft-deletes a game, cascading to its platform and genre links.
func (m *Manager) DeleteGame(ctx context.Context, id uint) error {
	return m.store.SoftDeleteGame(ctx, id)
}

// CreateTag adds a platform, genre or franchise.
func (m *Manager) CreateTag(ctx context.Context, kind models.TagKind, name, description string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "name is required")
	}
	if !validKind(kind) {
		return nil, apperr.Invalid("kind", "unknown tag kind %q", kind)
	}
	tag := &models.Tag{Kind: kind, Name: name, Description: description}
	if err := m.store.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	return tag, nil
}

// ListTags returns the active tags of one kind ordered by name.
func (m *Manager) ListTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error) {
	if !validKind(kind) {
		return nil, apperr.Invalid("kind", "unknown tag kind %q", kind)
	}
	return m.store.ListTags(ctx, kind)
}

// DeleteTag soft-deletes a tag and detaches it from every game.
func (m *Manager) DeleteTag(ctx context.Context, kind models.TagKind, id uint) error {
	if !validKind(kind) {
		return apperr.Invalid("kind", "unknown tag kind %q", kind)
	}
	return m.store.SoftDeleteTag(ctx, kind, id)
}

func validKind(kind models.TagKind) bool {
	switch kind {
	case models.TagPlatform, models.TagGenre, models.TagFranchise:
		return true
	}
	return false
}

func dedupe(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
