package models

import "gorm.io/gorm"

// Game represents a game in the shared catalog.
type Game struct {
	gorm.Model
	Title           string `gorm:"size:200;not null;index"`
	ReleaseYear     int    `gorm:"not null;index"`
	Description     string `gorm:"size:1000"`
	Developer       string `gorm:"size:100"`
	Publisher       string `gorm:"size:100"`
	ImageURL        string `gorm:"size:512"`
	MetacriticScore *int   `gorm:"index"`
	MetacriticURL   string `gorm:"size:512"`

	// SearchText is the folded title, developer, publisher and description
	// matched by free-text search. BeforeSave keeps it current.
	SearchText string `gorm:"not null;default:''"`

	FranchiseID *uint      `gorm:"index"`
	Franchise   *Franchise `gorm:"foreignKey:FranchiseID"`

	// Join records carry their own soft-delete flag, so a tag can be detached
	// from a game without deleting the tag itself.
	Platforms []GamePlatform `gorm:"foreignKey:GameID"`
	Genres    []GameGenre    `gorm:"foreignKey:GameID"`
}

// FoldedText returns the SearchText value for g's current fields.
func (g *Game) FoldedText() string {
	return searchText(g.Title, g.Developer, g.Publisher, g.Description)
}

func (g *Game) BeforeSave(*gorm.DB) error {
	g.SearchText = g.FoldedText()
	return nil
}

// Active reports whether the game has not been soft-deleted.
func (g Game) Active() bool { return !g.DeletedAt.Valid }

// PlatformIDs returns the ids of the loaded platform links.
func (g Game) PlatformIDs() []uint {
	ids := make([]uint, 0, len(g.Platforms))
	for _, p := range g.Platforms {
		ids = append(ids, p.PlatformID)
	}
	return ids
}

// GenreIDs returns the ids of the loaded genre links, in link order.
func (g Game) GenreIDs() []uint {
	ids := make([]uint, 0, len(g.Genres))
	for _, gg := range g.Genres {
		ids = append(ids, gg.GenreID)
	}
	return ids
}

// GamePlatform links a game to a platform.
type GamePlatform struct {
	gorm.Model
	GameID     uint `gorm:"not null;uniqueIndex:idx_game_platforms_active,where:deleted_at IS NULL"`
	PlatformID uint `gorm:"not null;index;uniqueIndex:idx_game_platforms_active,where:deleted_at IS NULL"`

	Platform Platform `gorm:"foreignKey:PlatformID"`
}

// GameGenre links a game to a genre.
type GameGenre struct {
	gorm.Model
	GameID  uint `gorm:"not null;uniqueIndex:idx_game_genres_active,where:deleted_at IS NULL"`
	GenreID uint `gorm:"not null;index;uniqueIndex:idx_game_genres_active,where:deleted_at IS NULL"`

	Genre Genre `gorm:"foreignKey:GenreID"`
}
