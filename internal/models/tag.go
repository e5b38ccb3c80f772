package models

import "gorm.io/gorm"

// TagKind names one of the catalog's tag tables.
type TagKind string

const (
	TagPlatform  TagKind = "platform"
	TagGenre     TagKind = "genre"
	TagFranchise TagKind = "franchise"
)

// Franchise groups related games (e.g., "The Legend of Zelda").
type Franchise struct {
	gorm.Model
	Name        string `gorm:"size:100;not null;uniqueIndex:idx_franchises_name_active,where:deleted_at IS NULL"`
	Description string `gorm:"size:1000"`

	// SearchName is the folded name matched by free-text search.
	SearchName string `gorm:"not null;default:''"`
}

func (f *Franchise) BeforeSave(*gorm.DB) error {
	f.SearchName = Fold(f.Name)
	return nil
}

// Platform is a system a game runs on (e.g., "PC", "Switch").
type Platform struct {
	gorm.Model
	Name         string `gorm:"size:50;not null;uniqueIndex:idx_platforms_name_active,where:deleted_at IS NULL"`
	Manufacturer string `gorm:"size:50"`
	Description  string
}

// Genre is a game genre tag (e.g., "RPG", "Shooter").
type Genre struct {
	gorm.Model
	Name        string `gorm:"size:50;not null;uniqueIndex:idx_genres_name_active,where:deleted_at IS NULL"`
	Description string `gorm:"size:500"`
}

// Tag is the common view of a platform, genre or franchise.
type Tag struct {
	ID          uint
	Kind        TagKind
	Name        string
	Description string
}
