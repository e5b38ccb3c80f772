package models

import (
	"time"

	"gorm.io/gorm"
)

// Membership records a game inside a collection together with the owner's
// personal annotations.
//
// At most one active row may exist per (CollectionID, GameID); the partial
// unique index enforces it at the database, soft-deleted rows are kept as
// history.
type Membership struct {
	ID               uint      `gorm:"primaryKey"`
	CollectionID     uint      `gorm:"not null;uniqueIndex:idx_memberships_active,where:deleted_at IS NULL"`
	GameID           uint      `gorm:"not null;index;uniqueIndex:idx_memberships_active,where:deleted_at IS NULL"`
	DateAdded        time.Time `gorm:"not null"`
	Rating           *int
	Notes            *string   `gorm:"size:1000"`
	Completed        bool      `gorm:"not null;default:false"`
	CurrentlyPlaying bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"index"`

	// UpdatedAt stays nil until the membership is first mutated.
	UpdatedAt *time.Time     `gorm:"autoUpdateTime:false;index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Collection Collection `gorm:"foreignKey:CollectionID"`
	Game       Game       `gorm:"foreignKey:GameID"`
}

// Active reports whether the membership has not been soft-deleted.
func (m Membership) Active() bool { return !m.DeletedAt.Valid }

// LastTouched returns UpdatedAt, or CreatedAt if the row was never updated.
func (m Membership) LastTouched() time.Time {
	if m.UpdatedAt != nil {
		return *m.UpdatedAt
	}
	return m.CreatedAt
}

// HasNotes reports whether the membership carries a non-empty note.
func (m Membership) HasNotes() bool { return m.Notes != nil && *m.Notes != "" }
