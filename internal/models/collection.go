package models

import "gorm.io/gorm"

// Collection is a named list of games curated by a single user.
type Collection struct {
	gorm.Model
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:500"`
	UserID      uint   `gorm:"not null;index"`

	User        User         `gorm:"foreignKey:UserID"`
	Memberships []Membership `gorm:"foreignKey:CollectionID"`
}

// Active reports whether the collection has not been soft-deleted.
func (c Collection) Active() bool { return !c.DeletedAt.Valid }

// OwnedBy reports whether userID owns the collection.
func (c Collection) OwnedBy(userID uint) bool { return c.UserID == userID }
