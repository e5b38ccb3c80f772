// Package activity builds a user's recent-activity feed from collection and
// membership history.
package activity

import (
	"context"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

// Kind classifies a feed event.
type Kind string

const (
	CollectionCreated Kind = "collection_created"
	GameAdded         Kind = "game_added"
	NoteAdded         Kind = "note_added"
	RatingAdded       Kind = "rating_added"
)

// Fixed per-source caps.
const (
	DefaultLimit        = 5
	collectionsPerFeed  = 2
	additionsPerFeed    = 3
	annotationsPerFeed  = 2
	notePreviewRunes    = 30
	notePreviewEllipsis = "..."
)

// Event is one entry of the feed.
type Event struct {
	Kind        Kind      `json:"kind"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Icon        string    `json:"icon"`
	Category    string    `json:"category"`
	// Preview holds the truncated note text for NoteAdded events.
	Preview      string `json:"preview,omitempty"`
	CollectionID uint   `json:"collection_id,omitempty"`
	GameID       uint   `json:"game_id,omitempty"`
}

// Feed is the merged result. Degraded is set when a source failed and the
// events were dropped.
type Feed struct {
	Events   []Event `json:"events"`
	Degraded bool    `json:"degraded"`
}

// Stats summarises a user's library.
type Stats struct {
	TotalCollections int64      `json:"total_collections"`
	TotalGames       int64      `json:"total_games"`
	Completed        int64      `json:"completed"`
	CurrentlyPlaying int64      `json:"currently_playing"`
	AverageRating    *float64   `json:"average_rating,omitempty"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
}

// Store is the history the aggregator reads.
type Store interface {
	RecentCollections(ctx context.Context, userID uint, n int) ([]models.Collection, error)
	RecentMemberships(ctx context.Context, userID uint, n int) ([]models.Membership, error)
	// RecentAnnotations returns active annotated memberships, ordered by last touch.
	RecentAnnotations(ctx context.Context, userID uint, n int) ([]models.Membership, error)
	UserStats(ctx context.Context, userID uint) (Stats, error)
}
