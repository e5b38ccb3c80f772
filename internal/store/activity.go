package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/activity"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"gorm.io/gorm"
)

const lastTouched = "COALESCE(memberships.updated_at, memberships.created_at)"

func unscopedGame(db *gorm.DB) *gorm.DB { return db.Unscoped() }

// RecentCollections returns the user's n newest active collections.
func (s *Store) RecentCollections(ctx context.Context, userID uint, n int) ([]models.Collection, error) {
	cs := []models.Collection{}
	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&cs).Error
	if err != nil {
		return nil, translate("recent collections", err)
	}
	return cs, nil
}

// RecentMemberships returns the n newest active memberships across the
// user's active collections.
func (s *Store) RecentMemberships(ctx context.Context, userID uint, n int) ([]models.Membership, error) {
	ms := []models.Membership{}
	err := s.conn(ctx).
		Select("memberships.*").
		Joins(joinActiveCollections).
		Preload("Collection").
		Preload("Game", unscopedGame).
		Where("collections.user_id = ?", userID).
		Order("memberships.created_at DESC, memberships.id DESC").
		Limit(n).
		Find(&ms).Error
	if err != nil {
		return nil, translate("recent memberships", err)
	}
	return ms, nil
}

// RecentAnnotations returns the user's n most recently touched active
// memberships carrying notes or a rating. Removal stamps updated_at, so
// removed rows would surface as fresh annotations and are left out.
func (s *Store) RecentAnnotations(ctx context.Context, userID uint, n int) ([]models.Membership, error) {
	ms := []models.Membership{}
	err := s.conn(ctx).
		Select("memberships.*").
		Joins(joinActiveCollections).
		Preload("Game", unscopedGame).
		Where("collections.user_id = ?", userID).
		Where("((memberships.notes IS NOT NULL AND memberships.notes <> '') OR memberships.rating IS NOT NULL)").
		Order(lastTouched + " DESC, memberships.id DESC").
		Limit(n).
		Find(&ms).Error
	if err != nil {
		return nil, translate("recent annotations", err)
	}
	return ms, nil
}

// UserStats summarises the user's active collections and memberships.
func (s *Store) UserStats(ctx context.Context, userID uint) (activity.Stats, error) {
	var st activity.Stats
	db := s.conn(ctx)

	if err := db.Model(&models.Collection{}).Where("user_id = ?", userID).Count(&st.TotalCollections).Error; err != nil {
		return st, translate("count collections", err)
	}

	var agg struct {
		Total     int64
		Completed int64
		Playing   int64
		AvgRating sql.NullFloat64
	}
	err := db.Model(&models.Membership{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN memberships.completed THEN 1 ELSE 0 END), 0) AS completed, "+
			"COALESCE(SUM(CASE WHEN memberships.currently_playing THEN 1 ELSE 0 END), 0) AS playing, "+
			"AVG(memberships.rating) AS avg_rating").
		Joins(joinActiveCollections).
		Where("collections.user_id = ?", userID).
		Scan(&agg).Error
	if err != nil {
		return st, translate("membership stats", err)
	}
	st.TotalGames = agg.Total
	st.Completed = agg.Completed
	st.CurrentlyPlaying = agg.Playing
	if agg.AvgRating.Valid {
		avg := agg.AvgRating.Float64
		st.AverageRating = &avg
	}

	last, err := s.lastActivity(ctx, userID)
	if err != nil {
		return st, err
	}
	st.LastActivity = last
	return st, nil
}

func (s *Store) lastActivity(ctx context.Context, userID uint) (*time.Time, error) {
	var latest *time.Time
	consider := func(t time.Time) {
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}

	var c models.Collection
	err := s.conn(ctx).Where("user_id = ?", userID).Order("created_at DESC").Take(&c).Error
	switch {
	case err == nil:
		consider(c.CreatedAt)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, translate("last collection", err)
	}

	var m models.Membership
	err = s.conn(ctx).Unscoped().
		Select("memberships.*").
		Joins("JOIN collections ON collections.id = memberships.collection_id").
		Where("collections.user_id = ?", userID).
		Order(lastTouched + " DESC").
		Take(&m).Error
	switch {
	case err == nil:
		consider(m.LastTouched())
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, translate("last membership", err)
	}
	return latest, nil
}
