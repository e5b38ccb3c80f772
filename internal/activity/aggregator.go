package activity

import (
	"context"
	"fmt"
	"sort"

	"github.com/Morfeas98/GameCollectionApp/internal/logging"
	"github.com/Morfeas98/GameCollectionApp/internal/metrics"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Aggregator merges the activity sources into one feed.
type Aggregator struct {
	store Store
	log   zerolog.Logger
}

// NewAggregator creates an Aggregator reading through store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store, log: logging.With("activity")}
}

// GetRecentActivity returns at most limit events, newest first. A limit <= 0
// means DefaultLimit.
//
// The feed is fail-soft: if any source errors the whole feed is empty and
// marked Degraded. It never returns an error.
func (a *Aggregator) GetRecentActivity(ctx context.Context, userID uint, limit int) Feed {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		collections []models.Collection
		additions   []models.Membership
		annotations []models.Membership
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		collections, err = a.store.RecentCollections(gctx, userID, collectionsPerFeed)
		if err != nil {
			return fmt.Errorf("recent collections: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		additions, err = a.store.RecentMemberships(gctx, userID, additionsPerFeed)
		if err != nil {
			return fmt.Errorf("recent additions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		annotations, err = a.store.RecentAnnotations(gctx, userID, annotationsPerFeed)
		if err != nil {
			return fmt.Errorf("recent annotations: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		a.log.Warn().Err(err).Uint("user_id", userID).Msg("activity feed degraded")
		metrics.ActivityDegraded.Inc()
		return Feed{Events: []Event{}, Degraded: true}
	}

	events := make([]Event, 0, len(collections)+len(additions)+len(annotations))
	for _, c := range collections {
		events = append(events, collectionEvent(c))
	}
	for _, m := range additions {
		events = append(events, additionEvent(m))
	}
	for _, m := range annotations {
		events = append(events, annotationEvent(m))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return Feed{Events: events}
}

// Stats returns the user's library summary.
func (a *Aggregator) Stats(ctx context.Context, userID uint) (Stats, error) {
	st, err := a.store.UserStats(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	return st, nil
}
