package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/metrics"
	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

const (
	MaxRecommendations = 10
	// ScoreWindow is the inclusive metacritic distance for the score signal.
	ScoreWindow = 10
)

// Recommender produces related-game lists for a base game.
type Recommender struct {
	store GameStore
}

// NewRecommender creates a Recommender reading through store.
func NewRecommender(store GameStore) *Recommender {
	return &Recommender{store: store}
}

// recommendationList accumulates games in signal order, skipping duplicates
// and the base game.
type recommendationList struct {
	games []models.Game
	seen  map[uint]struct{}
}

func (l *recommendationList) full() bool { return len(l.games) >= MaxRecommendations }

func (l *recommendationList) add(games []models.Game) {
	for _, g := range games {
		if l.full() {
			return
		}
		if !g.Active() {
			continue
		}
		if _, ok := l.seen[g.ID]; ok {
			continue
		}
		l.seen[g.ID] = struct{}{}
		l.games = append(l.games, g)
	}
}

// fetchLimit is enough rows for one signal to fill the list even if every
// already-seen game shows up again.
func (l *recommendationList) fetchLimit() int {
	return MaxRecommendations + len(l.seen)
}

// GetRecommendations returns up to MaxRecommendations games related to
// gameID. Signals apply in priority order (same franchise, then each genre of
// the base game in order, then metacritic score within ScoreWindow) and the
// concatenated list is truncated, never re-ranked. A missing or soft-deleted
// base game yields an empty list.
func (r *Recommender) GetRecommendations(ctx context.Context, gameID uint) ([]models.Game, error) {
	base, err := r.store.GetGame(ctx, gameID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []models.Game{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load base game %d: %w", gameID, err)
	}
	if !base.Active() {
		return []models.Game{}, nil
	}

	list := &recommendationList{
		games: make([]models.Game, 0, MaxRecommendations),
		seen:  map[uint]struct{}{base.ID: {}},
	}

	signals := make([]Filter, 0, len(base.Genres)+2)
	if base.FranchiseID != nil {
		franchiseID := *base.FranchiseID
		signals = append(signals, Filter{FranchiseID: &franchiseID})
	}
	for _, genreID := range base.GenreIDs() {
		genreID := genreID
		signals = append(signals, Filter{GenreID: &genreID})
	}
	if base.MetacriticScore != nil {
		lo, hi := *base.MetacriticScore-ScoreWindow, *base.MetacriticScore+ScoreWindow
		signals = append(signals, Filter{MinScore: &lo, MaxScore: &hi})
	}

	for _, f := range signals {
		if list.full() {
			break
		}
		games, err := r.store.FindGames(ctx, f, SortTitleAsc, 0, list.fetchLimit())
		if err != nil {
			return nil, fmt.Errorf("recommendations for game %d: %w", gameID, err)
		}
		list.add(games)
	}

	metrics.Recommendations.Observe(float64(len(list.games)))
	return list.games, nil
}
