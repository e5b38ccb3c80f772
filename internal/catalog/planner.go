package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/logging"
	"github.com/Morfeas98/GameCollectionApp/internal/metrics"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/rs/zerolog"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 12
	MaxPageSize     = 50

	// SearchLimit caps the quick-search result list.
	SearchLimit = 20
)

// Query is a catalog listing request as received from the API layer.
type Query struct {
	Term        string
	PlatformID  *uint
	GenreID     *uint
	FranchiseID *uint
	MinYear     *int
	MaxYear     *int
	Sort        SortKey
	Page        int
	PageSize    int

	// IncludeDeleted is honoured only for administrative callers.
	IncludeDeleted bool
}

// Normalize clamps paging and sort values. A page size outside
// [1, MaxPageSize] falls back to DefaultPageSize rather than the nearest bound.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		q.PageSize = DefaultPageSize
	}
	if !q.Sort.Valid() {
		q.Sort = SortTitleAsc
	}
	q.Term = strings.TrimSpace(q.Term)
	return q
}

// HasFilters reports whether any narrowing predicate is set.
func (q Query) HasFilters() bool {
	return strings.TrimSpace(q.Term) != "" ||
		q.PlatformID != nil ||
		q.GenreID != nil ||
		q.FranchiseID != nil ||
		q.MinYear != nil ||
		q.MaxYear != nil
}

func (q Query) filter() Filter {
	return Filter{
		Term:           q.Term,
		PlatformID:     q.PlatformID,
		GenreID:        q.GenreID,
		FranchiseID:    q.FranchiseID,
		MinYear:        q.MinYear,
		MaxYear:        q.MaxYear,
		IncludeDeleted: q.IncludeDeleted,
	}
}

// Page is one page of a catalog listing.
type Page struct {
	Games      []models.Game
	TotalCount int64
	// Page and PageSize are the effective values after normalization.
	Page       int
	PageSize   int
	TotalPages int
}

// Planner answers catalog listing queries.
type Planner struct {
	store GameStore
	now   func() time.Time
	log   zerolog.Logger
}

// NewPlanner creates a Planner reading through store.
func NewPlanner(store GameStore) *Planner {
	return &Planner{
		store: store,
		now:   time.Now,
		log:   logging.With("catalog"),
	}
}

// QueryGames returns the requested page of games and the total match count.
// A page past the end yields an empty page with the correct total.
func (p *Planner) QueryGames(ctx context.Context, q Query) (*Page, error) {
	q = q.Normalize()
	f := q.filter()

	page := &Page{Games: []models.Game{}, Page: q.Page, PageSize: q.PageSize}
	err := p.store.ReadSnapshot(ctx, func(s GameStore) error {
		total, err := s.CountGames(ctx, f)
		if err != nil {
			return fmt.Errorf("count games: %w", err)
		}
		page.TotalCount = total

		// Compare pages before computing the offset, which could overflow.
		lastPage := (total + int64(q.PageSize) - 1) / int64(q.PageSize)
		if int64(q.Page-1) >= lastPage {
			return nil
		}
		offset := (q.Page - 1) * q.PageSize
		games, err := s.FindGames(ctx, f, q.Sort, offset, q.PageSize)
		if err != nil {
			return fmt.Errorf("find games: %w", err)
		}
		page.Games = games
		return nil
	})
	if err != nil {
		return nil, err
	}

	page.TotalPages = int((page.TotalCount + int64(q.PageSize) - 1) / int64(q.PageSize))
	metrics.CatalogQueries.WithLabelValues(q.Sort.String()).Inc()
	p.log.Debug().
		Str("sort", q.Sort.String()).
		Bool("filtered", q.HasFilters()).
		Int("page", q.Page).
		Int64("total", page.TotalCount).
		Msg("catalog query")
	return page, nil
}

// Search returns up to SearchLimit active games matching term. A blank term
// yields no results.
func (p *Planner) Search(ctx context.Context, term string) ([]models.Game, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Game{}, nil
	}
	games, err := p.store.FindGames(ctx, Filter{Term: term}, SortTitleAsc, 0, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	return games, nil
}

// RecentTopRated returns the best-scored games released this year.
func (p *Planner) RecentTopRated(ctx context.Context, count int) ([]models.Game, error) {
	if count <= 0 {
		return []models.Game{}, nil
	}
	f := Filter{ReleaseYear: p.now().Year(), HasScore: true}
	games, err := p.store.FindGames(ctx, f, SortRatingDesc, 0, count)
	if err != nil {
		return nil, fmt.Errorf("recent top rated: %w", err)
	}
	return games, nil
}

// TopRated returns the best-scored games of all time, excluding the ones
// RecentTopRated would show.
func (p *Planner) TopRated(ctx context.Context, count int) ([]models.Game, error) {
	if count <= 0 {
		return []models.Game{}, nil
	}
	recent, err := p.RecentTopRated(ctx, count)
	if err != nil {
		return nil, err
	}
	exclude := make([]uint, 0, len(recent))
	for _, g := range recent {
		exclude = append(exclude, g.ID)
	}
	games, err := p.store.FindGames(ctx, Filter{HasScore: true, ExcludeIDs: exclude}, SortRatingDesc, 0, count)
	if err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}
	return games, nil
}

// GetGame returns an active game with its tags.
func (p *Planner) GetGame(ctx context.Context, id uint) (*models.Game, error) {
	return p.store.GetGame(ctx, id)
}
