package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/catalog"
	"github.com/Morfeas98/GameCollectionApp/internal/database/dbtest"
	"github.com/Morfeas98/GameCollectionApp/internal/models"
	"github.com/Morfeas98/GameCollectionApp/internal/store"
)

func intPtr(v int) *int { return &v }

type fixture struct {
	store *store.Store
	alpha *models.Game
	beta  *models.Game
	gamma *models.Game
}

// newFixture seeds Alpha (2010, 70), Beta (2015, 75) and Gamma (2020, 40),
// with Beta and Gamma sharing a franchise.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	franchise := &models.Tag{Kind: models.TagFranchise, Name: "Saga"}
	if err := s.CreateTag(ctx, franchise); err != nil {
		t.Fatalf("create franchise: %v", err)
	}

	create := func(g models.Game) *models.Game {
		t.Helper()
		if err := s.CreateGame(ctx, &g, nil, nil); err != nil {
			t.Fatalf("create %q: %v", g.Title, err)
		}
		return &g
	}
	f := &fixture{store: s}
	f.alpha = create(models.Game{Title: "Alpha", ReleaseYear: 2010, MetacriticScore: intPtr(70)})
	f.beta = create(models.Game{Title: "Beta", ReleaseYear: 2015, MetacriticScore: intPtr(75), FranchiseID: &franchise.ID})
	f.gamma = create(models.Game{Title: "Gamma", ReleaseYear: 2020, MetacriticScore: intPtr(40), FranchiseID: &franchise.ID})
	return f
}

func titles(games []models.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.Title)
	}
	return out
}

func sameTitles(games []models.Game, want ...string) bool {
	got := titles(games)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestQueryGamesMinYear(t *testing.T) {
	f := newFixture(t)
	p := catalog.NewPlanner(f.store)

	page, err := p.QueryGames(context.Background(), catalog.Query{MinYear: intPtr(2012)})
	if err != nil {
		t.Fatalf("QueryGames: %v", err)
	}
	if !sameTitles(page.Games, "Beta", "Gamma") {
		t.Errorf("games = %v, want [Beta Gamma]", titles(page.Games))
	}
	if page.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", page.TotalCount)
	}
	if page.Page != 1 || page.PageSize != catalog.DefaultPageSize || page.TotalPages != 1 {
		t.Errorf("page meta = %d/%d/%d", page.Page, page.PageSize, page.TotalPages)
	}
}

func TestQueryGamesConjunction(t *testing.T) {
	f := newFixture(t)
	p := catalog.NewPlanner(f.store)
	franchiseID := *f.beta.FranchiseID

	tests := []struct {
		name string
		q    catalog.Query
		want []string
	}{
		{"empty filter", catalog.Query{}, []string{"Alpha", "Beta", "Gamma"}},
		{"franchise", catalog.Query{FranchiseID: &franchiseID}, []string{"Beta", "Gamma"}},
		{"franchise and year", catalog.Query{FranchiseID: &franchiseID, MaxYear: intPtr(2016)}, []string{"Beta"}},
		{"term and year disjoint", catalog.Query{Term: "alpha", MinYear: intPtr(2012)}, nil},
		{"franchise name term", catalog.Query{Term: "SAGA"}, []string{"Beta", "Gamma"}},
		{"year desc", catalog.Query{Sort: catalog.SortYearDesc}, []string{"Gamma", "Beta", "Alpha"}},
		{"rating desc", catalog.Query{Sort: catalog.SortRatingDesc}, []string{"Beta", "Alpha", "Gamma"}},
		{"title desc", catalog.Query{Sort: catalog.SortTitleDesc}, []string{"Gamma", "Beta", "Alpha"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := p.QueryGames(context.Background(), tt.q)
			if err != nil {
				t.Fatalf("QueryGames: %v", err)
			}
			if !sameTitles(page.Games, tt.want...) {
				t.Errorf("games = %v, want %v", titles(page.Games), tt.want)
			}
			if page.TotalCount != int64(len(tt.want)) {
				t.Errorf("TotalCount = %d, want %d", page.TotalCount, len(tt.want))
			}
		})
	}
}

func TestQueryGamesIncludeDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.store.SoftDeleteGame(ctx, f.alpha.ID); err != nil {
		t.Fatalf("SoftDeleteGame: %v", err)
	}
	p := catalog.NewPlanner(f.store)

	page, err := p.QueryGames(ctx, catalog.Query{})
	if err != nil {
		t.Fatalf("QueryGames: %v", err)
	}
	if !sameTitles(page.Games, "Beta", "Gamma") {
		t.Errorf("active games = %v", titles(page.Games))
	}

	page, err = p.QueryGames(ctx, catalog.Query{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("QueryGames: %v", err)
	}
	if !sameTitles(page.Games, "Alpha", "Beta", "Gamma") || page.TotalCount != 3 {
		t.Errorf("all games = %v (total %d)", titles(page.Games), page.TotalCount)
	}
}

func TestQueryGamesPagination(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		// Duplicate titles make the id tie-breaker matter.
		g := &models.Game{Title: fmt.Sprintf("Game %02d", i/2), ReleaseYear: 2000 + i}
		if err := s.CreateGame(ctx, g, nil, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	p := catalog.NewPlanner(s)

	seen := map[uint]int{}
	for page := 1; page <= 3; page++ {
		res, err := p.QueryGames(ctx, catalog.Query{Page: page, PageSize: 5})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(res.Games) > res.PageSize || res.TotalCount < int64(len(res.Games)) {
			t.Errorf("page %d: %d games, size %d, total %d", page, len(res.Games), res.PageSize, res.TotalCount)
		}
		if res.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", res.TotalPages)
		}
		for _, g := range res.Games {
			if prev, ok := seen[g.ID]; ok {
				t.Errorf("game %d on page %d and page %d", g.ID, prev, page)
			}
			seen[g.ID] = page
		}
	}
	if len(seen) != 12 {
		t.Errorf("saw %d distinct games, want 12", len(seen))
	}

	res, err := p.QueryGames(ctx, catalog.Query{Page: 9, PageSize: 5})
	if err != nil {
		t.Fatalf("beyond last page: %v", err)
	}
	if len(res.Games) != 0 || res.TotalCount != 12 || res.Page != 9 {
		t.Errorf("beyond last page = %d games, total %d, page %d", len(res.Games), res.TotalCount, res.Page)
	}

	res, err = p.QueryGames(ctx, catalog.Query{Page: 0, PageSize: 500})
	if err != nil {
		t.Fatalf("clamped: %v", err)
	}
	if res.Page != 1 || res.PageSize != catalog.DefaultPageSize || len(res.Games) != 12 {
		t.Errorf("clamped page = %d, size %d, %d games", res.Page, res.PageSize, len(res.Games))
	}
}

func TestQueryGamesHugePage(t *testing.T) {
	f := newFixture(t)
	p := catalog.NewPlanner(f.store)

	for _, size := range []int{1, catalog.DefaultPageSize, catalog.MaxPageSize} {
		res, err := p.QueryGames(context.Background(), catalog.Query{Page: math.MaxInt, PageSize: size})
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if len(res.Games) != 0 || res.TotalCount != 3 || res.Page != math.MaxInt {
			t.Errorf("size %d: games %v, total %d, page %d", size, titles(res.Games), res.TotalCount, res.Page)
		}
	}
}

type failingStore struct {
	catalog.GameStore
	err error
}

func (s failingStore) ReadSnapshot(ctx context.Context, fn func(catalog.GameStore) error) error {
	return fn(s)
}

func (s failingStore) CountGames(context.Context, catalog.Filter) (int64, error) {
	return 0, s.err
}

func TestQueryGamesStoreError(t *testing.T) {
	boom := errors.New("db down")
	p := catalog.NewPlanner(failingStore{err: boom})
	if _, err := p.QueryGames(context.Background(), catalog.Query{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	p := catalog.NewPlanner(f.store)
	ctx := context.Background()

	games, err := p.Search(ctx, "  ")
	if err != nil || len(games) != 0 {
		t.Errorf("blank search = %v, %v", titles(games), err)
	}
	games, err = p.Search(ctx, "mm")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !sameTitles(games, "Gamma") {
		t.Errorf("Search(mm) = %v", titles(games))
	}
}

func TestTopRated(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()
	year := time.Now().Year()
	for _, g := range []models.Game{
		{Title: "Old Classic", ReleaseYear: 1998, MetacriticScore: intPtr(99)},
		{Title: "New Hit", ReleaseYear: year, MetacriticScore: intPtr(90)},
		{Title: "New Flop", ReleaseYear: year, MetacriticScore: intPtr(50)},
		{Title: "Unrated", ReleaseYear: year},
	} {
		g := g
		if err := s.CreateGame(ctx, &g, nil, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	p := catalog.NewPlanner(s)

	recent, err := p.RecentTopRated(ctx, 1)
	if err != nil {
		t.Fatalf("RecentTopRated: %v", err)
	}
	if !sameTitles(recent, "New Hit") {
		t.Errorf("RecentTopRated = %v", titles(recent))
	}

	top, err := p.TopRated(ctx, 2)
	if err != nil {
		t.Fatalf("TopRated: %v", err)
	}
	// Both scored games of this year are excluded and unrated games never rank.
	if !sameTitles(top, "Old Classic") {
		t.Errorf("TopRated = %v, want [Old Classic]", titles(top))
	}
}
