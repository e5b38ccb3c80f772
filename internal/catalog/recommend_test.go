package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/Morfeas98/GameCollectionApp/internal/catalog"
	"github.com/Morfeas98/GameCollectionApp/internal/database/dbtest"
	"github.com/Morfeas98/GameCollectionApp/internal/models"
	"github.com/Morfeas98/GameCollectionApp/internal/store"
)

func TestRecommendationsSharedFranchiseOnly(t *testing.T) {
	f := newFixture(t)
	r := catalog.NewRecommender(f.store)

	games, err := r.GetRecommendations(context.Background(), f.gamma.ID)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if !sameTitles(games, "Beta") {
		t.Errorf("recommendations = %v, want [Beta]", titles(games))
	}
}

func TestRecommendationsMissingBase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := catalog.NewRecommender(f.store)

	games, err := r.GetRecommendations(ctx, 9999)
	if err != nil || len(games) != 0 {
		t.Errorf("unknown base = %v, %v", titles(games), err)
	}

	if err := f.store.SoftDeleteGame(ctx, f.beta.ID); err != nil {
		t.Fatalf("SoftDeleteGame: %v", err)
	}
	games, err = r.GetRecommendations(ctx, f.beta.ID)
	if err != nil || len(games) != 0 {
		t.Errorf("deleted base = %v, %v", titles(games), err)
	}

	// Beta is gone, so Gamma's franchise signal yields nothing.
	games, err = r.GetRecommendations(ctx, f.gamma.ID)
	if err != nil || len(games) != 0 {
		t.Errorf("recommendations with deleted sibling = %v, %v", titles(games), err)
	}
}

func TestRecommendationsPrecedence(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	tag := func(kind models.TagKind, name string) uint {
		t.Helper()
		tg := &models.Tag{Kind: kind, Name: name}
		if err := s.CreateTag(ctx, tg); err != nil {
			t.Fatalf("create tag: %v", err)
		}
		return tg.ID
	}
	franchise := tag(models.TagFranchise, "Series")
	action := tag(models.TagGenre, "Action")
	puzzle := tag(models.TagGenre, "Puzzle")

	create := func(g models.Game, genres ...uint) *models.Game {
		t.Helper()
		if err := s.CreateGame(ctx, &g, nil, genres); err != nil {
			t.Fatalf("create %q: %v", g.Title, err)
		}
		return &g
	}
	base := create(models.Game{Title: "Base", ReleaseYear: 2020, FranchiseID: &franchise, MetacriticScore: intPtr(80)}, puzzle, action)
	// Alphabetically first, but it only shares a score.
	create(models.Game{Title: "Aardvark", ReleaseYear: 2020, MetacriticScore: intPtr(85)})
	create(models.Game{Title: "Zed Sequel", ReleaseYear: 2021, FranchiseID: &franchise}, action)
	create(models.Game{Title: "Action Only", ReleaseYear: 2019}, action)
	create(models.Game{Title: "Puzzle Only", ReleaseYear: 2019}, puzzle)
	create(models.Game{Title: "Far Score", ReleaseYear: 2019, MetacriticScore: intPtr(60)})

	r := catalog.NewRecommender(s)
	games, err := r.GetRecommendations(ctx, base.ID)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	// Franchise first, then the base game's genres in link order, then score.
	want := []string{"Zed Sequel", "Puzzle Only", "Action Only", "Aardvark"}
	if !sameTitles(games, want...) {
		t.Errorf("recommendations = %v, want %v", titles(games), want)
	}
}

func TestRecommendationsBounded(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	genre := &models.Tag{Kind: models.TagGenre, Name: "RPG"}
	if err := s.CreateTag(ctx, genre); err != nil {
		t.Fatalf("create genre: %v", err)
	}
	var base *models.Game
	for i := 0; i < 15; i++ {
		g := &models.Game{Title: fmt.Sprintf("RPG %02d", i), ReleaseYear: 2010, MetacriticScore: intPtr(70 + i%3)}
		if err := s.CreateGame(ctx, g, nil, []uint{genre.ID}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if i == 0 {
			base = g
		}
	}

	games, err := catalog.NewRecommender(s).GetRecommendations(ctx, base.ID)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(games) != catalog.MaxRecommendations {
		t.Fatalf("len = %d, want %d", len(games), catalog.MaxRecommendations)
	}
	seen := map[uint]bool{}
	for _, g := range games {
		if g.ID == base.ID {
			t.Error("base game recommended")
		}
		if seen[g.ID] {
			t.Errorf("duplicate game %d", g.ID)
		}
		seen[g.ID] = true
	}
}
