package membership

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/database/dbtest"
	"github.com/Morfeas98/GameCollectionApp/internal/models"
	"github.com/Morfeas98/GameCollectionApp/internal/store"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

type env struct {
	store      *store.Store
	svc        *Service
	owner      Identity
	stranger   Identity
	collection *models.Collection
	game       *models.Game
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	s := store.New(dbtest.New(t))

	users := make([]*models.User, 0, 2)
	for _, name := range []string{"owner", "stranger"} {
		u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: models.RoleUser}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
		users = append(users, u)
	}
	c := &models.Collection{Name: "Backlog", UserID: users[0].ID}
	if err := s.CreateCollection(ctx, c); err != nil {
		t.Fatalf("create collection: %v", err)
	}
	g := &models.Game{Title: "Hollow Knight", ReleaseYear: 2017}
	if err := s.CreateGame(ctx, g, nil, nil); err != nil {
		t.Fatalf("create game: %v", err)
	}

	return &env{
		store:      s,
		svc:        NewService(s),
		owner:      Identity{UserID: users[0].ID, Role: models.RoleUser},
		stranger:   Identity{UserID: users[1].ID, Role: models.RoleUser},
		collection: c,
		game:       g,
	}
}

func (e *env) activeCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	err := e.store.DB().Model(&models.Membership{}).
		Where("collection_id = ? AND game_id = ?", e.collection.ID, e.game.ID).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	return n
}

func TestAddGameTwiceIsDuplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	m, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{Rating: intPtr(8)})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	if m.DateAdded.IsZero() || m.UpdatedAt != nil {
		t.Errorf("new membership = %+v", m)
	}

	_, err = e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{Rating: intPtr(5)})
	if !errors.Is(err, apperr.ErrDuplicateMembership) {
		t.Fatalf("second AddGame: err = %v, want ErrDuplicateMembership", err)
	}
	if n := e.activeCount(t); n != 1 {
		t.Errorf("active memberships = %d, want 1", n)
	}

	got, err := e.svc.GetMembership(ctx, e.owner, e.collection.ID, e.game.ID)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if got.Rating == nil || *got.Rating != 8 {
		t.Errorf("rating = %v, want 8", got.Rating)
	}

	if _, err := e.svc.UpdateGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{Rating: intPtr(5)}); err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}
	got, _ = e.svc.GetMembership(ctx, e.owner, e.collection.ID, e.game.ID)
	if got.Rating == nil || *got.Rating != 5 {
		t.Errorf("rating after update = %v, want 5", got.Rating)
	}
}

func TestAddGameChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	deleted := &models.Game{Title: "Gone", ReleaseYear: 2001}
	if err := e.store.CreateGame(ctx, deleted, nil, nil); err != nil {
		t.Fatalf("create game: %v", err)
	}
	if err := e.store.SoftDeleteGame(ctx, deleted.ID); err != nil {
		t.Fatalf("delete game: %v", err)
	}

	tests := []struct {
		name         string
		id           Identity
		collectionID uint
		gameID       uint
		want         error
	}{
		{"not owner", e.stranger, e.collection.ID, e.game.ID, apperr.ErrNotOwner},
		{"missing collection", e.owner, 9999, e.game.ID, apperr.ErrNotOwner},
		{"missing game", e.owner, e.collection.ID, 9999, apperr.ErrNotFound},
		{"deleted game", e.owner, e.collection.ID, deleted.ID, apperr.ErrNotFound},
		{"ownership before existence", e.stranger, e.collection.ID, 9999, apperr.ErrNotOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.AddGame(ctx, tt.id, tt.collectionID, tt.gameID, Annotations{})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if n := e.activeCount(t); n != 0 {
		t.Errorf("rejected adds left %d memberships", n)
	}
}

func TestAnnotationValidation(t *testing.T) {
	// A nil store proves validation runs before any store call.
	svc := NewService(nil)
	ctx := context.Background()
	id := Identity{UserID: 1}

	tests := []struct {
		name string
		a    Annotations
	}{
		{"rating too low", Annotations{Rating: intPtr(0)}},
		{"rating too high", Annotations{Rating: intPtr(11)}},
		{"notes too long", Annotations{Notes: strPtr(strings.Repeat("é", 1001))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddGame(ctx, id, 1, 1, tt.a); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("AddGame err = %v, want ErrValidation", err)
			}
			if _, err := svc.UpdateGame(ctx, id, 1, 1, tt.a); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("UpdateGame err = %v, want ErrValidation", err)
			}
		})
	}
}

// racingStore hides existing memberships from the pre-check, as if a
// concurrent request inserted between the check and our insert.
type racingStore struct {
	Store
}

func (racingStore) FindMembership(context.Context, uint, uint) (*models.Membership, error) {
	return nil, apperr.ErrNotFound
}

func TestAddGameRaceIsDuplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{}); err != nil {
		t.Fatalf("AddGame: %v", err)
	}

	racing := NewService(racingStore{Store: e.store})
	_, err := racing.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{})
	if !errors.Is(err, apperr.ErrDuplicateMembership) {
		t.Fatalf("err = %v, want ErrDuplicateMembership", err)
	}
	if n := e.activeCount(t); n != 1 {
		t.Errorf("active memberships = %d, want 1", n)
	}
}

func TestConcurrentAddGame(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dups      int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperr.ErrDuplicateMembership):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || dups != workers-1 {
		t.Errorf("successes=%d duplicates=%d", successes, dups)
	}
	if n := e.activeCount(t); n != 1 {
		t.Errorf("active memberships = %d, want 1", n)
	}
}

func TestRemoveGame(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.svc.RemoveGame(ctx, e.owner, e.collection.ID, e.game.ID); err != nil {
		t.Fatalf("RemoveGame on absent membership: %v", err)
	}
	if _, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{}); err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	if err := e.svc.RemoveGame(ctx, e.stranger, e.collection.ID, e.game.ID); !errors.Is(err, apperr.ErrNotOwner) {
		t.Errorf("stranger RemoveGame: err = %v, want ErrNotOwner", err)
	}
	if n := e.activeCount(t); n != 1 {
		t.Fatalf("stranger removal changed the store: %d active", n)
	}

	for i := 0; i < 2; i++ {
		if err := e.svc.RemoveGame(ctx, e.owner, e.collection.ID, e.game.ID); err != nil {
			t.Fatalf("RemoveGame #%d: %v", i+1, err)
		}
	}
	if n := e.activeCount(t); n != 0 {
		t.Errorf("active memberships = %d, want 0", n)
	}

	var removed models.Membership
	if err := e.store.DB().Unscoped().Where("collection_id = ?", e.collection.ID).First(&removed).Error; err != nil {
		t.Fatalf("load removed membership: %v", err)
	}
	if !removed.DeletedAt.Valid || removed.UpdatedAt == nil {
		t.Errorf("removed membership = %+v, want deleted_at and updated_at stamped", removed)
	}

	if _, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{}); err != nil {
		t.Errorf("re-adding removed game: %v", err)
	}
}

func TestUpdateGamePresence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	e.svc.now = func() time.Time { return fixed }

	if _, err := e.svc.UpdateGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("update absent membership: err = %v, want ErrNotFound", err)
	}
	_, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{
		Rating: intPtr(7), Notes: strPtr("first run"), CurrentlyPlaying: true,
	})
	if err != nil {
		t.Fatalf("AddGame: %v", err)
	}

	m, err := e.svc.UpdateGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{Completed: true})
	if err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}
	if m.Notes == nil || *m.Notes != "first run" || m.Rating == nil || *m.Rating != 7 {
		t.Errorf("absent fields changed: rating=%v notes=%v", m.Rating, m.Notes)
	}
	if !m.Completed || m.CurrentlyPlaying {
		t.Errorf("flags = completed %v, playing %v; want true, false", m.Completed, m.CurrentlyPlaying)
	}
	if m.UpdatedAt == nil || !m.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", m.UpdatedAt, fixed)
	}

	if _, err := e.svc.UpdateGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{Notes: strPtr("")}); err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}
	got, err := e.svc.GetMembership(ctx, e.owner, e.collection.ID, e.game.ID)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if got.Notes == nil || *got.Notes != "" {
		t.Errorf("notes = %v, want explicit empty string", got.Notes)
	}

	if _, err := e.svc.UpdateGame(ctx, e.stranger, e.collection.ID, e.game.ID, Annotations{Rating: intPtr(1)}); !errors.Is(err, apperr.ErrNotOwner) {
		t.Errorf("stranger UpdateGame: err = %v, want ErrNotOwner", err)
	}
}

func TestReadsHideForeignCollections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{}); err != nil {
		t.Fatalf("AddGame: %v", err)
	}

	if _, err := e.svc.GetMembership(ctx, e.stranger, e.collection.ID, e.game.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetMembership by stranger: err = %v, want ErrNotFound", err)
	}
	if _, err := e.svc.ListMemberships(ctx, e.stranger, e.collection.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ListMemberships by stranger: err = %v, want ErrNotFound", err)
	}
	if _, err := e.svc.GetCollection(ctx, e.stranger, e.collection.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetCollection by stranger: err = %v, want ErrNotFound", err)
	}

	ms, err := e.svc.ListMemberships(ctx, e.owner, e.collection.ID)
	if err != nil || len(ms) != 1 || ms[0].Game.Title != "Hollow Knight" {
		t.Errorf("ListMemberships = %+v, %v", ms, err)
	}

	cs, err := e.svc.ListCollectionsContaining(ctx, e.stranger, e.game.ID)
	if err != nil || len(cs) != 0 {
		t.Errorf("stranger ListCollectionsContaining = %+v, %v", cs, err)
	}
	cs, err = e.svc.ListCollectionsContaining(ctx, e.owner, e.game.ID)
	if err != nil || len(cs) != 1 || cs[0].ID != e.collection.ID {
		t.Errorf("owner ListCollectionsContaining = %+v, %v", cs, err)
	}
}

func TestUserGameLookup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	in, err := e.svc.IsGameInUserCollection(ctx, e.owner, e.game.ID)
	if err != nil || in {
		t.Fatalf("IsGameInUserCollection before add = %v, %v", in, err)
	}
	if _, err := e.svc.GetUserGame(ctx, e.owner, e.game.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetUserGame before add: err = %v", err)
	}

	if _, err := e.svc.AddGame(ctx, e.owner, e.collection.ID, e.game.ID, Annotations{Rating: intPtr(9)}); err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	in, err = e.svc.IsGameInUserCollection(ctx, e.owner, e.game.ID)
	if err != nil || !in {
		t.Errorf("IsGameInUserCollection after add = %v, %v", in, err)
	}
	m, err := e.svc.GetUserGame(ctx, e.owner, e.game.ID)
	if err != nil || m.Collection.Name != "Backlog" {
		t.Errorf("GetUserGame = %+v, %v", m, err)
	}
	if in, _ := e.svc.IsGameInUserCollection(ctx, e.stranger, e.game.ID); in {
		t.Error("stranger sees the owner's game")
	}
}

func TestCollectionLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.CreateCollection(ctx, e.owner, CollectionInput{Name: "  "}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank name: err = %v, want ErrValidation", err)
	}
	c, err := e.svc.CreateCollection(ctx, e.owner, CollectionInput{Name: "Favourites", Description: "best of"})
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	cs, err := e.svc.ListCollections(ctx, e.owner)
	if err != nil || len(cs) != 2 || cs[0].ID != c.ID {
		t.Fatalf("ListCollections = %+v, %v", cs, err)
	}

	if _, err := e.svc.UpdateCollection(ctx, e.stranger, c.ID, CollectionUpdate{Name: "Mine"}); !errors.Is(err, apperr.ErrNotOwner) {
		t.Errorf("stranger update: err = %v, want ErrNotOwner", err)
	}
	updated, err := e.svc.UpdateCollection(ctx, e.owner, c.ID, CollectionUpdate{Name: " ", Description: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateCollection: %v", err)
	}
	if updated.Name != "Favourites" || updated.Description != "" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := e.svc.AddGame(ctx, e.owner, c.ID, e.game.ID, Annotations{}); err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	if err := e.svc.DeleteCollection(ctx, e.stranger, c.ID); !errors.Is(err, apperr.ErrNotOwner) {
		t.Errorf("stranger delete: err = %v, want ErrNotOwner", err)
	}
	if err := e.svc.DeleteCollection(ctx, e.owner, c.ID); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if _, err := e.svc.GetCollection(ctx, e.owner, c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted collection still readable: %v", err)
	}
	var active int64
	if err := e.store.DB().Model(&models.Membership{}).Where("collection_id = ?", c.ID).Count(&active).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if active != 0 {
		t.Errorf("memberships of deleted collection = %d, want 0", active)
	}
}
