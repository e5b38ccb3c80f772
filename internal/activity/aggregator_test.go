package activity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

type fakeStore struct {
	collections []models.Collection
	additions   []models.Membership
	annotations []models.Membership
	stats       Stats

	failCollections bool
	failAdditions   bool
	failAnnotations bool

	mu     sync.Mutex
	limits map[string]int
}

func (f *fakeStore) record(source string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits[source] = n
}

var errFake = errors.New("source unavailable")

func (f *fakeStore) RecentCollections(_ context.Context, _ uint, n int) ([]models.Collection, error) {
	f.record("collections", n)
	if f.failCollections {
		return nil, errFake
	}
	return f.collections, nil
}

func (f *fakeStore) RecentMemberships(_ context.Context, _ uint, n int) ([]models.Membership, error) {
	f.record("additions", n)
	if f.failAdditions {
		return nil, errFake
	}
	return f.additions, nil
}

func (f *fakeStore) RecentAnnotations(_ context.Context, _ uint, n int) ([]models.Membership, error) {
	f.record("annotations", n)
	if f.failAnnotations {
		return nil, errFake
	}
	return f.annotations, nil
}

func (f *fakeStore) UserStats(context.Context, uint) (Stats, error) {
	return f.stats, nil
}

var base = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func newFake() *fakeStore {
	c1 := models.Collection{Name: "Backlog"}
	c1.ID, c1.CreatedAt = 1, at(0)
	c2 := models.Collection{Name: "Played"}
	c2.ID, c2.CreatedAt = 2, at(50)

	updated := at(40)
	return &fakeStore{
		collections: []models.Collection{c2, c1},
		additions: []models.Membership{
			{ID: 3, CollectionID: 1, GameID: 30, CreatedAt: at(30), Game: models.Game{Title: "Celeste"}, Collection: c1},
			{ID: 2, CollectionID: 1, GameID: 20, CreatedAt: at(20), Game: models.Game{Title: "Hades"}, Collection: c1},
			{ID: 1, CollectionID: 1, GameID: 10, CreatedAt: at(10), Game: models.Game{Title: "Inside"}, Collection: c1},
		},
		annotations: []models.Membership{
			{ID: 2, GameID: 20, CreatedAt: at(20), UpdatedAt: &updated, Notes: strPtr("An absolutely wonderful roguelike with great music"), Game: models.Game{Title: "Hades"}},
			{ID: 1, GameID: 10, CreatedAt: at(10), Rating: intPtr(9), Game: models.Game{Title: "Inside"}},
		},
		limits: map[string]int{},
	}
}

func TestGetRecentActivityMerge(t *testing.T) {
	f := newFake()
	a := NewAggregator(f)

	feed := a.GetRecentActivity(context.Background(), 1, 0)
	if feed.Degraded {
		t.Fatal("feed degraded")
	}
	if len(feed.Events) != DefaultLimit {
		t.Fatalf("len = %d, want %d", len(feed.Events), DefaultLimit)
	}
	// The oldest addition and the rating tie at the same minute; merge order
	// keeps the addition first.
	wantKinds := []Kind{CollectionCreated, NoteAdded, GameAdded, GameAdded, GameAdded}
	for i, ev := range feed.Events {
		if ev.Kind != wantKinds[i] {
			t.Errorf("event %d kind = %s, want %s", i, ev.Kind, wantKinds[i])
		}
		if i > 0 && ev.Timestamp.After(feed.Events[i-1].Timestamp) {
			t.Errorf("event %d is newer than event %d", i, i-1)
		}
	}

	if f.limits["collections"] != 2 || f.limits["additions"] != 3 || f.limits["annotations"] != 2 {
		t.Errorf("source caps = %v", f.limits)
	}
}

func TestGetRecentActivityLimit(t *testing.T) {
	feed := NewAggregator(newFake()).GetRecentActivity(context.Background(), 1, 2)
	if len(feed.Events) != 2 {
		t.Fatalf("len = %d, want 2", len(feed.Events))
	}
	if feed.Events[0].Kind != CollectionCreated || feed.Events[1].Kind != NoteAdded {
		t.Errorf("events = %+v", feed.Events)
	}

	feed = NewAggregator(newFake()).GetRecentActivity(context.Background(), 1, 50)
	if len(feed.Events) != 7 {
		t.Errorf("len = %d, want all 7 candidates", len(feed.Events))
	}
}

func TestGetRecentActivityFailSoft(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeStore)
	}{
		{"collections", func(f *fakeStore) { f.failCollections = true }},
		{"additions", func(f *fakeStore) { f.failAdditions = true }},
		{"annotations", func(f *fakeStore) { f.failAnnotations = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			tt.setup(f)
			feed := NewAggregator(f).GetRecentActivity(context.Background(), 1, 5)
			if !feed.Degraded {
				t.Error("Degraded = false")
			}
			if feed.Events == nil || len(feed.Events) != 0 {
				t.Errorf("events = %v, want empty", feed.Events)
			}
		})
	}
}

func TestAnnotationEvents(t *testing.T) {
	feed := NewAggregator(newFake()).GetRecentActivity(context.Background(), 1, 50)

	var note, rating *Event
	for i := range feed.Events {
		switch feed.Events[i].Kind {
		case NoteAdded:
			note = &feed.Events[i]
		case RatingAdded:
			rating = &feed.Events[i]
		}
	}
	if note == nil || rating == nil {
		t.Fatalf("missing annotation events: %+v", feed.Events)
	}
	if want := "An absolutely wonderful roguel..."; note.Preview != want {
		t.Errorf("preview = %q, want %q", note.Preview, want)
	}
	if !note.Timestamp.Equal(at(40)) {
		t.Errorf("note timestamp = %v, want updated_at", note.Timestamp)
	}
	if !rating.Timestamp.Equal(at(10)) {
		t.Errorf("rating timestamp = %v, want created_at fallback", rating.Timestamp)
	}
	if !strings.Contains(rating.Description, "9/10") {
		t.Errorf("rating description = %q", rating.Description)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"short", "short"},
		{strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{strings.Repeat("ü", 40), strings.Repeat("ü", 30) + "..."},
	}
	for _, tt := range tests {
		if got := preview(tt.in); got != tt.want {
			t.Errorf("preview(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	f := newFake()
	avg := 7.5
	f.stats = Stats{TotalCollections: 2, TotalGames: 3, AverageRating: &avg}
	st, err := NewAggregator(f).Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalGames != 3 || st.AverageRating == nil || *st.AverageRating != 7.5 {
		t.Errorf("Stats = %+v", st)
	}
}
