package activity

import (
	"fmt"
	"unicode/utf8"

	"github.com/Morfeas98/GameCollectionApp/internal/models"
)

func collectionEvent(c models.Collection) Event {
	return Event{
		Kind:         CollectionCreated,
		Description:  fmt.Sprintf("Created collection %q", c.Name),
		Timestamp:    c.CreatedAt,
		Icon:         "folder-plus",
		Category:     "collection",
		CollectionID: c.ID,
	}
}

func additionEvent(m models.Membership) Event {
	desc := fmt.Sprintf("Added %s", gameTitle(m))
	if m.Collection.Name != "" {
		desc += fmt.Sprintf(" to %q", m.Collection.Name)
	}
	return Event{
		Kind:         GameAdded,
		Description:  desc,
		Timestamp:    m.CreatedAt,
		Icon:         "plus-circle",
		Category:     "game",
		CollectionID: m.CollectionID,
		GameID:       m.GameID,
	}
}

func annotationEvent(m models.Membership) Event {
	ev := Event{
		Timestamp:    m.LastTouched(),
		CollectionID: m.CollectionID,
		GameID:       m.GameID,
	}
	if m.HasNotes() {
		ev.Kind = NoteAdded
		ev.Description = fmt.Sprintf("Added notes to %s", gameTitle(m))
		ev.Icon = "sticky-note"
		ev.Category = "note"
		ev.Preview = preview(*m.Notes)
		return ev
	}
	ev.Kind = RatingAdded
	ev.Icon = "star"
	ev.Category = "rating"
	if m.Rating != nil {
		ev.Description = fmt.Sprintf("Rated %s %d/10", gameTitle(m), *m.Rating)
	} else {
		ev.Description = fmt.Sprintf("Rated %s", gameTitle(m))
	}
	return ev
}

func gameTitle(m models.Membership) string {
	if m.Game.Title != "" {
		return m.Game.Title
	}
	return fmt.Sprintf("game #%d", m.GameID)
}

// preview returns the first notePreviewRunes runes of s, with an ellipsis
// when anything was cut.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= notePreviewRunes {
		return s
	}
	return string([]rune(s)[:notePreviewRunes]) + notePreviewEllipsis
}
