package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/logging"
	"github.com/Morfeas98/GameCollectionApp/internal/metrics"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/rs/zerolog"
)

// Service mutates and reads collection memberships.
type Service struct {
	store Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewService creates a Service backed by store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logging.With("membership"),
	}
}

// ownedCollection loads collectionID and checks that id owns it. A missing
// collection is reported as ErrNotOwner too, so mutations cannot probe for
// other users' collections.
func (s *Service) ownedCollection(ctx context.Context, id Identity, collectionID uint) (*models.Collection, error) {
	c, err := s.store.GetCollection(ctx, collectionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrNotOwner
	}
	if err != nil {
		return nil, fmt.Errorf("load collection %d: %w", collectionID, err)
	}
	if !c.OwnedBy(id.UserID) {
		return nil, apperr.ErrNotOwner
	}
	return c, nil
}

// readableCollection is ownedCollection for read paths, where ownership
// failures read as ErrNotFound.
func (s *Service) readableCollection(ctx context.Context, id Identity, collectionID uint) (*models.Collection, error) {
	c, err := s.ownedCollection(ctx, id, collectionID)
	if errors.Is(err, apperr.ErrNotOwner) {
		return nil, apperr.ErrNotFound
	}
	return c, err
}

// AddGame adds gameID to collectionID with the given annotations.
//
// Checks run in order: input validation, ownership (ErrNotOwner), game
// existence (ErrNotFound), existing active membership (ErrDuplicateMembership).
// No lock is held between the duplicate check and the insert; a concurrent
// insert that wins the race makes the unique index reject ours, and that
// conflict is reported as ErrDuplicateMembership as well.
func (s *Service) AddGame(ctx context.Context, id Identity, collectionID, gameID uint, a Annotations) (*models.Membership, error) {
	m, err := s.addGame(ctx, id, collectionID, gameID, a)
	s.record("add", err)
	return m, err
}

func (s *Service) addGame(ctx context.Context, id Identity, collectionID, gameID uint, a Annotations) (*models.Membership, error) {
	if err := apperr.ValidateStruct(a); err != nil {
		return nil, err
	}
	if _, err := s.ownedCollection(ctx, id, collectionID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("load game %d: %w", gameID, err)
	}

	_, err := s.store.FindMembership(ctx, collectionID, gameID)
	switch {
	case err == nil:
		return nil, apperr.ErrDuplicateMembership
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, fmt.Errorf("check membership: %w", err)
	}

	now := s.now()
	m := &models.Membership{
		CollectionID:     collectionID,
		GameID:           gameID,
		DateAdded:        now,
		Rating:           a.Rating,
		Notes:            a.Notes,
		Completed:        a.Completed,
		CurrentlyPlaying: a.CurrentlyPlaying,
		CreatedAt:        now,
	}
	if err := s.store.InsertMembership(ctx, m); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			s.log.Info().
				Uint("collection_id", collectionID).
				Uint("game_id", gameID).
				Msg("concurrent add lost the race to the unique index")
			return nil, apperr.ErrDuplicateMembership
		}
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	return m, nil
}

// RemoveGame soft-deletes the active membership of gameID in collectionID.
// Removing a game that is not in the collection succeeds without change.
func (s *Service) RemoveGame(ctx context.Context, id Identity, collectionID, gameID uint) error {
	err := s.removeGame(ctx, id, collectionID, gameID)
	s.record("remove", err)
	return err
}

func (s *Service) removeGame(ctx context.Context, id Identity, collectionID, gameID uint) error {
	if _, err := s.ownedCollection(ctx, id, collectionID); err != nil {
		return err
	}
	m, err := s.store.FindMembership(ctx, collectionID, gameID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find membership: %w", err)
	}

	now := s.now()
	m.UpdatedAt = &now
	if err := s.store.SoftDeleteMembership(ctx, m); err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	return nil
}

// UpdateGame overwrites the annotations of an active membership. Rating and
// Notes change only when present; the flags are always written.
func (s *Service) UpdateGame(ctx context.Context, id Identity, collectionID, gameID uint, a Annotations) (*models.Membership, error) {
	m, err := s.updateGame(ctx, id, collectionID, gameID, a)
	s.record("update", err)
	return m, err
}

func (s *Service) updateGame(ctx context.Context, id Identity, collectionID, gameID uint, a Annotations) (*models.Membership, error) {
	if err := apperr.ValidateStruct(a); err != nil {
		return nil, err
	}
	if _, err := s.ownedCollection(ctx, id, collectionID); err != nil {
		return nil, err
	}
	m, err := s.store.FindMembership(ctx, collectionID, gameID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}

	if a.Rating != nil {
		m.Rating = a.Rating
	}
	if a.Notes != nil {
		m.Notes = a.Notes
	}
	m.Completed = a.Completed
	m.CurrentlyPlaying = a.CurrentlyPlaying
	now := s.now()
	m.UpdatedAt = &now

	if err := s.store.UpdateMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("update membership: %w", err)
	}
	return m, nil
}

// GetMembership returns the active membership of gameID in one of the
// caller's collections.
func (s *Service) GetMembership(ctx context.Context, id Identity, collectionID, gameID uint) (*models.Membership, error) {
	if _, err := s.readableCollection(ctx, id, collectionID); err != nil {
		return nil, err
	}
	m, err := s.store.FindMembership(ctx, collectionID, gameID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return m, nil
}

// ListMemberships returns the active memberships of one of the caller's
// collections, newest first.
func (s *Service) ListMemberships(ctx context.Context, id Identity, collectionID uint) ([]models.Membership, error) {
	if _, err := s.readableCollection(ctx, id, collectionID); err != nil {
		return nil, err
	}
	ms, err := s.store.ListMemberships(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return ms, nil
}

// ListCollectionsContaining returns the caller's collections that hold gameID.
func (s *Service) ListCollectionsContaining(ctx context.Context, id Identity, gameID uint) ([]models.Collection, error) {
	cs, err := s.store.ListCollectionsContaining(ctx, id.UserID, gameID)
	if err != nil {
		return nil, fmt.Errorf("list collections containing game %d: %w", gameID, err)
	}
	return cs, nil
}

// GetUserGame returns the caller's latest active membership for gameID in
// any collection.
func (s *Service) GetUserGame(ctx context.Context, id Identity, gameID uint) (*models.Membership, error) {
	m, err := s.store.FindUserMembership(ctx, id.UserID, gameID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find user game: %w", err)
	}
	return m, nil
}

// IsGameInUserCollection reports whether any of the caller's collections
// holds gameID.
func (s *Service) IsGameInUserCollection(ctx context.Context, id Identity, gameID uint) (bool, error) {
	_, err := s.GetUserGame(ctx, id, gameID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotOwner):
		result = "not_owner"
	case errors.Is(err, apperr.ErrNotFound):
		result = "not_found"
	case errors.Is(err, apperr.ErrDuplicateMembership):
		result = "duplicate"
	case errors.Is(err, apperr.ErrValidation):
		result = "invalid"
	default:
		result = "error"
		s.log.Error().Err(err).Str("operation", op).Msg("membership operation failed")
	}
	metrics.RecordMembership(op, result)
}
