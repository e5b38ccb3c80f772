package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/apperr"
	"github.com/Morfeas98/GameCollectionApp/internal/catalog"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"gorm.io/gorm"
)

// termPredicate matches the folded search columns, so case-insensitivity
// does not depend on the database's LOWER.
const termPredicate = `(games.search_text LIKE ? ESCAPE '\' ` +
	`OR EXISTS (SELECT 1 FROM franchises WHERE franchises.id = games.franchise_id ` +
	`AND franchises.deleted_at IS NULL AND franchises.search_name LIKE ? ESCAPE '\'))`

// ratingNullsLast sorts unrated games after rated ones in both directions.
const ratingNullsLast = "CASE WHEN games.metacritic_score IS NULL THEN 1 ELSE 0 END"

var sortClauses = map[catalog.SortKey]string{
	catalog.SortTitleAsc:   "games.title ASC, games.id ASC",
	catalog.SortTitleDesc:  "games.title DESC, games.id ASC",
	catalog.SortYearAsc:    "games.release_year ASC, games.title ASC, games.id ASC",
	catalog.SortYearDesc:   "games.release_year DESC, games.title ASC, games.id ASC",
	catalog.SortRatingAsc:  ratingNullsLast + ", games.metacritic_score ASC, games.title ASC, games.id ASC",
	catalog.SortRatingDesc: ratingNullsLast + ", games.metacritic_score DESC, games.title ASC, games.id ASC",
}

func preloadGame(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Franchise").
		Preload("Platforms", func(db *gorm.DB) *gorm.DB { return db.Order("game_platforms.id") }).
		Preload("Platforms.Platform").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("game_genres.id") }).
		Preload("Genres.Genre")
}

func (s *Store) filterGames(ctx context.Context, f catalog.Filter) *gorm.DB {
	q := s.conn(ctx).Model(&models.Game{})
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	if term := strings.TrimSpace(f.Term); term != "" {
		like := "%" + escapeLike(models.Fold(term)) + "%"
		q = q.Where(termPredicate, like, like)
	}
	if f.PlatformID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM game_platforms WHERE game_platforms.game_id = games.id "+
			"AND game_platforms.platform_id = ? AND game_platforms.deleted_at IS NULL)", *f.PlatformID)
	}
	if f.GenreID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM game_genres WHERE game_genres.game_id = games.id "+
			"AND game_genres.genre_id = ? AND game_genres.deleted_at IS NULL)", *f.GenreID)
	}
	if f.FranchiseID != nil {
		q = q.Where("games.franchise_id = ?", *f.FranchiseID)
	}
	if f.MinYear != nil {
		q = q.Where("games.release_year >= ?", *f.MinYear)
	}
	if f.MaxYear != nil {
		q = q.Where("games.release_year <= ?", *f.MaxYear)
	}
	if f.ReleaseYear != 0 {
		q = q.Where("games.release_year = ?", f.ReleaseYear)
	}
	if f.MinScore != nil {
		q = q.Where("games.metacritic_score >= ?", *f.MinScore)
	}
	if f.MaxScore != nil {
		q = q.Where("games.metacritic_score <= ?", *f.MaxScore)
	}
	if f.HasScore {
		q = q.Where("games.metacritic_score IS NOT NULL")
	}
	if len(f.ExcludeIDs) > 0 {
		q = q.Where("games.id NOT IN ?", f.ExcludeIDs)
	}
	return q
}

// GetGame returns an active game with its franchise, platforms and genres.
func (s *Store) GetGame(ctx context.Context, id uint) (*models.Game, error) {
	var g models.Game
	if err := preloadGame(s.conn(ctx)).First(&g, id).Error; err != nil {
		return nil, translate("get game", err)
	}
	return &g, nil
}

// FindGames returns the games matching f in sort order.
func (s *Store) FindGames(ctx context.Context, f catalog.Filter, sort catalog.SortKey, offset, limit int) ([]models.Game, error) {
	order, ok := sortClauses[sort]
	if !ok {
		order = sortClauses[catalog.SortTitleAsc]
	}
	q := preloadGame(s.filterGames(ctx, f)).Order(order)
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	games := []models.Game{}
	if err := q.Find(&games).Error; err != nil {
		return nil, translate("find games", err)
	}
	return games, nil
}

// CountGames counts the games matching f.
func (s *Store) CountGames(ctx context.Context, f catalog.Filter) (int64, error) {
	var n int64
	if err := s.filterGames(ctx, f).Count(&n).Error; err != nil {
		return 0, translate("count games", err)
	}
	return n, nil
}

// ReadSnapshot runs fn inside one read transaction. On Postgres the
// transaction is read-only at repeatable read so a count and the page it
// describes see the same rows.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(catalog.GameStore) error) error {
	run := func(tx *gorm.DB) error { return fn(&Store{db: tx}) }
	if s.db.Dialector.Name() == "postgres" {
		return s.conn(ctx).Transaction(run, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return s.conn(ctx).Transaction(run)
}

// TagExists reports whether an active tag of kind exists.
func (s *Store) TagExists(ctx context.Context, kind models.TagKind, id uint) (bool, error) {
	model, err := tagModel(kind)
	if err != nil {
		return false, err
	}
	var n int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translate("check tag", err)
	}
	return n > 0, nil
}

// CreateGame inserts g and its links in one transaction.
func (s *Store) CreateGame(ctx context.Context, g *models.Game, platformIDs, genreIDs []uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Franchise", "Platforms", "Genres").Create(g).Error; err != nil {
			return translate("insert game", err)
		}
		return linkTags(tx, g.ID, platformIDs, genreIDs)
	})
}

// SaveGame updates g's columns and, for non-nil id slices, replaces the
// active links.
func (s *Store) SaveGame(ctx context.Context, g *models.Game, platformIDs, genreIDs []uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Franchise", "Platforms", "Genres").Save(g).Error; err != nil {
			return translate("save game", err)
		}
		if platformIDs != nil {
			if err := tx.Where("game_id = ?", g.ID).Delete(&models.GamePlatform{}).Error; err != nil {
				return translate("unlink platforms", err)
			}
		}
		if genreIDs != nil {
			if err := tx.Where("game_id = ?", g.ID).Delete(&models.GameGenre{}).Error; err != nil {
				return translate("unlink genres", err)
			}
		}
		return linkTags(tx, g.ID, platformIDs, genreIDs)
	})
}

func linkTags(tx *gorm.DB, gameID uint, platformIDs, genreIDs []uint) error {
	for _, id := range platformIDs {
		if err := tx.Create(&models.GamePlatform{GameID: gameID, PlatformID: id}).Error; err != nil {
			return translate("link platform", err)
		}
	}
	for _, id := range genreIDs {
		if err := tx.Create(&models.GameGenre{GameID: gameID, GenreID: id}).Error; err != nil {
			return translate("link genre", err)
		}
	}
	return nil
}

// SoftDeleteGame soft-deletes an active game and its tag links.
func (s *Store) SoftDeleteGame(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Game{}, id)
		if res.Error != nil {
			return translate("delete game", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.GamePlatform{}).Error; err != nil {
			return translate("unlink platforms", err)
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.GameGenre{}).Error; err != nil {
			return translate("unlink genres", err)
		}
		return nil
	})
}

func tagModel(kind models.TagKind) (any, error) {
	switch kind {
	case models.TagPlatform:
		return &models.Platform{}, nil
	case models.TagGenre:
		return &models.Genre{}, nil
	case models.TagFranchise:
		return &models.Franchise{}, nil
	}
	return nil, apperr.Invalid("kind", "unknown tag kind %q", kind)
}

// CreateTag inserts a platform, genre or franchise and fills tag.ID.
func (s *Store) CreateTag(ctx context.Context, tag *models.Tag) error {
	db := s.conn(ctx)
	var err error
	switch tag.Kind {
	case models.TagPlatform:
		p := models.Platform{Name: tag.Name, Description: tag.Description}
		err = db.Create(&p).Error
		tag.ID = p.ID
	case models.TagGenre:
		g := models.Genre{Name: tag.Name, Description: tag.Description}
		err = db.Create(&g).Error
		tag.ID = g.ID
	case models.TagFranchise:
		f := models.Franchise{Name: tag.Name, Description: tag.Description}
		err = db.Create(&f).Error
		tag.ID = f.ID
	default:
		return apperr.Invalid("kind", "unknown tag kind %q", tag.Kind)
	}
	return translate("create "+string(tag.Kind), err)
}

// ListTags returns the active tags of kind ordered by name.
func (s *Store) ListTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error) {
	model, err := tagModel(kind)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID          uint
		Name        string
		Description string
	}
	if err := s.conn(ctx).Model(model).Select("id", "name", "description").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translate("list "+string(kind), err)
	}
	tags := make([]models.Tag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, models.Tag{ID: r.ID, Kind: kind, Name: r.Name, Description: r.Description})
	}
	return tags, nil
}

// SoftDeleteTag soft-deletes a tag and detaches it from every game.
func (s *Store) SoftDeleteTag(ctx context.Context, kind models.TagKind, id uint) error {
	model, err := tagModel(kind)
	if err != nil {
		return err
	}
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(model, id)
		if res.Error != nil {
			return translate("delete "+string(kind), res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		switch kind {
		case models.TagPlatform:
			err = tx.Where("platform_id = ?", id).Delete(&models.GamePlatform{}).Error
		case models.TagGenre:
			err = tx.Where("genre_id = ?", id).Delete(&models.GameGenre{}).Error
		case models.TagFranchise:
			err = tx.Model(&models.Game{}).Unscoped().
				Where("franchise_id = ?", id).
				UpdateColumns(map[string]any{"franchise_id": nil, "updated_at": time.Now().UTC()}).Error
		}
		return translate("detach "+string(kind), err)
	})
}
