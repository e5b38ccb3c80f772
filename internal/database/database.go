package database

import (
	"fmt"
	"time"

	"github.com/Morfeas98/GameCollectionApp/internal/logging"
	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database for the given driver ("postgres" or "sqlite")
// and runs migrations.
func Connect(driver, dsn string) (*gorm.DB, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		logging.GormWriter{},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logging.Info().Str("driver", driver).Msg("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logging.Info().Msg("Database migrated successfully")
	return db, nil
}

// Migrate creates or updates every table, including the partial unique
// indexes that guard active memberships and tag links.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Franchise{},
		&models.Platform{},
		&models.Genre{},
		&models.Game{},
		&models.GamePlatform{},
		&models.GameGenre{},
		&models.Collection{},
		&models.Membership{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return BackfillSearch(db)
}

// BackfillSearch fills the search columns of rows written before they existed.
func BackfillSearch(db *gorm.DB) error {
	var games []models.Game
	err := db.Unscoped().Where("search_text = ''").FindInBatches(&games, 200, func(*gorm.DB, int) error {
		for i := range games {
			g := &games[i]
			if err := db.Unscoped().Model(g).UpdateColumn("search_text", g.FoldedText()).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("backfill game search text: %w", err)
	}

	var franchises []models.Franchise
	err = db.Unscoped().Where("search_name = ''").FindInBatches(&franchises, 200, func(*gorm.DB, int) error {
		for i := range franchises {
			f := &franchises[i]
			if err := db.Unscoped().Model(f).UpdateColumn("search_name", models.Fold(f.Name)).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("backfill franchise search name: %w", err)
	}
	return nil
}
