package db

import (
	"fmt"
	"log/slog"

	"github.com/jinzhu/gorm"
	"gopkg.in/gormigrate.v1"
)

func (db *DB) Migrate() error {
	options := &gormigrate.Options{
		TableName:      "migrations",
		IDColumnName:   "id",
		IDColumnSize:   255,
		UseTransaction: false,
	}

	// $ date '+%Y%m%d%H%M'
	migrations := []*gormigrate.Migration{
		construct("202405041730", migrateInitSchema),
		construct("202405112014", migrateShowStartTimeIDX),
		construct("202406020941", migrateNameUDec),
	}

	return gormigrate.
		New(db.DB, options, migrations).
		Migrate()
}

func construct(id string, f func(*gorm.DB) error) *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: id,
		Migrate: func(db *gorm.DB) error {
			tx := db.Begin()
			if err := f(tx); err != nil {
				tx.Rollback()
				return fmt.Errorf("%q: %w", id, err)
			}
			if err := tx.Commit().Error; err != nil {
				return fmt.Errorf("%q: commit: %w", id, err)
			}
			slog.Info("migration finished", "id", id)
			return nil
		},
		Rollback: func(*gorm.DB) error {
			return nil
		},
	}
}

func migrateInitSchema(tx *gorm.DB) error {
	return tx.AutoMigrate(
		Venue{},
		Artist{},
		Show{},
		Setting{},
	).
		Error
}

func migrateShowStartTimeIDX(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_shows_venue_start_time
		ON shows (venue_id, start_time);
	`).
		Error
}

// migrateNameUDec fills the ascii names of rows listed before search matched
// on them
func migrateNameUDec(tx *gorm.DB) error {
	step := tx.AutoMigrate(
		Venue{},
		Artist{},
	)
	if err := step.Error; err != nil {
		return fmt.Errorf("step auto migrate: %w", err)
	}

	var venues []*Venue
	if err := tx.Where("name_u_dec IS NULL").Find(&venues).Error; err != nil {
		return fmt.Errorf("step find venues: %w", err)
	}
	for _, v := range venues {
		if u := decoded(v.Name); u != "" {
			if err := tx.Model(v).UpdateColumn("name_u_dec", u).Error; err != nil {
				return fmt.Errorf("step update venue %d: %w", v.ID, err)
			}
		}
	}

	var artists []*Artist
	if err := tx.Where("name_u_dec IS NULL").Find(&artists).Error; err != nil {
		return fmt.Errorf("step find artists: %w", err)
	}
	for _, a := range artists {
		if u := decoded(a.Name); u != "" {
			if err := tx.Model(a).UpdateColumn("name_u_dec", u).Error; err != nil {
				return fmt.Errorf("step update artist %d: %w", a.ID, err)
			}
		}
	}
	return nil
}
