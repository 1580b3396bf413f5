// Package gormstorage implements storage.Backend on top of any GORM dialect.
// Every archive is one row in archives plus one archive_records row per party
// member; each mutation runs in a single transaction.
package gormstorage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/partyvault/partyvault/internal/database"
	"github.com/partyvault/partyvault/internal/logging"
	"github.com/partyvault/partyvault/internal/model"
	"github.com/partyvault/partyvault/internal/model/convert"
	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/pkg/core"
)

// Dependencies holds the collaborators the backend needs.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// Backend stores archives through GORM.
type Backend struct {
	db  *gorm.DB
	log *logging.SlogManager
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	log := deps.LogManager
	if log == nil {
		log = logging.NewSlogManager()
	}
	return &Backend{
		db:  deps.DB,
		log: log,
	}
}

// Init migrates the archive schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return fmt.Errorf("%w: no database connection", core.ErrStorageRead)
	}
	if err := database.Migrate(b.db, b.log.Logger()); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageWrite, err)
	}
	return nil
}

// Close releases the database connection.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return database.Close(b.db)
}

// Exists reports whether an archive row with that name exists.
func (b *Backend) Exists(name string) (bool, error) {
	if storage.ValidateName(name) != nil {
		return false, nil
	}

	var count int64
	if err := b.db.Model(&model.Archive{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("%w: exists %q: %v", core.ErrStorageRead, name, err)
	}
	return count > 0, nil
}

// ListNames returns all archive names in byte order.
func (b *Backend) ListNames() ([]string, error) {
	names := []string{}
	if err := b.db.Model(&model.Archive{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("%w: list archives: %v", core.ErrStorageRead, err)
	}
	return names, nil
}

// Save replaces the archive's records in one transaction.
func (b *Backend) Save(name string, party core.Party) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	records := convert.PartyToRecords(name, party)
	err := b.db.Transaction(func(tx *gorm.DB) error {
		archive := model.Archive{Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Create(&archive).Error; err != nil {
			return err
		}
		if err := tx.Where("archive_name = ?", name).Delete(&model.ArchiveRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("%w: save %q: %v", core.ErrStorageWrite, name, err)
	}

	b.log.Logger().Debug("Saved archive", "name", name, "members", len(party))
	return nil
}

// Load reads the archive's records in party order.
func (b *Backend) Load(name string) (core.Party, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}

	var records []model.ArchiveRecord
	err := b.db.Transaction(func(tx *gorm.DB) error {
		var archive model.Archive
		if err := tx.Where("name = ?", name).Take(&archive).Error; err != nil {
			return err
		}
		return tx.Where("archive_name = ?", name).Order("position ASC").Find(&records).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %q: %v", core.ErrStorageRead, name, err)
	}

	party, err := convert.RecordsToParty(records)
	if err != nil {
		return nil, fmt.Errorf("archive %q: %w", name, err)
	}
	return party, nil
}

// Delete removes the archive and its records.
func (b *Backend) Delete(name string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	var removed int64
	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("archive_name = ?", name).Delete(&model.ArchiveRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("name = ?", name).Delete(&model.Archive{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("%w: delete %q: %v", core.ErrStorageWrite, name, err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}

	b.log.Logger().Debug("Deleted archive", "name", name)
	return nil
}
