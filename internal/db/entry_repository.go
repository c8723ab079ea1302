package db

import (
	"context"

	"github.com/terraincognita07/mindnet/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntryRepository struct {
	database *gorm.DB
}

func NewEntryRepository(database *gorm.DB) *EntryRepository {
	return &EntryRepository{database: database}
}

func (repo *EntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	return repo.database.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

func (repo *EntryRepository) FindByID(ctx context.Context, entryID uint) (models.Entry, error) {
	var entry models.Entry
	if err := repo.database.WithContext(ctx).Preload("Therapist").First(&entry, entryID).Error; err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

// ListByUsername returns entries in insertion order.
func (repo *EntryRepository) ListByUsername(ctx context.Context, username string) ([]models.Entry, error) {
	entries := make([]models.Entry, 0)
	if err := repo.database.WithContext(ctx).
		Preload("Therapist").
		Where("username = ?", username).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *EntryRepository) ListByTherapist(ctx context.Context, therapistUsername string) ([]models.Entry, error) {
	entries := make([]models.Entry, 0)
	if err := repo.database.WithContext(ctx).
		Where("therapist_username = ?", therapistUsername).
		Order("session_date DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *EntryRepository) Delete(ctx context.Context, entryID uint) error {
	result := repo.database.WithContext(ctx).Delete(&models.Entry{}, entryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
