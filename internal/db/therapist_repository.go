package db

import (
	"context"

	"github.com/terraincognita07/mindnet/internal/models"
	"gorm.io/gorm"
)

type TherapistRepository struct {
	database *gorm.DB
}

func NewTherapistRepository(database *gorm.DB) *TherapistRepository {
	return &TherapistRepository{database: database}
}

func (repo *TherapistRepository) FindByUsername(ctx context.Context, username string) (models.Therapist, error) {
	var therapist models.Therapist
	if err := repo.database.WithContext(ctx).Where("username = ?", username).First(&therapist).Error; err != nil {
		return models.Therapist{}, err
	}
	return therapist, nil
}

func (repo *TherapistRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Therapist{}).
		Where("username = ?", username).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *TherapistRepository) List(ctx context.Context) ([]models.Therapist, error) {
	therapists := make([]models.Therapist, 0)
	if err := repo.database.WithContext(ctx).
		Order("last_name ASC, first_name ASC, username ASC").
		Find(&therapists).Error; err != nil {
		return nil, err
	}
	return therapists, nil
}

func (repo *TherapistRepository) Create(ctx context.Context, therapist *models.Therapist) error {
	return repo.database.WithContext(ctx).Create(therapist).Error
}

func (repo *TherapistRepository) UpdatePasswordHash(ctx context.Context, username string, passwordHash string) error {
	result := repo.database.WithContext(ctx).Model(&models.Therapist{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
