package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/mindnet/internal/models"
	"gorm.io/gorm"
)

type PatientProfile struct {
	User       models.User
	Entries    []models.Entry
	Therapists []models.Therapist
	AtRisk     int
}

type TherapistProfile struct {
	Therapist models.Therapist
	Entries   []models.Entry
	AtRisk    int
}

type ProfileUserRepository interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

type ProfileTherapistRepository interface {
	FindByUsername(ctx context.Context, username string) (models.Therapist, error)
	List(ctx context.Context) ([]models.Therapist, error)
}

type ProfileService struct {
	users      ProfileUserRepository
	therapists ProfileTherapistRepository
	entries    EntryRepository
}

func NewProfileService(users ProfileUserRepository, therapists ProfileTherapistRepository, entries EntryRepository) *ProfileService {
	return &ProfileService{
		users:      users,
		therapists: therapists,
		entries:    entries,
	}
}

func (service *ProfileService) PatientProfile(ctx context.Context, caller Identity, username string) (PatientProfile, error) {
	if !caller.IsPatient(username) {
		return PatientProfile{}, ErrUnauthorized
	}
	user, err := service.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PatientProfile{}, ErrUserNotFound
	}
	if err != nil {
		return PatientProfile{}, fmt.Errorf("load user: %w", err)
	}

	entries, err := service.entries.ListByUsername(ctx, username)
	if err != nil {
		return PatientProfile{}, fmt.Errorf("list entries: %w", err)
	}
	therapists, err := service.therapists.List(ctx)
	if err != nil {
		return PatientProfile{}, fmt.Errorf("list therapists: %w", err)
	}
	return PatientProfile{
		User:       user,
		Entries:    entries,
		Therapists: therapists,
		AtRisk:     countAtRisk(entries),
	}, nil
}

func (service *ProfileService) TherapistProfile(ctx context.Context, caller Identity, username string) (TherapistProfile, error) {
	if !caller.IsTherapist(username) {
		return TherapistProfile{}, ErrUnauthorized
	}
	therapist, err := service.therapists.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TherapistProfile{}, ErrTherapistNotFound
	}
	if err != nil {
		return TherapistProfile{}, fmt.Errorf("load therapist: %w", err)
	}

	entries, err := service.entries.ListByTherapist(ctx, username)
	if err != nil {
		return TherapistProfile{}, fmt.Errorf("list therapist entries: %w", err)
	}
	return TherapistProfile{
		Therapist: therapist,
		Entries:   entries,
		AtRisk:    countAtRisk(entries),
	}, nil
}

func countAtRisk(entries []models.Entry) int {
	count := 0
	for _, entry := range entries {
		if entry.IsAtRisk {
			count++
		}
	}
	return count
}
