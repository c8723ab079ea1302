package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EmergencyUserRepository interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

type EmergencyTherapistRepository interface {
	FindByUsername(ctx context.Context, username string) (models.Therapist, error)
}

type IncidentDispatcher interface {
	Dispatch(ctx context.Context, incident notify.Incident) notify.Report
}

type EmergencyService struct {
	users      EmergencyUserRepository
	therapists EmergencyTherapistRepository
	dispatcher IncidentDispatcher
	logger     *zap.Logger
}

func NewEmergencyService(users EmergencyUserRepository, therapists EmergencyTherapistRepository, dispatcher IncidentDispatcher, logger *zap.Logger) *EmergencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmergencyService{
		users:      users,
		therapists: therapists,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Trigger notifies the emergency contact and therapist of username. Only the patient
// themself may trigger it. Per-channel delivery failures are reported in the returned
// report and never as an error.
func (service *EmergencyService) Trigger(ctx context.Context, caller Identity, username string, therapistUsername string) (notify.Report, error) {
	if !caller.IsPatient(username) {
		service.logger.Warn("emergency request rejected",
			zap.String("username", username),
			zap.String("caller", caller.Username),
		)
		return notify.Report{}, ErrUnauthorized
	}

	user, err := service.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notify.Report{}, ErrUserNotFound
	}
	if err != nil {
		return notify.Report{}, fmt.Errorf("load user: %w", err)
	}
	therapist, err := service.therapists.FindByUsername(ctx, therapistUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notify.Report{}, ErrTherapistNotFound
	}
	if err != nil {
		return notify.Report{}, fmt.Errorf("load therapist: %w", err)
	}

	report := service.dispatcher.Dispatch(ctx, notify.Incident{
		Username:              user.Username,
		UserFullName:          user.FullName(),
		EmergencyContactEmail: user.EmergencyContactEmail,
		TherapistUsername:     therapist.Username,
		TherapistFullName:     therapist.FullName(),
		TherapistEmail:        therapist.Email,
	})
	service.logger.Info("emergency workflow completed",
		zap.String("incident_id", report.IncidentID),
		zap.String("username", user.Username),
		zap.Bool("all_delivered", report.AllDelivered()),
	)
	return report, nil
}
