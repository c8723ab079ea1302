package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/mindnet/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgUsernameTaken = "That username is already taken."

type PatientRegistration struct {
	Username              string `form:"username" json:"username" validate:"required,max=20"`
	Password              string `form:"password" json:"password" validate:"required,min=6,max=55"`
	Email                 string `form:"email" json:"email" validate:"required,email,max=50"`
	BirthDate             string `form:"bday" json:"bday" validate:"required,max=30"`
	FirstName             string `form:"first_name" json:"first_name" validate:"required,max=30"`
	LastName              string `form:"last_name" json:"last_name" validate:"required,max=30"`
	EmergencyContactEmail string `form:"emergency_contact_email" json:"emergency_contact_email" validate:"required,email,max=50"`
}

type TherapistRegistration struct {
	Username  string `form:"username" json:"username" validate:"required,max=20"`
	Password  string `form:"password" json:"password" validate:"required,min=6,max=55"`
	Email     string `form:"email" json:"email" validate:"required,email,max=50"`
	FirstName string `form:"first_name" json:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" json:"last_name" validate:"required,max=30"`
}

type Credentials struct {
	Username string `form:"username" json:"username" validate:"required,max=20"`
	Password string `form:"password" json:"password" validate:"required,min=6,max=55"`
}

type AuthUserRepository interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, username string, passwordHash string) error
}

type AuthTherapistRepository interface {
	FindByUsername(ctx context.Context, username string) (models.Therapist, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, therapist *models.Therapist) error
	UpdatePasswordHash(ctx context.Context, username string, passwordHash string) error
}

type AuthService struct {
	users      AuthUserRepository
	therapists AuthTherapistRepository
	hashCost   int
}

func NewAuthService(users AuthUserRepository, therapists AuthTherapistRepository) *AuthService {
	return &AuthService{
		users:      users,
		therapists: therapists,
		hashCost:   bcrypt.DefaultCost,
	}
}

func (service *AuthService) RegisterPatient(ctx context.Context, input PatientRegistration) (models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.BirthDate = strings.TrimSpace(input.BirthDate)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.EmergencyContactEmail = strings.TrimSpace(input.EmergencyContactEmail)
	if errs := validateForm(input); errs != nil {
		return models.User{}, errs
	}

	exists, err := service.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return models.User{}, ValidationErrors{"username": msgUsernameTaken}
	}

	hash, err := service.hashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		Username:              input.Username,
		PasswordHash:          hash,
		Email:                 input.Email,
		BirthDate:             input.BirthDate,
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Stage:                 models.DefaultStage,
		EmergencyContactEmail: input.EmergencyContactEmail,
		CreatedAt:             time.Now().UTC(),
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (service *AuthService) RegisterTherapist(ctx context.Context, input TherapistRegistration) (models.Therapist, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if errs := validateForm(input); errs != nil {
		return models.Therapist{}, errs
	}

	exists, err := service.therapists.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return models.Therapist{}, fmt.Errorf("check therapist username: %w", err)
	}
	if exists {
		return models.Therapist{}, ValidationErrors{"username": msgUsernameTaken}
	}

	hash, err := service.hashPassword(input.Password)
	if err != nil {
		return models.Therapist{}, err
	}
	therapist := models.Therapist{
		Username:     input.Username,
		PasswordHash: hash,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.therapists.Create(ctx, &therapist); err != nil {
		return models.Therapist{}, fmt.Errorf("create therapist: %w", err)
	}
	return therapist, nil
}

// AuthenticatePatient returns ErrInvalidCredentials for unknown users and wrong passwords alike.
func (service *AuthService) AuthenticatePatient(ctx context.Context, input Credentials) (models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if errs := validateForm(input); errs != nil {
		return models.User{}, errs
	}
	user, err := service.users.FindByUsername(ctx, input.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) AuthenticateTherapist(ctx context.Context, input Credentials) (models.Therapist, error) {
	input.Username = strings.TrimSpace(input.Username)
	if errs := validateForm(input); errs != nil {
		return models.Therapist{}, errs
	}
	therapist, err := service.therapists.FindByUsername(ctx, input.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Therapist{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Therapist{}, fmt.Errorf("load therapist: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(therapist.PasswordHash), []byte(input.Password)) != nil {
		return models.Therapist{}, ErrInvalidCredentials
	}
	return therapist, nil
}

// ResetPassword replaces the stored hash for the account named username in role.
func (service *AuthService) ResetPassword(ctx context.Context, role string, username string, password string) error {
	if len(password) < 6 || len(password) > 55 {
		return fmt.Errorf("password must be 6 to 55 characters")
	}
	hash, err := service.hashPassword(password)
	if err != nil {
		return err
	}

	switch role {
	case models.RolePatient:
		err = service.users.UpdatePasswordHash(ctx, username, hash)
	case models.RoleTherapist:
		err = service.therapists.UpdatePasswordHash(ctx, username, hash)
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (service *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
