package models

import (
	"strings"
	"time"
)

const (
	RolePatient   = "patient"
	RoleTherapist = "therapist"

	DefaultStage = 1
)

type User struct {
	Username              string    `gorm:"primaryKey;size:20"`
	PasswordHash          string    `gorm:"not null"`
	Email                 string    `gorm:"size:50;not null"`
	BirthDate             string    `gorm:"size:30;not null"`
	FirstName             string    `gorm:"size:30;not null"`
	LastName              string    `gorm:"size:30;not null"`
	Stage                 int       `gorm:"not null;default:1"`
	EmergencyContactEmail string    `gorm:"size:50;not null"`
	CreatedAt             time.Time `gorm:"not null"`
	Entries               []Entry   `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE"`
}

func (user User) FullName() string {
	return joinName(user.FirstName, user.LastName)
}

func joinName(first string, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
