package models

import "time"

type Therapist struct {
	Username     string    `gorm:"primaryKey;size:20"`
	PasswordHash string    `gorm:"not null"`
	Email        string    `gorm:"size:50;not null"`
	FirstName    string    `gorm:"size:30;not null"`
	LastName     string    `gorm:"size:30;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (therapist Therapist) FullName() string {
	return joinName(therapist.FirstName, therapist.LastName)
}
