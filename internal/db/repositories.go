package db

import "gorm.io/gorm"

type Repositories struct {
	Users      *UserRepository
	Therapists *TherapistRepository
	Entries    *EntryRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(database),
		Therapists: NewTherapistRepository(database),
		Entries:    NewEntryRepository(database),
	}
}
