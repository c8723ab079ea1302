package services

import (
	"context"
	"sync"

	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/notify"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[string]models.User
	err   error
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[string]models.User{}}
	for _, user := range users {
		repo.users[user.Username] = user
	}
	return repo
}

func (stub *stubUserRepo) FindByUsername(_ context.Context, username string) (models.User, error) {
	if stub.err != nil {
		return models.User{}, stub.err
	}
	user, ok := stub.users[username]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := stub.users[username]
	return ok, stub.err
}

func (stub *stubUserRepo) Create(_ context.Context, user *models.User) error {
	stub.users[user.Username] = *user
	return nil
}

func (stub *stubUserRepo) UpdatePasswordHash(_ context.Context, username string, passwordHash string) error {
	user, ok := stub.users[username]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = passwordHash
	stub.users[username] = user
	return nil
}

type stubTherapistRepo struct {
	therapists map[string]models.Therapist
}

func newStubTherapistRepo(therapists ...models.Therapist) *stubTherapistRepo {
	repo := &stubTherapistRepo{therapists: map[string]models.Therapist{}}
	for _, therapist := range therapists {
		repo.therapists[therapist.Username] = therapist
	}
	return repo
}

func (stub *stubTherapistRepo) FindByUsername(_ context.Context, username string) (models.Therapist, error) {
	therapist, ok := stub.therapists[username]
	if !ok {
		return models.Therapist{}, gorm.ErrRecordNotFound
	}
	return therapist, nil
}

func (stub *stubTherapistRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := stub.therapists[username]
	return ok, nil
}

func (stub *stubTherapistRepo) List(context.Context) ([]models.Therapist, error) {
	therapists := make([]models.Therapist, 0, len(stub.therapists))
	for _, therapist := range stub.therapists {
		therapists = append(therapists, therapist)
	}
	return therapists, nil
}

func (stub *stubTherapistRepo) Create(_ context.Context, therapist *models.Therapist) error {
	stub.therapists[therapist.Username] = *therapist
	return nil
}

func (stub *stubTherapistRepo) UpdatePasswordHash(_ context.Context, username string, passwordHash string) error {
	therapist, ok := stub.therapists[username]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	therapist.PasswordHash = passwordHash
	stub.therapists[username] = therapist
	return nil
}

type stubEntryRepo struct {
	entries []models.Entry
	nextID  uint
}

func (stub *stubEntryRepo) Create(_ context.Context, entry *models.Entry) error {
	stub.nextID++
	entry.ID = stub.nextID
	stub.entries = append(stub.entries, *entry)
	return nil
}

func (stub *stubEntryRepo) FindByID(_ context.Context, entryID uint) (models.Entry, error) {
	for _, entry := range stub.entries {
		if entry.ID == entryID {
			return entry, nil
		}
	}
	return models.Entry{}, gorm.ErrRecordNotFound
}

func (stub *stubEntryRepo) ListByUsername(_ context.Context, username string) ([]models.Entry, error) {
	matched := make([]models.Entry, 0)
	for _, entry := range stub.entries {
		if entry.Username == username {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (stub *stubEntryRepo) ListByTherapist(_ context.Context, therapistUsername string) ([]models.Entry, error) {
	matched := make([]models.Entry, 0)
	for _, entry := range stub.entries {
		if entry.TherapistUsername == therapistUsername {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (stub *stubEntryRepo) Delete(_ context.Context, entryID uint) error {
	for index, entry := range stub.entries {
		if entry.ID == entryID {
			stub.entries = append(stub.entries[:index], stub.entries[index+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type recordingDispatcher struct {
	mu        sync.Mutex
	incidents []notify.Incident
	report    notify.Report
}

func (dispatcher *recordingDispatcher) Dispatch(_ context.Context, incident notify.Incident) notify.Report {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	dispatcher.incidents = append(dispatcher.incidents, incident)
	return dispatcher.report
}

func testUser() models.User {
	return models.User{
		Username:              "alice",
		Email:                 "alice@example.com",
		FirstName:             "Alice",
		LastName:              "Moss",
		Stage:                 models.DefaultStage,
		EmergencyContactEmail: "contact@example.com",
	}
}

func testTherapist() models.Therapist {
	return models.Therapist{
		Username:  "drbob",
		Email:     "bob@example.com",
		FirstName: "Bob",
		LastName:  "Stone",
	}
}

func patient(username string) Identity {
	return Identity{Username: username, Role: models.RolePatient}
}
