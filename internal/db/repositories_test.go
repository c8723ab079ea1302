package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/risk"
	"gorm.io/gorm"
)

func newTestRepositories(t *testing.T) (*Repositories, *gorm.DB) {
	t.Helper()
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "mindnet-repos.db"))
	return NewRepositories(database), database
}

func seedAccounts(t *testing.T, repos *Repositories) {
	t.Helper()
	ctx := context.Background()

	if err := repos.Users.Create(ctx, &models.User{
		Username:              "alice",
		PasswordHash:          "hash",
		Email:                 "alice@example.com",
		BirthDate:             "1990-02-03",
		FirstName:             "Alice",
		LastName:              "Moss",
		Stage:                 models.DefaultStage,
		EmergencyContactEmail: "contact@example.com",
		CreatedAt:             time.Now(),
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := repos.Therapists.Create(ctx, &models.Therapist{
		Username:     "drbob",
		PasswordHash: "hash",
		Email:        "bob@example.com",
		FirstName:    "Bob",
		LastName:     "Stone",
		CreatedAt:    time.Now(),
	}); err != nil {
		t.Fatalf("create therapist: %v", err)
	}
}

func newEntryFor(username string, therapist string, day int, scores risk.Scores) models.Entry {
	return models.NewEntry(models.EntryFields{
		Username:              username,
		TherapistUsername:     therapist,
		SessionDate:           time.Date(2026, time.May, day, 0, 0, 0, 0, time.UTC),
		Scores:                scores,
		Adversity:             "event",
		Beliefs:               "belief",
		EmotionalConsequences: []string{"Anger", "Guilt"},
		Reactions:             "reaction",
	})
}

func TestEntryRepositoryListsInInsertionOrder(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedAccounts(t, repos)
	ctx := context.Background()

	for _, day := range []int{20, 3, 11} {
		entry := newEntryFor("alice", "drbob", day, risk.Scores{NRS1: 50, NRS2: 50, NRS3: 50, NRS4: 50, NRS5: day + 30})
		if err := repos.Entries.Create(ctx, &entry); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	entries, err := repos.Entries.ListByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for index, day := range []int{20, 3, 11} {
		if entries[index].SessionDate.Day() != day {
			t.Fatalf("entry %d: expected day %d, got %d", index, day, entries[index].SessionDate.Day())
		}
		if entries[index].Therapist.Username != "drbob" {
			t.Fatalf("expected preloaded therapist, got %q", entries[index].Therapist.Username)
		}
	}
	if entries[0].EmotionalConsequences != "Anger, Guilt" {
		t.Fatalf("expected flattened consequences to round-trip, got %q", entries[0].EmotionalConsequences)
	}
	if !entries[1].IsAtRisk || entries[0].IsAtRisk {
		t.Fatalf("unexpected risk flags: %v %v", entries[0].IsAtRisk, entries[1].IsAtRisk)
	}
}

func TestEntryRepositoryEnforcesTherapistForeignKey(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedAccounts(t, repos)

	entry := newEntryFor("alice", "ghost", 1, risk.Scores{NRS1: 50, NRS2: 50, NRS3: 50, NRS4: 50, NRS5: 50})
	if err := repos.Entries.Create(context.Background(), &entry); err == nil {
		t.Fatal("expected foreign key violation for unknown therapist")
	}
}

func TestEntryRepositoryRejectsOutOfRangeScores(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedAccounts(t, repos)

	entry := newEntryFor("alice", "drbob", 1, risk.Scores{NRS1: 101, NRS2: 50, NRS3: 50, NRS4: 50, NRS5: 50})
	if err := repos.Entries.Create(context.Background(), &entry); err == nil {
		t.Fatal("expected check constraint violation for nrs1=101")
	}
}

func TestEntryRepositoryDeleteAndFind(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedAccounts(t, repos)
	ctx := context.Background()

	entry := newEntryFor("alice", "drbob", 5, risk.Scores{NRS1: 10, NRS2: 50, NRS3: 50, NRS4: 50, NRS5: 50})
	if err := repos.Entries.Create(ctx, &entry); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	found, err := repos.Entries.FindByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("find entry: %v", err)
	}
	if found.Username != "alice" || !found.IsAtRisk {
		t.Fatalf("unexpected entry %+v", found)
	}

	if err := repos.Entries.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if _, err := repos.Entries.FindByID(ctx, entry.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repos.Entries.Delete(ctx, entry.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeletingUserCascadesToEntries(t *testing.T) {
	repos, database := newTestRepositories(t)
	seedAccounts(t, repos)
	ctx := context.Background()

	entry := newEntryFor("alice", "drbob", 7, risk.Scores{NRS1: 60, NRS2: 60, NRS3: 60, NRS4: 60, NRS5: 60})
	if err := repos.Entries.Create(ctx, &entry); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := database.Exec(`DELETE FROM users WHERE username = ?`, "alice").Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var remaining int64
	if err := database.Model(&models.Entry{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cascade delete, %d entries remain", remaining)
	}
}

func TestUserAndTherapistLookups(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedAccounts(t, repos)
	ctx := context.Background()

	user, err := repos.Users.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.Stage != models.DefaultStage || user.FullName() != "Alice Moss" {
		t.Fatalf("unexpected user %+v", user)
	}
	if _, err := repos.Users.FindByUsername(ctx, "nobody"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	exists, err := repos.Therapists.ExistsByUsername(ctx, "drbob")
	if err != nil || !exists {
		t.Fatalf("expected therapist to exist, exists=%v err=%v", exists, err)
	}
	therapists, err := repos.Therapists.List(ctx)
	if err != nil || len(therapists) != 1 {
		t.Fatalf("expected one therapist, got %d err=%v", len(therapists), err)
	}

	if err := repos.Users.UpdatePasswordHash(ctx, "alice", "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if err := repos.Therapists.UpdatePasswordHash(ctx, "nobody", "new-hash"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for unknown therapist, got %v", err)
	}
}
