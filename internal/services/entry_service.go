package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/risk"
	"gorm.io/gorm"
)

const (
	sessionDateLayout   = "2006-01-02"
	msgUnknownTherapist = "Choose a therapist from the list."
)

// EntryForm is the submission form as typed by the patient. Values stay strings so a
// rejected form can be rendered again exactly as entered.
type EntryForm struct {
	Date                  string   `form:"date" validate:"required,datetime=2006-01-02"`
	Therapist             string   `form:"therapist" validate:"required,max=20"`
	NRS1                  string   `form:"nrs1" validate:"required,score"`
	NRS2                  string   `form:"nrs2" validate:"required,score"`
	NRS3                  string   `form:"nrs3" validate:"required,score"`
	NRS4                  string   `form:"nrs4" validate:"required,score"`
	NRS5                  string   `form:"nrs5" validate:"required,score"`
	Adversity             string   `form:"a_event" validate:"required"`
	Beliefs               string   `form:"beliefs" validate:"required"`
	CognitiveDistortions  []string `form:"c_distortions" validate:"dive,distortion"`
	EmotionalConsequences []string `form:"c_consequences" validate:"dive,consequence"`
	Reactions             string   `form:"reactions" validate:"required"`
}

// ChartData holds parallel series in insertion order.
type ChartData struct {
	Dates []string `json:"dates"`
	NRS1  []int    `json:"nrs1"`
	NRS2  []int    `json:"nrs2"`
	NRS3  []int    `json:"nrs3"`
	NRS4  []int    `json:"nrs4"`
	NRS5  []int    `json:"nrs5"`
}

type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, entryID uint) (models.Entry, error)
	ListByUsername(ctx context.Context, username string) ([]models.Entry, error)
	ListByTherapist(ctx context.Context, therapistUsername string) ([]models.Entry, error)
	Delete(ctx context.Context, entryID uint) error
}

type TherapistDirectory interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]models.Therapist, error)
}

type EntryService struct {
	entries    EntryRepository
	therapists TherapistDirectory
}

func NewEntryService(entries EntryRepository, therapists TherapistDirectory) *EntryService {
	return &EntryService{
		entries:    entries,
		therapists: therapists,
	}
}

func (service *EntryService) ListTherapists(ctx context.Context) ([]models.Therapist, error) {
	return service.therapists.List(ctx)
}

// CreateEntry validates form and stores a new entry for username. Nothing is written
// unless every field is valid.
func (service *EntryService) CreateEntry(ctx context.Context, caller Identity, username string, form EntryForm) (models.Entry, error) {
	if !caller.IsPatient(username) {
		return models.Entry{}, ErrUnauthorized
	}

	fields, err := service.ParseEntryForm(ctx, username, form)
	if err != nil {
		return models.Entry{}, err
	}
	entry := models.NewEntry(fields)
	if err := service.entries.Create(ctx, &entry); err != nil {
		return models.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	return entry, nil
}

func (service *EntryService) ParseEntryForm(ctx context.Context, username string, form EntryForm) (models.EntryFields, error) {
	form = normalizeEntryForm(form)
	errs := validateForm(form)
	if errs == nil {
		errs = ValidationErrors{}
	}

	if _, failed := errs["therapist"]; !failed {
		exists, err := service.therapists.ExistsByUsername(ctx, form.Therapist)
		if err != nil {
			return models.EntryFields{}, fmt.Errorf("check therapist: %w", err)
		}
		if !exists {
			errs["therapist"] = msgUnknownTherapist
		}
	}
	if len(errs) > 0 {
		return models.EntryFields{}, errs
	}

	sessionDate, err := time.Parse(sessionDateLayout, form.Date)
	if err != nil {
		return models.EntryFields{}, ValidationErrors{"date": "Enter a date as YYYY-MM-DD."}
	}
	return models.EntryFields{
		Username:          username,
		TherapistUsername: form.Therapist,
		SessionDate:       sessionDate,
		Scores: risk.Scores{
			NRS1: mustAtoi(form.NRS1),
			NRS2: mustAtoi(form.NRS2),
			NRS3: mustAtoi(form.NRS3),
			NRS4: mustAtoi(form.NRS4),
			NRS5: mustAtoi(form.NRS5),
		},
		Adversity:             form.Adversity,
		Beliefs:               form.Beliefs,
		CognitiveDistortions:  form.CognitiveDistortions,
		EmotionalConsequences: form.EmotionalConsequences,
		Reactions:             form.Reactions,
	}, nil
}

// EntryForOwner loads an entry only for the patient who wrote it.
func (service *EntryService) EntryForOwner(ctx context.Context, caller Identity, entryID uint) (models.Entry, error) {
	entry, err := service.entries.FindByID(ctx, entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Entry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("load entry: %w", err)
	}
	if !caller.IsPatient(entry.Username) {
		return models.Entry{}, ErrUnauthorized
	}
	return entry, nil
}

func (service *EntryService) DeleteEntry(ctx context.Context, caller Identity, entryID uint) (models.Entry, error) {
	entry, err := service.EntryForOwner(ctx, caller, entryID)
	if err != nil {
		return models.Entry{}, err
	}
	if err := service.entries.Delete(ctx, entry.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Entry{}, ErrEntryNotFound
		}
		return models.Entry{}, fmt.Errorf("delete entry: %w", err)
	}
	return entry, nil
}

func (service *EntryService) ChartData(ctx context.Context, caller Identity, username string) (ChartData, error) {
	if !caller.IsPatient(username) {
		return ChartData{}, ErrUnauthorized
	}
	entries, err := service.entries.ListByUsername(ctx, username)
	if err != nil {
		return ChartData{}, fmt.Errorf("list entries: %w", err)
	}

	data := ChartData{
		Dates: make([]string, 0, len(entries)),
		NRS1:  make([]int, 0, len(entries)),
		NRS2:  make([]int, 0, len(entries)),
		NRS3:  make([]int, 0, len(entries)),
		NRS4:  make([]int, 0, len(entries)),
		NRS5:  make([]int, 0, len(entries)),
	}
	for _, entry := range entries {
		data.Dates = append(data.Dates, entry.SessionDate.Format(sessionDateLayout))
		data.NRS1 = append(data.NRS1, entry.NRS1)
		data.NRS2 = append(data.NRS2, entry.NRS2)
		data.NRS3 = append(data.NRS3, entry.NRS3)
		data.NRS4 = append(data.NRS4, entry.NRS4)
		data.NRS5 = append(data.NRS5, entry.NRS5)
	}
	return data, nil
}

func normalizeEntryForm(form EntryForm) EntryForm {
	form.Date = strings.TrimSpace(form.Date)
	form.Therapist = strings.TrimSpace(form.Therapist)
	form.NRS1 = strings.TrimSpace(form.NRS1)
	form.NRS2 = strings.TrimSpace(form.NRS2)
	form.NRS3 = strings.TrimSpace(form.NRS3)
	form.NRS4 = strings.TrimSpace(form.NRS4)
	form.NRS5 = strings.TrimSpace(form.NRS5)
	form.Adversity = strings.TrimSpace(form.Adversity)
	form.Beliefs = strings.TrimSpace(form.Beliefs)
	form.Reactions = strings.TrimSpace(form.Reactions)
	return form
}

// mustAtoi is only called on values the score validation accepted.
func mustAtoi(raw string) int {
	value, _ := strconv.Atoi(raw)
	return value
}
