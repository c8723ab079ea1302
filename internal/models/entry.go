package models

import (
	"time"

	"github.com/terraincognita07/mindnet/internal/risk"
	"gorm.io/gorm"
)

type Entry struct {
	ID                    uint      `gorm:"primaryKey"`
	Username              string    `gorm:"size:20;not null;index"`
	TherapistUsername     string    `gorm:"size:20;not null;index"`
	Therapist             Therapist `gorm:"foreignKey:TherapistUsername;references:Username;constraint:OnDelete:RESTRICT"`
	SessionDate           time.Time `gorm:"type:date;not null"`
	NRS1                  int       `gorm:"column:nrs1;not null"`
	NRS2                  int       `gorm:"column:nrs2;not null"`
	NRS3                  int       `gorm:"column:nrs3;not null"`
	NRS4                  int       `gorm:"column:nrs4;not null"`
	NRS5                  int       `gorm:"column:nrs5;not null"`
	Adversity             string    `gorm:"type:text;not null"`
	Beliefs               string    `gorm:"type:text;not null"`
	CognitiveDistortions  string    `gorm:"type:text;not null"`
	EmotionalConsequences string    `gorm:"type:text;not null"`
	Reactions             string    `gorm:"type:text;not null"`
	IsAtRisk              bool      `gorm:"not null"`
	CreatedAt             time.Time
}

// EntryFields carries everything an entry is built from. The risk flag is not part of it.
type EntryFields struct {
	Username              string
	TherapistUsername     string
	SessionDate           time.Time
	Scores                risk.Scores
	Adversity             string
	Beliefs               string
	CognitiveDistortions  []string
	EmotionalConsequences []string
	Reactions             string
}

// NewEntry builds an entry and derives IsAtRisk from its scores.
func NewEntry(fields EntryFields) Entry {
	return Entry{
		Username:              fields.Username,
		TherapistUsername:     fields.TherapistUsername,
		SessionDate:           fields.SessionDate,
		NRS1:                  fields.Scores.NRS1,
		NRS2:                  fields.Scores.NRS2,
		NRS3:                  fields.Scores.NRS3,
		NRS4:                  fields.Scores.NRS4,
		NRS5:                  fields.Scores.NRS5,
		Adversity:             fields.Adversity,
		Beliefs:               fields.Beliefs,
		CognitiveDistortions:  JoinTags(fields.CognitiveDistortions),
		EmotionalConsequences: JoinTags(fields.EmotionalConsequences),
		Reactions:             fields.Reactions,
		IsAtRisk:              risk.Evaluate(fields.Scores),
	}
}

func (entry Entry) Scores() risk.Scores {
	return risk.Scores{
		NRS1: entry.NRS1,
		NRS2: entry.NRS2,
		NRS3: entry.NRS3,
		NRS4: entry.NRS4,
		NRS5: entry.NRS5,
	}
}

// BeforeCreate keeps the stored flag consistent with the stored scores.
func (entry *Entry) BeforeCreate(tx *gorm.DB) error {
	entry.IsAtRisk = risk.Evaluate(entry.Scores())
	return nil
}
