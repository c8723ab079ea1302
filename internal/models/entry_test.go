package models

import (
	"reflect"
	"testing"
	"time"

	"github.com/terraincognita07/mindnet/internal/risk"
)

func TestNewEntryDerivesRiskFlagAndFlattensTags(t *testing.T) {
	entry := NewEntry(EntryFields{
		Username:              "alice",
		TherapistUsername:     "drbob",
		SessionDate:           time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		Scores:                risk.Scores{NRS1: 40, NRS2: 40, NRS3: 40, NRS4: 10, NRS5: 34},
		Adversity:             "argument at work",
		Beliefs:               "I always fail",
		CognitiveDistortions:  []string{"Overgeneralization", "Awfulizing, Catastrophizing"},
		EmotionalConsequences: []string{"Anger", "Guilt"},
		Reactions:             "stayed in bed",
	})

	if !entry.IsAtRisk {
		t.Fatal("expected nrs5=34 to flag risk")
	}
	if entry.EmotionalConsequences != "Anger, Guilt" {
		t.Fatalf("expected flattened consequences %q, got %q", "Anger, Guilt", entry.EmotionalConsequences)
	}
	if entry.CognitiveDistortions != "Overgeneralization, Awfulizing, Catastrophizing" {
		t.Fatalf("unexpected flattened distortions %q", entry.CognitiveDistortions)
	}
	if entry.Scores() != (risk.Scores{NRS1: 40, NRS2: 40, NRS3: 40, NRS4: 10, NRS5: 34}) {
		t.Fatalf("unexpected scores %+v", entry.Scores())
	}
}

func TestNewEntryWithoutTagsStoresEmptyStrings(t *testing.T) {
	entry := NewEntry(EntryFields{Scores: risk.Scores{NRS1: 80, NRS2: 80, NRS3: 80, NRS4: 80, NRS5: 80}})
	if entry.IsAtRisk {
		t.Fatal("expected high scores not to flag risk")
	}
	if entry.CognitiveDistortions != "" || entry.EmotionalConsequences != "" {
		t.Fatalf("expected empty tag strings, got %q and %q", entry.CognitiveDistortions, entry.EmotionalConsequences)
	}
}

func TestBeforeCreateRecomputesFlagFromScores(t *testing.T) {
	entry := Entry{NRS1: 90, NRS2: 90, NRS3: 90, NRS4: 90, NRS5: 90, IsAtRisk: true}
	if err := entry.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if entry.IsAtRisk {
		t.Fatal("expected hook to clear a flag inconsistent with scores")
	}
}

func TestSplitTagsRoundTripsCatalogLabels(t *testing.T) {
	selected := []string{"Awfulizing, Catastrophizing", "If/Then, Non-sequitur", "Mental Filter"}
	flattened := JoinTags(selected)

	got := SplitTags(flattened, CognitiveDistortions())
	if !reflect.DeepEqual(got, selected) {
		t.Fatalf("expected %v, got %v", selected, got)
	}
}

func TestSplitTagsFallsBackToSeparatorForUnknownLabels(t *testing.T) {
	got := SplitTags("Anger, Boredom, Guilt", EmotionalConsequences())
	want := []string{"Anger", "Boredom", "Guilt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if len(SplitTags("", EmotionalConsequences())) != 0 {
		t.Fatal("expected no tags for empty string")
	}
}

func TestFullNameTrimsParts(t *testing.T) {
	user := User{FirstName: " Ada ", LastName: "Lovelace"}
	if user.FullName() != "Ada Lovelace" {
		t.Fatalf("unexpected full name %q", user.FullName())
	}
	therapist := Therapist{FirstName: "Carl", LastName: ""}
	if therapist.FullName() != "Carl" {
		t.Fatalf("unexpected therapist full name %q", therapist.FullName())
	}
}
