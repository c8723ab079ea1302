package models

func CognitiveDistortions() []string {
	return []string{
		"All-or-Nothing Thinking / Polarized Thinking",
		"Awfulizing, Catastrophizing",
		"Overgeneralization",
		"Mental Filter",
		"Disqualifying the Positive",
		"Jumping to Conclusions – Mind Reading",
		"Jumping to Conclusions – Fortune Telling",
		"Magnification (Catastrophizing) or Minimization",
		"Emotional Reasoning",
		"Should Statements",
		"Labeling and Mislabeling",
		"Personalization",
		"Control Fallacies",
		"Fallacy of Fairness",
		"Fallacy of Change",
		"Always Being Right",
		"If/Then, Non-sequitur",
	}
}

func EmotionalConsequences() []string {
	return []string{
		"Anger",
		"Anxiety",
		"Depression",
		"Guilt",
		"Shame",
		"Resentment",
		"Jealousy",
		"Panic",
	}
}

func IsCatalogTag(catalog []string, tag string) bool {
	for _, label := range catalog {
		if label == tag {
			return true
		}
	}
	return false
}
