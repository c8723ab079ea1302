package risk

const (
	MinScore = 0
	MaxScore = 100

	// Threshold is inclusive for nrs1..nrs3 and exclusive for nrs5. nrs4 does not participate.
	Threshold = 35
)

// Scores holds the five numeric rating scale answers of one session.
type Scores struct {
	NRS1 int
	NRS2 int
	NRS3 int
	NRS4 int
	NRS5 int
}

// Evaluate reports whether a session should be flagged as at risk.
func Evaluate(scores Scores) bool {
	return scores.NRS1 <= Threshold ||
		scores.NRS2 <= Threshold ||
		scores.NRS3 <= Threshold ||
		scores.NRS5 < Threshold
}

func InRange(score int) bool {
	return score >= MinScore && score <= MaxScore
}
