package domain

// Label is the sentiment class assigned to a comment.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// Labels returns all labels in display order (positive, neutral, negative).
func Labels() []Label {
	return []Label{LabelPositive, LabelNeutral, LabelNegative}
}

// Scores holds the lexicon polarity scores for one piece of text.
// Compound is in [-1,1]; the component scores are proportions in [0,1].
type Scores struct {
	Compound float64 `json:"compound"`
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
}

// Compound score thresholds for classification. A compound score exactly on a
// threshold takes the positive/negative label, not neutral.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Classify maps a compound score to a sentiment label.
// Parameters:
//   - compound: aggregate polarity score in [-1,1].
// Returns:
//   - Label: positive when compound >= 0.05, negative when compound <= -0.05,
//     neutral otherwise.
func Classify(compound float64) Label {
	switch {
	case compound >= PositiveThreshold:
		return LabelPositive
	case compound <= NegativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
