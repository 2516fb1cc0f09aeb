// Package sentiment wraps the VADER lexicon model behind a small scoring
// interface so pipeline stages receive the scorer as an explicit collaborator.
package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/timmy/redsift/internal/domain"
)

// Analyzer scores text polarity with the VADER lexicon model.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer creates an Analyzer with the built-in lexicon loaded.
// Parameters: none.
// Returns:
//   - *Analyzer: ready-to-use analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Score computes polarity scores for a piece of text.
// Parameters:
//   - text: text to score; empty text scores as fully neutral.
// Returns:
//   - domain.Scores: compound score plus component proportions.
func (a *Analyzer) Score(text string) domain.Scores {
	s := a.sia.PolarityScores(text)
	return domain.Scores{
		Compound: s.Compound,
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
	}
}
