package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		compound float64
		want     Label
	}{
		{name: "strongly positive", compound: 0.9, want: LabelPositive},
		{name: "exactly positive threshold", compound: 0.05, want: LabelPositive},
		{name: "just below positive threshold", compound: 0.049999, want: LabelNeutral},
		{name: "zero", compound: 0, want: LabelNeutral},
		{name: "just above negative threshold", compound: -0.049999, want: LabelNeutral},
		{name: "exactly negative threshold", compound: -0.05, want: LabelNegative},
		{name: "strongly negative", compound: -1, want: LabelNegative},
		{name: "maximum compound", compound: 1, want: LabelPositive},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.compound))
		})
	}
}

func TestSentimentColumns(t *testing.T) {
	base := BaseColumns()
	full := SentimentColumns()

	assert.Equal(t, []string{"text", "title", "url", "subreddit", "date"}, base)
	assert.Equal(t, base, full[:len(base)])
	assert.Equal(t, []string{"compound", "neg", "neu", "pos", "sentiment"}, full[len(base):])
}
