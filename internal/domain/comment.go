package domain

import "time"

// CommentRecord is one scored comment taken from a post whose title matched a
// keyword. The pipeline materializes records into flat tables, so field order
// here mirrors the table column order.
type CommentRecord struct {
	Text      string    `json:"text"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Subreddit string    `json:"subreddit"`
	Date      time.Time `json:"date"`
	Compound  float64   `json:"compound"`
	Negative  float64   `json:"neg"`
	Neutral   float64   `json:"neu"`
	Positive  float64   `json:"pos"`
	Sentiment Label     `json:"sentiment"`
}

// BaseColumns returns the column set of the raw comment tables.
// Parameters: none.
// Returns:
//   - []string: column names in output order.
func BaseColumns() []string {
	return []string{"text", "title", "url", "subreddit", "date"}
}

// SentimentColumns returns the column set of the sentiment-augmented table.
// Parameters: none.
// Returns:
//   - []string: column names in output order.
func SentimentColumns() []string {
	return append(BaseColumns(), "compound", "neg", "neu", "pos", "sentiment")
}
