// Package report materializes comment records into the run's flat-file
// artifacts: comma/tab separated tables, summary charts, and the downloadable
// archive.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/timmy/redsift/internal/domain"
)

// Fixed artifact names inside a run folder. The raw tables are named after the
// folder itself.
const (
	SentimentFileName = "sentiment_analysis_results.csv"
	TimeChartFileName = "sentiment_over_time.png"
	DistChartFileName = "sentiment_distribution.png"
)

// dateLayout is the timestamp format used in table cells.
const dateLayout = "2006-01-02 15:04:05"

// FolderLabel builds the minute-resolution run folder name for a timestamp.
// Two runs within the same minute share a label.
// Parameters:
//   - t: run start time.
// Returns:
//   - string: folder name, e.g. Data_03_14_2026_09_26.
func FolderLabel(t time.Time) string {
	return t.Format("Data_01_02_2006_15_04")
}

// ArchiveName returns the archive file name for a run label.
func ArchiveName(label string) string {
	return label + ".zip"
}

// Artifacts lists the on-disk output files of one run.
type Artifacts struct {
	Dir       string
	CSV       string
	Tab       string
	Sentiment string
	TimeChart string
	DistChart string
}

// Files returns the artifact paths in archive order.
// Parameters: none.
// Returns:
//   - []string: the five artifact paths.
func (a Artifacts) Files() []string {
	return []string{a.CSV, a.Tab, a.Sentiment, a.TimeChart, a.DistChart}
}

// Names returns the artifact base names in archive order.
func (a Artifacts) Names() []string {
	files := a.Files()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return names
}

// WriteTables writes the raw CSV and TSV tables plus the sentiment-augmented
// CSV into dir, which is created if missing.
// Parameters:
//   - dir: run output directory.
//   - label: run folder label used for the raw table file names.
//   - records: scored comment records to materialize.
// Returns:
//   - Artifacts: paths of the written tables (chart paths filled in but not
//     yet rendered).
//   - error: non-nil if directory creation or a write fails.
func WriteTables(dir, label string, records []domain.CommentRecord) (Artifacts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Artifacts{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	a := Artifacts{
		Dir:       dir,
		CSV:       filepath.Join(dir, label+".csv"),
		Tab:       filepath.Join(dir, label+".tab"),
		Sentiment: filepath.Join(dir, SentimentFileName),
		TimeChart: filepath.Join(dir, TimeChartFileName),
		DistChart: filepath.Join(dir, DistChartFileName),
	}

	if err := writeTable(a.CSV, ',', domain.BaseColumns(), records, baseRow); err != nil {
		return Artifacts{}, err
	}
	if err := writeTable(a.Tab, '\t', domain.BaseColumns(), records, baseRow); err != nil {
		return Artifacts{}, err
	}
	if err := writeTable(a.Sentiment, ',', domain.SentimentColumns(), records, sentimentRow); err != nil {
		return Artifacts{}, err
	}
	return a, nil
}

func writeTable(path string, comma rune, columns []string, records []domain.CommentRecord, row func(domain.CommentRecord) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = comma

	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", filepath.Base(path), err)
	}
	for _, rec := range records {
		if err := w.Write(row(rec)); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", filepath.Base(path), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func baseRow(rec domain.CommentRecord) []string {
	return []string{
		rec.Text,
		rec.Title,
		rec.URL,
		rec.Subreddit,
		rec.Date.Format(dateLayout),
	}
}

func sentimentRow(rec domain.CommentRecord) []string {
	return append(baseRow(rec),
		formatScore(rec.Compound),
		formatScore(rec.Negative),
		formatScore(rec.Neutral),
		formatScore(rec.Positive),
		string(rec.Sentiment),
	)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
