package report

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/redsift/internal/domain"
)

func sampleRecords() []domain.CommentRecord {
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return []domain.CommentRecord{
		{
			Text:      "Love it, works great",
			Title:     "Streamlit is great",
			URL:       "https://example.com/post/1",
			Subreddit: "python",
			Date:      base,
			Compound:  0.8, Positive: 0.7, Neutral: 0.3,
			Sentiment: domain.LabelPositive,
		},
		{
			Text:      "Commas, \"quotes\", and\nnewlines",
			Title:     "Streamlit is great",
			URL:       "https://example.com/post/1",
			Subreddit: "python",
			Date:      base.Add(time.Minute),
			Compound:  0, Neutral: 1,
			Sentiment: domain.LabelNeutral,
		},
		{
			Text:      "Terrible experience",
			Title:     "streamlit analysis tips",
			URL:       "https://example.com/post/2",
			Subreddit: "dataisbeautiful",
			Date:      base.Add(26 * time.Hour),
			Compound:  -0.6, Negative: 0.8, Neutral: 0.2,
			Sentiment: domain.LabelNegative,
		},
	}
}

func TestFolderLabel(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "Data_03_14_2026_09_26", FolderLabel(ts))
}

func TestWriteTablesRoundTrip(t *testing.T) {
	records := sampleRecords()
	dir := filepath.Join(t.TempDir(), "Data_03_14_2026_09_26")

	artifacts, err := WriteTables(dir, "Data_03_14_2026_09_26", records)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		path    string
		comma   rune
		columns []string
	}{
		{name: "csv", path: artifacts.CSV, comma: ',', columns: domain.BaseColumns()},
		{name: "tab", path: artifacts.Tab, comma: '\t', columns: domain.BaseColumns()},
		{name: "sentiment csv", path: artifacts.Sentiment, comma: ',', columns: domain.SentimentColumns()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := os.Open(tc.path)
			require.NoError(t, err)
			defer f.Close()

			r := csv.NewReader(f)
			r.Comma = tc.comma
			rows, err := r.ReadAll()
			require.NoError(t, err)

			// Header plus one row per record survives the round trip.
			require.Len(t, rows, len(records)+1)
			assert.Equal(t, tc.columns, rows[0])
			for _, row := range rows[1:] {
				assert.Len(t, row, len(tc.columns))
			}

			// Spot-check the awkward cell: embedded comma, quote, newline.
			assert.Equal(t, records[1].Text, rows[2][0])
		})
	}
}

func TestRenderChartsProducesPNGs(t *testing.T) {
	records := sampleRecords()
	dir := t.TempDir()

	artifacts, err := WriteTables(dir, "Data_03_14_2026_09_26", records)
	require.NoError(t, err)
	require.NoError(t, RenderCharts(artifacts, records))

	for _, path := range []string{artifacts.TimeChart, artifacts.DistChart} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Greater(t, len(data), 8)
		assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
	}
}

func TestRenderDistributionEqualCounts(t *testing.T) {
	// One comment per label: every bar has the same height, so the chart
	// cannot rely on a value-derived y-range.
	records := sampleRecords()
	path := filepath.Join(t.TempDir(), DistChartFileName)

	require.NoError(t, renderDistribution(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
}

func TestRenderChartsSingleDay(t *testing.T) {
	records := sampleRecords()[:2]
	dir := t.TempDir()

	artifacts, err := WriteTables(dir, "Data_03_14_2026_09_26", records)
	require.NoError(t, err)
	assert.NoError(t, RenderCharts(artifacts, records))
}

func TestBuildArchiveComplete(t *testing.T) {
	records := sampleRecords()
	dir := t.TempDir()

	artifacts, err := WriteTables(dir, "Data_03_14_2026_09_26", records)
	require.NoError(t, err)
	require.NoError(t, RenderCharts(artifacts, records))

	data, err := BuildArchive(artifacts.Files())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 5)

	wantNames := artifacts.Names()
	for i, zf := range zr.File {
		assert.Equal(t, wantNames[i], zf.Name)

		rc, err := zf.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		want, err := os.ReadFile(artifacts.Files()[i])
		require.NoError(t, err)
		assert.Equal(t, want, got, "archive entry %s must match on-disk bytes", zf.Name)
	}
}
