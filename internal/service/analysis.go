// Package service orchestrates the analysis pipeline: fetch posts, filter by
// title keywords, score comments, persist tables and charts, and package the
// run archive. All external collaborators are injected so each stage is
// testable in isolation.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/redsift/internal/domain"
	"github.com/timmy/redsift/internal/logger"
	"github.com/timmy/redsift/internal/reddit"
	"github.com/timmy/redsift/internal/report"
	"github.com/timmy/redsift/internal/storage"
)

// ErrClientInit marks a failed Reddit client initialization (credential
// rejection or unreachable token endpoint). The run halts before any fetch.
var ErrClientInit = errors.New("failed to initialize Reddit client")

// RedditClient is the subset of the Reddit API client the pipeline needs.
type RedditClient interface {
	Authenticate(ctx context.Context) error
	NewPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
	Comments(ctx context.Context, post reddit.Post) ([]reddit.Comment, error)
}

// ClientFactory builds a Reddit client for a set of credentials. Credentials
// arrive per request, so the client cannot be a process-wide singleton.
type ClientFactory func(creds reddit.Credentials) RedditClient

// Scorer computes polarity scores for a piece of text.
type Scorer interface {
	Score(text string) domain.Scores
}

// RunStore is the run registry surface used by the pipeline.
type RunStore interface {
	Create(ctx context.Context, run *domain.AnalysisRun) error
	Update(ctx context.Context, run *domain.AnalysisRun) error
	GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error)
	List(ctx context.Context, limit int) ([]domain.AnalysisRun, error)
}

// AnalysisConfig holds configuration for the analysis service.
type AnalysisConfig struct {
	PostLimit  int
	OutputRoot string
}

// AnalysisService runs the end-to-end pipeline.
type AnalysisService struct {
	newClient ClientFactory
	scorer    Scorer
	runs      RunStore
	store     storage.ObjectStorage
	logger    *logger.Logger
	postLimit int
	outputDir string
}

// NewAnalysisService creates a new analysis service.
// Parameters:
//   - newClient: factory for per-request Reddit clients.
//   - scorer: sentiment scorer.
//   - runs: run registry.
//   - store: archive storage backend.
//   - log: base logger.
//   - cfg: analysis configuration.
// Returns:
//   - *AnalysisService: initialized service.
func NewAnalysisService(
	newClient ClientFactory,
	scorer Scorer,
	runs RunStore,
	store storage.ObjectStorage,
	log *logger.Logger,
	cfg *AnalysisConfig,
) *AnalysisService {
	postLimit := cfg.PostLimit
	if postLimit <= 0 {
		postLimit = 50
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &AnalysisService{
		newClient: newClient,
		scorer:    scorer,
		runs:      runs,
		store:     store,
		logger:    log,
		postLimit: postLimit,
		outputDir: cfg.OutputRoot,
	}
}

// log returns a logger from context if available, otherwise the service logger.
func (s *AnalysisService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// RunRequest describes one analysis run.
type RunRequest struct {
	Credentials reddit.Credentials
	Subreddits  []string
	Keywords    []string
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID     string                 `json:"run_id"`
	Label     string                 `json:"label,omitempty"`
	OutputDir string                 `json:"output_dir,omitempty"`
	Total     int                    `json:"total_comments"`
	Positive  int                    `json:"positive_count"`
	Negative  int                    `json:"negative_count"`
	Neutral   int                    `json:"neutral_count"`
	Warnings  []string               `json:"warnings,omitempty"`
	Artifacts []string               `json:"artifacts,omitempty"`
	// ArchiveURL is the storage-backend location of the run archive: a
	// filesystem path for local storage, a public URL for S3/R2.
	ArchiveURL string `json:"archive_url,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Records   []domain.CommentRecord `json:"records,omitempty"`
}

// Run executes the full pipeline for one request.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: credentials, subreddits, and keywords for this run.
// Returns:
//   - *RunResult: run summary including per-label counts and warnings.
//   - error: validation errors (domain sentinels), client initialization
//     failure, or artifact write failure. Per-subreddit fetch errors do not
//     fail the run; they surface as warnings on the result.
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if !req.Credentials.Complete() {
		return nil, domain.ErrNoCredentials
	}
	if len(req.Subreddits) == 0 {
		return nil, domain.ErrNoSubreddits
	}
	if len(req.Keywords) == 0 {
		return nil, domain.ErrNoKeywords
	}

	client := s.newClient(req.Credentials)
	if err := client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientInit, err)
	}

	run := &domain.AnalysisRun{
		ID:         uuid.New().String(),
		Label:      report.FolderLabel(time.Now()),
		Subreddits: req.Subreddits,
		Keywords:   req.Keywords,
		Status:     domain.RunStatusRunning,
	}
	ctx = logger.SetRunID(ctx, run.ID)
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}

	start := time.Now()
	s.log(ctx).WithFields(logger.Fields{
		"subreddits": len(req.Subreddits),
		"keywords":   len(req.Keywords),
	}).Info("Starting analysis run")

	records, warnings := s.collect(ctx, client, req)
	s.score(records)

	result := &RunResult{
		RunID:    run.ID,
		Warnings: warnings,
		Records:  records,
	}
	run.Warnings = warnings

	if len(records) == 0 {
		result.Message = "No comments were found matching the specified keywords."
		s.finishRun(ctx, run, domain.RunStatusEmpty)
		return result, nil
	}

	for _, rec := range records {
		result.Total++
		switch rec.Sentiment {
		case domain.LabelPositive:
			result.Positive++
		case domain.LabelNegative:
			result.Negative++
		default:
			result.Neutral++
		}
	}

	artifacts, archiveKey, err := s.persist(ctx, run.Label, records)
	if err != nil {
		s.finishRun(ctx, run, domain.RunStatusFailed)
		return nil, err
	}

	result.Label = run.Label
	result.OutputDir = artifacts.Dir
	result.Artifacts = artifacts.Names()
	result.ArchiveURL = s.store.GetURL(archiveKey)

	run.TotalComments = result.Total
	run.PositiveCount = result.Positive
	run.NegativeCount = result.Negative
	run.NeutralCount = result.Neutral
	run.OutputDir = artifacts.Dir
	run.ArchiveKey = archiveKey
	s.finishRun(ctx, run, domain.RunStatusCompleted)

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      result.Total,
		logger.FieldStatus:     string(run.Status),
	}).Info(ctx, "Analysis run completed: label=%s", run.Label)

	return result, nil
}

// collect fetches and filters comments for every requested subreddit. A
// failing subreddit contributes a warning and no records.
func (s *AnalysisService) collect(ctx context.Context, client RedditClient, req RunRequest) ([]domain.CommentRecord, []string) {
	var records []domain.CommentRecord
	var warnings []string

	for _, name := range req.Subreddits {
		subCtx := logger.SetSubreddit(ctx, name)
		collected, err := s.collectSubreddit(subCtx, client, name, req.Keywords)
		if err != nil {
			s.log(subCtx).WithError(err).Warn("Subreddit fetch failed")
			warnings = append(warnings, fmt.Sprintf("Error processing subreddit '%s': %v", name, err))
			continue
		}
		records = append(records, collected...)
	}

	return records, warnings
}

// collectSubreddit returns all comment records of one subreddit, or an error
// and no records when any fetch within it fails.
func (s *AnalysisService) collectSubreddit(ctx context.Context, client RedditClient, name string, keywords []string) ([]domain.CommentRecord, error) {
	posts, err := client.NewPosts(ctx, name, s.postLimit)
	if err != nil {
		return nil, err
	}

	var records []domain.CommentRecord
	matched := 0
	for _, post := range posts {
		if !TitleMatches(post.Title, keywords) {
			continue
		}
		matched++

		comments, err := client.Comments(ctx, post)
		if err != nil {
			return nil, err
		}
		for _, comment := range comments {
			records = append(records, domain.CommentRecord{
				Text:      comment.Body,
				Title:     post.Title,
				URL:       post.URL,
				Subreddit: name,
				Date:      comment.Created,
			})
		}
	}

	s.log(ctx).WithFields(logger.Fields{
		"posts":    len(posts),
		"matched":  matched,
		"comments": len(records),
	}).Info("Subreddit processed")

	return records, nil
}

// score fills in polarity scores and labels in place.
func (s *AnalysisService) score(records []domain.CommentRecord) {
	for i := range records {
		scores := s.scorer.Score(records[i].Text)
		records[i].Compound = scores.Compound
		records[i].Negative = scores.Negative
		records[i].Neutral = scores.Neutral
		records[i].Positive = scores.Positive
		records[i].Sentiment = domain.Classify(scores.Compound)
	}
}

// persist writes tables and charts into the run folder, builds the archive in
// memory, and uploads it to storage.
func (s *AnalysisService) persist(ctx context.Context, label string, records []domain.CommentRecord) (report.Artifacts, string, error) {
	dir := filepath.Join(s.outputDir, label)

	artifacts, err := report.WriteTables(dir, label, records)
	if err != nil {
		return report.Artifacts{}, "", err
	}
	if err := report.RenderCharts(artifacts, records); err != nil {
		return report.Artifacts{}, "", err
	}

	data, err := report.BuildArchive(artifacts.Files())
	if err != nil {
		return report.Artifacts{}, "", err
	}

	archiveKey := report.ArchiveName(label)
	if err := s.store.Upload(ctx, archiveKey, bytes.NewReader(data), int64(len(data)), report.ArchiveContentType); err != nil {
		return report.Artifacts{}, "", fmt.Errorf("failed to store archive: %w", err)
	}

	return artifacts, archiveKey, nil
}

// finishRun stamps the terminal status on the registry row. Registry write
// failures are logged, not propagated: the artifacts already exist.
func (s *AnalysisService) finishRun(ctx context.Context, run *domain.AnalysisRun, status domain.RunStatus) {
	now := time.Now()
	run.Status = status
	run.CompletedAt = &now
	if err := s.runs.Update(ctx, run); err != nil {
		s.log(ctx).WithError(err).Error("Failed to update run registry")
	}
}

// TitleMatches reports whether a post title contains any keyword,
// case-insensitive substring match.
// Parameters:
//   - title: post title.
//   - keywords: keyword list; empty keywords never match.
// Returns:
//   - bool: true when at least one keyword occurs in the title.
func TitleMatches(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// GetRun returns one run from the registry.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
// Returns:
//   - *domain.AnalysisRun: run record.
//   - error: domain.ErrRunNotFound when missing.
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns past runs, newest first.
func (s *AnalysisService) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	return s.runs.List(ctx, limit)
}

// OpenArchive loads the archive of a completed run from storage.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
// Returns:
//   - []byte: archive content.
//   - string: archive file name.
//   - error: domain.ErrRunNotFound when the run or its archive is missing.
func (s *AnalysisService) OpenArchive(ctx context.Context, id string) ([]byte, string, error) {
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if run.ArchiveKey == "" {
		return nil, "", domain.ErrRunNotFound
	}

	rc, err := s.store.Download(ctx, run.ArchiveKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read archive: %w", err)
	}
	return data, run.ArchiveKey, nil
}

// ChartFile resolves the on-disk path of a run's chart by artifact name.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
//   - name: report.TimeChartFileName or report.DistChartFileName.
// Returns:
//   - string: chart path.
//   - error: domain.ErrRunNotFound for missing runs or unknown names.
func (s *AnalysisService) ChartFile(ctx context.Context, id, name string) (string, error) {
	if name != report.TimeChartFileName && name != report.DistChartFileName {
		return "", domain.ErrRunNotFound
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if run.OutputDir == "" {
		return "", domain.ErrRunNotFound
	}
	return filepath.Join(run.OutputDir, name), nil
}
