package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/redsift/internal/domain"
	"github.com/timmy/redsift/internal/reddit"
	"github.com/timmy/redsift/internal/storage"
)

// stubClient serves canned posts/comments and can fail whole subreddits.
type stubClient struct {
	posts    map[string][]reddit.Post
	comments map[string][]reddit.Comment
	failing  map[string]error
	authErr  error
}

func (c *stubClient) Authenticate(ctx context.Context) error { return c.authErr }

func (c *stubClient) NewPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	if err := c.failing[subreddit]; err != nil {
		return nil, err
	}
	return c.posts[subreddit], nil
}

func (c *stubClient) Comments(ctx context.Context, post reddit.Post) ([]reddit.Comment, error) {
	return c.comments[post.ID], nil
}

// stubScorer scores by crude word lookup so label distribution is predictable.
type stubScorer struct{}

func (stubScorer) Score(text string) domain.Scores {
	switch text {
	case "good":
		return domain.Scores{Compound: 0.8, Positive: 1}
	case "bad":
		return domain.Scores{Compound: -0.8, Negative: 1}
	default:
		return domain.Scores{Neutral: 1}
	}
}

// memoryRunStore is an in-memory RunStore.
type memoryRunStore struct {
	runs map[string]*domain.AnalysisRun
}

func newMemoryRunStore() *memoryRunStore {
	return &memoryRunStore{runs: make(map[string]*domain.AnalysisRun)}
}

func (s *memoryRunStore) Create(ctx context.Context, run *domain.AnalysisRun) error {
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *memoryRunStore) Update(ctx context.Context, run *domain.AnalysisRun) error {
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *memoryRunStore) GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (s *memoryRunStore) List(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	var out []domain.AnalysisRun
	for _, run := range s.runs {
		out = append(out, *run)
	}
	return out, nil
}

func newTestService(t *testing.T, client RedditClient) (*AnalysisService, *memoryRunStore, string) {
	t.Helper()

	outputRoot := t.TempDir()
	store, err := storage.NewLocalStorage(filepath.Join(outputRoot, "archives"))
	require.NoError(t, err)

	runs := newMemoryRunStore()
	svc := NewAnalysisService(
		func(creds reddit.Credentials) RedditClient { return client },
		stubScorer{},
		runs,
		store,
		nil,
		&AnalysisConfig{PostLimit: 50, OutputRoot: outputRoot},
	)
	return svc, runs, outputRoot
}

func validRequest() RunRequest {
	return RunRequest{
		Credentials: reddit.Credentials{ClientID: "id", ClientSecret: "secret", UserAgent: "agent"},
		Subreddits:  []string{"python"},
		Keywords:    []string{"streamlit"},
	}
}

func TestTitleMatches(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		keywords []string
		want     bool
	}{
		{name: "exact keyword present", title: "Streamlit is great", keywords: []string{"streamlit"}, want: true},
		{name: "keyword absent", title: "Django rocks", keywords: []string{"streamlit"}, want: false},
		{name: "case insensitive", title: "STREAMLIT tips", keywords: []string{"StReAmLiT"}, want: true},
		{name: "substring match", title: "my streamlitapp demo", keywords: []string{"streamlit"}, want: true},
		{name: "second keyword matches", title: "sentiment analysis 101", keywords: []string{"streamlit", "analysis"}, want: true},
		{name: "empty keywords never match", title: "anything", keywords: nil, want: false},
		{name: "blank keyword ignored", title: "anything", keywords: []string{"  "}, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TitleMatches(tc.title, tc.keywords))
		})
	}
}

func TestRunValidation(t *testing.T) {
	svc, _, _ := newTestService(t, &stubClient{})

	testCases := []struct {
		name    string
		mutate  func(*RunRequest)
		wantErr error
	}{
		{name: "missing credentials", mutate: func(r *RunRequest) { r.Credentials.ClientSecret = "" }, wantErr: domain.ErrNoCredentials},
		{name: "missing subreddits", mutate: func(r *RunRequest) { r.Subreddits = nil }, wantErr: domain.ErrNoSubreddits},
		{name: "missing keywords", mutate: func(r *RunRequest) { r.Keywords = nil }, wantErr: domain.ErrNoKeywords},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Run(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRunClientInitFailure(t *testing.T) {
	svc, _, _ := newTestService(t, &stubClient{authErr: errors.New("401 unauthorized")})

	_, err := svc.Run(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrClientInit)
}

func TestRunRecordCountInvariant(t *testing.T) {
	now := time.Now()
	client := &stubClient{
		posts: map[string][]reddit.Post{
			"python": {
				{ID: "p1", Title: "Streamlit is great", URL: "https://example.com/1", Subreddit: "python", Created: now},
				{ID: "p2", Title: "Django rocks", URL: "https://example.com/2", Subreddit: "python", Created: now},
				{ID: "p3", Title: "streamlit analysis tips", URL: "https://example.com/3", Subreddit: "python", Created: now},
			},
		},
		comments: map[string][]reddit.Comment{
			"p1": {{ID: "c1", Body: "good", Created: now}, {ID: "c2", Body: "bad", Created: now}},
			"p2": {{ID: "c3", Body: "never counted", Created: now}},
			"p3": {{ID: "c4", Body: "meh", Created: now.Add(25 * time.Hour)}},
		},
	}
	svc, runs, _ := newTestService(t, client)

	result, err := svc.Run(context.Background(), validRequest())
	require.NoError(t, err)

	// Row count equals the comment total of matched posts only.
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Positive)
	assert.Equal(t, 1, result.Negative)
	assert.Equal(t, 1, result.Neutral)
	assert.Empty(t, result.Warnings)
	assert.Equal(t,
		[]string{result.Label + ".csv", result.Label + ".tab", "sentiment_analysis_results.csv", "sentiment_over_time.png", "sentiment_distribution.png"},
		result.Artifacts)

	for _, name := range result.Artifacts[:3] {
		_, err := os.Stat(filepath.Join(result.OutputDir, name))
		assert.NoError(t, err, "artifact %s must exist", name)
	}

	run, err := runs.GetByID(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.TotalComments)
	assert.NotEmpty(t, run.ArchiveKey)

	// The result points at the stored archive; for local storage that is an
	// on-disk path.
	require.NotEmpty(t, result.ArchiveURL)
	_, err = os.Stat(result.ArchiveURL)
	assert.NoError(t, err)
}

func TestRunNoMatchesWritesNothing(t *testing.T) {
	now := time.Now()
	client := &stubClient{
		posts: map[string][]reddit.Post{
			"python": {{ID: "p1", Title: "Django rocks", Subreddit: "python", Created: now}},
		},
		comments: map[string][]reddit.Comment{
			"p1": {{ID: "c1", Body: "good", Created: now}},
		},
	}
	svc, runs, outputRoot := newTestService(t, client)

	result, err := svc.Run(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Zero(t, result.Total)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, result.Artifacts)

	// Only the archive storage directory exists under the output root.
	entries, err := os.ReadDir(outputRoot)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "archives", entries[0].Name())

	run, err := runs.GetByID(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusEmpty, run.Status)
}

func TestRunContinuesPastFailingSubreddit(t *testing.T) {
	now := time.Now()
	client := &stubClient{
		posts: map[string][]reddit.Post{
			"golang": {{ID: "p1", Title: "streamlit in production", URL: "https://example.com/1", Subreddit: "golang", Created: now}},
		},
		comments: map[string][]reddit.Comment{
			"p1": {{ID: "c1", Body: "good", Created: now}},
		},
		failing: map[string]error{"python": errors.New("received 403")},
	}
	svc, _, _ := newTestService(t, client)

	req := validRequest()
	req.Subreddits = []string{"python", "golang"}

	result, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "python")
}
