// Package reddit implements a read-only client for the Reddit data API using
// application-only OAuth2 (client credentials grant). It covers the two calls
// the analysis pipeline needs: recent posts of a subreddit and the fully
// expanded comment tree of a post.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAuthURL = "https://www.reddit.com"
	defaultAPIURL  = "https://oauth.reddit.com"

	// tokenSlack is subtracted from the token lifetime so a token is never
	// used right at its expiry.
	tokenSlack = 30 * time.Second

	// moreBatchSize is the maximum number of comment IDs accepted by a
	// single /api/morechildren call.
	moreBatchSize = 100
)

// Credentials holds the three strings Reddit requires for API access.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	UserAgent    string `json:"user_agent"`
}

// Complete reports whether all credential fields are present.
// Parameters: none.
// Returns:
//   - bool: true when client ID, secret, and user agent are all non-empty.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.UserAgent != ""
}

// Client is a Reddit data API client.
type Client struct {
	http    *resty.Client
	creds   Credentials
	authURL string
	apiURL  string

	token       string
	tokenExpiry time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURLs overrides the token and data API endpoints (used in tests).
// Parameters:
//   - authURL: base URL for the token exchange.
//   - apiURL: base URL for data API calls.
// Returns:
//   - Option: client option applying the override.
func WithBaseURLs(authURL, apiURL string) Option {
	return func(c *Client) {
		c.authURL = strings.TrimSuffix(authURL, "/")
		c.apiURL = strings.TrimSuffix(apiURL, "/")
	}
}

// NewClient creates a Reddit client with the given credentials.
// Parameters:
//   - creds: Reddit application credentials.
//   - opts: optional client options.
// Returns:
//   - *Client: initialized client (not yet authenticated).
func NewClient(creds Credentials, opts ...Option) *Client {
	httpClient := resty.New()
	httpClient.SetHeader("User-Agent", creds.UserAgent)
	httpClient.SetTimeout(30 * time.Second)

	c := &Client{
		http:    httpClient,
		creds:   creds,
		authURL: defaultAuthURL,
		apiURL:  defaultAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate performs the application-only OAuth2 token exchange.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - error: non-nil if the exchange fails or Reddit rejects the credentials.
func (c *Client) Authenticate(ctx context.Context) error {
	var tok tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tok).
		Post(c.authURL + "/api/v1/access_token")
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("token request failed: status %d", resp.StatusCode())
	}
	if tok.Error != "" {
		return fmt.Errorf("token request rejected: %s", tok.Error)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token response missing access_token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSlack)
	return nil
}

// ensureToken authenticates when no valid token is held.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}
	return c.Authenticate(ctx)
}

// NewPosts fetches up to limit most-recent posts of a subreddit.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - subreddit: subreddit name without the /r/ prefix.
//   - limit: maximum number of posts to return.
// Returns:
//   - []Post: posts in listing order (newest first).
//   - error: non-nil if the request or decoding fails.
func (c *Client) NewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetQueryParams(map[string]string{
			"limit":    strconv.Itoa(limit),
			"raw_json": "1",
		}).
		Get(c.apiURL + "/r/" + subreddit + "/new")
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listing request failed: status %d", resp.StatusCode())
	}

	var root thing
	if err := json.Unmarshal(resp.Body(), &root); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	var ld listingData
	if err := json.Unmarshal(root.Data, &ld); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	posts := make([]Post, 0, len(ld.Children))
	for _, child := range ld.Children {
		if child.Kind != "t3" {
			continue
		}
		var pd postData
		if err := json.Unmarshal(child.Data, &pd); err != nil {
			return nil, fmt.Errorf("failed to decode post: %w", err)
		}
		posts = append(posts, Post{
			ID:        pd.ID,
			Title:     pd.Title,
			URL:       pd.URL,
			Subreddit: pd.Subreddit,
			Permalink: pd.Permalink,
			Created:   fromUTC(pd.CreatedUTC),
		})
	}
	return posts, nil
}

// Comments fetches the full comment tree of a post, flattened to a single
// slice. Collapsed "more" nodes are expanded via /api/morechildren until no
// stubs remain.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - post: post whose comments to fetch.
// Returns:
//   - []Comment: every top-level and nested comment of the post.
//   - error: non-nil if a request or decoding fails.
func (c *Client) Comments(ctx context.Context, post Post) ([]Comment, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetQueryParams(map[string]string{
			"limit":    "500",
			"raw_json": "1",
		}).
		Get(c.apiURL + "/comments/" + post.ID)
	if err != nil {
		return nil, fmt.Errorf("comments request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("comments request failed: status %d", resp.StatusCode())
	}

	// The comments endpoint returns a two-element array: the post listing
	// followed by the comment listing.
	var envelope []thing
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode comment tree: %w", err)
	}
	if len(envelope) < 2 {
		return nil, fmt.Errorf("unexpected comment tree shape: %d listings", len(envelope))
	}

	var ld listingData
	if err := json.Unmarshal(envelope[1].Data, &ld); err != nil {
		return nil, fmt.Errorf("failed to decode comment listing: %w", err)
	}

	comments, moreIDs, err := flatten(ld.Children)
	if err != nil {
		return nil, err
	}

	expanded, err := c.expandMore(ctx, post.ID, moreIDs)
	if err != nil {
		return nil, err
	}
	return append(comments, expanded...), nil
}

// expandMore resolves collapsed comment stubs in batches until the queue is
// drained. Batches returned by Reddit may themselves contain further stubs.
func (c *Client) expandMore(ctx context.Context, postID string, ids []string) ([]Comment, error) {
	var comments []Comment

	// Reddit may re-list an ID that was already requested; skipping repeats
	// keeps the queue finite.
	seen := make(map[string]struct{}, len(ids))
	queue := make([]string, 0, len(ids))
	enqueue := func(candidates []string) {
		for _, id := range candidates {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			queue = append(queue, id)
		}
	}
	enqueue(ids)

	for len(queue) > 0 {
		batch := queue
		if len(batch) > moreBatchSize {
			batch = batch[:moreBatchSize]
		}
		queue = queue[len(batch):]

		var mcr moreChildrenResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(c.token).
			SetQueryParams(map[string]string{
				"api_type":       "json",
				"link_id":        "t3_" + postID,
				"children":       strings.Join(batch, ","),
				"limit_children": "false",
				"raw_json":       "1",
			}).
			SetResult(&mcr).
			Get(c.apiURL + "/api/morechildren")
		if err != nil {
			return nil, fmt.Errorf("morechildren request failed: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("morechildren request failed: status %d", resp.StatusCode())
		}

		batchComments, moreIDs, err := flatten(mcr.JSON.Data.Things)
		if err != nil {
			return nil, err
		}
		comments = append(comments, batchComments...)
		enqueue(moreIDs)
	}

	return comments, nil
}

// flatten walks a slice of comment-tree things depth-first, collecting t1
// comments and the IDs of "more" stubs.
func flatten(things []thing) ([]Comment, []string, error) {
	var comments []Comment
	var moreIDs []string

	for _, th := range things {
		switch th.Kind {
		case "t1":
			var cd commentData
			if err := json.Unmarshal(th.Data, &cd); err != nil {
				return nil, nil, fmt.Errorf("failed to decode comment: %w", err)
			}
			comments = append(comments, Comment{
				ID:      cd.ID,
				Body:    cd.Body,
				Created: fromUTC(cd.CreatedUTC),
			})

			// Replies is "" for leaf comments, a Listing thing otherwise.
			if len(cd.Replies) > 0 && cd.Replies[0] == '{' {
				var replyThing thing
				if err := json.Unmarshal(cd.Replies, &replyThing); err != nil {
					return nil, nil, fmt.Errorf("failed to decode replies: %w", err)
				}
				var replyListing listingData
				if err := json.Unmarshal(replyThing.Data, &replyListing); err != nil {
					return nil, nil, fmt.Errorf("failed to decode replies: %w", err)
				}
				nested, nestedMore, err := flatten(replyListing.Children)
				if err != nil {
					return nil, nil, err
				}
				comments = append(comments, nested...)
				moreIDs = append(moreIDs, nestedMore...)
			}
		case "more":
			var md moreData
			if err := json.Unmarshal(th.Data, &md); err != nil {
				return nil, nil, fmt.Errorf("failed to decode more stub: %w", err)
			}
			moreIDs = append(moreIDs, md.Children...)
		}
	}

	return comments, moreIDs, nil
}
