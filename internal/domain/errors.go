package domain

import "errors"

// Validation and lookup errors surfaced to users as-is at the API edge.
var (
	ErrNoCredentials = errors.New("please enter all Reddit API credentials")
	ErrNoSubreddits  = errors.New("please enter at least one subreddit")
	ErrNoKeywords    = errors.New("please enter at least one keyword")
	ErrRunNotFound   = errors.New("analysis run not found")
)
