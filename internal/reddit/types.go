package reddit

import (
	"encoding/json"
	"time"
)

// Post is a submission returned from a subreddit listing.
type Post struct {
	ID        string
	Title     string
	URL       string
	Subreddit string
	Permalink string
	Created   time.Time
}

// Comment is a single comment from a post's comment tree.
type Comment struct {
	ID      string
	Body    string
	Created time.Time
}

// Reddit wire format: every payload is a "thing" with a kind tag and a
// kind-specific data blob. Kinds used here: Listing, t3 (post), t1 (comment),
// and more (collapsed comment stubs).
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
	After    string  `json:"after"`
}

type postData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

type commentData struct {
	ID         string  `json:"id"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
	// Replies is a nested Listing thing, or the empty string when the
	// comment has no replies.
	Replies json.RawMessage `json:"replies"`
}

type moreData struct {
	Children []string `json:"children"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// moreChildrenResponse is the envelope returned by /api/morechildren with
// api_type=json.
type moreChildrenResponse struct {
	JSON struct {
		Errors [][]interface{} `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

func fromUTC(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
