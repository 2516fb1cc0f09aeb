package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	ClientID:     "test-id",
	ClientSecret: "test-secret",
	UserAgent:    "redsift-test/0.1",
}

// newTestServer serves the token endpoint plus any handlers the test
// registers, and fails the test on unauthenticated data API calls.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != testCreds.ClientID || secret != testCreds.ClientSecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		writeJSON(t, w, map[string]any{
			"access_token": "tok-123",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})

	for pattern, fn := range routes {
		h := fn
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-123" {
				t.Errorf("data API call without bearer token: %s", r.URL.Path)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(testCreds, WithBaseURLs(srv.URL, srv.URL))
}

func TestAuthenticate(t *testing.T) {
	srv := newTestServer(t, nil)
	client := newTestClient(srv)

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, "tok-123", client.token)
	assert.False(t, client.tokenExpiry.IsZero())
}

func TestAuthenticateRejectedCredentials(t *testing.T) {
	srv := newTestServer(t, nil)
	client := NewClient(Credentials{
		ClientID:     "wrong",
		ClientSecret: "wrong",
		UserAgent:    "redsift-test/0.1",
	}, WithBaseURLs(srv.URL, srv.URL))

	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAuthenticateErrorBody(t *testing.T) {
	// Reddit reports bad grant parameters with a 200 and an error field.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"error": "unsupported_grant_type"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(srv)
	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported_grant_type")
}

func TestNewPosts(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/r/python/new": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "25", r.URL.Query().Get("limit"))
			writeJSON(t, w, map[string]any{
				"kind": "Listing",
				"data": map[string]any{
					"children": []any{
						map[string]any{
							"kind": "t3",
							"data": map[string]any{
								"id":          "abc123",
								"title":       "Streamlit dashboard tips",
								"url":         "https://example.com/post",
								"subreddit":   "python",
								"permalink":   "/r/python/comments/abc123/",
								"created_utc": 1718445000.0,
							},
						},
						map[string]any{
							"kind": "t3",
							"data": map[string]any{
								"id":          "def456",
								"title":       "Weekly thread",
								"subreddit":   "python",
								"created_utc": 1718444000.0,
							},
						},
					},
				},
			})
		},
	})

	client := newTestClient(srv)
	posts, err := client.NewPosts(context.Background(), "python", 25)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "abc123", posts[0].ID)
	assert.Equal(t, "Streamlit dashboard tips", posts[0].Title)
	assert.Equal(t, "python", posts[0].Subreddit)
	assert.Equal(t, int64(1718445000), posts[0].Created.Unix())
	assert.Equal(t, "UTC", posts[0].Created.Location().String())
}

func TestCommentsFlattensNestedReplies(t *testing.T) {
	reply := map[string]any{
		"kind": "Listing",
		"data": map[string]any{
			"children": []any{
				map[string]any{
					"kind": "t1",
					"data": map[string]any{
						"id":          "c2",
						"body":        "nested reply",
						"created_utc": 1718445100.0,
						"replies":     "",
					},
				},
			},
		},
	}

	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/comments/abc123": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []any{
				map[string]any{"kind": "Listing", "data": map[string]any{"children": []any{}}},
				map[string]any{
					"kind": "Listing",
					"data": map[string]any{
						"children": []any{
							map[string]any{
								"kind": "t1",
								"data": map[string]any{
									"id":          "c1",
									"body":        "top level comment",
									"created_utc": 1718445050.0,
									"replies":     reply,
								},
							},
						},
					},
				},
			})
		},
	})

	client := newTestClient(srv)
	comments, err := client.Comments(context.Background(), Post{ID: "abc123"})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "top level comment", comments[0].Body)
	assert.Equal(t, "nested reply", comments[1].Body)
}

func TestCommentsExpandsMoreStubs(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/comments/abc123": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []any{
				map[string]any{"kind": "Listing", "data": map[string]any{"children": []any{}}},
				map[string]any{
					"kind": "Listing",
					"data": map[string]any{
						"children": []any{
							map[string]any{
								"kind": "t1",
								"data": map[string]any{
									"id":          "c1",
									"body":        "visible comment",
									"created_utc": 1718445050.0,
									"replies":     "",
								},
							},
							map[string]any{
								"kind": "more",
								"data": map[string]any{
									"children": []any{"c2", "c3"},
								},
							},
						},
					},
				},
			})
		},
		"/api/morechildren": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "json", r.URL.Query().Get("api_type"))
			assert.Equal(t, "t3_abc123", r.URL.Query().Get("link_id"))
			assert.Equal(t, []string{"c2", "c3"}, strings.Split(r.URL.Query().Get("children"), ","))
			writeJSON(t, w, map[string]any{
				"json": map[string]any{
					"errors": []any{},
					"data": map[string]any{
						"things": []any{
							map[string]any{
								"kind": "t1",
								"data": map[string]any{
									"id":          "c2",
									"body":        "collapsed comment",
									"created_utc": 1718445200.0,
									"replies":     "",
								},
							},
							map[string]any{
								"kind": "t1",
								"data": map[string]any{
									"id":          "c3",
									"body":        "another collapsed comment",
									"created_utc": 1718445300.0,
									"replies":     "",
								},
							},
						},
					},
				},
			})
		},
	})

	client := newTestClient(srv)
	comments, err := client.Comments(context.Background(), Post{ID: "abc123"})
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "visible comment", comments[0].Body)
	assert.Equal(t, "collapsed comment", comments[1].Body)
	assert.Equal(t, "another collapsed comment", comments[2].Body)
}

func TestCommentsMoreStubRepeatsTerminate(t *testing.T) {
	moreCalls := 0
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/comments/abc123": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, []any{
				map[string]any{"kind": "Listing", "data": map[string]any{"children": []any{}}},
				map[string]any{
					"kind": "Listing",
					"data": map[string]any{
						"children": []any{
							map[string]any{
								"kind": "more",
								"data": map[string]any{
									"children": []any{"c2"},
								},
							},
						},
					},
				},
			})
		},
		// Re-lists c2 as a further stub; the client must not request it again.
		"/api/morechildren": func(w http.ResponseWriter, r *http.Request) {
			moreCalls++
			writeJSON(t, w, map[string]any{
				"json": map[string]any{
					"errors": []any{},
					"data": map[string]any{
						"things": []any{
							map[string]any{
								"kind": "t1",
								"data": map[string]any{
									"id":          "c2",
									"body":        "expanded once",
									"created_utc": 1718445200.0,
									"replies":     "",
								},
							},
							map[string]any{
								"kind": "more",
								"data": map[string]any{
									"children": []any{"c2"},
								},
							},
						},
					},
				},
			})
		},
	})

	client := newTestClient(srv)
	comments, err := client.Comments(context.Background(), Post{ID: "abc123"})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "expanded once", comments[0].Body)
	assert.Equal(t, 1, moreCalls)
}

func TestEnsureTokenReusesValidToken(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		writeJSON(t, w, map[string]any{"access_token": "tok-123", "expires_in": 3600})
	})
	mux.HandleFunc("/r/golang/new", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"kind": "Listing", "data": map[string]any{"children": []any{}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(srv)
	ctx := context.Background()
	_, err := client.NewPosts(ctx, "golang", 10)
	require.NoError(t, err)
	_, err = client.NewPosts(ctx, "golang", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)
}

func TestCredentialsComplete(t *testing.T) {
	assert.True(t, testCreds.Complete())
	assert.False(t, Credentials{ClientID: "id", ClientSecret: "secret"}.Complete())
	assert.False(t, Credentials{}.Complete())
}
