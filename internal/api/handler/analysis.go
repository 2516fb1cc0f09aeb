package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/redsift/internal/domain"
	"github.com/timmy/redsift/internal/reddit"
	"github.com/timmy/redsift/internal/report"
	"github.com/timmy/redsift/internal/service"
)

// AnalysisRunner is the service surface the handler depends on.
type AnalysisRunner interface {
	Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error)
	GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error)
	OpenArchive(ctx context.Context, id string) ([]byte, string, error)
	ChartFile(ctx context.Context, id, name string) (string, error)
}

// AnalysisHandler handles analysis run endpoints.
type AnalysisHandler struct {
	service AnalysisRunner
}

// NewAnalysisHandler creates a new analysis handler.
// Parameters:
//   - svc: analysis service instance.
// Returns:
//   - *AnalysisHandler: initialized handler.
func NewAnalysisHandler(svc AnalysisRunner) *AnalysisHandler {
	return &AnalysisHandler{service: svc}
}

// runRequest is the JSON body of POST /api/v1/analyses. Subreddits and
// keywords follow the form's free-text convention: comma-separated, up to 10
// each by convention (not enforced).
type runRequest struct {
	ClientID       string `json:"client_id"`
	ClientSecret   string `json:"client_secret"`
	UserAgent      string `json:"user_agent"`
	Subreddits     string `json:"subreddits"`
	Keywords       string `json:"keywords"`
	IncludeRecords bool   `json:"include_records"`
}

// parseList splits a comma-separated field into trimmed non-empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Create handles POST /api/v1/analyses.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AnalysisHandler) Create(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.service.Run(c.Request.Context(), service.RunRequest{
		Credentials: reddit.Credentials{
			ClientID:     req.ClientID,
			ClientSecret: req.ClientSecret,
			UserAgent:    req.UserAgent,
		},
		Subreddits: parseList(req.Subreddits),
		Keywords:   parseList(req.Keywords),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoCredentials),
			errors.Is(err, domain.ErrNoSubreddits),
			errors.Is(err, domain.ErrNoKeywords):
			c.JSON(http.StatusBadRequest, gin.H{"error": capitalize(err.Error())})
		case errors.Is(err, service.ErrClientInit):
			c.JSON(http.StatusBadGateway, gin.H{"error": capitalize(err.Error())})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed: " + err.Error()})
		}
		return
	}

	if !req.IncludeRecords {
		result.Records = nil
	}
	c.JSON(http.StatusOK, result)
}

// List handles GET /api/v1/analyses.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AnalysisHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list runs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

// Get handles GET /api/v1/analyses/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AnalysisHandler) Get(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": capitalize(err.Error())})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get run: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, run)
}

// Download handles GET /api/v1/analyses/:id/download, serving the run archive.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes the zip archive).
func (h *AnalysisHandler) Download(c *gin.Context) {
	data, name, err := h.service.OpenArchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": capitalize(err.Error())})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to open archive: " + err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, report.ArchiveContentType, data)
}

// Chart handles GET /api/v1/analyses/:id/charts/:name, serving a rendered
// chart for inline display.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes the PNG file).
func (h *AnalysisHandler) Chart(c *gin.Context) {
	path, err := h.service.ChartFile(c.Request.Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": capitalize(err.Error())})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve chart: " + err.Error(),
		})
		return
	}

	c.File(path)
}

// capitalize uppercases the first byte of a message for user display.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
