// Package httphandler contains HTTP handlers for the public API.
package httphandler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	paperdomain "github.com/rpruizc/scimonitor/internal/domain/paper"
	"github.com/rpruizc/scimonitor/internal/infrastructure/httpserver"
	repo "github.com/rpruizc/scimonitor/internal/infrastructure/repository/mongodb"
	"github.com/rpruizc/scimonitor/internal/service"
)

// PaperResponse represents a paper in API responses.
type PaperResponse struct {
	ArxivID       string   `json:"arxiv_id"`
	ArxivURL      string   `json:"arxiv_url,omitempty"`
	PDFURL        string   `json:"pdf_url,omitempty"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Abstract      string   `json:"abstract,omitempty"`
	PublishedTime string   `json:"published_time,omitempty"`
	JournalLink   string   `json:"journal_link,omitempty"`
	Tags          []string `json:"tags"`
	Popularity    int      `json:"popularity"`
	Analyzed      bool     `json:"analyzed"`
	Introduction  string   `json:"introduction,omitempty"`
	Conclusion    string   `json:"conclusion,omitempty"`
}

// PaperListResponse represents a paginated paper listing.
type PaperListResponse struct {
	Papers  []PaperResponse `json:"papers"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	HasNext bool            `json:"has_next"`
	HasPrev bool            `json:"has_prev"`
}

// SearchHitResponse represents a single scored search result.
type SearchHitResponse struct {
	PaperResponse

	RelevanceScore float64 `json:"relevance_score"`
}

// SearchResponse represents a search result page.
type SearchResponse struct {
	Query        string              `json:"query"`
	Results      []SearchHitResponse `json:"results"`
	Total        int64               `json:"total"`
	Page         int                 `json:"page"`
	PerPage      int                 `json:"per_page"`
	HasNext      bool                `json:"has_next"`
	HasPrev      bool                `json:"has_prev"`
	SearchTimeMS float64             `json:"search_time_ms"`
}

// PaperService defines the interface for paper operations.
// Declared on the consumer side per project guidelines.
type PaperService interface {
	// GetPaper gets a paper by arXiv ID.
	GetPaper(ctx context.Context, arxivID string) (*paperdomain.Paper, error)

	// ListPapers lists papers with filtering and pagination.
	ListPapers(ctx context.Context, q repo.ListQuery) (service.ListPapersResult, error)

	// SearchPapers searches papers by free-text query.
	SearchPapers(ctx context.Context, q repo.SearchQuery) (service.SearchPapersResult, error)
}

// PaperHandler handles paper-related HTTP requests.
type PaperHandler struct {
	paperService PaperService
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(paperService PaperService) *PaperHandler {
	return &PaperHandler{
		paperService: paperService,
	}
}

// RegisterRoutes registers paper routes on the given group.
func (h *PaperHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/papers", h.List)
	g.GET("/papers/:arxiv_id", h.Get)
	g.GET("/search", h.Search)
}

// List handles GET /api/v1/papers.
// Lists papers with tag filtering, sorting, and pagination.
func (h *PaperHandler) List(c echo.Context) error {
	q := repo.ListQuery{
		Page:    parseIntParam(c, "page", 1),
		PerPage: parseIntParam(c, "per_page", repo.DefaultPaginationLimit),
		Tag:     c.QueryParam("tag"),
		SortBy:  c.QueryParam("sort_by"),
		SortAsc: c.QueryParam("order") == "asc",
	}

	if q.SortBy != "" && !repo.IsValidSortField(q.SortBy) {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_SORT_FIELD", "unknown sort field: "+q.SortBy)
	}

	if analyzed := c.QueryParam("analyzed"); analyzed != "" {
		parsed, parseErr := strconv.ParseBool(analyzed)
		if parseErr != nil {
			return httpserver.RespondErrorWithCode(
				c, http.StatusBadRequest, "INVALID_ANALYZED", "analyzed must be true or false")
		}
		q.Analyzed = &parsed
	}

	result, err := h.paperService.ListPapers(c.Request().Context(), q)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	resp := PaperListResponse{
		Papers:  toPaperResponses(result.Papers),
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
		HasNext: result.HasNext,
		HasPrev: result.HasPrev,
	}
	return httpserver.RespondOK(c, resp)
}

// Get handles GET /api/v1/papers/:arxiv_id.
// Gets a single paper by arXiv ID.
func (h *PaperHandler) Get(c echo.Context) error {
	arxivID := c.Param("arxiv_id")
	if strings.TrimSpace(arxivID) == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ARXIV_ID", "arxiv_id is required")
	}

	p, err := h.paperService.GetPaper(c.Request().Context(), arxivID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, toPaperResponse(p))
}

// Search handles GET /api/v1/search.
// Searches papers by free-text query with relevance scoring.
func (h *PaperHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "QUERY_REQUIRED", "q query parameter is required")
	}

	q := repo.SearchQuery{
		Query:   query,
		Page:    parseIntParam(c, "page", 1),
		PerPage: parseIntParam(c, "per_page", repo.DefaultPaginationLimit),
	}

	result, err := h.paperService.SearchPapers(c.Request().Context(), q)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	hits := make([]SearchHitResponse, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, SearchHitResponse{
			PaperResponse:  toPaperResponse(hit.Paper),
			RelevanceScore: hit.Relevance,
		})
	}

	resp := SearchResponse{
		Query:        result.Query,
		Results:      hits,
		Total:        result.Total,
		Page:         result.Page,
		PerPage:      result.PerPage,
		HasNext:      result.HasNext,
		HasPrev:      result.HasPrev,
		SearchTimeMS: result.SearchTimeMS,
	}
	return httpserver.RespondOK(c, resp)
}

func toPaperResponse(p *paperdomain.Paper) PaperResponse {
	resp := PaperResponse{
		ArxivID:      p.ArxivID,
		ArxivURL:     p.ArxivURL,
		PDFURL:       p.PDFURL,
		Title:        p.Title,
		Authors:      p.AuthorList(),
		Abstract:     p.Abstract,
		JournalLink:  p.JournalLink,
		Tags:         p.Tags(),
		Popularity:   p.Popularity,
		Analyzed:     p.Analyzed,
		Introduction: p.Introduction,
		Conclusion:   p.Conclusion,
	}
	if !p.PublishedTime.IsZero() {
		resp.PublishedTime = p.PublishedTime.UTC().Format(time.RFC3339)
	}
	return resp
}

func toPaperResponses(papers []*paperdomain.Paper) []PaperResponse {
	out := make([]PaperResponse, 0, len(papers))
	for _, p := range papers {
		out = append(out, toPaperResponse(p))
	}
	return out
}

func parseIntParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
