// Package service contains application services wiring repositories and caches.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rpruizc/scimonitor/internal/domain/errs"
	paperdomain "github.com/rpruizc/scimonitor/internal/domain/paper"
	"github.com/rpruizc/scimonitor/internal/infrastructure/cache"
	repo "github.com/rpruizc/scimonitor/internal/infrastructure/repository/mongodb"
)

// Relevance weights for search scoring: title matches dominate, then
// authors, then abstract.
const (
	titleWeight    = 3.0
	authorsWeight  = 2.0
	abstractWeight = 1.0
)

const searchCacheNamespace = "search"

// PaperRepository is the storage contract the service depends on.
// Implemented by repo.MongoPaperRepository.
type PaperRepository interface {
	FindByArxivID(ctx context.Context, arxivID string) (*paperdomain.Paper, error)
	List(ctx context.Context, q repo.ListQuery) ([]*paperdomain.Paper, int64, error)
	Search(ctx context.Context, q repo.SearchQuery) ([]*paperdomain.Paper, int64, error)
}

// ResponseCache is the cache contract the service depends on.
// Implemented by cache.ResponseCache.
type ResponseCache interface {
	Key(namespace string, params map[string]string) string
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
}

// ListPapersResult is a page of papers with pagination metadata.
type ListPapersResult struct {
	Papers  []*paperdomain.Paper `json:"papers"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
	HasNext bool                 `json:"has_next"`
	HasPrev bool                 `json:"has_prev"`
}

// SearchHit is a single search result with its relevance score.
type SearchHit struct {
	Paper     *paperdomain.Paper `json:"paper"`
	Relevance float64            `json:"relevance_score"`
}

// SearchPapersResult is a page of scored search hits.
type SearchPapersResult struct {
	Hits         []SearchHit `json:"hits"`
	Total        int64       `json:"total"`
	Page         int         `json:"page"`
	PerPage      int         `json:"per_page"`
	HasNext      bool        `json:"has_next"`
	HasPrev      bool        `json:"has_prev"`
	Query        string      `json:"query"`
	SearchTimeMS float64     `json:"search_time_ms"`
}

// PaperService serves paper listing, lookup, and search, with search
// responses cached in Redis. Cache failures never fail a request; they fall
// through to the repository.
type PaperService struct {
	repo   PaperRepository
	cache  ResponseCache
	logger *slog.Logger
}

// PaperServiceConfig contains configuration for PaperService.
type PaperServiceConfig struct {
	Repo   PaperRepository
	Cache  ResponseCache
	Logger *slog.Logger
}

// NewPaperService creates a new paper service.
func NewPaperService(cfg PaperServiceConfig) *PaperService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PaperService{
		repo:   cfg.Repo,
		cache:  cfg.Cache,
		logger: logger,
	}
}

// GetPaper returns a single paper by arXiv ID.
func (s *PaperService) GetPaper(ctx context.Context, arxivID string) (*paperdomain.Paper, error) {
	if strings.TrimSpace(arxivID) == "" {
		return nil, errs.ErrInvalidInput
	}
	return s.repo.FindByArxivID(ctx, arxivID)
}

// ListPapers returns a paginated paper listing.
func (s *PaperService) ListPapers(ctx context.Context, q repo.ListQuery) (ListPapersResult, error) {
	papers, total, err := s.repo.List(ctx, q)
	if err != nil {
		return ListPapersResult{}, fmt.Errorf("failed to list papers: %w", err)
	}

	page, perPage := normalizePage(q.Page, q.PerPage)
	return ListPapersResult{
		Papers:  papers,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		HasNext: int64(page*perPage) < total,
		HasPrev: page > 1,
	}, nil
}

// SearchPapers searches papers and scores each hit. Results are cached per
// (query, page, per_page); a cache hit skips the repository entirely.
func (s *PaperService) SearchPapers(ctx context.Context, q repo.SearchQuery) (SearchPapersResult, error) {
	if strings.TrimSpace(q.Query) == "" {
		return SearchPapersResult{}, errs.ErrInvalidInput
	}

	key := ""
	if s.cache != nil {
		key = s.cache.Key(searchCacheNamespace, map[string]string{
			"q":        q.Query,
			"page":     strconv.Itoa(q.Page),
			"per_page": strconv.Itoa(q.PerPage),
		})

		var cached SearchPapersResult
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "search cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	start := time.Now()
	papers, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return SearchPapersResult{}, fmt.Errorf("failed to search papers: %w", err)
	}

	hits := make([]SearchHit, 0, len(papers))
	for _, p := range papers {
		hits = append(hits, SearchHit{
			Paper:     p,
			Relevance: relevanceScore(q.Query, p),
		})
	}

	page, perPage := normalizePage(q.Page, q.PerPage)
	result := SearchPapersResult{
		Hits:         hits,
		Total:        total,
		Page:         page,
		PerPage:      perPage,
		HasNext:      int64(page*perPage) < total,
		HasPrev:      page > 1,
		Query:        q.Query,
		SearchTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
	}

	if s.cache != nil {
		if setErr := s.cache.Set(ctx, key, result); setErr != nil {
			s.logger.WarnContext(ctx, "search cache write failed",
				slog.String("error", setErr.Error()),
			)
		}
	}

	return result, nil
}

// relevanceScore computes a weighted term frequency score for a paper.
func relevanceScore(query string, p *paperdomain.Paper) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}

	title := strings.ToLower(p.Title)
	authors := strings.ToLower(p.Authors)
	abstract := strings.ToLower(p.Abstract)

	var score float64
	for _, term := range terms {
		score += titleWeight * float64(strings.Count(title, term))
		score += authorsWeight * float64(strings.Count(authors, term))
		score += abstractWeight * float64(strings.Count(abstract, term))
	}

	return score / float64(len(terms))
}

// normalizePage applies the same clamping as the repository so pagination
// metadata matches the returned slice.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, repo.ClampLimit(perPage)
}
