// Package paper defines the research paper entity and its validation rules.
package paper

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Field length limits.
const (
	MaxTitleLength   = 800
	MaxAuthorsLength = 800
)

// Tag list separator used in stored documents.
const TagSeparator = " | "

// Validation errors.
var (
	ErrTitleRequired    = errors.New("paper title is required")
	ErrTitleTooLong     = fmt.Errorf("paper title exceeds %d characters", MaxTitleLength)
	ErrAuthorsRequired  = errors.New("paper authors are required")
	ErrAuthorsTooLong   = fmt.Errorf("paper authors exceed %d characters", MaxAuthorsLength)
	ErrAbstractRequired = errors.New("paper abstract is required")
	ErrArxivIDRequired  = errors.New("arxiv id is required")
	ErrPublishedZero    = errors.New("published time is required")
)

// Paper is an arXiv research paper tracked by the monitor.
type Paper struct {
	ArxivID       string
	ArxivURL      string
	PDFURL        string
	Title         string
	Authors       string // comma-separated, as delivered by the arXiv feed
	Abstract      string
	PublishedTime time.Time
	JournalLink   string
	Tag           string // pipe-separated tag list, e.g. "cs.LG | stat.ML"
	Popularity    int
	Analyzed      bool
	Introduction  string
	Conclusion    string
	Version       int
}

// Validate checks the invariants required to store a paper.
func (p *Paper) Validate() error {
	var errs []error

	if strings.TrimSpace(p.ArxivID) == "" {
		errs = append(errs, ErrArxivIDRequired)
	}
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, ErrTitleRequired)
	} else if len(p.Title) > MaxTitleLength {
		errs = append(errs, ErrTitleTooLong)
	}
	if strings.TrimSpace(p.Authors) == "" {
		errs = append(errs, ErrAuthorsRequired)
	} else if len(p.Authors) > MaxAuthorsLength {
		errs = append(errs, ErrAuthorsTooLong)
	}
	if strings.TrimSpace(p.Abstract) == "" {
		errs = append(errs, ErrAbstractRequired)
	}
	if p.PublishedTime.IsZero() {
		errs = append(errs, ErrPublishedZero)
	}

	return errors.Join(errs...)
}

// AuthorList splits the comma-separated authors field into a clean list.
func (p *Paper) AuthorList() []string {
	parts := strings.Split(p.Authors, ",")
	authors := make([]string, 0, len(parts))
	for _, a := range parts {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			authors = append(authors, trimmed)
		}
	}
	return authors
}

// Tags splits the pipe-separated tag field into a clean list.
func (p *Paper) Tags() []string {
	if p.Tag == "" {
		return nil
	}
	parts := strings.Split(p.Tag, TagSeparator)
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// ShortTitle returns the title truncated for display purposes.
func (p *Paper) ShortTitle() string {
	const limit = 100
	if len(p.Title) <= limit {
		return p.Title
	}
	return p.Title[:limit] + "..."
}
