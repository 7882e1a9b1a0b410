package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rpruizc/scimonitor/internal/domain/errs"
	paperdomain "github.com/rpruizc/scimonitor/internal/domain/paper"
)

// Sort fields accepted by ListQuery.
const (
	SortByPublishedTime = "published_time"
	SortByPopularity    = "popularity"
	SortByTitle         = "title"
)

// ListQuery describes a paginated papers listing.
type ListQuery struct {
	Page     int
	PerPage  int
	Tag      string
	SortBy   string // published_time | popularity | title
	SortAsc  bool
	Analyzed *bool
}

// SearchQuery describes a substring search over papers.
type SearchQuery struct {
	Query   string
	Page    int
	PerPage int
}

// MongoPaperRepository stores papers in a MongoDB collection.
type MongoPaperRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// PaperRepoOption configures MongoPaperRepository.
type PaperRepoOption func(*MongoPaperRepository)

// WithPaperRepoLogger sets the logger for the paper repository.
func WithPaperRepoLogger(logger *slog.Logger) PaperRepoOption {
	return func(r *MongoPaperRepository) {
		r.logger = logger
	}
}

// NewMongoPaperRepository creates a new MongoDB paper repository.
func NewMongoPaperRepository(collection *mongo.Collection, opts ...PaperRepoOption) *MongoPaperRepository {
	r := &MongoPaperRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// FindByArxivID finds a paper by its arXiv ID.
func (r *MongoPaperRepository) FindByArxivID(ctx context.Context, arxivID string) (*paperdomain.Paper, error) {
	if arxivID == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"arxiv_id": arxivID}
	var doc paperDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find paper by arxiv ID",
				slog.String("arxiv_id", arxivID),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "paper")
	}

	return doc.toPaper(), nil
}

// List returns a page of papers matching the query, newest first by default.
func (r *MongoPaperRepository) List(ctx context.Context, q ListQuery) ([]*paperdomain.Paper, int64, error) {
	filter := r.buildListFilter(q)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, HandleMongoError(err, "paper")
	}

	perPage := ClampLimit(q.PerPage)
	page := q.Page
	if page < 1 {
		page = 1
	}

	opts := options.Find().
		SetSort(r.buildSort(q)).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	papers, err := r.findPapers(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	return papers, total, nil
}

// Search returns papers whose title, authors, or abstract contain the query
// string, case-insensitively.
func (r *MongoPaperRepository) Search(ctx context.Context, q SearchQuery) ([]*paperdomain.Paper, int64, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, 0, errs.ErrInvalidInput
	}

	pattern := regexQuote(q.Query)
	filter := bson.M{"$or": bson.A{
		bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"authors": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"abstract": bson.M{"$regex": pattern, "$options": "i"}},
	}}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, HandleMongoError(err, "paper")
	}

	perPage := ClampLimit(q.PerPage)
	page := q.Page
	if page < 1 {
		page = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_time", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	papers, err := r.findPapers(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	return papers, total, nil
}

// Save inserts a paper or replaces an existing one with the same arXiv ID.
func (r *MongoPaperRepository) Save(ctx context.Context, p *paperdomain.Paper) error {
	if err := p.Validate(); err != nil {
		return errors.Join(errs.ErrInvalidInput, err)
	}

	doc := paperToDocument(p)
	doc.UpdatedAt = time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	filter := bson.M{"arxiv_id": p.ArxivID}
	opts := options.Replace().SetUpsert(true)

	_, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save paper",
			slog.String("arxiv_id", p.ArxivID),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "paper")
	}

	return nil
}

// findPapers runs a find query and decodes the cursor into domain papers.
func (r *MongoPaperRepository) findPapers(
	ctx context.Context,
	filter bson.M,
	opts *options.FindOptionsBuilder,
) ([]*paperdomain.Paper, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, HandleMongoError(err, "paper")
	}
	defer cursor.Close(ctx)

	var papers []*paperdomain.Paper
	for cursor.Next(ctx) {
		var doc paperDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			r.logger.WarnContext(ctx, "skipping undecodable paper document",
				slog.String("error", decodeErr.Error()),
			)
			continue
		}
		papers = append(papers, doc.toPaper())
	}

	if cursorErr := cursor.Err(); cursorErr != nil {
		return nil, HandleMongoError(cursorErr, "paper")
	}

	return papers, nil
}

// buildListFilter builds a MongoDB filter from list query parameters.
func (r *MongoPaperRepository) buildListFilter(q ListQuery) bson.M {
	filter := bson.M{}
	if q.Tag != "" {
		filter["tag"] = bson.M{"$regex": regexQuote(q.Tag), "$options": "i"}
	}
	if q.Analyzed != nil {
		filter["analyzed"] = *q.Analyzed
	}
	return filter
}

// IsValidSortField reports whether field is an accepted listing sort key.
func IsValidSortField(field string) bool {
	switch field {
	case SortByPublishedTime, SortByPopularity, SortByTitle:
		return true
	default:
		return false
	}
}

// buildSort maps query sort parameters onto a MongoDB sort document.
func (r *MongoPaperRepository) buildSort(q ListQuery) bson.D {
	field := q.SortBy
	switch field {
	case SortByPopularity, SortByTitle, SortByPublishedTime:
	default:
		field = SortByPublishedTime
	}

	order := -1
	if q.SortAsc {
		order = 1
	}

	return bson.D{{Key: field, Value: order}}
}

// regexQuote escapes regex metacharacters so user input is matched literally.
func regexQuote(s string) string {
	const meta = `\.+*?()|[]{}^$`
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(meta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// paperDocument represents a paper document in MongoDB.
type paperDocument struct {
	ArxivID       string    `bson:"arxiv_id"`
	ArxivURL      string    `bson:"arxiv_url"`
	PDFURL        string    `bson:"pdf_url"`
	Title         string    `bson:"title"`
	Authors       string    `bson:"authors"`
	Abstract      string    `bson:"abstract"`
	PublishedTime time.Time `bson:"published_time"`
	JournalLink   string    `bson:"journal_link,omitempty"`
	Tag           string    `bson:"tag,omitempty"`
	Popularity    int       `bson:"popularity"`
	Analyzed      bool      `bson:"analyzed"`
	Introduction  string    `bson:"introduction,omitempty"`
	Conclusion    string    `bson:"conclusion,omitempty"`
	Version       int       `bson:"version,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// toPaper converts the document to a domain paper.
func (d *paperDocument) toPaper() *paperdomain.Paper {
	return &paperdomain.Paper{
		ArxivID:       d.ArxivID,
		ArxivURL:      d.ArxivURL,
		PDFURL:        d.PDFURL,
		Title:         d.Title,
		Authors:       d.Authors,
		Abstract:      d.Abstract,
		PublishedTime: d.PublishedTime,
		JournalLink:   d.JournalLink,
		Tag:           d.Tag,
		Popularity:    d.Popularity,
		Analyzed:      d.Analyzed,
		Introduction:  d.Introduction,
		Conclusion:    d.Conclusion,
		Version:       d.Version,
	}
}

// paperToDocument converts a domain paper to its MongoDB document.
func paperToDocument(p *paperdomain.Paper) *paperDocument {
	return &paperDocument{
		ArxivID:       p.ArxivID,
		ArxivURL:      p.ArxivURL,
		PDFURL:        p.PDFURL,
		Title:         p.Title,
		Authors:       p.Authors,
		Abstract:      p.Abstract,
		PublishedTime: p.PublishedTime,
		JournalLink:   p.JournalLink,
		Tag:           p.Tag,
		Popularity:    p.Popularity,
		Analyzed:      p.Analyzed,
		Introduction:  p.Introduction,
		Conclusion:    p.Conclusion,
		Version:       p.Version,
	}
}
