// Package mongodb provides MongoDB infrastructure components including index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency.
const (
	CollectionPapers = "papers"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptionsBuilder
}

// CreateAllIndexes creates all necessary indexes for the application.
// This function is idempotent - calling it multiple times is safe.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range GetAllIndexDefinitions() {
		coll := db.Collection(idx.Collection)
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options,
		}

		_, err := coll.Indexes().CreateOne(ctx, model)
		if err != nil {
			return fmt.Errorf("failed to create index on collection %s: %w", idx.Collection, err)
		}
	}

	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	return GetPaperIndexes()
}

// GetPaperIndexes returns index definitions for the papers collection.
func GetPaperIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Papers are addressed by their arXiv ID
			Collection: CollectionPapers,
			Keys:       bson.D{{Key: "arxiv_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_papers_arxiv_id_unique"),
		},
		{
			// Default listing order: newest first
			Collection: CollectionPapers,
			Keys:       bson.D{{Key: "published_time", Value: -1}},
			Options:    options.Index().SetName("idx_papers_published_time"),
		},
		{
			// Popularity sort for trending views
			Collection: CollectionPapers,
			Keys:       bson.D{{Key: "popularity", Value: -1}, {Key: "published_time", Value: -1}},
			Options:    options.Index().SetName("idx_papers_popularity_time"),
		},
		{
			// Tag filtering
			Collection: CollectionPapers,
			Keys:       bson.D{{Key: "tag", Value: 1}, {Key: "published_time", Value: -1}},
			Options:    options.Index().SetName("idx_papers_tag_time"),
		},
		{
			// Substring search over title, authors, and abstract
			Collection: CollectionPapers,
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "authors", Value: "text"},
				{Key: "abstract", Value: "text"},
			},
			Options: options.Index().SetName("idx_papers_text_search"),
		},
	}
}
