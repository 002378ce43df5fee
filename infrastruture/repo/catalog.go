package repo

import (
	"context"
	"errors"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrEmptyGeneration = errors.New("catalog has no generation time")
)

var _ i.CatalogRepo = &CatalogRepo{}

// catalogDocument wraps a catalog with its generation time as the key.
type catalogDocument struct {
	ID      string          `bson:"_id"`
	Catalog catalog.Catalog `bson:"catalog"`
	SavedAt time.Time       `bson:"savedAt"`
}

// CatalogRepo handles the persistence of asset catalogs.
type CatalogRepo struct {
	collection *mongo.Collection
}

// NewCatalogRepo creates a new CatalogRepo with the given MongoDB client, database name, and collection name.
func NewCatalogRepo(client *mongo.Client, dbName, collectionName string) *CatalogRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &CatalogRepo{
		collection: collection,
	}
}

// Save inserts or replaces the catalog generated at c.GeneratedAt.
func (r *CatalogRepo) Save(ctx context.Context, c *catalog.Catalog) error {
	if c.GeneratedAt == "" {
		return ErrEmptyGeneration
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	doc := catalogDocument{ID: c.GeneratedAt, Catalog: *c, SavedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// Latest returns the catalog saved most recently.
func (r *CatalogRepo) Latest(ctx context.Context) (*catalog.Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "savedAt", Value: -1}})
	var doc catalogDocument
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCatalogNotFound
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return &doc.Catalog, nil
}
