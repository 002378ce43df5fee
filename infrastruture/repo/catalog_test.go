package repo

import (
	"context"
	"testing"

	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCatalogRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Save", func(mt *mtest.T) {
		repo := &CatalogRepo{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := repo.Save(ctx, &catalog.Catalog{GeneratedAt: "2025-01-01"})
		assert.NoError(t, err)
	})

	mt.Run("Save without generation time", func(mt *mtest.T) {
		repo := &CatalogRepo{collection: mt.Coll}
		assert.ErrorIs(t, repo.Save(ctx, &catalog.Catalog{}), ErrEmptyGeneration)
	})

	mt.Run("Save failure", func(mt *mtest.T) {
		repo := &CatalogRepo{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}))

		assert.Error(t, repo.Save(ctx, &catalog.Catalog{GeneratedAt: "2025-01-01"}))
	})

	mt.Run("Latest", func(mt *mtest.T) {
		repo := &CatalogRepo{collection: mt.Coll}
		doc := bson.D{
			{Key: "_id", Value: "2025-01-01"},
			{Key: "catalog", Value: bson.D{
				{Key: "generated_at", Value: "2025-01-01"},
				{Key: "images", Value: bson.D{
					{Key: "obstacles", Value: bson.A{
						bson.D{{Key: "id", Value: "drop_cage_door_cutout"}, {Key: "file_name", Value: "cage.png"}},
					}},
				}},
			}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "beppo.catalogs", mtest.FirstBatch, doc))

		c, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2025-01-01", c.GeneratedAt)
		require.Len(t, c.ObstacleAssets(), 1)
		assert.Equal(t, "cage.png", c.ObstacleAssets()[0].FileName)
	})

	mt.Run("Latest on empty collection", func(mt *mtest.T) {
		repo := &CatalogRepo{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "beppo.catalogs", mtest.FirstBatch))

		_, err := repo.Latest(ctx)
		assert.ErrorIs(t, err, ErrCatalogNotFound)
	})
}
