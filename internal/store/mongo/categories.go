package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

type categoryStore struct {
	coll *mongo.Collection
}

func (c *categoryStore) Create(ctx context.Context, cat *models.CategoryModel) error {
	cat.EnsureID()
	_, err := c.coll.InsertOne(ctx, cat)
	return mapWriteError(err)
}

func (c *categoryStore) Update(ctx context.Context, cat *models.CategoryModel) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": cat.ID}, cat)
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (c *categoryStore) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (c *categoryStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *categoryStore) GetByID(ctx context.Context, id string) (*models.CategoryModel, error) {
	return c.one(ctx, bson.M{"_id": id})
}

func (c *categoryStore) GetBySlug(ctx context.Context, slug string) (*models.CategoryModel, error) {
	return c.one(ctx, bson.M{"slug": slug})
}

func (c *categoryStore) one(ctx context.Context, filter bson.M) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	ok, err := findOne(ctx, c.coll, filter, &cat)
	if err != nil || !ok {
		return nil, err
	}
	return &cat, nil
}

func (c *categoryStore) GetByIDs(ctx context.Context, ids []string) (map[string]*models.CategoryModel, error) {
	ids = store.UniqueIDs(ids)
	out := make(map[string]*models.CategoryModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := c.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, cat := range list {
		out[cat.ID] = cat
	}
	return out, nil
}

func (c *categoryStore) List(ctx context.Context) ([]*models.CategoryModel, error) {
	return c.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (c *categoryStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return exists(ctx, c.coll, excluding(bson.M{"slug": slug}, excludeID))
}

func (c *categoryStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.CategoryModel, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = c.coll.Find(ctx, filter, opts)
	} else {
		cur, err = c.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*models.CategoryModel, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
