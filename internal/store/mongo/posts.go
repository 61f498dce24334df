package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

type postStore struct {
	coll *mongo.Collection
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// prepare fills the arrays $push and the decoders expect to be non-null.
func prepare(post *models.PostModel) {
	post.EnsureID()
	if post.Tags == nil {
		post.Tags = models.StringArray{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
}

func (p *postStore) Create(ctx context.Context, post *models.PostModel) error {
	prepare(post)
	_, err := p.coll.InsertOne(ctx, post)
	return mapWriteError(err)
}

func (p *postStore) Update(ctx context.Context, post *models.PostModel) error {
	tags := post.Tags
	if tags == nil {
		tags = models.StringArray{}
	}
	update := bson.M{"$set": bson.M{
		"title":         post.Title,
		"slug":          post.Slug,
		"content":       post.Content,
		"excerpt":       post.Excerpt,
		"featuredImage": post.FeaturedImage,
		"category":      post.CategoryID,
		"tags":          tags,
		"isPublished":   post.IsPublished,
		"updatedAt":     post.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var stored models.PostModel
	err := p.coll.FindOneAndUpdate(ctx, bson.M{"_id": post.ID}, update, opts).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("post")
	}
	if err != nil {
		return mapWriteError(err)
	}
	*post = stored
	return nil
}

func (p *postStore) Delete(ctx context.Context, id string) error {
	res, err := p.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("post")
	}
	return nil
}

func (p *postStore) GetByID(ctx context.Context, id string) (*models.PostModel, error) {
	return p.one(ctx, bson.M{"_id": id})
}

func (p *postStore) GetBySlug(ctx context.Context, slug string) (*models.PostModel, error) {
	return p.one(ctx, bson.M{"slug": slug})
}

func (p *postStore) one(ctx context.Context, filter bson.M) (*models.PostModel, error) {
	var post models.PostModel
	ok, err := findOne(ctx, p.coll, filter, &post)
	if err != nil || !ok {
		return nil, err
	}
	return &post, nil
}

func (p *postStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return exists(ctx, p.coll, excluding(bson.M{"slug": slug}, excludeID))
}

func (p *postStore) IncrementViews(ctx context.Context, id string) (*models.PostModel, error) {
	return p.findAndUpdate(ctx, id, bson.M{"$inc": bson.M{"viewCount": 1}})
}

func (p *postStore) AppendComment(ctx context.Context, id string, comment models.Comment) (*models.PostModel, error) {
	return p.findAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": comment.CreatedAt},
	})
}

func (p *postStore) findAndUpdate(ctx context.Context, id string, update bson.M) (*models.PostModel, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.PostModel
	err := p.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *postStore) List(ctx context.Context, filter store.PostFilter, page, size int) ([]*models.PostModel, int64, error) {
	query := bson.M{}
	if filter.CategoryID != "" {
		query["category"] = filter.CategoryID
	}
	if filter.IsPublished != nil {
		query["isPublished"] = *filter.IsPublished
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		query["$text"] = bson.M{"$search": q}
	}

	total, err := p.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(int64(store.Offset(page, size)))
	if size > 0 {
		opts.SetLimit(int64(size))
	}
	posts, err := p.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (p *postStore) Search(ctx context.Context, q string) ([]*models.PostModel, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	query := bson.M{
		"isPublished": true,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"excerpt": pattern},
			bson.M{"tags": pattern},
		},
	}
	return p.find(ctx, query, options.Find().SetSort(newestFirst))
}

func (p *postStore) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return p.coll.CountDocuments(ctx, bson.M{"category": categoryID})
}

func (p *postStore) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.PostModel, error) {
	cur, err := p.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	posts := make([]*models.PostModel, 0)
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}
