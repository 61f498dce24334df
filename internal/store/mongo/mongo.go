// Package mongo is the document-store backend. Posts embed their comments,
// matching the shape clients read.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

const (
	postsCollection      = "posts"
	categoriesCollection = "categories"
	usersCollection      = "users"

	// Unique index names double as the field reported on E11000.
	indexSlug  = store.FieldSlug
	indexName  = store.FieldName
	indexEmail = store.FieldEmail
)

// Store wraps one mongo database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	posts      *postStore
	categories *categoryStore
	users      *userStore
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, pings the server and ensures indexes on database name.
func Connect(ctx context.Context, uri, name string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := New(client, name)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing client without touching indexes.
func New(client *mongo.Client, name string) *Store {
	db := client.Database(name)
	return &Store{
		client:     client,
		db:         db,
		posts:      &postStore{coll: db.Collection(postsCollection)},
		categories: &categoryStore{coll: db.Collection(categoriesCollection)},
		users:      &userStore{coll: db.Collection(usersCollection)},
	}
}

// EnsureIndexes creates the unique and text indexes the stores rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		postsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexSlug)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "content", Value: "text"},
					{Key: "tags", Value: "text"},
				},
				Options: options.Index().SetName("post_text"),
			},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexName)},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexSlug)},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexEmail)},
		},
	}
	for coll, idx := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Posts() store.PostStore          { return s.posts }
func (s *Store) Categories() store.CategoryStore { return s.categories }
func (s *Store) Users() store.UserStore          { return s.users }

// Drop removes the whole database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var dupIndexPattern = regexp.MustCompile(`index: (\S+) dup key`)

// mapWriteError converts E11000 into apperr.DuplicateKeyError.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	field := ""
	if m := dupIndexPattern.FindStringSubmatch(err.Error()); len(m) == 2 {
		field = m[1]
		if field == "_id_" {
			field = "_id"
		}
	}
	return apperr.Duplicate(field, err)
}

// findOne decodes the first match into out and reports whether one existed.
func findOne(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}) (bool, error) {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func exists(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func excluding(filter bson.M, excludeID string) bson.M {
	if strings.TrimSpace(excludeID) != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return filter
}
