package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

type userStore struct {
	coll *mongo.Collection
}

func (u *userStore) Create(ctx context.Context, user *models.UserModel) error {
	user.EnsureID()
	_, err := u.coll.InsertOne(ctx, user)
	return mapWriteError(err)
}

func (u *userStore) Update(ctx context.Context, user *models.UserModel) error {
	res, err := u.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (u *userStore) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	return u.one(ctx, bson.M{"_id": id})
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (*models.UserModel, error) {
	return u.one(ctx, bson.M{"email": email})
}

func (u *userStore) one(ctx context.Context, filter bson.M) (*models.UserModel, error) {
	var user models.UserModel
	ok, err := findOne(ctx, u.coll, filter, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

func (u *userStore) GetByIDs(ctx context.Context, ids []string) (map[string]*models.UserModel, error) {
	ids = store.UniqueIDs(ids)
	out := make(map[string]*models.UserModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := u.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var list []*models.UserModel
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	for _, user := range list {
		out[user.ID] = user
	}
	return out, nil
}

func (u *userStore) Count(ctx context.Context) (int64, error) {
	return u.coll.CountDocuments(ctx, bson.M{})
}
