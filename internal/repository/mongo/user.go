package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

var _ repository.UserRepository = (*Store)(nil)

func (s *Store) GetUser(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	err := s.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("user", uid)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: getting user %s: %w", uid, err)
	}
	return &u, nil
}

// SetUser replaces the whole document. ReplaceOne drops fields the new
// document omits, which is the overwrite semantics callers rely on.
func (s *Store) SetUser(ctx context.Context, user *model.User) error {
	if user.UID == "" {
		return apperror.ValidationFailed("uid", "user uid is required")
	}
	_, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.UID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: setting user %s: %w", user.UID, err)
	}
	return nil
}

func (s *Store) UpdateUsername(ctx context.Context, uid, username string) error {
	return s.updateField(ctx, uid, "username", username)
}

func (s *Store) UpdateIsMentor(ctx context.Context, uid string, isMentor bool) error {
	return s.updateField(ctx, uid, "isMentor", isMentor)
}

func (s *Store) updateField(ctx context.Context, uid, field string, value any) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("mongo: updating %s of user %s: %w", field, uid, err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("user", uid)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	if _, err := s.users.DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("mongo: deleting user %s: %w", uid, err)
	}
	return nil
}
