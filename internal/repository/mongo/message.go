package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

var _ repository.MessageRepository = (*Store)(nil)

// sortable lists the message fields FindMessages accepts in OrderBy.
var sortable = map[string]bool{
	"dateCreated": true,
}

func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	if msg.ChatID == "" || msg.ID == "" {
		return apperror.ValidationFailed("id", "message chat id and id are required")
	}
	doc := *msg
	doc.DateCreated = doc.DateCreated.UTC()
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: creating message in %s: %w", msg.ChatID, err)
	}
	return nil
}

func (s *Store) FindMessages(ctx context.Context, q repository.MessageQuery) ([]model.Message, error) {
	if !sortable[q.OrderBy] {
		return nil, apperror.ValidationFailed("orderBy", fmt.Sprintf("cannot order messages by %q", q.OrderBy))
	}

	dir := 1
	if q.Direction == repository.Descending {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: q.OrderBy, Value: dir}, {Key: "_id", Value: dir}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.messages.Find(ctx, bson.M{"chatId": q.ChatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: finding messages in %s: %w", q.Path(), err)
	}
	defer cur.Close(ctx)

	messages := make([]model.Message, 0)
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongo: decoding messages in %s: %w", q.Path(), err)
	}
	for i := range messages {
		messages[i].DateCreated = messages[i].DateCreated.UTC()
	}
	return messages, nil
}
