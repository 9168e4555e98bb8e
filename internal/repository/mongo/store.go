// Package mongo implements the repository interfaces on MongoDB.
//
// The document layout follows the paths the services use:
//
//	users/{uid}                   → users collection, _id = uid
//	chats/{chatId}/messages/{id}  → messages collection, chatId field + _id = id
//
// Sub-collections do not exist in MongoDB, so every chat shares one messages
// collection and queries filter on chatId. A compound index on
// (chatId, dateCreated) backs the chat history read.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/mentorchat/internal/repository"
)

const connectTimeout = 10 * time.Second

// Store implements repository.UserRepository and repository.MessageRepository.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	messages *mongo.Collection
}

// New connects to uri, checks the server is reachable and makes sure the
// indexes exist.
func New(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		users:    db.Collection(repository.UsersCollection),
		messages: db.Collection(repository.MessagesCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chatId", Value: 1}, {Key: "dateCreated", Value: 1}},
		Options: options.Index().SetName("chat_date_created"),
	})
	if err != nil {
		return fmt.Errorf("mongo: creating messages index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
