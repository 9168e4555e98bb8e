// Package firestore implements the repository interfaces on Cloud Firestore.
//
// Firestore is a document store already, so the paths the services use are
// the real paths:
//
//	users/{uid}                   → document in the users collection
//	chats/{chatId}/messages/{id}  → document in a chat's messages sub-collection
//
// The chat documents themselves are never written. Firestore lets a
// sub-collection exist under a missing parent.
//
// Setting FIRESTORE_EMULATOR_HOST points the client at the local emulator.
package firestore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/repository"
)

// Store implements repository.UserRepository and repository.MessageRepository.
type Store struct {
	client *firestore.Client
}

// New creates a client for projectID. An empty projectID lets the client
// detect the project from the environment's credentials.
func New(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore: creating client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the client's connections.
func (s *Store) Close() error {
	return s.client.Close()
}

// userDoc returns users/{uid}. Doc returns nil for ids that are not a single
// path segment, so those never reach the client.
func (s *Store) userDoc(uid string) (*firestore.DocumentRef, error) {
	if !validID(uid) {
		return nil, apperror.ValidationFailed("uid", "user uid must be a non-empty id without '/'")
	}
	return s.client.Collection(repository.UsersCollection).Doc(uid), nil
}

// messages returns chats/{chatID}/messages.
func (s *Store) messages(chatID string) (*firestore.CollectionRef, error) {
	if !validID(chatID) {
		return nil, apperror.ValidationFailed("chatId", "chat id must be a non-empty id without '/'")
	}
	return s.client.Collection(repository.ChatsCollection).Doc(chatID).Collection(repository.MessagesCollection), nil
}

func validID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
