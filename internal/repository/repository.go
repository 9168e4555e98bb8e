// Package repository declares the storage contracts the services depend on.
// Implementations live in the sqlite and mongo subpackages.
package repository

import (
	"context"
	"fmt"

	"github.com/sakif/mentorchat/internal/model"
)

// Collection names. Messages live in a sub-collection of each chat
// document: chats/{chatId}/messages/{id}.
const (
	UsersCollection    = "users"
	ChatsCollection    = "chats"
	MessagesCollection = "messages"
)

// UserRepository reads and writes documents in the users collection,
// keyed by the identity provider's uid.
type UserRepository interface {
	// GetUser returns apperror.ErrNotFound when no document exists for uid.
	GetUser(ctx context.Context, uid string) (*model.User, error)
	// SetUser overwrites the whole document for user.UID, creating it if
	// needed. It is not a compare-and-swap: the last writer wins.
	SetUser(ctx context.Context, user *model.User) error
	// UpdateUsername and UpdateIsMentor change one field of an existing
	// document and return apperror.ErrNotFound if there is none.
	UpdateUsername(ctx context.Context, uid, username string) error
	UpdateIsMentor(ctx context.Context, uid string, isMentor bool) error
	// DeleteUser removes the document. Deleting a missing document is not an error.
	DeleteUser(ctx context.Context, uid string) error
}

// Direction is the sort order of a MessageQuery.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// MessageQuery describes a read over one chat's messages sub-collection.
// OrderBy is a document field name (for example "dateCreated"); stores
// reject fields they cannot sort on with a validation error.
type MessageQuery struct {
	ChatID    string
	OrderBy   string
	Direction Direction
	Limit     int
}

// Path returns the document path of the queried collection.
func (q MessageQuery) Path() string {
	return fmt.Sprintf("%s/%s/%s", ChatsCollection, q.ChatID, MessagesCollection)
}

// MessageRepository stores chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	FindMessages(ctx context.Context, q MessageQuery) ([]model.Message, error)
}
