package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

var _ repository.MessageRepository = (*Store)(nil)

// sortable lists the message fields FindMessages accepts in OrderBy.
var sortable = map[string]bool{
	"dateCreated": true,
}

// CreateMessage creates chats/{chatId}/messages/{id}. Create fails with
// AlreadyExists when the id is taken.
func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	if !validID(msg.ID) {
		return apperror.ValidationFailed("id", "message chat id and id are required")
	}
	coll, err := s.messages(msg.ChatID)
	if err != nil {
		return err
	}

	doc := *msg
	doc.DateCreated = doc.DateCreated.UTC()
	if _, err := coll.Doc(msg.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore: creating message in %s: %w", msg.ChatID, err)
	}
	return nil
}

func (s *Store) FindMessages(ctx context.Context, q repository.MessageQuery) ([]model.Message, error) {
	if !sortable[q.OrderBy] {
		return nil, apperror.ValidationFailed("orderBy", fmt.Sprintf("cannot order messages by %q", q.OrderBy))
	}
	coll, err := s.messages(q.ChatID)
	if err != nil {
		return nil, err
	}

	dir := firestore.Asc
	if q.Direction == repository.Descending {
		dir = firestore.Desc
	}
	query := coll.OrderBy(q.OrderBy, dir).OrderBy(firestore.DocumentID, dir)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore: finding messages in %s: %w", q.Path(), err)
	}

	messages := make([]model.Message, 0, len(snaps))
	for _, snap := range snaps {
		var m model.Message
		if err := snap.DataTo(&m); err != nil {
			return nil, fmt.Errorf("firestore: decoding %s/%s: %w", q.Path(), snap.Ref.ID, err)
		}
		m.ID = snap.Ref.ID
		m.ChatID = q.ChatID
		m.DateCreated = m.DateCreated.UTC()
		messages = append(messages, m)
	}
	return messages, nil
}
