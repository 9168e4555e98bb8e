package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

var _ repository.MessageRepository = (*DB)(nil)

// messageRow is the flattened table shape of a model.Message.
// The embedded sender snapshot is spread over the sender_* columns.
type messageRow struct {
	ChatID           string    `db:"chat_id"`
	ID               string    `db:"id"`
	Message          string    `db:"message"`
	URLImage         *string   `db:"url_image"`
	DateCreated      time.Time `db:"date_created"`
	SenderUID        string    `db:"sender_uid"`
	SenderUsername   string    `db:"sender_username"`
	SenderIsMentor   *bool     `db:"sender_is_mentor"`
	SenderURLPicture *string   `db:"sender_url_picture"`
}

func toMessageRow(m *model.Message) messageRow {
	return messageRow{
		ChatID:           m.ChatID,
		ID:               m.ID,
		Message:          m.Message,
		URLImage:         m.URLImage,
		DateCreated:      m.DateCreated.UTC(),
		SenderUID:        m.UserSender.UID,
		SenderUsername:   m.UserSender.Username,
		SenderIsMentor:   m.UserSender.IsMentor,
		SenderURLPicture: m.UserSender.URLPicture,
	}
}

func (r messageRow) toModel() model.Message {
	return model.Message{
		ID:          r.ID,
		ChatID:      r.ChatID,
		Message:     r.Message,
		DateCreated: r.DateCreated.UTC(),
		URLImage:    r.URLImage,
		UserSender: model.User{
			UID:        r.SenderUID,
			Username:   r.SenderUsername,
			IsMentor:   r.SenderIsMentor,
			URLPicture: r.SenderURLPicture,
		},
	}
}

// sortColumns maps sortable document fields to their column.
// Only whitelisted names ever reach the ORDER BY clause.
var sortColumns = map[string]string{
	"dateCreated": "date_created",
}

const insertMessageQuery = `
	INSERT INTO messages (
		chat_id, id, message, url_image, date_created,
		sender_uid, sender_username, sender_is_mentor, sender_url_picture
	) VALUES (
		:chat_id, :id, :message, :url_image, :date_created,
		:sender_uid, :sender_username, :sender_is_mentor, :sender_url_picture
	)
`

// CreateMessage inserts msg into chats/{msg.ChatID}/messages.
func (db *DB) CreateMessage(ctx context.Context, msg *model.Message) error {
	if msg.ChatID == "" || msg.ID == "" {
		return apperror.ValidationFailed("id", "message chat id and id are required")
	}
	if _, err := db.conn.NamedExecContext(ctx, insertMessageQuery, toMessageRow(msg)); err != nil {
		return fmt.Errorf("sqlite: creating message in %s: %w", msg.ChatID, err)
	}
	return nil
}

// FindMessages runs q against one chat's messages.
// A chat with no messages yields an empty, non-nil slice.
func (db *DB) FindMessages(ctx context.Context, q repository.MessageQuery) ([]model.Message, error) {
	column, ok := sortColumns[q.OrderBy]
	if !ok {
		return nil, apperror.ValidationFailed("orderBy", fmt.Sprintf("cannot order messages by %q", q.OrderBy))
	}

	// The id tiebreak keeps results stable when two messages share a timestamp.
	query := fmt.Sprintf(`
		SELECT chat_id, id, message, url_image, date_created,
		       sender_uid, sender_username, sender_is_mentor, sender_url_picture
		FROM messages
		WHERE chat_id = ?
		ORDER BY %s %s, id %s`, column, q.Direction, q.Direction)

	args := []any{q.ChatID}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	var rows []messageRow
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: finding messages in %s: %w", q.Path(), err)
	}

	messages := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, r.toModel())
	}
	return messages, nil
}
