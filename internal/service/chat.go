package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/auth"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

const (
	DateCreatedField = "dateCreated"

	// MessageLimit caps a chat history read. Combined with ascending order
	// this returns the oldest messages of a longer chat.
	MessageLimit = 50

	MaxMessageLength = 2000
)

// ChatService reads and posts chat messages.
type ChatService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewChatService(messages repository.MessageRepository, users repository.UserRepository, logger *slog.Logger) *ChatService {
	return &ChatService{
		messages: messages,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// MessageQuery describes the history read of chats/{chatID}/messages:
// ordered by dateCreated ascending, at most MessageLimit documents.
func (s *ChatService) MessageQuery(chatID string) (repository.MessageQuery, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return repository.MessageQuery{}, apperror.ValidationFailed("chatId", "chat id is required")
	}
	if strings.Contains(chatID, "/") {
		return repository.MessageQuery{}, apperror.ValidationFailed("chatId", "chat id must not contain '/'")
	}
	return repository.MessageQuery{
		ChatID:    chatID,
		OrderBy:   DateCreatedField,
		Direction: repository.Ascending,
		Limit:     MessageLimit,
	}, nil
}

// ListMessages runs MessageQuery against the store.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	q, err := s.MessageQuery(chatID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.FindMessages(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", q.Path(), err)
	}
	return msgs, nil
}

// CreateMessage posts text to chatID as the signed-in user.
//
// The sender is a snapshot of the stored users/{uid} document, so the user
// must have been synced first; a missing document is apperror.ErrNotFound.
func (s *ChatService) CreateMessage(ctx context.Context, chatID, text string, urlImage *string) (*model.Message, error) {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	q, err := s.MessageQuery(chatID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("message", "message text is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, apperror.ValidationFailed("message",
			fmt.Sprintf("message must be %d characters or less", MaxMessageLength))
	}
	if urlImage != nil && strings.TrimSpace(*urlImage) == "" {
		urlImage = nil
	}

	sender, err := s.users.GetUser(ctx, id.UID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:          uuid.NewString(),
		ChatID:      q.ChatID,
		Message:     text,
		DateCreated: s.now().UTC(),
		UserSender:  *sender,
		URLImage:    urlImage,
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		s.logger.Error("failed to create message",
			slog.String("chatId", q.ChatID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating message in %s: %w", q.Path(), err)
	}

	s.logger.Info("message created",
		slog.String("chatId", msg.ChatID),
		slog.String("id", msg.ID),
		slog.String("sender", id.UID),
	)
	return msg, nil
}
