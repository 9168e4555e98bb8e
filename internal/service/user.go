// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the document store
//
// Services accept primitives and a context, never HTTP types, and return
// apperror values that the handlers translate into status codes.
//
// WHO IS THE CURRENT USER?
// Operations on "the current user" read the identity the auth middleware put
// in the context with auth.CurrentIdentity. When none is present they return
// apperror.ErrNotSignedIn before touching the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/auth"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

const MaxUsernameLength = 100

// UserService keeps users/{uid} in step with the identity provider and
// exposes the profile operations of the signed-in user.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// SyncCurrentUser synchronizes the record of the identity in ctx.
func (s *UserService) SyncCurrentUser(ctx context.Context) (*model.User, error) {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return s.SyncUser(ctx, id)
}

// SyncUser writes users/{uid} from the provider's view of the user.
//
// MERGE RULE:
// The provider knows the uid, display name and picture but nothing about
// the mentor flag, which only this app sets. So the candidate record starts
// with isMentor=false and takes the stored flag when the existing document
// has one. The write itself is a full overwrite.
//
// The read and the write are separate requests with no transaction. Two
// concurrent syncs can race; the last write wins.
func (s *UserService) SyncUser(ctx context.Context, id auth.Identity) (*model.User, error) {
	if strings.TrimSpace(id.UID) == "" {
		return nil, apperror.ValidationFailed("uid", "user uid is required")
	}

	candidate := model.NewUser(id.UID, id.DisplayName, id.PhotoURL)

	existing, err := s.users.GetUser(ctx, id.UID)
	switch {
	case err == nil:
		if existing.HasMentorField() {
			candidate.SetMentor(existing.Mentor())
		}
	case errors.Is(err, apperror.ErrNotFound):
		// first sign-in
	default:
		return nil, fmt.Errorf("reading user %s: %w", id.UID, err)
	}

	if err := s.users.SetUser(ctx, candidate); err != nil {
		s.logger.Error("failed to sync user",
			slog.String("uid", id.UID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("writing user %s: %w", id.UID, err)
	}

	s.logger.Info("user synced",
		slog.String("uid", candidate.UID),
		slog.Bool("isMentor", candidate.Mentor()),
	)
	return candidate, nil
}

// GetCurrentUser reads the stored record of the signed-in user.
func (s *UserService) GetCurrentUser(ctx context.Context) (*model.User, error) {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, id.UID)
}

// UpdateUsername changes the signed-in user's display name.
func (s *UserService) UpdateUsername(ctx context.Context, username string) error {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}

	if err := s.users.UpdateUsername(ctx, id.UID, username); err != nil {
		return err
	}
	s.logger.Info("username updated", slog.String("uid", id.UID))
	return nil
}

// UpdateIsMentor sets the signed-in user's mentor flag.
func (s *UserService) UpdateIsMentor(ctx context.Context, isMentor bool) error {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return err
	}
	if err := s.users.UpdateIsMentor(ctx, id.UID, isMentor); err != nil {
		return err
	}
	s.logger.Info("mentor flag updated", slog.String("uid", id.UID), slog.Bool("isMentor", isMentor))
	return nil
}

// DeleteCurrentUser removes the signed-in user's record. The account at the
// identity provider is not touched.
func (s *UserService) DeleteCurrentUser(ctx context.Context) error {
	id, err := auth.CurrentIdentity(ctx)
	if err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id.UID); err != nil {
		return fmt.Errorf("deleting user %s: %w", id.UID, err)
	}
	s.logger.Info("user deleted", slog.String("uid", id.UID))
	return nil
}
