package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

var _ repository.UserRepository = (*Store)(nil)

func (s *Store) GetUser(ctx context.Context, uid string) (*model.User, error) {
	ref, err := s.userDoc(uid)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if isNotFound(err) {
		return nil, apperror.NotFound("user", uid)
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: getting user %s: %w", uid, err)
	}

	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("firestore: decoding user %s: %w", uid, err)
	}
	u.UID = snap.Ref.ID
	return &u, nil
}

// SetUser writes the document without MergeAll, so fields the new record
// omits are removed.
func (s *Store) SetUser(ctx context.Context, user *model.User) error {
	ref, err := s.userDoc(user.UID)
	if err != nil {
		return err
	}
	if _, err := ref.Set(ctx, user); err != nil {
		return fmt.Errorf("firestore: setting user %s: %w", user.UID, err)
	}
	return nil
}

func (s *Store) UpdateUsername(ctx context.Context, uid, username string) error {
	return s.updateField(ctx, uid, "username", username)
}

func (s *Store) UpdateIsMentor(ctx context.Context, uid string, isMentor bool) error {
	return s.updateField(ctx, uid, "isMentor", isMentor)
}

// updateField relies on Update failing with NotFound for a missing document.
func (s *Store) updateField(ctx context.Context, uid, field string, value any) error {
	ref, err := s.userDoc(uid)
	if err != nil {
		return err
	}
	_, err = ref.Update(ctx, []firestore.Update{{Path: field, Value: value}})
	if isNotFound(err) {
		return apperror.NotFound("user", uid)
	}
	if err != nil {
		return fmt.Errorf("firestore: updating %s of user %s: %w", field, uid, err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	ref, err := s.userDoc(uid)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("firestore: deleting user %s: %w", uid, err)
	}
	return nil
}
