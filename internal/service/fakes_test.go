package service

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/auth"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the document store. They copy values on the way
// in and out so a test cannot mutate stored state through a pointer.
// getErr / setErr simulate store failures.

type fakeUserRepo struct {
	users  map[string]model.User
	getErr error
	setErr error

	gets int
	sets int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (f *fakeUserRepo) GetUser(_ context.Context, uid string) (*model.User, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, apperror.NotFound("user", uid)
	}
	return &u, nil
}

func (f *fakeUserRepo) SetUser(_ context.Context, user *model.User) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.users[user.UID] = *user
	return nil
}

func (f *fakeUserRepo) UpdateUsername(_ context.Context, uid, username string) error {
	u, ok := f.users[uid]
	if !ok {
		return apperror.NotFound("user", uid)
	}
	u.Username = username
	f.users[uid] = u
	return nil
}

func (f *fakeUserRepo) UpdateIsMentor(_ context.Context, uid string, isMentor bool) error {
	u, ok := f.users[uid]
	if !ok {
		return apperror.NotFound("user", uid)
	}
	u.SetMentor(isMentor)
	f.users[uid] = u
	return nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, uid string) error {
	delete(f.users, uid)
	return nil
}

type fakeMessageRepo struct {
	messages  []model.Message
	lastQuery repository.MessageQuery
}

func (f *fakeMessageRepo) CreateMessage(_ context.Context, msg *model.Message) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessageRepo) FindMessages(_ context.Context, q repository.MessageQuery) ([]model.Message, error) {
	f.lastQuery = q
	out := make([]model.Message, 0)
	for _, m := range f.messages {
		if m.ChatID == q.ChatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.Before(out[j].DateCreated) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedIn(uid, name string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UID: uid, DisplayName: name})
}
