package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
)

// newTestDB opens a fresh in-memory database with all migrations applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

// =========================================================================
// GET / SET TESTS
// =========================================================================

func TestSetUser_ThenGetUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := model.NewUser("u1", "Alice", ptr("https://example.com/a.png"))
	require.NoError(t, db.SetUser(ctx, user))

	found, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user, found)
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUser(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSetUser_KeepsMentorFieldAbsent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetUser(ctx, &model.User{UID: "u2", Username: "Bob"}))

	found, err := db.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, found.HasMentorField(), "a NULL is_mentor column must read back as absent")
	assert.Nil(t, found.URLPicture)
}

func TestSetUser_OverwritesWholeDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{UID: "u1", Username: "Old", IsMentor: ptr(true), URLPicture: ptr("https://example.com/old.png")}
	require.NoError(t, db.SetUser(ctx, first))

	// The second write drops the picture; a merge would have kept it.
	second := &model.User{UID: "u1", Username: "New", IsMentor: ptr(false)}
	require.NoError(t, db.SetUser(ctx, second))

	found, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "New", found.Username)
	assert.False(t, found.Mentor())
	assert.Nil(t, found.URLPicture)
}

func TestSetUser_RequiresUID(t *testing.T) {
	db := newTestDB(t)

	err := db.SetUser(context.Background(), &model.User{Username: "nobody"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

// =========================================================================
// FIELD UPDATE TESTS
// =========================================================================

func TestUpdateUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.SetUser(ctx, model.NewUser("u1", "Alice", nil)))

	require.NoError(t, db.UpdateUsername(ctx, "u1", "Alicia"))

	found, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", found.Username)
	assert.False(t, found.Mentor(), "other fields must be untouched")
}

func TestUpdateIsMentor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.SetUser(ctx, model.NewUser("u1", "Alice", nil)))

	require.NoError(t, db.UpdateIsMentor(ctx, "u1", true))

	found, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found.Mentor())
	assert.Equal(t, "Alice", found.Username)
}

func TestFieldUpdates_MissingUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	assert.ErrorIs(t, db.UpdateUsername(ctx, "ghost", "x"), apperror.ErrNotFound)
	assert.ErrorIs(t, db.UpdateIsMentor(ctx, "ghost", true), apperror.ErrNotFound)
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.SetUser(ctx, model.NewUser("u1", "Alice", nil)))

	require.NoError(t, db.DeleteUser(ctx, "u1"))

	_, err := db.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, db.DeleteUser(ctx, "u1"))
}
