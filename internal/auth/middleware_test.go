package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mentorchat/internal/apperror"
)

func TestCurrentIdentity_Anonymous(t *testing.T) {
	_, err := CurrentIdentity(context.Background())
	assert.ErrorIs(t, err, apperror.ErrNotSignedIn)
}

func TestCurrentIdentity_BlankUIDIsAnonymous(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{DisplayName: "ghost"})
	_, err := CurrentIdentity(ctx)
	assert.ErrorIs(t, err, apperror.ErrNotSignedIn)
}

func TestCurrentIdentity_SignedIn(t *testing.T) {
	ctx := WithIdentity(context.Background(), alice())

	got, err := CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UID)
}

// echoUID writes the uid found in the request context, or "anonymous".
var echoUID = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, err := CurrentIdentity(r.Context())
	if err != nil {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(id.UID))
})

func requestWithSession(t *testing.T, ts *TokenService) *http.Request {
	t.Helper()
	token, err := ts.Generate(alice())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	return req
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	h := RequireAuth(ts)(echoUID)

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "unauthorized")
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithSession(t, ts))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", rec.Body.String())
	})
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	h := OptionalAuth(ts)(echoUID)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithSession(t, ts))
	assert.Equal(t, "u1", rec.Body.String())
}
