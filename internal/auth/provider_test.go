package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://idp.example.com"
	testClientID = "mentorchat-client"
)

// fakeIdP is a token endpoint that answers every exchange with an RS256
// id_token signed by key. It records the last form it received.
type fakeIdP struct {
	key      *rsa.PrivateKey
	claims   jwt.MapClaims
	lastForm url.Values
	server   *httptest.Server
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	idp := &fakeIdP{
		key: key,
		claims: jwt.MapClaims{
			"iss":     testIssuer,
			"aud":     testClientID,
			"sub":     "u1",
			"name":    "Alice",
			"email":   "alice@example.com",
			"picture": "https://example.com/alice.png",
			"iat":     time.Now().Unix(),
			"exp":     time.Now().Add(time.Hour).Unix(),
		},
	}

	idp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		idp.lastForm = r.PostForm

		idToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, idp.claims).SignedString(idp.key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	}))
	t.Cleanup(idp.server.Close)
	return idp
}

func (idp *fakeIdP) provider() *HostedProvider {
	config := &oauth2.Config{
		ClientID:     testClientID,
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   testIssuer + "/authorize",
			TokenURL:  idp.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&idp.key.PublicKey}}
	verifier := oidc.NewVerifier(testIssuer, keys, &oidc.Config{ClientID: testClientID})
	return newHostedProvider(config, verifier)
}

func TestHostedProvider_AuthURL(t *testing.T) {
	p := newFakeIdP(t).provider()
	verifier := oauth2.GenerateVerifier()

	raw := p.AuthURL("state-1", verifier, oauth2.SetAuthURLParam("theme", "LoginTheme"))
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotEqual(t, verifier, q.Get("code_challenge"), "the verifier itself must never be sent")
	assert.Equal(t, "LoginTheme", q.Get("theme"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestHostedProvider_Exchange(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider()

	id, err := p.Exchange(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "u1", id.UID)
	assert.Equal(t, "Alice", id.DisplayName)
	assert.Equal(t, "alice@example.com", id.Email)
	require.NotNil(t, id.PhotoURL)
	assert.Equal(t, "https://example.com/alice.png", *id.PhotoURL)

	assert.Equal(t, "code-1", idp.lastForm.Get("code"))
	assert.Equal(t, "verifier-1", idp.lastForm.Get("code_verifier"))
}

func TestHostedProvider_ExchangeFallsBackToEmailName(t *testing.T) {
	idp := newFakeIdP(t)
	delete(idp.claims, "name")
	delete(idp.claims, "picture")

	id, err := idp.provider().Exchange(context.Background(), "code-1", "v")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.DisplayName)
	assert.Nil(t, id.PhotoURL)
}

func TestHostedProvider_ExchangeRejectsWrongAudience(t *testing.T) {
	idp := newFakeIdP(t)
	idp.claims["aud"] = "someone-else"

	_, err := idp.provider().Exchange(context.Background(), "code-1", "v")
	assert.Error(t, err)
}

func TestHostedProvider_ExchangeNetworkError(t *testing.T) {
	idp := newFakeIdP(t)
	p := idp.provider()
	idp.server.Close()

	_, err := p.Exchange(context.Background(), "code-1", "v")
	require.Error(t, err)

	var netErr net.Error
	assert.ErrorAs(t, err, &netErr)
}
