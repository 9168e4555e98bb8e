package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// HostedProvider drives the OAuth2 authorization code flow against a hosted
// OpenID Connect provider whose own pages collect the user's credentials.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW WITH PKCE:
//  1. We redirect the user to the provider's authorization endpoint with a
//     random state and the S256 hash of a random verifier.
//  2. The user signs in on the provider's pages (or backs out).
//  3. The provider redirects to our callback with a short-lived "code".
//  4. We exchange code + verifier for tokens, server to server.
//  5. We verify the returned id_token and read the identity from its claims.
//
// PKCE binds the code to the browser that started the flow: a stolen code is
// useless without the verifier, which never leaves our cookie.
type HostedProvider struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewHostedProvider discovers the provider's endpoints and signing keys from
// issuerURL/.well-known/openid-configuration.
func NewHostedProvider(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string) (*HostedProvider, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("auth: discovering provider %s: %w", issuerURL, err)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	return newHostedProvider(config, provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func newHostedProvider(config *oauth2.Config, verifier *oidc.IDTokenVerifier) *HostedProvider {
	return &HostedProvider{config: config, verifier: verifier}
}

// AuthURL returns the provider URL the browser is redirected to.
// opts carry provider-specific parameters such as the sign-in theme.
func (p *HostedProvider) AuthURL(state, verifier string, opts ...oauth2.AuthCodeOption) string {
	opts = append(opts, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange trades the authorization code for a verified Identity.
//
// Transport failures are wrapped with %w so callers can still detect them
// with errors.As(err, &net.Error).
func (p *HostedProvider) Exchange(ctx context.Context, code, verifier string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("auth: token response has no id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("auth: verifying id_token: %w", err)
	}

	var profile struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&profile); err != nil {
		return nil, fmt.Errorf("auth: reading id_token claims: %w", err)
	}

	id := &Identity{
		UID:         idToken.Subject,
		DisplayName: profile.Name,
		Email:       profile.Email,
	}
	// Email/password accounts often have no display name yet.
	if id.DisplayName == "" && profile.Email != "" {
		id.DisplayName, _, _ = strings.Cut(profile.Email, "@")
	}
	if profile.Picture != "" {
		id.PhotoURL = &profile.Picture
	}
	return id, nil
}
