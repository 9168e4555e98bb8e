package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/mentorchat/internal/auth"
	"github.com/sakif/mentorchat/internal/service"
	"github.com/sakif/mentorchat/internal/signin"
)

const (
	stateCookie    = "oauth_state"
	verifierCookie = "oauth_pkce"

	// Long enough for the user to type a password, short enough to limit
	// the window for a replayed callback.
	signinCookieTTL = 10 * time.Minute
)

// AuthHandler runs the hosted sign-in flow and manages the session cookie.
//
//   - HandleSignIn   → start an attempt and redirect to the provider
//   - HandleCallback → turn the provider's answer into a session
//   - HandleSignOut  → clear the session cookie
type AuthHandler struct {
	signin *signin.Orchestrator
	tokens *auth.TokenService
	users  *service.UserService
	logger *slog.Logger
}

func NewAuthHandler(
	orchestrator *signin.Orchestrator,
	tokens *auth.TokenService,
	users *service.UserService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		signin: orchestrator,
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// HandleSignIn redirects the browser to the hosted sign-in pages.
//
// HTTP: GET /auth/signin
//
// The state (CSRF check) and the PKCE verifier are kept in short-lived
// HttpOnly cookies scoped to /auth, so only the callback ever sees them.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	attempt := h.signin.Begin()

	setAuthFlowCookie(w, stateCookie, attempt.State, int(signinCookieTTL.Seconds()))
	setAuthFlowCookie(w, verifierCookie, attempt.Verifier, int(signinCookieTTL.Seconds()))

	http.Redirect(w, r, attempt.URL, http.StatusFound)
}

// HandleCallback completes the sign-in flow.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
//
// On success the user's document is synchronized, a session cookie is set
// and the browser goes back to "/". Every other outcome redirects to
// "/?signin=canceled" or "/?signin=error&code=<n>".
//
// A failed synchronization does not block the sign-in: it is logged and the
// session is still issued. The next sync (POST /api/me/sync) repairs it.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cb := signin.ParseCallback(r.URL.Query())
	if c, err := r.Cookie(stateCookie); err == nil {
		cb.ExpectedState = c.Value
	}
	if c, err := r.Cookie(verifierCookie); err == nil {
		cb.Verifier = c.Value
	}

	// Both cookies are single-use.
	setAuthFlowCookie(w, stateCookie, "", -1)
	setAuthFlowCookie(w, verifierCookie, "", -1)

	h.signin.Complete(r.Context(), cb, func(ctx context.Context, res signin.Result) {
		if !res.OK() {
			http.Redirect(w, r, signinOutcomeURL(res), http.StatusSeeOther)
			return
		}

		id := *res.Identity
		if _, err := h.users.SyncUser(ctx, id); err != nil {
			h.logger.Error("sign-in: user sync failed",
				slog.String("uid", id.UID),
				slog.String("error", err.Error()),
			)
		}

		token, err := h.tokens.Generate(id)
		if err != nil {
			h.logger.Error("sign-in: token generation failed", slog.String("error", err.Error()))
			http.Redirect(w, r, signinOutcomeURL(signin.Result{
				Code: signin.ResultCanceled,
				Err:  &signin.Error{Code: signin.ErrorUnknown, Err: err},
			}), http.StatusSeeOther)
			return
		}

		h.setSessionCookie(w, token)
		h.logger.Info("user signed in", slog.String("uid", id.UID))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

// HandleSignOut clears the session cookie.
//
// HTTP: POST /auth/signout
//
// Sessions are stateless JWTs, so signing out only removes the cookie. The
// token itself stays valid until it expires.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func setAuthFlowCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// signinOutcomeURL is where a browser lands after an attempt that did not
// sign anybody in.
func signinOutcomeURL(res signin.Result) string {
	if res.Err == nil {
		return "/?signin=canceled"
	}
	return fmt.Sprintf("/?signin=error&code=%d", int(res.Err.Code))
}
