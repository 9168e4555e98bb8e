// Package signin runs the hosted sign-in flow and reports its outcome.
//
// The credential screens belong to the identity provider. This package only
// decides what the provider is asked to show (email/password, smart-lock
// behavior, theme, logo) and turns whatever comes back on the callback into
// a single Result that the caller's handler receives.
package signin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/xid"
	"golang.org/x/oauth2"

	"github.com/sakif/mentorchat/internal/auth"
)

// Provider is the part of auth.HostedProvider the orchestrator needs.
type Provider interface {
	AuthURL(state, verifier string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code, verifier string) (*auth.Identity, error)
}

var _ Provider = (*auth.HostedProvider)(nil)

// SmartLock controls the provider's saved-credential features.
type SmartLock struct {
	// Credentials lets the provider offer to save and auto-fill passwords.
	Credentials bool
	// Hints lets the provider suggest known email addresses.
	Hints bool
}

// Options configure the hosted sign-in pages.
type Options struct {
	Providers []string
	SmartLock SmartLock
	Theme     string
	Logo      string
}

// DefaultOptions asks for email/password only, with saved credentials off
// and hints on, using the LoginTheme look.
func DefaultOptions() Options {
	return Options{
		Providers: []string{"password"},
		SmartLock: SmartLock{Credentials: false, Hints: true},
		Theme:     "LoginTheme",
	}
}

// Attempt is one started sign-in. State and Verifier must be kept by the
// caller (the handler stores them in short-lived cookies) and handed back in
// the Callback.
type Attempt struct {
	URL      string
	State    string
	Verifier string
}

// Callback is what the provider sent back, plus what the caller kept from
// the Attempt.
type Callback struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string

	ExpectedState string
	Verifier      string
}

// ParseCallback reads the provider's redirect query parameters.
// The caller still has to fill ExpectedState and Verifier.
func ParseCallback(q url.Values) Callback {
	return Callback{
		State:            q.Get("state"),
		Code:             q.Get("code"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// ResultHandler receives the outcome of Complete.
type ResultHandler func(ctx context.Context, res Result)

type Orchestrator struct {
	provider Provider
	opts     Options
	logger   *slog.Logger
}

func New(provider Provider, opts Options, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{provider: provider, opts: opts, logger: logger}
}

// Begin starts an attempt with a fresh state and PKCE verifier.
func (o *Orchestrator) Begin() Attempt {
	state := xid.New().String()
	verifier := oauth2.GenerateVerifier()
	return Attempt{
		URL:      o.provider.AuthURL(state, verifier, o.authParams()...),
		State:    state,
		Verifier: verifier,
	}
}

func (o *Orchestrator) authParams() []oauth2.AuthCodeOption {
	var params []oauth2.AuthCodeOption
	if len(o.opts.Providers) > 0 {
		params = append(params, oauth2.SetAuthURLParam("providers", strings.Join(o.opts.Providers, ",")))
	}
	params = append(params,
		oauth2.SetAuthURLParam("smart_lock_credentials", strconv.FormatBool(o.opts.SmartLock.Credentials)),
		oauth2.SetAuthURLParam("smart_lock_hints", strconv.FormatBool(o.opts.SmartLock.Hints)),
	)
	if o.opts.Theme != "" {
		params = append(params, oauth2.SetAuthURLParam("theme", o.opts.Theme))
	}
	if o.opts.Logo != "" {
		params = append(params, oauth2.SetAuthURLParam("logo", o.opts.Logo))
	}
	return params
}

// Complete resolves cb and calls handle exactly once with the outcome.
// Nothing is retried.
func (o *Orchestrator) Complete(ctx context.Context, cb Callback, handle ResultHandler) {
	res := o.resolve(ctx, cb)
	if res.Err != nil {
		o.logger.Warn("sign-in failed",
			slog.String("code", res.Err.Code.String()),
			slog.String("error", res.Err.Error()),
		)
	} else if !res.OK() {
		o.logger.Info("sign-in canceled by user")
	}
	handle(ctx, res)
}

func (o *Orchestrator) resolve(ctx context.Context, cb Callback) Result {
	if cb.ExpectedState == "" || cb.State != cb.ExpectedState {
		return canceled(ErrorDeveloper, errors.New("state mismatch"))
	}

	if cb.Error != "" {
		if cb.Error == "access_denied" {
			return Result{Code: ResultCanceled}
		}
		return canceled(ErrorProvider, fmt.Errorf("provider returned %s: %s", cb.Error, cb.ErrorDescription))
	}

	if cb.Code == "" {
		return canceled(ErrorDeveloper, errors.New("callback has no code"))
	}

	id, err := o.provider.Exchange(ctx, cb.Code, cb.Verifier)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return canceled(ErrorNoNetwork, err)
		}
		return canceled(ErrorUnknown, err)
	}
	return Result{Code: ResultOK, Identity: id}
}

func canceled(code ErrorCode, err error) Result {
	return Result{Code: ResultCanceled, Err: &Error{Code: code, Err: err}}
}
