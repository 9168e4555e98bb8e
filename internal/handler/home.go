// Package handler contains the HTTP handlers.
//
// WHAT IS A HANDLER?
// Anything implementing http.Handler, usually an http.HandlerFunc. Chi's
// router accepts these directly.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (URL params, query, body, cookies)
//  2. Call the service layer
//  3. Write the HTTP response (status code, headers, body)
//
// Handlers hold no business rules; they are the glue between HTTP and the
// services.
package handler

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/model"
	"github.com/sakif/mentorchat/internal/service"
	"github.com/sakif/mentorchat/internal/signin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HomeHandler renders the landing page: a sign-in button, or who is signed
// in, plus a notice describing the last sign-in outcome.
//
// The template is parsed once in NewHomeHandler and reused.
type HomeHandler struct {
	templates *template.Template
	users     *service.UserService
	logger    *slog.Logger
}

func NewHomeHandler(users *service.UserService, logger *slog.Logger) (*HomeHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/home.html")
	if err != nil {
		return nil, err
	}
	return &HomeHandler{templates: tmpl, users: users, logger: logger}, nil
}

type homePage struct {
	Title  string
	Notice string
	User   *model.User
}

// HandleHome serves the landing page.
//
// HTTP: GET /   (behind auth.OptionalAuth)
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	page := homePage{
		Title:  "MentorChat",
		Notice: signinNotice(r.URL.Query().Get("signin"), r.URL.Query().Get("code")),
	}

	user, err := h.users.GetCurrentUser(r.Context())
	switch {
	case err == nil:
		page.User = user
	case errors.Is(err, apperror.ErrNotSignedIn), errors.Is(err, apperror.ErrNotFound):
		// anonymous, or signed in before the first sync landed
	default:
		h.logger.Error("home: loading current user", slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "home", page); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// signinNotice turns the query left by AuthHandler.HandleCallback into a
// message for the user.
func signinNotice(outcome, code string) string {
	switch outcome {
	case "canceled":
		return "Sign-in canceled."
	case "error":
		n, _ := strconv.Atoi(code)
		switch signin.ErrorCode(n) {
		case signin.ErrorNoNetwork:
			return "Sign-in failed: no network connection."
		case signin.ErrorProvider:
			return "Sign-in failed: the identity provider reported an error."
		default:
			return "Sign-in failed: unknown error."
		}
	default:
		return ""
	}
}
