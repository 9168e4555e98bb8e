package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mentorchat/internal/apperror"
	"github.com/sakif/mentorchat/internal/service"
)

// UserHandler serves /api/me, the signed-in user's own record.
// Every route sits behind auth.RequireAuth.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the stored user record.
//
// HTTP: GET /api/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetCurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleSync re-runs the sign-in synchronization for the current session.
//
// HTTP: POST /api/me/sync
func (h *UserHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.SyncCurrentUser(r.Context())
	if err != nil {
		h.logger.Warn("sync failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUsernameRequest struct {
	Username string `json:"username"`
}

// HandleUpdateUsername changes the display name.
//
// HTTP: PUT /api/me/username  {"username": "Alicia"}
func (h *UserHandler) HandleUpdateUsername(w http.ResponseWriter, r *http.Request) {
	var req updateUsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.UpdateUsername(r.Context(), req.Username); err != nil {
		writeError(w, err)
		return
	}
	h.HandleMe(w, r)
}

type updateMentorRequest struct {
	IsMentor *bool `json:"isMentor"`
}

// HandleUpdateMentor sets or clears the mentor flag.
//
// HTTP: PUT /api/me/mentor  {"isMentor": true}
func (h *UserHandler) HandleUpdateMentor(w http.ResponseWriter, r *http.Request) {
	var req updateMentorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	// A missing field must not silently mean false.
	if req.IsMentor == nil {
		writeError(w, apperror.ValidationFailed("isMentor", "isMentor is required"))
		return
	}
	if err := h.users.UpdateIsMentor(r.Context(), *req.IsMentor); err != nil {
		writeError(w, err)
		return
	}
	h.HandleMe(w, r)
}

// HandleDelete deletes the user's record and signs them out.
//
// HTTP: DELETE /api/me
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteCurrentUser(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
