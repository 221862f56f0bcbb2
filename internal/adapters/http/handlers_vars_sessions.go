package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/venomauth/licensing-service/internal/application"
)

func (h *Handler) setUserVar(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "set_user_var", err)
		return
	}
	userID, err := urlUUID(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "set_user_var", err)
		return
	}
	var req application.SetUserVarRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_user_var", err)
		return
	}

	res, err := h.service.SetUserVar(r.Context(), claims.OwnerID, applicationID, userID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "set_user_var", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) listUserVars(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_user_vars", err)
		return
	}
	userID, err := urlUUID(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_user_vars", err)
		return
	}

	res, err := h.service.ListUserVars(r.Context(), claims.OwnerID, applicationID, userID)
	if err != nil {
		writeMappedError(r.Context(), w, "list_user_vars", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteUserVar(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_user_var", err)
		return
	}
	userID, err := urlUUID(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_user_var", err)
		return
	}
	name := chi.URLParam(r, "name")

	if err := h.service.DeleteUserVar(r.Context(), claims.OwnerID, applicationID, userID, name); err != nil {
		writeMappedError(r.Context(), w, "delete_user_var", err)
		return
	}
	writeMessage(w, http.StatusOK, "variable deleted")
}

func (h *Handler) listAppSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_app_sessions", err)
		return
	}

	res, err := h.service.ListAppSessions(r.Context(), claims.OwnerID, applicationID)
	if err != nil {
		writeMappedError(r.Context(), w, "list_app_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) killAppSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "kill_app_session", err)
		return
	}
	sessionID := chi.URLParam(r, "session_id")

	if err := h.service.KillAppSession(r.Context(), claims.OwnerID, applicationID, sessionID); err != nil {
		writeMappedError(r.Context(), w, "kill_app_session", err)
		return
	}
	writeMessage(w, http.StatusOK, "session killed")
}

func (h *Handler) killAllAppSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "kill_all_app_sessions", err)
		return
	}

	res, err := h.service.KillAllAppSessions(r.Context(), claims.OwnerID, applicationID)
	if err != nil {
		writeMappedError(r.Context(), w, "kill_all_app_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
