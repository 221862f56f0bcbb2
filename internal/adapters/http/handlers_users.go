package http

import (
	"net/http"

	"github.com/venomauth/licensing-service/internal/application"
)

func (h *Handler) createAppUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "create_app_user", err)
		return
	}
	var req application.CreateAppUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_app_user", err)
		return
	}

	res, err := h.service.CreateAppUser(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_app_user", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listAppUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_app_users", err)
		return
	}
	page := parseIntDefault(r.URL.Query().Get("page"), 0)

	res, err := h.service.ListAppUsers(r.Context(), claims.OwnerID, applicationID, page)
	if err != nil {
		writeMappedError(r.Context(), w, "list_app_users", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) extendAppUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "extend_app_users", err)
		return
	}
	var req application.ExtendAppUsersRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "extend_app_users", err)
		return
	}

	res, err := h.service.ExtendAppUsers(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "extend_app_users", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) subtractAppUserTime(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "subtract_app_user_time", err)
		return
	}
	var req application.SubtractAppUserTimeRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "subtract_app_user_time", err)
		return
	}

	res, err := h.service.SubtractAppUserTime(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "subtract_app_user_time", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteAppUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_app_users", err)
		return
	}
	var req application.DeleteAppUsersRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "delete_app_users", err)
		return
	}

	res, err := h.service.DeleteAppUsers(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "delete_app_users", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
