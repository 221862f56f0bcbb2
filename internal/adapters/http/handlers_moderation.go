package http

import (
	"net/http"

	"github.com/venomauth/licensing-service/internal/application"
)

func (h *Handler) banAppUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "ban_app_user", err)
		return
	}
	userID, err := urlUUID(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "ban_app_user", err)
		return
	}
	var req application.BanRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "ban_app_user", err)
		return
	}

	res, err := h.service.BanAppUser(r.Context(), claims.OwnerID, applicationID, userID, req.Reason)
	if err != nil {
		writeMappedError(r.Context(), w, "ban_app_user", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) unbanAppUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "unban_app_user", err)
		return
	}
	userID, err := urlUUID(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "unban_app_user", err)
		return
	}

	res, err := h.service.UnbanAppUser(r.Context(), claims.OwnerID, applicationID, userID)
	if err != nil {
		writeMappedError(r.Context(), w, "unban_app_user", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) pauseAppUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "pause_app_users", err)
		return
	}
	var req application.PauseAppUsersRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "pause_app_users", err)
		return
	}

	res, err := h.service.PauseAppUsers(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "pause_app_users", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) resetHwid(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "reset_hwid", err)
		return
	}
	var req application.ResetHwidRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "reset_hwid", err)
		return
	}

	res, err := h.service.ResetHwid(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "reset_hwid", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_subscription", err)
		return
	}
	userID, err := urlUUID(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_subscription", err)
		return
	}

	res, err := h.service.DeleteSubscription(r.Context(), claims.OwnerID, applicationID, userID)
	if err != nil {
		writeMappedError(r.Context(), w, "delete_subscription", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) addBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "add_blacklist_entry", err)
		return
	}
	var req application.BlacklistAddRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "add_blacklist_entry", err)
		return
	}

	res, err := h.service.AddBlacklistEntry(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "add_blacklist_entry", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listBlacklist(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_blacklist", err)
		return
	}

	res, err := h.service.ListBlacklist(r.Context(), claims.OwnerID, applicationID)
	if err != nil {
		writeMappedError(r.Context(), w, "list_blacklist", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) removeBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "remove_blacklist_entry", err)
		return
	}
	entryID, err := urlUUID(r, "entry_id")
	if err != nil {
		writeValidationError(r.Context(), w, "remove_blacklist_entry", err)
		return
	}

	if err := h.service.RemoveBlacklistEntry(r.Context(), claims.OwnerID, applicationID, entryID); err != nil {
		writeMappedError(r.Context(), w, "remove_blacklist_entry", err)
		return
	}
	writeMessage(w, http.StatusOK, "blacklist entry removed")
}
