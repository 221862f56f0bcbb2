package http

import (
	"net/http"

	"github.com/venomauth/licensing-service/internal/application"
)

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req application.CreateApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_application", err)
		return
	}

	res, err := h.service.CreateApplication(r.Context(), claims.OwnerID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_application", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	res, err := h.service.ListApplications(r.Context(), claims.OwnerID)
	if err != nil {
		writeMappedError(r.Context(), w, "list_applications", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) setApplicationStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "set_application_status", err)
		return
	}
	var req application.SetApplicationStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_application_status", err)
		return
	}

	res, err := h.service.SetApplicationStatus(r.Context(), claims.OwnerID, applicationID, req.Status)
	if err != nil {
		writeMappedError(r.Context(), w, "set_application_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) rotateApplicationSecret(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "rotate_application_secret", err)
		return
	}

	res, err := h.service.RotateApplicationSecret(r.Context(), claims.OwnerID, applicationID)
	if err != nil {
		writeMappedError(r.Context(), w, "rotate_application_secret", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_application", err)
		return
	}

	if err := h.service.DeleteApplication(r.Context(), claims.OwnerID, applicationID); err != nil {
		writeMappedError(r.Context(), w, "delete_application", err)
		return
	}
	writeMessage(w, http.StatusOK, "application deleted")
}
