package http

import (
	"net/http"
	"strings"

	"github.com/venomauth/licensing-service/internal/application"
)

func (h *Handler) createLicenseBatch(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "create_license_batch", err)
		return
	}
	var req application.CreateLicenseBatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_license_batch", err)
		return
	}

	res, err := h.service.CreateLicenseBatch(r.Context(), claims.OwnerID, applicationID, req, strings.TrimSpace(r.Header.Get("Idempotency-Key")))
	if err != nil {
		writeMappedError(r.Context(), w, "create_license_batch", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listLicenses(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_licenses", err)
		return
	}
	page := parseIntDefault(r.URL.Query().Get("page"), 0)

	res, err := h.service.ListLicenses(r.Context(), claims.OwnerID, applicationID, page)
	if err != nil {
		writeMappedError(r.Context(), w, "list_licenses", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) addLicenseTime(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "add_license_time", err)
		return
	}
	var req application.AddLicenseTimeRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "add_license_time", err)
		return
	}

	res, err := h.service.AddLicenseTime(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "add_license_time", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) banLicense(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "ban_license", err)
		return
	}
	licenseID, err := urlUUID(r, "license_id")
	if err != nil {
		writeValidationError(r.Context(), w, "ban_license", err)
		return
	}
	var req application.BanRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "ban_license", err)
		return
	}

	res, err := h.service.BanLicense(r.Context(), claims.OwnerID, applicationID, licenseID, req.Reason)
	if err != nil {
		writeMappedError(r.Context(), w, "ban_license", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) unbanLicense(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "unban_license", err)
		return
	}
	licenseID, err := urlUUID(r, "license_id")
	if err != nil {
		writeValidationError(r.Context(), w, "unban_license", err)
		return
	}

	res, err := h.service.UnbanLicense(r.Context(), claims.OwnerID, applicationID, licenseID)
	if err != nil {
		writeMappedError(r.Context(), w, "unban_license", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteLicenses(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireOwner(w, r)
	if !ok {
		return
	}
	applicationID, err := urlUUID(r, "application_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_licenses", err)
		return
	}
	var req application.DeleteLicensesRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "delete_licenses", err)
		return
	}

	res, err := h.service.DeleteLicenses(r.Context(), claims.OwnerID, applicationID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "delete_licenses", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
