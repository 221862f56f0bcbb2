package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/venomauth/licensing-service/internal/application"
)

// Handler is the HTTP adapter entrypoint for the dashboard admin API.
// Keeping only the application dependency here preserves clean adapter
// boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the admin HTTP routes and middleware stack. Every
// route under /admin/v1 requires a verified owner token; the ownership
// guard in the application layer does the per-application scoping.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/admin/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)

		r.Post("/applications", handler.createApplication)
		r.Get("/applications", handler.listApplications)

		r.Route("/applications/{application_id}", func(r chi.Router) {
			r.Patch("/status", handler.setApplicationStatus)
			r.Post("/secret", handler.rotateApplicationSecret)
			r.Delete("/", handler.deleteApplication)

			r.Post("/licenses", handler.createLicenseBatch)
			r.Get("/licenses", handler.listLicenses)
			r.Post("/licenses/add-time", handler.addLicenseTime)
			r.Post("/licenses/delete", handler.deleteLicenses)
			r.Post("/licenses/{license_id}/ban", handler.banLicense)
			r.Post("/licenses/{license_id}/unban", handler.unbanLicense)

			r.Post("/users", handler.createAppUser)
			r.Get("/users", handler.listAppUsers)
			r.Post("/users/extend", handler.extendAppUsers)
			r.Post("/users/subtract", handler.subtractAppUserTime)
			r.Post("/users/delete", handler.deleteAppUsers)
			r.Post("/users/pause", handler.pauseAppUsers)
			r.Post("/users/reset-hwid", handler.resetHwid)
			r.Post("/users/{user_id}/ban", handler.banAppUser)
			r.Post("/users/{user_id}/unban", handler.unbanAppUser)
			r.Delete("/users/{user_id}/subscription", handler.deleteSubscription)

			r.Put("/users/{user_id}/vars", handler.setUserVar)
			r.Get("/users/{user_id}/vars", handler.listUserVars)
			r.Delete("/users/{user_id}/vars/{name}", handler.deleteUserVar)

			r.Post("/blacklist", handler.addBlacklistEntry)
			r.Get("/blacklist", handler.listBlacklist)
			r.Delete("/blacklist/{entry_id}", handler.removeBlacklistEntry)

			r.Get("/sessions", handler.listAppSessions)
			r.Delete("/sessions", handler.killAllAppSessions)
			r.Delete("/sessions/{session_id}", handler.killAppSession)
		})
	})

	return r
}
