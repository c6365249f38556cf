package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/auth"
)

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, dataHandler *DataHandler, scheduleHandler *ScheduleHandler, exportHandler *ExportHandler) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Zone Inscriptions API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// The document endpoint handles method dispatch itself (GET/POST/405).
	r.HandleFunc("/api/data", dataHandler.Handle)

	huma.Post(api, "/api/login", authHandler.HandleLogin)
	huma.Get(api, "/api/me", authHandler.HandleMe, func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	})
	huma.Get(api, "/api/schedule", scheduleHandler.HandleSchedule, func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	})

	// Admin-only downloads
	r.Group(func(r chi.Router) {
		r.Use(authHandler.AdminMiddleware)
		r.Get("/api/export/registrations.csv", exportHandler.HandleRegistrationsCSV)
		r.Get("/api/export/schedule.csv", exportHandler.HandleScheduleCSV)
		r.Get("/api/export/schedule.ics", exportHandler.HandleScheduleICS)
	})
}
