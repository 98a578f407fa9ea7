package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/contactbook/internal/api/handlers"
	"github.com/isdelr/contactbook/internal/api/middleware"
	"github.com/isdelr/contactbook/internal/api/response"
	"github.com/isdelr/contactbook/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(userService services.UserServiceProvider, versionService services.VersionServiceProvider, db handlers.Pinger, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	versionHandler := handlers.NewVersionHandler(versionService)
	healthHandler := handlers.NewHealthHandler(db)

	r.Get("/health", healthHandler.Check)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/create", userHandler.Create)
		r.Get("/all", userHandler.GetAll)
		r.Get("/{id}", userHandler.Get)
		r.Put("/edit/{id}", userHandler.Update)
		r.Delete("/delete/{id}", userHandler.Delete)
		r.Post("/toggle-favorite/{id}", userHandler.ToggleFavorite)

		r.Get("/versions/{id}", versionHandler.GetAllForUser)
		r.Delete("/versions/delete/{versionId}", versionHandler.Delete)
	})

	return r
}
