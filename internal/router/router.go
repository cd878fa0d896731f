// Package router wires the feature handlers onto the chi route tree.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-trip-itinerary/internal/api/itinerary"
)

// Config contains the dependencies needed for the router setup.
type Config struct {
	ItineraryHandler       *itinerary.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/recommendations", cfg.ItineraryHandler.CreateItinerary)

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", cfg.ItineraryHandler.GetItineraries)
				r.Get("/{tripID}", cfg.ItineraryHandler.GetItinerary)
				r.Delete("/{tripID}", cfg.ItineraryHandler.DeleteItinerary)
				r.Patch("/{tripID}/places/{poiID}/rating", cfg.ItineraryHandler.UpdatePlaceRating)
			})
		})
	})

	return r
}
