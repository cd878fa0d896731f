package itinerary

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-trip-itinerary/app/middleware"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

const dateLayout = "2006-01-02"

// maxTripDays caps the request before the partitioner and solver see it.
const maxTripDays = 14

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// CreateItineraryRequest is the JSON body for POST /recommendations.
type CreateItineraryRequest struct {
	CityID        uuid.UUID           `json:"city_id"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	Hotel         types.Coordinates   `json:"hotel"`
	Needs         []types.Need        `json:"needs"`
	PriceCeiling  int                 `json:"price_ceiling"`
	Categories    []string            `json:"categories"`
	Subcategories map[string][]string `json:"subcategories"`
}

// UpdateRatingRequest is the JSON body for rating feedback on one place.
type UpdateRatingRequest struct {
	Rating float64 `json:"rating"`
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := appMiddleware.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid user identity")
		return uuid.Nil, false
	}
	return id, true
}

// CreateItinerary handles POST /recommendations.
func (h *Handler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "CreateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommendations"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateItinerary"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req CreateItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CityID == uuid.Nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city_id is required")
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}

	trip := types.TripRequest{
		CityID:    req.CityID,
		StartDate: start,
		EndDate:   end,
		Hotel:     req.Hotel,
		Preferences: types.NewUserPreferences(
			req.Needs, req.PriceCeiling, req.Categories, req.Subcategories),
	}
	if days := trip.Days(); days > maxTripDays {
		api.ErrorResponse(w, r, http.StatusBadRequest, "trip length exceeds the supported maximum")
		return
	}
	span.SetAttributes(attribute.Int("trip.days", trip.Days()))

	itinerary, err := h.service.BuildItinerary(ctx, userID, trip)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "City not found")
			return
		}
		l.ErrorContext(ctx, "Failed to build itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to build itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, itinerary)
}

// GetItinerary handles GET /trips/{tripID}.
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetItinerary"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	itinerary, err := h.service.GetItinerary(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// GetItineraries handles GET /trips with page/page_size query params.
func (h *Handler) GetItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItineraries", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetItineraries"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	itineraries, total, err := h.service.GetItineraries(ctx, userID, page, pageSize)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"trips":     itineraries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// UpdatePlaceRating handles PATCH /trips/{tripID}/places/{poiID}/rating.
func (h *Handler) UpdatePlaceRating(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "UpdatePlaceRating", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/places/{poiID}/rating"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdatePlaceRating"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}
	poiID := chi.URLParam(r, "poiID")

	var req UpdateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "rating must be between 0 and 5")
		return
	}

	if err := h.service.UpdatePlaceRating(ctx, userID, tripID, poiID, req.Rating); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip or place not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update place rating", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update place rating")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// DeleteItinerary handles DELETE /trips/{tripID}.
func (h *Handler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "DeleteItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteItinerary"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	if err := h.service.DeleteItinerary(ctx, userID, tripID); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
