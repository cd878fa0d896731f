package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-itinerary/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/summary"
	"github.com/FACorreiaa/go-trip-itinerary/internal/planner"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// emptyPoolSummary replaces the generated narrative when nothing in the
// candidate pool is open during the trip.
const emptyPoolSummary = "We could not find any places matching your preferences that are open during your trip dates."

// Service defines the business logic contract for itinerary operations.
type Service interface {
	BuildItinerary(ctx context.Context, userID uuid.UUID, req types.TripRequest) (*types.Itinerary, error)
	GetItinerary(ctx context.Context, userID, tripID uuid.UUID) (*types.Itinerary, error)
	GetItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Itinerary, int, error)
	UpdatePlaceRating(ctx context.Context, userID, tripID uuid.UUID, poiID string, rating float64) error
	DeleteItinerary(ctx context.Context, userID, tripID uuid.UUID) error
}

// WeatherProvider yields one weather code per trip date, nil outside the
// forecast horizon.
type WeatherProvider interface {
	ForecastForDates(ctx context.Context, loc types.Coordinates, start, end time.Time) []*int
}

type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	solver     *planner.Solver
	weather    WeatherProvider
	summarizer summary.Summarizer
	newRng     func() *rand.Rand
}

func NewServiceImpl(repo Repository, solver *planner.Solver, weather WeatherProvider, summarizer summary.Summarizer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		solver:     solver,
		weather:    weather,
		summarizer: summarizer,
		newRng:     func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
	}
}

// BuildItinerary runs the whole recommendation pipeline for one trip
// request: score the city's pool, resolve day availability, partition POIs
// across days, route each day, then assemble and persist the itinerary.
// Per-day routing runs in parallel; results are written back by day index
// so completion order never leaks into the output.
func (s *ServiceImpl) BuildItinerary(ctx context.Context, userID uuid.UUID, req types.TripRequest) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "BuildItinerary", trace.WithAttributes(
		attribute.String("city.id", req.CityID.String()),
		attribute.Int("trip.days", req.Days()),
	))
	defer span.End()
	start := time.Now()

	city, err := s.repo.GetCity(ctx, req.CityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load city", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load city: %w", err)
	}
	pool, err := s.repo.GetPOIsByCityID(ctx, req.CityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load POI pool", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load POI pool: %w", err)
	}

	scored := planner.ScorePool(pool, &req.Preferences)
	for i := range scored {
		planner.SanitizeSchedule(&scored[i].OpeningHours)
	}
	span.SetAttributes(attribute.Int("pool.size", len(pool)), attribute.Int("pool.scored", len(scored)))

	weekdays := planner.WeekdayIndices(req.StartDate, req.EndDate)
	avail := planner.ResolveAvailability(scored, weekdays)
	dates := req.Dates()
	weatherCodes := s.weather.ForecastForDates(ctx, city.Center, req.StartDate, req.EndDate)

	itinerary := &types.Itinerary{
		UserID:    userID,
		CityID:    city.ID,
		CityName:  city.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	if len(avail.Open) == 0 {
		// Degraded but valid: every day plan stays empty.
		for i, date := range dates {
			itinerary.Days = append(itinerary.Days, types.DayPlan{Date: date, Weather: weatherCodes[i]})
		}
		itinerary.Summary = emptyPoolSummary
		return s.persist(ctx, itinerary, start)
	}

	dayPools := planner.PartitionDays(avail, len(weekdays), s.newRng())

	routes := make([]*planner.DayRoute, len(dayPools))
	g, gctx := errgroup.WithContext(ctx)
	for i := range dayPools {
		g.Go(func() error {
			route, err := s.solver.SolveDay(gctx, dayPools[i], req.Hotel, weekdays[i])
			if err != nil {
				return fmt.Errorf("day %d: %w", i, err)
			}
			routes[i] = route
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Day routing failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Day routing failed")
		return nil, fmt.Errorf("failed to route trip days: %w", err)
	}

	summaryDays := make([][]types.ScoredPOI, len(routes))
	for i, route := range routes {
		day := types.DayPlan{Date: dates[i], Weather: weatherCodes[i]}
		for j, poiIdx := range route.Order {
			poi := dayPools[i][poiIdx]
			day.Visits = append(day.Visits, types.Visit{
				POI:             poi,
				ArrivalMinute:   route.Arrivals[j],
				DepartureMinute: route.Departures[j],
				TravelSeconds:   route.Legs[j].Seconds,
				TravelMode:      route.Legs[j].Mode,
			})
			summaryDays[i] = append(summaryDays[i], poi)
		}
		if dropped := len(route.Dropped); dropped > 0 {
			metrics.Get().PoisDroppedTotal.Add(ctx, int64(dropped))
		}
		itinerary.Days = append(itinerary.Days, day)
	}

	text, err := s.summarizer.Summarize(ctx, city.Name, summaryDays)
	if err != nil {
		// An itinerary without a narrative is still a valid itinerary.
		s.logger.WarnContext(ctx, "Trip summary generation failed", slog.Any("error", err))
		text = ""
	}
	itinerary.Summary = text

	return s.persist(ctx, itinerary, start)
}

func (s *ServiceImpl) persist(ctx context.Context, itinerary *types.Itinerary, start time.Time) (*types.Itinerary, error) {
	id, err := s.repo.SaveItinerary(ctx, itinerary)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to persist itinerary: %w", err)
	}
	itinerary.ID = id

	m := metrics.Get()
	m.RecommendationsTotal.Add(ctx, 1)
	m.RecommendationDurationSeconds.Record(ctx, time.Since(start).Seconds())
	s.logger.InfoContext(ctx, "Itinerary built",
		slog.String("tripID", id.String()),
		slog.Int("days", len(itinerary.Days)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return itinerary, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, tripID uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary")
	defer span.End()

	itinerary, err := s.repo.GetItinerary(ctx, userID, tripID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to get itinerary", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary retrieved")
	return itinerary, nil
}

func (s *ServiceImpl) GetItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Itinerary, int, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItineraries", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	itineraries, total, err := s.repo.GetItineraries(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list itineraries: %w", err)
	}
	return itineraries, total, nil
}

func (s *ServiceImpl) UpdatePlaceRating(ctx context.Context, userID, tripID uuid.UUID, poiID string, rating float64) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "UpdatePlaceRating")
	defer span.End()

	if err := s.repo.UpdatePlaceRating(ctx, userID, tripID, poiID, rating); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update place rating", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to update place rating: %w", err)
	}
	return nil
}

func (s *ServiceImpl) DeleteItinerary(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteItinerary")
	defer span.End()

	if err := s.repo.DeleteItinerary(ctx, userID, tripID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return nil
}
