package planner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"example.com/ai-trip-planner/backend/internal/models"
)

// ErrBudgetNotProcessed возвращается, когда агент вызван до расчета бюджета.
var ErrBudgetNotProcessed = errors.New("budget must be processed first")

// Coordinator связывает агентов в конвейер: сперва расчет бюджета создает
// сессию с потолками по категориям, затем поиски отелей, транспорта и
// генерация маршрута работают в пределах этих потолков.
type Coordinator struct {
	allocator *Allocator
	hotels    *HotelAgent
	transport *TransportAgent
	itinerary *ItineraryAgent
	sessions  *SessionStore
	logger    *slog.Logger
}

// NewCoordinator создает координатор конвейера планирования.
func NewCoordinator(allocator *Allocator, hotels *HotelAgent, transport *TransportAgent, itinerary *ItineraryAgent, sessions *SessionStore, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		allocator: allocator,
		hotels:    hotels,
		transport: transport,
		itinerary: itinerary,
		sessions:  sessions,
		logger:    logger,
	}
}

type BudgetResult struct {
	SessionID       uuid.UUID
	Allocation      models.BudgetAllocation
	Recommendations string
}

// ProcessBudget раскладывает бюджет, открывает сессию планирования и
// возвращает ее идентификатор вместе с разбивкой.
func (c *Coordinator) ProcessBudget(_ context.Context, trip models.TripRequest) BudgetResult {
	// Разница дат заезда и выезда и есть число ночевок в отеле;
	// план активностей покрывает столько же дней.
	days := trip.Days()
	if days < 1 {
		days = 1
	}
	nights := days

	allocation := c.allocator.Allocate(trip.TripType, trip.Budget, days, nights)

	session := c.sessions.Create(
		TripContext{
			TripType:    trip.TripType,
			Origin:      trip.Origin,
			Destination: trip.Destination,
			StartDate:   trip.StartDate,
			EndDate:     trip.EndDate,
			Adults:      trip.Adults,
			Children:    trip.Children,
		},
		AllocationCeilings{
			HotelPerNight:    allocation.HotelPerNight,
			Transport:        allocation.Transport,
			Activities:       allocation.Activities,
			ActivitiesPerDay: allocation.ActivitiesPerDay,
			Days:             days,
			Nights:           nights,
		},
	)

	c.logger.Info("budget pipeline set",
		slog.String("session_id", session.ID.String()),
		slog.Float64("hotel_per_night", allocation.HotelPerNight),
		slog.Float64("transport_budget", allocation.Transport),
		slog.Float64("activities_per_day", allocation.ActivitiesPerDay))

	return BudgetResult{
		SessionID:       session.ID,
		Allocation:      allocation,
		Recommendations: c.allocator.Recommendations(trip, allocation),
	}
}

// SearchHotels ищет отели в пределах бюджета сессии. Запрошенный потолок
// цены ужимается до лимита за ночь из расчета бюджета.
func (c *Coordinator) SearchHotels(ctx context.Context, sessionID uuid.UUID, maxPricePerNight float64) ([]models.Hotel, error) {
	session, ok := c.sessions.Get(sessionID)
	if !ok {
		return nil, ErrBudgetNotProcessed
	}

	ceiling := clampBudget(maxPricePerNight, session.Allocation.HotelPerNight)
	c.logger.Debug("searching hotels",
		slog.String("session_id", sessionID.String()),
		slog.Float64("max_price_per_night", ceiling))

	return c.hotels.Search(ctx, HotelQuery{
		Destination:      session.Trip.Destination,
		CheckIn:          session.Trip.StartDate,
		CheckOut:         session.Trip.EndDate,
		Adults:           session.Trip.Adults,
		Children:         session.Trip.Children,
		TripType:         session.Trip.TripType,
		MaxPricePerNight: ceiling,
	}), nil
}

// SearchTransport ищет транспорт в пределах бюджета сессии.
func (c *Coordinator) SearchTransport(ctx context.Context, sessionID uuid.UUID, budget float64) ([]models.TransportMode, error) {
	session, ok := c.sessions.Get(sessionID)
	if !ok {
		return nil, ErrBudgetNotProcessed
	}

	ceiling := clampBudget(budget, session.Allocation.Transport)
	c.logger.Debug("searching transport",
		slog.String("session_id", sessionID.String()),
		slog.Float64("budget", ceiling))

	return c.transport.Search(ctx, TransportQuery{
		Origin:      session.Trip.Origin,
		Destination: session.Trip.Destination,
		TravelDate:  session.Trip.StartDate,
		Adults:      session.Trip.Adults,
		Children:    session.Trip.Children,
		Budget:      ceiling,
	}), nil
}

// GenerateItinerary строит маршрут в пределах бюджета активностей.
// Превышение итоговой стоимости над бюджетом не считается ошибкой и
// только логируется.
func (c *Coordinator) GenerateItinerary(ctx context.Context, sessionID uuid.UUID, budget float64, interests []string) (models.Itinerary, error) {
	session, ok := c.sessions.Get(sessionID)
	if !ok {
		return models.Itinerary{}, ErrBudgetNotProcessed
	}

	ceiling := clampBudget(budget, session.Allocation.Activities)

	itinerary := c.itinerary.Generate(ctx, ItineraryQuery{
		Destination: session.Trip.Destination,
		TripType:    session.Trip.TripType,
		StartDate:   session.Trip.StartDate,
		Days:        session.Allocation.Days,
		Budget:      ceiling,
		Interests:   interests,
	})

	if itinerary.TotalCost > ceiling {
		c.logger.Warn("itinerary cost exceeds activities budget",
			slog.String("session_id", sessionID.String()),
			slog.Float64("total_cost", itinerary.TotalCost),
			slog.Float64("budget", ceiling))
	}

	return itinerary, nil
}

// Reset закрывает сессию планирования.
func (c *Coordinator) Reset(sessionID uuid.UUID) {
	c.sessions.Delete(sessionID)
	c.logger.Info("pipeline reset", slog.String("session_id", sessionID.String()))
}

// clampBudget ужимает запрошенный бюджет до потолка из расчета; нулевой
// или отрицательный запрос означает "весь доступный лимит".
func clampBudget(requested, ceiling float64) float64 {
	if requested <= 0 || requested > ceiling {
		return ceiling
	}

	return requested
}
