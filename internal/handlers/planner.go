package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/ai-trip-planner/backend/internal/models"
	"example.com/ai-trip-planner/backend/internal/planner"
)

type PlannerHandler struct {
	Coordinator *planner.Coordinator
}

// NewPlannerHandler создает обработчик конвейера планирования.
func NewPlannerHandler(coordinator *planner.Coordinator) *PlannerHandler {
	return &PlannerHandler{Coordinator: coordinator}
}

type BudgetRequest struct {
	TripType    string  `json:"trip_type" validate:"required,max=50"`
	Origin      string  `json:"origin" validate:"required,max=100"`
	Destination string  `json:"destination" validate:"required,max=100"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" validate:"required"`
	Budget      float64 `json:"budget" validate:"gt=0"`
	Adults      int     `json:"adults" validate:"gte=1,lte=20"`
	Children    int     `json:"children" validate:"gte=0,lte=20"`
}

type BudgetResponse struct {
	SessionID       string                  `json:"session_id"`
	Allocation      models.BudgetAllocation `json:"allocation"`
	Recommendations string                  `json:"recommendations"`
}

type SessionRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

type HotelSearchRequest struct {
	SessionID string  `json:"session_id" validate:"required,uuid"`
	MaxPrice  float64 `json:"max_price" validate:"gte=0"`
}

type HotelSearchResponse struct {
	Hotels []models.Hotel `json:"hotels"`
	Count  int            `json:"count"`
}

type TransportSearchRequest struct {
	SessionID string  `json:"session_id" validate:"required,uuid"`
	Budget    float64 `json:"budget" validate:"gte=0"`
}

type TransportSearchResponse struct {
	Modes []models.TransportMode `json:"transport_options"`
	Count int                    `json:"count"`
}

type ItineraryRequest struct {
	SessionID string   `json:"session_id" validate:"required,uuid"`
	Budget    float64  `json:"budget" validate:"gte=0"`
	Interests []string `json:"interests" validate:"max=10,dive,max=50"`
}

// ProcessBudget рассчитывает разбивку бюджета и открывает сессию
// планирования.
func (h *PlannerHandler) ProcessBudget(c echo.Context) error {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	startDate, endDate, err := parseTripDates(req.StartDate, req.EndDate)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result := h.Coordinator.ProcessBudget(c.Request().Context(), models.TripRequest{
		TripType:    req.TripType,
		Origin:      req.Origin,
		Destination: req.Destination,
		StartDate:   startDate,
		EndDate:     endDate,
		Budget:      req.Budget,
		Adults:      req.Adults,
		Children:    req.Children,
	})

	return c.JSON(http.StatusOK, BudgetResponse{
		SessionID:       result.SessionID.String(),
		Allocation:      result.Allocation,
		Recommendations: result.Recommendations,
	})
}

// ResetBudget закрывает сессию планирования.
func (h *PlannerHandler) ResetBudget(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	h.Coordinator.Reset(sessionID)
	return c.NoContent(http.StatusNoContent)
}

// SearchHotels возвращает отели в пределах бюджета сессии.
func (h *PlannerHandler) SearchHotels(c echo.Context) error {
	var req HotelSearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	hotels, err := h.Coordinator.SearchHotels(c.Request().Context(), sessionID, req.MaxPrice)
	if err != nil {
		if errors.Is(err, planner.ErrBudgetNotProcessed) {
			return badRequest(c, "budget must be processed first")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, HotelSearchResponse{Hotels: hotels, Count: len(hotels)})
}

// SearchTransport возвращает варианты транспорта в пределах бюджета сессии.
func (h *PlannerHandler) SearchTransport(c echo.Context) error {
	var req TransportSearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	modes, err := h.Coordinator.SearchTransport(c.Request().Context(), sessionID, req.Budget)
	if err != nil {
		if errors.Is(err, planner.ErrBudgetNotProcessed) {
			return badRequest(c, "budget must be processed first")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, TransportSearchResponse{Modes: modes, Count: len(modes)})
}

// GenerateItinerary строит поденный маршрут в пределах бюджета сессии.
func (h *PlannerHandler) GenerateItinerary(c echo.Context) error {
	var req ItineraryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	itinerary, err := h.Coordinator.GenerateItinerary(c.Request().Context(), sessionID, req.Budget, req.Interests)
	if err != nil {
		if errors.Is(err, planner.ErrBudgetNotProcessed) {
			return badRequest(c, "budget must be processed first")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, itinerary)
}

// parseTripDates разбирает даты поездки и проверяет, что выезд позже заезда.
func parseTripDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start_date, expected YYYY-MM-DD")
	}

	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end_date, expected YYYY-MM-DD")
	}

	if !endDate.After(startDate) {
		return time.Time{}, time.Time{}, errors.New("end_date must be after start_date")
	}

	return startDate, endDate, nil
}
