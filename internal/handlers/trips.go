package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/ai-trip-planner/backend/internal/models"
	"example.com/ai-trip-planner/backend/internal/repository"
)

type TripHandler struct {
	Trips *repository.TripRepository
}

// NewTripHandler создает обработчик сохраненных поездок.
func NewTripHandler(trips *repository.TripRepository) *TripHandler {
	return &TripHandler{Trips: trips}
}

type SaveTripRequest struct {
	UserID    string                  `json:"user_id" validate:"required,max=100"`
	Trip      models.TripRequest      `json:"trip_details" validate:"required"`
	Budget    models.BudgetAllocation `json:"budget" validate:"required"`
	Hotel     *models.Hotel           `json:"hotel"`
	Transport *models.TransportMode   `json:"transport"`
	Itinerary *models.Itinerary       `json:"itinerary"`
}

type TripListResponse struct {
	Trips []models.SavedTrip `json:"trips"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// Create сохраняет поездку.
func (h *TripHandler) Create(c echo.Context) error {
	var req SaveTripRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	trip, err := h.Trips.Create(c.Request().Context(), repository.TripInput{
		UserID:    strings.TrimSpace(req.UserID),
		Trip:      req.Trip,
		Budget:    req.Budget,
		Hotel:     req.Hotel,
		Transport: req.Transport,
		Itinerary: req.Itinerary,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "user_id is required")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, trip)
}

// List возвращает страницу поездок пользователя.
func (h *TripHandler) List(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("user_id"))
	if userID == "" {
		return badRequest(c, "user_id is required")
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	trips, total, err := h.Trips.List(c.Request().Context(), userID, page, limit)
	if err != nil {
		return serverError(c)
	}

	page, limit = repository.NormalizePage(page, limit)
	return c.JSON(http.StatusOK, TripListResponse{
		Trips: trips,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get возвращает поездку по идентификатору.
func (h *TripHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid trip id")
	}

	trip, err := h.Trips.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "trip not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, trip)
}

// Update перезаписывает снапшоты поездки.
func (h *TripHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid trip id")
	}

	var req SaveTripRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	trip, err := h.Trips.Update(c.Request().Context(), id, repository.TripInput{
		UserID:    strings.TrimSpace(req.UserID),
		Trip:      req.Trip,
		Budget:    req.Budget,
		Hotel:     req.Hotel,
		Transport: req.Transport,
		Itinerary: req.Itinerary,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "trip not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, trip)
}

// Delete удаляет поездку.
func (h *TripHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid trip id")
	}

	if err := h.Trips.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "trip not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return value
}
