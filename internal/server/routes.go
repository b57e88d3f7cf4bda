package server

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"example.com/ai-trip-planner/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	db *pgxpool.Pool,
	plannerHandler *handlers.PlannerHandler,
	tripHandler *handlers.TripHandler,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)
	e.GET("/ready", handlers.Ready(db))

	api := e.Group("/api/v1")

	planning := api.Group("", aiRateLimiter)
	planning.POST("/budget", plannerHandler.ProcessBudget)
	planning.POST("/budget/reset", plannerHandler.ResetBudget)
	planning.POST("/hotels/search", plannerHandler.SearchHotels)
	planning.POST("/transport/search", plannerHandler.SearchTransport)
	planning.POST("/itinerary/generate", plannerHandler.GenerateItinerary)

	trips := api.Group("/trips")
	trips.POST("", tripHandler.Create)
	trips.GET("", tripHandler.List)
	trips.GET("/:id", tripHandler.Get)
	trips.PUT("/:id", tripHandler.Update)
	trips.DELETE("/:id", tripHandler.Delete)
}
