package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/ai-trip-planner/backend/internal/models"
)

func testCoordinator() *Coordinator {
	return NewCoordinator(
		NewAllocator(),
		NewHotelAgent(nil, nil, DefaultPricePolicy(), nil),
		NewTransportAgent(nil, nil, time.Second, 150, nil),
		NewItineraryAgent(nil, nil),
		NewSessionStore(),
		nil,
	)
}

func testTrip() models.TripRequest {
	return models.TripRequest{
		TripType:    "family",
		Origin:      "Delhi",
		Destination: "Jaipur",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Budget:      60000,
		Adults:      2,
		Children:    1,
	}
}

// TestProcessBudgetOpensSession проверяет, что расчет бюджета создает
// сессию с потолками категорий.
func TestProcessBudgetOpensSession(t *testing.T) {
	coordinator := testCoordinator()

	result := coordinator.ProcessBudget(context.Background(), testTrip())

	if result.SessionID == uuid.Nil {
		t.Fatal("expected session id")
	}
	// Заезд 1 марта, выезд 5 марта: 4 ночевки. 30% от 60000 = 18000
	// на жилье, 4500 за ночь.
	if result.Allocation.HotelPerNight != 4500 {
		t.Fatalf("hotel per night = %v, want 4500", result.Allocation.HotelPerNight)
	}
	if result.Allocation.Days != 4 || result.Allocation.Nights != 4 {
		t.Fatalf("duration = %d/%d, want 4/4", result.Allocation.Days, result.Allocation.Nights)
	}
	if result.Recommendations == "" {
		t.Fatal("expected recommendations text")
	}
}

// TestAgentsRequireBudget проверяет предусловие: без расчета бюджета
// агенты недоступны.
func TestAgentsRequireBudget(t *testing.T) {
	coordinator := testCoordinator()
	unknown := uuid.New()

	if _, err := coordinator.SearchHotels(context.Background(), unknown, 5000); !errors.Is(err, ErrBudgetNotProcessed) {
		t.Fatalf("hotels: expected ErrBudgetNotProcessed, got %v", err)
	}
	if _, err := coordinator.SearchTransport(context.Background(), unknown, 5000); !errors.Is(err, ErrBudgetNotProcessed) {
		t.Fatalf("transport: expected ErrBudgetNotProcessed, got %v", err)
	}
	if _, err := coordinator.GenerateItinerary(context.Background(), unknown, 5000, nil); !errors.Is(err, ErrBudgetNotProcessed) {
		t.Fatalf("itinerary: expected ErrBudgetNotProcessed, got %v", err)
	}
}

// TestSearchHotelsClampsBudget проверяет, что запрошенный потолок выше
// лимита сессии ужимается: цены не превышают лимит с джиттером.
func TestSearchHotelsClampsBudget(t *testing.T) {
	coordinator := testCoordinator()
	result := coordinator.ProcessBudget(context.Background(), testTrip())

	hotels, err := coordinator.SearchHotels(context.Background(), result.SessionID, 9000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Потолок сессии 4500, максимум с джиттером 4950.
	for _, hotel := range hotels {
		if hotel.Price > 4950 {
			t.Fatalf("hotel price %v exceeds clamped ceiling", hotel.Price)
		}
	}
}

// TestGenerateItineraryCoversTrip проверяет, что маршрут покрывает все
// дни сессии даже при превышении запрошенного бюджета.
func TestGenerateItineraryCoversTrip(t *testing.T) {
	coordinator := testCoordinator()
	result := coordinator.ProcessBudget(context.Background(), testTrip())

	itinerary, err := coordinator.GenerateItinerary(context.Background(), result.SessionID, 1000000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(itinerary.Days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(itinerary.Days))
	}
}

// TestResetClosesSession проверяет, что после сброса агенты снова
// требуют расчет бюджета.
func TestResetClosesSession(t *testing.T) {
	coordinator := testCoordinator()
	result := coordinator.ProcessBudget(context.Background(), testTrip())

	coordinator.Reset(result.SessionID)

	if _, err := coordinator.SearchHotels(context.Background(), result.SessionID, 0); !errors.Is(err, ErrBudgetNotProcessed) {
		t.Fatalf("expected ErrBudgetNotProcessed after reset, got %v", err)
	}
}

// TestSessionsIsolated проверяет независимость параллельных сессий.
func TestSessionsIsolated(t *testing.T) {
	coordinator := testCoordinator()

	first := coordinator.ProcessBudget(context.Background(), testTrip())

	richTrip := testTrip()
	richTrip.Budget = 600000
	second := coordinator.ProcessBudget(context.Background(), richTrip)

	if first.SessionID == second.SessionID {
		t.Fatal("sessions must have distinct ids")
	}

	coordinator.Reset(first.SessionID)
	if _, err := coordinator.SearchHotels(context.Background(), second.SessionID, 0); err != nil {
		t.Fatalf("second session must survive reset of the first: %v", err)
	}
}
