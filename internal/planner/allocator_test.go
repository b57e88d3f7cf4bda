package planner

import (
	"math"
	"strings"
	"testing"

	"example.com/ai-trip-planner/backend/internal/models"
)

// TestAllocationTablesSumTo100 проверяет, что проценты каждой таблицы в
// сумме дают ровно 100.
func TestAllocationTablesSumTo100(t *testing.T) {
	for tripType, shares := range tripTypeAllocations {
		total := 0.0
		for _, share := range shares {
			total += share.Percent
		}
		if total != 100 {
			t.Fatalf("%s: shares sum to %v, want 100", tripType, total)
		}
	}
}

// TestAllocateFamily проверяет раскладку семейной поездки и производные
// лимиты на ночь и на день.
func TestAllocateFamily(t *testing.T) {
	allocator := NewAllocator()
	allocation := allocator.Allocate("family", 60000, 3, 3)

	if allocation.Accommodation != 18000 {
		t.Fatalf("accommodation = %v, want 18000", allocation.Accommodation)
	}
	if allocation.HotelPerNight != 6000 {
		t.Fatalf("hotel per night = %v, want 6000", allocation.HotelPerNight)
	}
	if allocation.Activities != 15000 {
		t.Fatalf("activities = %v, want 15000", allocation.Activities)
	}
	if allocation.ActivitiesPerDay != 5000 {
		t.Fatalf("activities per day = %v, want 5000", allocation.ActivitiesPerDay)
	}
	if allocation.Food != 9000 || allocation.FoodPerDay != 3000 {
		t.Fatalf("food = %v/%v, want 9000/3000", allocation.Food, allocation.FoodPerDay)
	}

	sum := 0.0
	for _, item := range allocation.Breakdown {
		sum += item.Amount
	}
	if math.Abs(sum-60000) > 0.01 {
		t.Fatalf("breakdown sums to %v, want 60000", sum)
	}
}

// TestAllocateUnknownTypeUsesFamily проверяет таблицу по умолчанию.
func TestAllocateUnknownTypeUsesFamily(t *testing.T) {
	allocator := NewAllocator()

	got := allocator.Allocate("spiritual", 10000, 2, 1)
	want := allocator.Allocate("family", 10000, 2, 1)

	if got.Accommodation != want.Accommodation || got.Activities != want.Activities {
		t.Fatalf("unknown trip type allocated %+v, want family table %+v", got, want)
	}
}

// TestAllocateZeroNights проверяет защиту от деления на ноль: при нуле
// ночей лимит за ночь равен всей сумме категории.
func TestAllocateZeroNights(t *testing.T) {
	allocator := NewAllocator()
	allocation := allocator.Allocate("budget", 10000, 1, 0)

	if allocation.HotelPerNight != allocation.Accommodation {
		t.Fatalf("hotel per night = %v, want whole accommodation %v", allocation.HotelPerNight, allocation.Accommodation)
	}
}

// TestAllocateRounding проверяет округление до сотых.
func TestAllocateRounding(t *testing.T) {
	allocator := NewAllocator()
	allocation := allocator.Allocate("cultural", 10001, 3, 2)

	for _, item := range allocation.Breakdown {
		scaled := item.Amount * 100
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("%s amount %v is not rounded to 2 decimals", item.Name, item.Amount)
		}
	}
}

// TestRecommendationsCapped проверяет лимит в пять советов и наличие
// специфичных для типа поездки.
func TestRecommendationsCapped(t *testing.T) {
	allocator := NewAllocator()
	trip := models.TripRequest{TripType: "luxurious", Destination: "Goa"}
	allocation := allocator.Allocate(trip.TripType, 100000, 4, 3)

	text := allocator.Recommendations(trip, allocation)
	lines := strings.Split(text, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 tips, got %d:\n%s", len(lines), text)
	}
	if !strings.Contains(text, "Goa") {
		t.Fatalf("tips must mention destination:\n%s", text)
	}
}
