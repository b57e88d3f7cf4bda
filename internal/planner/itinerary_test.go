package planner

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"example.com/ai-trip-planner/backend/internal/ai"
)

type scriptedChat struct {
	content string
}

func (s scriptedChat) Chat(_ context.Context, _ []ai.Message) (string, []byte, error) {
	return s.content, nil, nil
}

func testItineraryQuery(days int, budget float64) ItineraryQuery {
	return ItineraryQuery{
		Destination: "Jaipur",
		TripType:    "family",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Days:        days,
		Budget:      budget,
	}
}

// TestGenerateFallbackDayCount проверяет, что шаблонный план покрывает
// все дни поездки с последовательными датами.
func TestGenerateFallbackDayCount(t *testing.T) {
	agent := NewItineraryAgent(nil, nil)

	itinerary := agent.Generate(context.Background(), testItineraryQuery(3, 9000))

	if len(itinerary.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(itinerary.Days))
	}
	for i, day := range itinerary.Days {
		if day.Day != i+1 {
			t.Fatalf("day %d numbered %d", i, day.Day)
		}
		wantDate := time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if day.Date != wantDate {
			t.Fatalf("day %d date = %q, want %q", day.Day, day.Date, wantDate)
		}
	}
}

// TestGenerateFirstDayCheckIn проверяет бесплатное заселение первым
// пунктом первого дня.
func TestGenerateFirstDayCheckIn(t *testing.T) {
	agent := NewItineraryAgent(nil, nil)

	itinerary := agent.Generate(context.Background(), testItineraryQuery(2, 6000))

	first := itinerary.Days[0].Activities[0]
	if first.Name != "Hotel Check-in & Relaxation" {
		t.Fatalf("first activity = %q, want check-in", first.Name)
	}
	if first.Cost != 0 {
		t.Fatalf("check-in cost = %v, want 0", first.Cost)
	}
}

// TestGenerateReordersMisplacedCheckIn проверяет, что платное заселение
// в середине дня переносится в начало и становится бесплатным.
func TestGenerateReordersMisplacedCheckIn(t *testing.T) {
	client := scriptedChat{content: `[{"day":1,"activities":[` +
		`{"name":"Beach Walk","icon":"🏖️","time":"09:00 AM","cost":500,"description":"Morning walk"},` +
		`{"name":"Hotel Check-in","icon":"🏨","time":"12:00 PM","cost":200,"description":"Settle in"}]}]`}
	agent := NewItineraryAgent(ai.NewService(client, 0, time.Millisecond), nil)

	itinerary := agent.Generate(context.Background(), testItineraryQuery(1, 3000))

	activities := itinerary.Days[0].Activities
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	first := activities[0]
	if !strings.Contains(strings.ToLower(first.Name), "check-in") {
		t.Fatalf("first activity = %q, want check-in", first.Name)
	}
	if first.Cost != 0 {
		t.Fatalf("check-in cost = %v, want 0", first.Cost)
	}
	if activities[1].Name != "Beach Walk" {
		t.Fatalf("second activity = %q, want Beach Walk", activities[1].Name)
	}
	if itinerary.Days[0].TotalCost != 500 {
		t.Fatalf("day total = %v, want 500", itinerary.Days[0].TotalCost)
	}
}

// TestGeneratePerDayTotals проверяет, что сумма по дню равна сумме
// стоимостей активностей, а итог равен сумме дней.
func TestGeneratePerDayTotals(t *testing.T) {
	agent := NewItineraryAgent(nil, nil)

	itinerary := agent.Generate(context.Background(), testItineraryQuery(3, 9000))

	total := 0.0
	for _, day := range itinerary.Days {
		sum := 0.0
		for _, act := range day.Activities {
			sum += act.Cost
		}
		if math.Abs(day.TotalCost-sum) > 0.01 {
			t.Fatalf("day %d total %v, activities sum %v", day.Day, day.TotalCost, sum)
		}
		total += day.TotalCost
	}
	if math.Abs(itinerary.TotalCost-total) > 0.01 {
		t.Fatalf("itinerary total %v, days sum %v", itinerary.TotalCost, total)
	}
}

// TestGenerateUnknownTripType проверяет шаблоны по умолчанию для
// неизвестного типа поездки.
func TestGenerateUnknownTripType(t *testing.T) {
	agent := NewItineraryAgent(nil, nil)
	query := testItineraryQuery(1, 3000)
	query.TripType = "spiritual"

	itinerary := agent.Generate(context.Background(), query)

	names := make(map[string]bool)
	for _, act := range itinerary.Days[0].Activities {
		names[act.Name] = true
	}
	if !names["Local Museum Visit"] {
		t.Fatalf("expected family templates for unknown trip type, got %v", names)
	}
}

// TestGenerateZeroDaysClamped проверяет минимум в один день.
func TestGenerateZeroDaysClamped(t *testing.T) {
	agent := NewItineraryAgent(nil, nil)

	itinerary := agent.Generate(context.Background(), testItineraryQuery(0, 1000))
	if len(itinerary.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(itinerary.Days))
	}
}

// TestGenerateBudgetShare проверяет расчет стоимости шаблонной
// активности как доли дневного бюджета.
func TestGenerateBudgetShare(t *testing.T) {
	agent := NewItineraryAgent(nil, nil)

	itinerary := agent.Generate(context.Background(), testItineraryQuery(3, 9000))

	// family: музей стоит 15% дневного бюджета (3000 * 0.15).
	for _, act := range itinerary.Days[1].Activities {
		if act.Name == "Local Museum Visit" && act.Cost != 450 {
			t.Fatalf("museum cost = %v, want 450", act.Cost)
		}
	}
}
