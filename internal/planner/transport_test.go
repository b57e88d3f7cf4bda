package planner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testTransportQuery(origin, destination string) TransportQuery {
	return TransportQuery{
		Origin:      origin,
		Destination: destination,
		TravelDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Adults:      2,
		Budget:      15000,
	}
}

// TestSearchOmitsFlightOnShortRoute проверяет, что для маршрута короче
// минимальной дистанции самолет не предлагается.
func TestSearchOmitsFlightOnShortRoute(t *testing.T) {
	agent := NewTransportAgent(nil, nil, time.Second, 150, nil)

	modes := agent.Search(context.Background(), testTransportQuery("Vellore", "Pondicherry"))

	for _, mode := range modes {
		if mode.Mode == "Flight" {
			t.Fatalf("flight offered on a 100 km route")
		}
	}
	if len(modes) != 3 {
		t.Fatalf("expected train, bus and cab, got %d modes", len(modes))
	}
}

// TestSearchModeOrder проверяет фиксированный порядок видов транспорта
// на длинном маршруте.
func TestSearchModeOrder(t *testing.T) {
	agent := NewTransportAgent(nil, nil, time.Second, 150, nil)

	modes := agent.Search(context.Background(), testTransportQuery("Delhi", "Mumbai"))

	want := []string{"Flight", "Train", "Bus", "Cab"}
	if len(modes) != len(want) {
		t.Fatalf("expected %d modes, got %d", len(want), len(modes))
	}
	for i, mode := range modes {
		if mode.Mode != want[i] {
			t.Fatalf("mode %d = %q, want %q", i, mode.Mode, want[i])
		}
	}
}

// TestFlightOptionsSorted проверяет сортировку рейсов по цене и формат
// ценового диапазона.
func TestFlightOptionsSorted(t *testing.T) {
	agent := NewTransportAgent(nil, nil, time.Second, 150, nil)

	modes := agent.Search(context.Background(), testTransportQuery("Delhi", "Mumbai"))
	flight := modes[0]

	if len(flight.Options) == 0 {
		t.Fatal("flight mode has no options")
	}
	for i := 1; i < len(flight.Options); i++ {
		if flight.Options[i].Price < flight.Options[i-1].Price {
			t.Fatalf("flight options not sorted by price: %v then %v", flight.Options[i-1].Price, flight.Options[i].Price)
		}
	}
	if !strings.HasPrefix(flight.PriceRange, "₹") || !strings.Contains(flight.PriceRange, " - ₹") {
		t.Fatalf("unexpected price range format: %q", flight.PriceRange)
	}
	if flight.Note != "Fastest" {
		t.Fatalf("flight note = %q, want Fastest", flight.Note)
	}
}

// TestSearchCapsOptionsToBudget проверяет отсечение вариантов дороже
// бюджета: вид транспорта сохраняет хотя бы самый дешевый вариант.
func TestSearchCapsOptionsToBudget(t *testing.T) {
	agent := NewTransportAgent(nil, nil, time.Second, 150, nil)
	query := testTransportQuery("Delhi", "Mumbai")
	query.Budget = 2000

	modes := agent.Search(context.Background(), query)

	if len(modes) != 4 {
		t.Fatalf("expected 4 modes, got %d", len(modes))
	}
	for _, mode := range modes {
		if len(mode.Options) == 0 {
			t.Fatalf("%s lost all options", mode.Mode)
		}
		if len(mode.Options) > 1 {
			for _, option := range mode.Options {
				if option.Price > query.Budget {
					t.Fatalf("%s option %v exceeds budget %v", mode.Mode, option.Price, query.Budget)
				}
			}
		}
	}

	// Автобусы укладываются в 2000 целиком, поезда нет: от статического
	// набора остается только самый дешевый.
	bus := modes[2]
	if bus.Mode != "Bus" || len(bus.Options) != 3 {
		t.Fatalf("bus options = %d, want 3", len(bus.Options))
	}
	train := modes[1]
	if train.Mode != "Train" || len(train.Options) != 1 {
		t.Fatalf("train options = %d, want 1", len(train.Options))
	}
	if train.Options[0].Price != 2800 {
		t.Fatalf("train cheapest = %v, want 2800", train.Options[0].Price)
	}
	if train.PriceRange != "₹2,800 - ₹2,800" {
		t.Fatalf("train price range = %q", train.PriceRange)
	}
}

// TestEstimateDuration проверяет оценку времени в пути по скорости вида
// транспорта.
func TestEstimateDuration(t *testing.T) {
	if got := estimateDuration(500, "flight"); got != "1h 00m" {
		t.Fatalf("flight duration = %q, want 1h 00m", got)
	}
	if got := estimateDuration(150, "train"); got != "2h 30m" {
		t.Fatalf("train duration = %q, want 2h 30m", got)
	}
	if got := estimateDuration(100, "teleport"); got != "N/A" {
		t.Fatalf("unknown mode duration = %q, want N/A", got)
	}
}

// TestEstimateDistanceSymmetric проверяет симметрию таблицы расстояний и
// значение по умолчанию.
func TestEstimateDistanceSymmetric(t *testing.T) {
	if a, b := estimateDistance("Delhi", "Mumbai"), estimateDistance("Mumbai", "Delhi"); a != b || a != 1400 {
		t.Fatalf("delhi-mumbai distance %v/%v, want 1400", a, b)
	}
	if got := estimateDistance("Agartala", "Shillong"); got != defaultRouteDistance {
		t.Fatalf("unknown route distance %v, want %v", got, defaultRouteDistance)
	}
}

// TestFormatINR проверяет группировку разрядов.
func TestFormatINR(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{900, "900"},
		{3500, "3,500"},
		{1234567, "1,234,567"},
	} {
		if got := formatINR(tc.in); got != tc.want {
			t.Fatalf("formatINR(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestCheapestClassFare проверяет выбор самого дешевого известного класса.
func TestCheapestClassFare(t *testing.T) {
	class, fare := cheapestClassFare([]string{"2A", "SL", "1A", "XX"})
	if class != "SL" || fare != 400 {
		t.Fatalf("cheapest = %s/%v, want SL/400", class, fare)
	}

	class, fare = cheapestClassFare([]string{"XX"})
	if class != "" || fare != 0 {
		t.Fatalf("unknown classes must yield empty result, got %s/%v", class, fare)
	}
}
