package planner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testHotelQuery(maxPerNight float64) HotelQuery {
	return HotelQuery{
		Destination:      "Goa",
		CheckIn:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:         time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Adults:           2,
		Children:         1,
		MaxPricePerNight: maxPerNight,
		TripType:         "family",
	}
}

// TestFallbackHotelsCount проверяет размер синтетической подборки.
func TestFallbackHotelsCount(t *testing.T) {
	agent := NewHotelAgent(nil, nil, DefaultPricePolicy(), nil)

	hotels := agent.Search(context.Background(), testHotelQuery(5000))
	if len(hotels) != fallbackHotelCount {
		t.Fatalf("expected %d hotels, got %d", fallbackHotelCount, len(hotels))
	}
}

// TestFallbackHotelPriceBounds проверяет, что цены лежат в коридоре
// политики с учетом джиттера и строго возрастают.
func TestFallbackHotelPriceBounds(t *testing.T) {
	agent := NewHotelAgent(nil, nil, DefaultPricePolicy(), nil)
	ceiling := 6000.0

	hotels := agent.Search(context.Background(), testHotelQuery(ceiling))

	lower := ceiling * 0.2
	upper := ceiling * 1.1
	for i, hotel := range hotels {
		if hotel.Price < lower || hotel.Price > upper {
			t.Fatalf("hotel %d price %v outside [%v, %v]", i, hotel.Price, lower, upper)
		}
		if i > 0 && hotel.Price <= hotels[i-1].Price {
			t.Fatalf("prices must strictly increase: %v then %v", hotels[i-1].Price, hotel.Price)
		}
	}
}

// TestFallbackHotelsDeterministic проверяет повторяемость подборки для
// одной пары направление+дата.
func TestFallbackHotelsDeterministic(t *testing.T) {
	agent := NewHotelAgent(nil, nil, DefaultPricePolicy(), nil)
	query := testHotelQuery(4000)

	first := agent.Search(context.Background(), query)
	second := agent.Search(context.Background(), query)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Price != second[i].Price {
			t.Fatalf("run differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestFallbackHotelsKnownCityLocations проверяет локации для известного
// города и рейтинги в допустимых пределах.
func TestFallbackHotelsKnownCityLocations(t *testing.T) {
	agent := NewHotelAgent(nil, nil, DefaultPricePolicy(), nil)

	hotels := agent.Search(context.Background(), testHotelQuery(3000))
	known := hotelLocations["goa"]

	for _, hotel := range hotels {
		found := false
		for _, location := range known {
			if hotel.Location == location {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("unexpected location %q for goa", hotel.Location)
		}
		if hotel.Rating < 3.0 || hotel.Rating > 4.9 {
			t.Fatalf("rating %v outside [3.0, 4.9]", hotel.Rating)
		}
		if !strings.Contains(hotel.Name, "Goa") {
			t.Fatalf("hotel name %q must mention destination", hotel.Name)
		}
	}
}

// TestFallbackHotelNamesDistinct проверяет, что в синтетической подборке
// нет повторяющихся названий.
func TestFallbackHotelNamesDistinct(t *testing.T) {
	agent := NewHotelAgent(nil, nil, DefaultPricePolicy(), nil)

	for _, ceiling := range []float64{1000, 2000, 5000, 12000} {
		hotels := agent.Search(context.Background(), testHotelQuery(ceiling))

		seen := make(map[string]bool, len(hotels))
		for _, hotel := range hotels {
			if seen[hotel.Name] {
				t.Fatalf("ceiling %v: duplicate hotel name %q", ceiling, hotel.Name)
			}
			seen[hotel.Name] = true
		}
	}
}

// TestParseFacilities проверяет извлечение удобств из строки инвентаря.
func TestParseFacilities(t *testing.T) {
	got := parseFacilities("Free WiFi, Outdoor pool, on-site restaurant, airport parking")
	want := []string{"Free WiFi", "Swimming Pool", "Restaurant", "Free Parking"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	defaults := parseFacilities("")
	if len(defaults) == 0 {
		t.Fatal("empty facilities must yield defaults")
	}
}

// TestTemplatesForBudget проверяет выбор ценового эшелона по потолку.
func TestTemplatesForBudget(t *testing.T) {
	for _, tc := range []struct {
		ceiling float64
		name    string
	}{
		{12000, "The Oberoi"},
		{5000, "Hyatt Regency"},
		{2000, "Lemon Tree Hotel"},
		{1000, "OYO Flagship"},
	} {
		templates := templatesForBudget(tc.ceiling)
		found := false
		for _, template := range templates {
			if template.Name == tc.name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("ceiling %v: expected chain %q in pool", tc.ceiling, tc.name)
		}
	}
}
