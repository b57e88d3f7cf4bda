package ai

import (
	"errors"
	"strings"
	"testing"
)

const validDaysJSON = `[
  {"day": 1, "activities": [
    {"name": "Hotel Check-in & Relaxation", "icon": "🏨", "time": "12:00 PM", "cost": 0, "description": "Arrive and settle in"},
    {"name": "Heritage Walk", "icon": "🏛️", "time": "04:00 PM", "cost": 500, "description": "Walk through the old town"}
  ]},
  {"day": 2, "activities": [
    {"name": "Water Sports", "icon": "🏄", "time": "10:00 AM", "cost": 1800, "description": "Jet ski and parasailing"},
    {"name": "Street Food Tour", "icon": "🍜", "time": "07:00 PM", "cost": 600, "description": "Local flavors after sunset"}
  ]},
  {"day": 3, "activities": [
    {"name": "Local Market Exploration", "icon": "🛍️", "time": "11:00 AM", "cost": 300, "description": "Souvenirs and spices"}
  ]}
]`

// TestRepairDaysValid проверяет разбор корректного массива без починки.
func TestRepairDaysValid(t *testing.T) {
	days, err := RepairDays(validDaysJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[1].Day != 2 || len(days[1].Activities) != 2 {
		t.Fatalf("day 2 parsed incorrectly: %+v", days[1])
	}
}

// TestRepairDaysMarkdownFence проверяет снятие markdown-обертки.
func TestRepairDaysMarkdownFence(t *testing.T) {
	raw := "Here is your itinerary:\n```json\n" + validDaysJSON + "\n```\nEnjoy the trip!"

	days, err := RepairDays(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
}

// TestRepairDaysTruncatedString проверяет обрыв генерации посреди
// строкового значения: строка закрывается, скобки добиваются.
func TestRepairDaysTruncatedString(t *testing.T) {
	raw := `[{"day": 1, "activities": [{"name": "Spa & Wellness", "icon": "💆", "time": "10:00 AM", "cost": 2000, "description": "Morning massa`

	days, err := RepairDays(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 || days[0].Day != 1 {
		t.Fatalf("expected day 1, got %+v", days)
	}
	if len(days[0].Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(days[0].Activities))
	}
	if !strings.HasPrefix(days[0].Activities[0].Description, "Morning massa") {
		t.Fatalf("truncated description lost: %q", days[0].Activities[0].Description)
	}
}

// TestRepairDaysTruncatedAfterKey проверяет обрыв сразу после "ключ":.
func TestRepairDaysTruncatedAfterKey(t *testing.T) {
	raw := `[{"day": 1, "activities": [{"name": "Theme Park", "icon": "🎢", "time": "03:00 PM", "cost": 1500, "description": "Rides"}]}, {"day": 2, "activities": [{"name": "Museum", "cost":`

	days, err := RepairDays(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Day != 1 {
		t.Fatalf("expected day 1 first, got %+v", days[0])
	}
}

// TestRepairDaysSalvage проверяет спасение полных дней, когда второй
// день оборван так, что простая дочинка скобок дает невалидный JSON.
func TestRepairDaysSalvage(t *testing.T) {
	raw := `[{"day": 1, "activities": [{"name": "Free Walking Tour", "icon": "🚶", "time": "09:00 AM", "cost": 0, "description": "Old city"}]}, {"day": 2, "activities": [{"name": "Boat Ride", "cost": 45`

	days, err := RepairDays(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Day != 1 || len(days[0].Activities) != 1 {
		t.Fatalf("day 1 must survive salvage, got %+v", days)
	}
}

// TestRepairDaysTrailingComma проверяет удаление висячих запятых.
func TestRepairDaysTrailingComma(t *testing.T) {
	raw := `[{"day": 1, "activities": [{"name": "Fine Dining", "icon": "🍽️", "time": "07:30 PM", "cost": 3000, "description": "Dinner"},]},]`

	days, err := RepairDays(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
}

// TestRepairDaysEmptyActivitiesFiltered проверяет отбрасывание дней без
// активностей.
func TestRepairDaysEmptyActivitiesFiltered(t *testing.T) {
	raw := `[{"day": 1, "activities": []}, {"day": 2, "activities": [{"name": "Trek", "icon": "🥾", "time": "07:00 AM", "cost": 900, "description": "Hill trail"}]}]`

	days, err := RepairDays(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 || days[0].Day != 2 {
		t.Fatalf("expected only day 2, got %+v", days)
	}
}

// TestRepairDaysUnparsable проверяет, что мусор дает ErrUnparsable.
func TestRepairDaysUnparsable(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot help with that request.",
		"{\"day\": 1}",
		"[]",
		`[{"day": 1, "activities": []}]`,
	} {
		if _, err := RepairDays(raw); !errors.Is(err, ErrUnparsable) {
			t.Fatalf("expected ErrUnparsable for %q, got %v", raw, err)
		}
	}
}

// TestRepairDaysStringPrice проверяет, что цена-строка с валютой и
// диапазоном не валит разбор дня.
func TestRepairDaysStringPrice(t *testing.T) {
	raw := `[{"day": 1, "activities": [{"name": "River Cruise", "icon": "🛳️", "time": "05:00 PM", "cost": "₹1,200 - ₹1,500", "description": "Sunset cruise"}]}]`

	days, err := RepairDays(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := float64(days[0].Activities[0].Cost); got != 1200 {
		t.Fatalf("expected lower bound 1200, got %v", got)
	}
}

// TestRepairDaysTruncationSweep обрезает валидный ответ на каждом байте.
// Результат обязан быть либо ошибкой, либо подмножеством исходных дней;
// паники и частично разобранные дни недопустимы.
func TestRepairDaysTruncationSweep(t *testing.T) {
	for cut := 0; cut <= len(validDaysJSON); cut++ {
		days, err := RepairDays(validDaysJSON[:cut])
		if err != nil {
			continue
		}

		if len(days) == 0 || len(days) > 3 {
			t.Fatalf("cut=%d: unexpected day count %d", cut, len(days))
		}
		for _, day := range days {
			if day.Day < 1 || day.Day > 3 {
				t.Fatalf("cut=%d: unexpected day number %d", cut, day.Day)
			}
			if len(day.Activities) == 0 {
				t.Fatalf("cut=%d: day %d has no activities", cut, day.Day)
			}
		}
	}
}
