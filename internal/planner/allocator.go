package planner

import (
	"fmt"
	"math"
	"strings"

	"example.com/ai-trip-planner/backend/internal/models"
)

type categoryShare struct {
	Name    string
	Percent float64
}

// Порядок категорий фиксирован, чтобы breakdown в ответе был стабильным.
// Проценты в каждой таблице в сумме дают 100.
var tripTypeAllocations = map[string][]categoryShare{
	"luxurious": {
		{"accommodation", 40},
		{"transport", 25},
		{"activities", 20},
		{"food", 10},
		{"miscellaneous", 5},
	},
	"adventurous": {
		{"accommodation", 25},
		{"transport", 20},
		{"activities", 35},
		{"food", 12},
		{"miscellaneous", 8},
	},
	"family": {
		{"accommodation", 30},
		{"transport", 25},
		{"activities", 25},
		{"food", 15},
		{"miscellaneous", 5},
	},
	"budget": {
		{"accommodation", 30},
		{"transport", 30},
		{"activities", 20},
		{"food", 15},
		{"miscellaneous", 5},
	},
	"cultural": {
		{"accommodation", 28},
		{"transport", 22},
		{"activities", 30},
		{"food", 15},
		{"miscellaneous", 5},
	},
}

const defaultTripType = "family"

type Allocator struct{}

// NewAllocator создает распределитель бюджета.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate раскладывает бюджет по категориям для типа поездки и считает
// производные лимиты на ночь и на день. Чистая функция, на валидном входе
// не ошибается; неизвестный тип поездки получает таблицу "family".
func (a *Allocator) Allocate(tripType string, total float64, days, nights int) models.BudgetAllocation {
	shares, ok := tripTypeAllocations[strings.ToLower(strings.TrimSpace(tripType))]
	if !ok {
		shares = tripTypeAllocations[defaultTripType]
	}

	allocation := models.BudgetAllocation{
		Total:     total,
		Breakdown: make([]models.BudgetBreakdown, 0, len(shares)),
		Days:      days,
		Nights:    nights,
	}

	amounts := make(map[string]float64, len(shares))
	for _, share := range shares {
		amount := round2(total * share.Percent / 100)
		amounts[share.Name] = amount
		allocation.Breakdown = append(allocation.Breakdown, models.BudgetBreakdown{
			Name:       capitalize(share.Name),
			Amount:     amount,
			Percentage: share.Percent,
		})
	}

	allocation.Accommodation = amounts["accommodation"]
	allocation.Transport = amounts["transport"]
	allocation.Activities = amounts["activities"]
	allocation.Food = amounts["food"]
	allocation.Miscellaneous = amounts["miscellaneous"]

	allocation.HotelPerNight = perUnit(allocation.Accommodation, nights)
	allocation.ActivitiesPerDay = perUnit(allocation.Activities, days)
	allocation.FoodPerDay = perUnit(allocation.Food, days)

	return allocation
}

// Recommendations собирает текстовые советы по бюджету: базовые плюс
// специфичные для типа поездки, не более пяти.
func (a *Allocator) Recommendations(trip models.TripRequest, allocation models.BudgetAllocation) string {
	tips := []string{
		fmt.Sprintf("• Book accommodation early in %s to get better rates", trip.Destination),
		fmt.Sprintf("• Budget ₹%.0f for %d days of activities and sightseeing", allocation.Activities, allocation.Days),
		fmt.Sprintf("• Allocate ₹%.0f for food - try local restaurants for authentic cuisine", allocation.Food),
		fmt.Sprintf("• Reserve ₹%.0f for transport - use local transport to save costs", allocation.Transport),
	}

	switch strings.ToLower(strings.TrimSpace(trip.TripType)) {
	case "luxurious":
		tips = append(tips,
			"• Consider premium experiences and fine dining options",
			"• Book spa treatments and luxury tours in advance")
	case "adventurous":
		tips = append(tips,
			"• Invest in quality adventure activities and guided tours",
			"• Pack appropriate gear to avoid expensive rentals")
	case "family":
		tips = append(tips,
			"• Look for family packages and group discounts",
			"• Plan kid-friendly activities with flexible timings")
	case "budget":
		tips = append(tips,
			"• Use public transport and eat at local eateries",
			"• Book hostels or budget hotels to save on accommodation")
	case "cultural":
		tips = append(tips,
			"• Allocate budget for museum entries and cultural tours",
			"• Hire local guides for authentic cultural experiences")
	}

	if len(tips) > 5 {
		tips = tips[:5]
	}

	return strings.Join(tips, "\n")
}

// perUnit защищает от деления на ноль: при нулевом количестве единиц
// возвращается вся сумма целиком.
func perUnit(amount float64, units int) float64 {
	if units <= 0 {
		return amount
	}

	return round2(amount / float64(units))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func capitalize(value string) string {
	if value == "" {
		return value
	}

	return strings.ToUpper(value[:1]) + value[1:]
}
