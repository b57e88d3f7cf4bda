package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"example.com/ai-trip-planner/backend/internal/ai"
	"example.com/ai-trip-planner/backend/internal/models"
)

type ItineraryQuery struct {
	Destination string
	TripType    string
	StartDate   time.Time
	Days        int
	Budget      float64
	Interests   []string
}

// ItineraryAgent строит поденный план поездки. Первичный источник, это
// модель; при любой ошибке план собирается из шаблонов активностей.
// Результат всегда содержит ровно запрошенное число дней.
type ItineraryAgent struct {
	ai     *ai.Service
	logger *slog.Logger
}

// NewItineraryAgent создает агента генерации маршрута.
func NewItineraryAgent(aiService *ai.Service, logger *slog.Logger) *ItineraryAgent {
	if logger == nil {
		logger = slog.Default()
	}

	return &ItineraryAgent{ai: aiService, logger: logger}
}

type activityTemplate struct {
	Name    string
	Icon    string
	Time    string
	CostPct float64
}

// Шаблоны дневных активностей по типам поездки. Доли считаются от
// дневного бюджета активностей.
var activityTemplates = map[string][]activityTemplate{
	"luxurious": {
		{"Spa & Wellness", "💆", "10:00 AM", 0.3},
		{"Fine Dining Experience", "🍽️", "07:30 PM", 0.35},
		{"Private City Tour", "🚗", "02:00 PM", 0.25},
	},
	"adventurous": {
		{"Trekking Expedition", "🥾", "07:00 AM", 0.35},
		{"Water Sports", "🏄", "02:00 PM", 0.4},
		{"Camping Experience", "⛺", "06:00 PM", 0.15},
	},
	"family": {
		{"Local Museum Visit", "🏛️", "10:00 AM", 0.15},
		{"Family Restaurant", "🍴", "01:00 PM", 0.25},
		{"Theme Park", "🎢", "03:00 PM", 0.35},
	},
	"cultural": {
		{"Heritage Walk", "🏛️", "09:00 AM", 0.2},
		{"Traditional Performance", "🎭", "06:00 PM", 0.3},
		{"Local Market Exploration", "🛍️", "04:00 PM", 0.15},
	},
	"budget": {
		{"Free Walking Tour", "🚶", "09:00 AM", 0.05},
		{"Street Food Tour", "🍜", "12:00 PM", 0.15},
		{"Public Park Visit", "🏞️", "04:00 PM", 0},
	},
}

// Generate возвращает маршрут на все дни поездки. Не ошибается: при
// отказе модели работает шаблонный план.
func (a *ItineraryAgent) Generate(ctx context.Context, query ItineraryQuery) models.Itinerary {
	if query.Days < 1 {
		query.Days = 1
	}

	days := a.aiDays(ctx, query)
	days = a.normalize(days, query)

	total := 0.0
	for _, day := range days {
		total += day.TotalCost
	}

	return models.Itinerary{
		Days:            days,
		TotalCost:       round2(total),
		Recommendations: a.recommendations(query, total),
	}
}

func (a *ItineraryAgent) aiDays(ctx context.Context, query ItineraryQuery) []models.DayPlan {
	if a.ai == nil {
		return nil
	}

	payloads, err := a.ai.GenerateItinerary(ctx, ai.ItineraryInput{
		Destination: query.Destination,
		TripType:    query.TripType,
		StartDate:   query.StartDate.Format("2006-01-02"),
		Days:        query.Days,
		Budget:      query.Budget,
		Interests:   query.Interests,
	})
	if err != nil {
		a.logger.Warn("ai itinerary failed, using template plan",
			slog.String("destination", query.Destination),
			slog.String("error", err.Error()))
		return nil
	}

	days := make([]models.DayPlan, 0, len(payloads))
	for _, payload := range payloads {
		activities := make([]models.Activity, 0, len(payload.Activities))
		for _, act := range payload.Activities {
			icon := act.Icon
			if icon == "" {
				icon = "📍"
			}
			activities = append(activities, models.Activity{
				Name:        act.Name,
				Icon:        icon,
				Time:        act.Time,
				Cost:        float64(act.Cost),
				Description: act.Description,
			})
		}

		days = append(days, models.DayPlan{
			Day:        payload.Day,
			Activities: activities,
		})
	}

	return days
}

// normalize приводит план к ровно запрошенному числу дней: лишние дни
// отбрасываются, недостающие достраиваются из шаблонов. Первый день
// всегда начинается с бесплатного заселения в отель. Даты и суммы по
// дням пересчитываются здесь, а не доверяются модели.
func (a *ItineraryAgent) normalize(days []models.DayPlan, query ItineraryQuery) []models.DayPlan {
	if len(days) > query.Days {
		days = days[:query.Days]
	}

	templates := templatesForTripType(query.TripType)
	perDay := query.Budget
	if query.Days > 0 {
		perDay = query.Budget / float64(query.Days)
	}

	for len(days) < query.Days {
		dayNumber := len(days) + 1
		days = append(days, models.DayPlan{
			Day:        dayNumber,
			Activities: templateActivities(templates, perDay, query.Destination),
		})
	}

	if len(days) > 0 {
		days[0].Activities = ensureCheckInFirst(days[0].Activities, query.Destination)
	}

	for i := range days {
		days[i].Day = i + 1
		days[i].Date = query.StartDate.AddDate(0, 0, i).Format("2006-01-02")

		total := 0.0
		for _, act := range days[i].Activities {
			total += act.Cost
		}
		days[i].TotalCost = round2(total)
	}

	return days
}

func templatesForTripType(tripType string) []activityTemplate {
	templates, ok := activityTemplates[strings.ToLower(strings.TrimSpace(tripType))]
	if !ok {
		templates = activityTemplates[defaultTripType]
	}

	return templates
}

func templateActivities(templates []activityTemplate, perDayBudget float64, destination string) []models.Activity {
	activities := make([]models.Activity, 0, len(templates))
	for _, template := range templates {
		activities = append(activities, models.Activity{
			Name:        template.Name,
			Icon:        template.Icon,
			Time:        template.Time,
			Cost:        round2(perDayBudget * template.CostPct),
			Description: fmt.Sprintf("Experience %s in %s", strings.ToLower(template.Name), destination),
		})
	}

	return activities
}

// ensureCheckInFirst гарантирует, что день открывается бесплатным
// заселением: найденное заселение переносится в начало и обнуляется,
// иначе в начало добавляется стандартное.
func ensureCheckInFirst(activities []models.Activity, destination string) []models.Activity {
	for i, act := range activities {
		if !strings.Contains(strings.ToLower(act.Name), "check-in") {
			continue
		}

		checkIn := act
		checkIn.Cost = 0

		rest := make([]models.Activity, 0, len(activities)-1)
		rest = append(rest, activities[:i]...)
		rest = append(rest, activities[i+1:]...)

		return append([]models.Activity{checkIn}, rest...)
	}

	checkIn := models.Activity{
		Name:        "Hotel Check-in & Relaxation",
		Icon:        "🏨",
		Time:        "12:00 PM",
		Cost:        0,
		Description: fmt.Sprintf("Arrive and settle into your accommodation in %s", destination),
	}

	return append([]models.Activity{checkIn}, activities...)
}

func (a *ItineraryAgent) recommendations(query ItineraryQuery, totalCost float64) string {
	tips := []string{
		"• Book popular activities in advance for better rates",
		"• Keep mornings for outdoor plans and stay flexible with timings",
		fmt.Sprintf("• Try local experiences in %s for authentic memories", query.Destination),
	}

	if totalCost > query.Budget && query.Budget > 0 {
		tips = append(tips, fmt.Sprintf("• Planned activities cost ₹%.0f against a budget of ₹%.0f, consider trimming one paid activity", totalCost, query.Budget))
	}

	return strings.Join(tips, "\n")
}
