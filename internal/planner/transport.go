package planner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"example.com/ai-trip-planner/backend/internal/ai"
	"example.com/ai-trip-planner/backend/internal/models"
	"example.com/ai-trip-planner/backend/internal/travelapi"
)

type TransportQuery struct {
	Origin      string
	Destination string
	TravelDate  time.Time
	Adults      int
	Children    int
	Budget      float64
}

// TransportAgent собирает варианты по четырем видам транспорта. Каждый вид
// ищется независимо и параллельно со своим таймаутом; отказ одного вида не
// блокирует остальные, он просто выпадает из ответа.
type TransportAgent struct {
	ai            *ai.Service
	rail          *travelapi.RailClient
	logger        *slog.Logger
	modeTimeout   time.Duration
	minFlightDist float64
}

// NewTransportAgent создает агента поиска транспорта.
func NewTransportAgent(aiService *ai.Service, rail *travelapi.RailClient, modeTimeout time.Duration, minFlightDist float64, logger *slog.Logger) *TransportAgent {
	if logger == nil {
		logger = slog.Default()
	}
	if modeTimeout <= 0 {
		modeTimeout = 15 * time.Second
	}
	if minFlightDist <= 0 {
		minFlightDist = 150
	}

	return &TransportAgent{
		ai:            aiService,
		rail:          rail,
		logger:        logger,
		modeTimeout:   modeTimeout,
		minFlightDist: minFlightDist,
	}
}

// Search возвращает доступные виды транспорта в фиксированном порядке:
// самолет, поезд, автобус, такси.
func (a *TransportAgent) Search(ctx context.Context, query TransportQuery) []models.TransportMode {
	lookups := []func(context.Context, TransportQuery) *models.TransportMode{
		a.flightOptions,
		a.trainOptions,
		a.busOptions,
		a.cabOptions,
	}

	results := make([]*models.TransportMode, len(lookups))
	done := make(chan int, len(lookups))

	for i, lookup := range lookups {
		go func(idx int, fn func(context.Context, TransportQuery) *models.TransportMode) {
			modeCtx, cancel := context.WithTimeout(ctx, a.modeTimeout)
			defer cancel()
			results[idx] = fn(modeCtx, query)
			done <- idx
		}(i, lookup)
	}

	for range lookups {
		<-done
	}

	modes := make([]models.TransportMode, 0, len(results))
	for _, mode := range results {
		if mode != nil {
			modes = append(modes, capToBudget(*mode, query.Budget))
		}
	}

	return modes
}

// capToBudget убирает варианты дороже транспортного бюджета. Самый
// дешевый вариант остается всегда, чтобы вид транспорта не исчезал
// из ответа целиком.
func capToBudget(mode models.TransportMode, budget float64) models.TransportMode {
	if budget <= 0 || len(mode.Options) == 0 {
		return mode
	}

	affordable := make([]models.TransportOption, 0, len(mode.Options))
	for _, option := range mode.Options {
		if option.Price <= budget {
			affordable = append(affordable, option)
		}
	}

	if len(affordable) == len(mode.Options) {
		return mode
	}

	if len(affordable) == 0 {
		cheapest := lo.MinBy(mode.Options, func(a, b models.TransportOption) bool { return a.Price < b.Price })
		affordable = append(affordable, cheapest)
	}

	mode.Options = affordable
	mode.PriceRange = priceRange(affordable)
	return mode
}

// flightOptions синтезирует рейсы из таблицы реальных маршрутов. Для
// коротких расстояний авиасообщение не предлагается вовсе.
func (a *TransportAgent) flightOptions(_ context.Context, query TransportQuery) *models.TransportMode {
	distance := estimateDistance(query.Origin, query.Destination)
	if distance < a.minFlightDist {
		a.logger.Info("flight not feasible",
			slog.String("origin", query.Origin),
			slog.String("destination", query.Destination),
			slog.Float64("distance_km", distance))
		return nil
	}

	airlines := []string{"Air India", "IndiGo", "SpiceJet", "Vistara", "Go First", "AirAsia India"}
	times := []string{"06:00 AM", "09:00 AM", "11:30 AM", "02:30 PM", "05:00 PM", "08:00 PM"}
	classes := []string{"Economy", "Premium Economy", "Business"}

	rng := rand.New(rand.NewSource(seedFor(query.Origin, query.Destination, query.TravelDate)))
	basePrice := estimateFlightPrice(query.Origin, query.Destination, rng)
	duration := estimateDuration(distance, "flight")

	options := make([]models.TransportOption, 0, len(airlines))
	for i, airline := range airlines {
		variation := 0.8 + rng.Float64()*0.5
		options = append(options, models.TransportOption{
			Carrier:   airline,
			Time:      times[i%len(times)],
			Price:     round2(basePrice * variation),
			Duration:  duration,
			ClassType: classes[rng.Intn(len(classes))],
		})
	}

	sort.Slice(options, func(i, j int) bool { return options[i].Price < options[j].Price })

	return buildMode("Flight", "✈️", "Fastest", duration, options)
}

// trainOptions: сперва железнодорожный инвентарь (с кешем), затем модель,
// в конце статический набор.
func (a *TransportAgent) trainOptions(ctx context.Context, query TransportQuery) *models.TransportMode {
	distance := estimateDistance(query.Origin, query.Destination)
	duration := estimateDuration(distance, "train")

	if a.rail != nil && a.rail.Enabled() {
		records, err := a.rail.TrainsBetween(ctx, query.Origin, query.Destination, query.TravelDate)
		if err == nil {
			options := mapTrainRecords(records, duration)
			if len(options) > 0 {
				return buildMode("Train", "🚆", "Most Comfortable", modeDuration(options, duration), options)
			}
		} else {
			a.logger.Warn("rail inventory unavailable", slog.String("error", err.Error()))
		}
	}

	if mode := a.aiMode(ctx, query, "train", "Train", "🚆", "Most Comfortable", duration); mode != nil {
		return mode
	}

	return buildMode("Train", "🚆", "Most Comfortable", "12h 00m", []models.TransportOption{
		{Carrier: "Rajdhani Express", Time: "08:00 PM", Price: 3500, Duration: "12h 00m", ClassType: "2AC"},
		{Carrier: "Shatabdi Express", Time: "06:00 AM", Price: 2800, Duration: "12h 30m", ClassType: "3AC"},
		{Carrier: "Duronto Express", Time: "10:30 PM", Price: 3200, Duration: "11h 45m", ClassType: "2AC"},
	})
}

func (a *TransportAgent) busOptions(ctx context.Context, query TransportQuery) *models.TransportMode {
	distance := estimateDistance(query.Origin, query.Destination)
	duration := estimateDuration(distance, "bus")

	if mode := a.aiMode(ctx, query, "bus", "Bus", "🚌", "Most Affordable", duration); mode != nil {
		return mode
	}

	return buildMode("Bus", "🚌", "Most Affordable", "15h 30m", []models.TransportOption{
		{Carrier: "Volvo AC", Time: "10:00 PM", Price: 1500, Duration: "15h 30m", ClassType: "AC Sleeper"},
		{Carrier: "VRL Travels", Time: "09:30 PM", Price: 1200, Duration: "16h 00m", ClassType: "Semi-Sleeper"},
		{Carrier: "SRS Travels", Time: "11:00 PM", Price: 900, Duration: "15h 45m", ClassType: "Seater"},
	})
}

func (a *TransportAgent) cabOptions(ctx context.Context, query TransportQuery) *models.TransportMode {
	distance := estimateDistance(query.Origin, query.Destination)
	duration := estimateDuration(distance, "cab")

	if mode := a.aiMode(ctx, query, "cab", "Cab", "🚖", "Most Flexible", duration); mode != nil {
		return mode
	}

	return buildMode("Cab", "🚖", "Most Flexible", "8h 45m", []models.TransportOption{
		{Carrier: "Ola Prime", Time: "Available anytime", Price: 8500, Duration: "8h 45m", ClassType: "Sedan"},
		{Carrier: "Uber XL", Time: "Available anytime", Price: 7800, Duration: "8h 45m", ClassType: "SUV"},
		{Carrier: "Local Taxi", Time: "Available anytime", Price: 7000, Duration: "9h 00m", ClassType: "Sedan"},
	})
}

func (a *TransportAgent) aiMode(ctx context.Context, query TransportQuery, mode, label, icon, note, fallbackDuration string) *models.TransportMode {
	if a.ai == nil {
		return nil
	}

	payload, err := a.ai.TransportOptions(ctx, ai.TransportInput{
		Origin:      query.Origin,
		Destination: query.Destination,
		TravelDate:  query.TravelDate.Format("2006-01-02"),
		Mode:        mode,
	})
	if err != nil {
		a.logger.Warn("ai transport options failed",
			slog.String("mode", mode),
			slog.String("error", err.Error()))
		return nil
	}

	duration := payload.Duration
	if duration == "" {
		duration = fallbackDuration
	}

	options := make([]models.TransportOption, 0, len(payload.Options))
	for _, option := range payload.Options {
		optionTime := option.Time
		if optionTime == "" && mode == "cab" {
			optionTime = "Available anytime"
		}
		options = append(options, models.TransportOption{
			Carrier:   option.Carrier,
			Time:      optionTime,
			Price:     float64(option.Price),
			Duration:  duration,
			ClassType: option.ClassType,
		})
	}

	if len(options) == 0 {
		return nil
	}

	return buildMode(label, icon, note, duration, options)
}

func mapTrainRecords(records []travelapi.TrainRecord, fallbackDuration string) []models.TransportOption {
	options := make([]models.TransportOption, 0, len(records))
	for _, record := range records {
		class, fare := cheapestClassFare(record.Classes)
		if fare <= 0 {
			continue
		}

		duration := record.Duration
		if duration == "" {
			duration = fallbackDuration
		}

		options = append(options, models.TransportOption{
			Carrier:   record.Name,
			Time:      record.Departure,
			Price:     fare,
			Duration:  duration,
			ClassType: class,
		})

		if len(options) == 5 {
			break
		}
	}

	return options
}

func cheapestClassFare(classes []string) (string, float64) {
	bestClass := ""
	bestFare := 0.0

	for _, class := range classes {
		fare, ok := travelapi.ClassFare(class)
		if !ok {
			continue
		}
		if bestFare == 0 || fare < bestFare {
			bestClass = strings.ToUpper(strings.TrimSpace(class))
			bestFare = fare
		}
	}

	return bestClass, bestFare
}

func buildMode(label, icon, note, duration string, options []models.TransportOption) *models.TransportMode {
	if len(options) == 0 {
		return nil
	}

	return &models.TransportMode{
		Mode:       label,
		Icon:       icon,
		Duration:   duration,
		PriceRange: priceRange(options),
		Note:       note,
		Options:    options,
	}
}

func priceRange(options []models.TransportOption) string {
	cheapest := lo.MinBy(options, func(a, b models.TransportOption) bool { return a.Price < b.Price })
	priciest := lo.MaxBy(options, func(a, b models.TransportOption) bool { return a.Price > b.Price })

	return fmt.Sprintf("₹%s - ₹%s", formatINR(cheapest.Price), formatINR(priciest.Price))
}

func modeDuration(options []models.TransportOption, fallback string) string {
	if len(options) > 0 && options[0].Duration != "" {
		return options[0].Duration
	}

	return fallback
}

// Реальные расстояния между крупными городами Индии в километрах.
var cityDistances = map[string]float64{
	routeKey("vellore", "pondicherry"): 100,
	routeKey("vellore", "chennai"):     140,
	routeKey("delhi", "mumbai"):        1400,
	routeKey("delhi", "bangalore"):     2150,
	routeKey("delhi", "chennai"):       2200,
	routeKey("delhi", "goa"):           1850,
	routeKey("delhi", "kolkata"):       1500,
	routeKey("delhi", "hyderabad"):     1570,
	routeKey("mumbai", "bangalore"):    980,
	routeKey("mumbai", "goa"):          450,
	routeKey("mumbai", "chennai"):      1330,
	routeKey("mumbai", "kolkata"):      2000,
	routeKey("mumbai", "pune"):         150,
	routeKey("bangalore", "goa"):       560,
	routeKey("bangalore", "chennai"):   350,
	routeKey("bangalore", "hyderabad"): 575,
	routeKey("bangalore", "kochi"):     540,
	routeKey("chennai", "goa"):         850,
	routeKey("chennai", "kolkata"):     1670,
	routeKey("chennai", "hyderabad"):   630,
	routeKey("pune", "goa"):            450,
	routeKey("pune", "bangalore"):      840,
	routeKey("hyderabad", "goa"):       650,
	routeKey("jaipur", "delhi"):        280,
	routeKey("ahmedabad", "mumbai"):    530,
}

// Средние тарифы эконом-класса по основным маршрутам в INR.
var routeFlightPrices = map[string]float64{
	routeKey("delhi", "mumbai"):        4500,
	routeKey("delhi", "bangalore"):     5500,
	routeKey("delhi", "chennai"):       6000,
	routeKey("delhi", "goa"):           5000,
	routeKey("delhi", "kolkata"):       5500,
	routeKey("mumbai", "bangalore"):    4000,
	routeKey("mumbai", "goa"):          3500,
	routeKey("mumbai", "chennai"):      4500,
	routeKey("bangalore", "goa"):       3500,
	routeKey("bangalore", "chennai"):   3000,
	routeKey("chennai", "goa"):         5000,
	routeKey("hyderabad", "bangalore"): 3000,
	routeKey("pune", "bangalore"):      3500,
	routeKey("pune", "goa"):            3000,
}

const defaultRouteDistance = 500

func routeKey(origin, destination string) string {
	a := strings.ToLower(strings.TrimSpace(origin))
	b := strings.ToLower(strings.TrimSpace(destination))
	if a > b {
		a, b = b, a
	}

	return a + "|" + b
}

func estimateDistance(origin, destination string) float64 {
	if distance, ok := cityDistances[routeKey(origin, destination)]; ok {
		return distance
	}

	return defaultRouteDistance
}

func estimateFlightPrice(origin, destination string, rng *rand.Rand) float64 {
	base, ok := routeFlightPrices[routeKey(origin, destination)]
	if !ok {
		// Для неизвестных маршрутов примерно 3.5 INR за километр.
		base = estimateDistance(origin, destination) * 3.5
	}

	return base + (rng.Float64()*2-1)*base*0.2
}

// Средние скорости по видам транспорта; для самолета учтено время в аэропорту.
func estimateDuration(distance float64, mode string) string {
	var hours float64
	switch mode {
	case "flight":
		hours = distance / 500
	case "train":
		hours = distance / 60
	case "bus":
		hours = distance / 50
	case "cab":
		hours = distance / 70
	default:
		return "N/A"
	}

	whole := int(hours)
	minutes := int((hours - float64(whole)) * 60)
	return fmt.Sprintf("%dh %02dm", whole, minutes)
}

func formatINR(value float64) string {
	digits := strconv.FormatInt(int64(value), 10)

	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var builder strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(r)
	}

	if negative {
		return "-" + builder.String()
	}

	return builder.String()
}
