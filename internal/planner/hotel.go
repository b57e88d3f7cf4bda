package planner

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"example.com/ai-trip-planner/backend/internal/ai"
	"example.com/ai-trip-planner/backend/internal/models"
	"example.com/ai-trip-planner/backend/internal/travelapi"
)

const fallbackHotelCount = 15

// PricePolicy задает распределение синтетических цен относительно потолка.
// Константы подобраны эмпирически и вынесены в конфигурацию.
type PricePolicy struct {
	FloorPct  float64
	CeilPct   float64
	JitterPct float64
}

// DefaultPricePolicy: цены в диапазоне 25%-100% потолка с джиттером ±8%.
func DefaultPricePolicy() PricePolicy {
	return PricePolicy{FloorPct: 0.25, CeilPct: 1.0, JitterPct: 0.08}
}

type HotelQuery struct {
	Destination      string
	CheckIn          time.Time
	CheckOut         time.Time
	Adults           int
	Children         int
	MaxPricePerNight float64
	TripType         string
}

// HotelAgent подбирает отели: сперва живой инвентарь, затем генеративная
// модель, в конце детерминированная синтетика. Наружу ошибка не выходит.
type HotelAgent struct {
	ai        *ai.Service
	inventory *travelapi.BookingClient
	policy    PricePolicy
	logger    *slog.Logger
}

// NewHotelAgent создает агента поиска отелей.
func NewHotelAgent(aiService *ai.Service, inventory *travelapi.BookingClient, policy PricePolicy, logger *slog.Logger) *HotelAgent {
	if logger == nil {
		logger = slog.Default()
	}

	return &HotelAgent{ai: aiService, inventory: inventory, policy: policy, logger: logger}
}

// Search возвращает подборку отелей в пределах потолка цены за ночь.
func (a *HotelAgent) Search(ctx context.Context, query HotelQuery) []models.Hotel {
	if a.inventory != nil && a.inventory.Enabled() {
		records, err := a.inventory.SearchHotels(ctx, query.Destination, query.CheckIn, query.CheckOut, query.Adults, query.Children)
		if err == nil {
			hotels := a.mapInventory(records, query)
			if len(hotels) > 0 {
				a.logger.Info("hotels from live inventory", slog.Int("count", len(hotels)))
				return hotels
			}
		} else {
			a.logger.Warn("hotel inventory unavailable", slog.String("error", err.Error()))
		}
	}

	if a.ai != nil {
		payloads, err := a.ai.SuggestHotels(ctx, ai.HotelsInput{
			Destination: query.Destination,
			TripType:    query.TripType,
			MaxPerNight: query.MaxPricePerNight,
			Count:       fallbackHotelCount,
		})
		if err == nil {
			hotels := a.mapSuggestions(payloads, query)
			if len(hotels) >= 10 {
				return hotels
			}
			// Модель дала слишком мало позиций: добиваем синтетикой.
			needed := fallbackHotelCount - len(hotels)
			hotels = append(hotels, a.fallbackHotels(query, needed)...)
			return hotels
		}
		a.logger.Warn("ai hotel suggestions failed", slog.String("error", err.Error()))
	}

	return a.fallbackHotels(query, fallbackHotelCount)
}

// mapInventory фильтрует живые данные по бюджету, не пересчитывая цены.
func (a *HotelAgent) mapInventory(records []travelapi.HotelRecord, query HotelQuery) []models.Hotel {
	hotels := make([]models.Hotel, 0, len(records))

	for idx, record := range records {
		if record.PricePerNight > query.MaxPricePerNight*1.5 {
			continue
		}

		rating := record.Rating
		if rating <= 0 {
			rating = 4.0
		}

		photo := record.PhotoURL
		if photo == "" {
			photo = hotelImage(idx)
		}

		location := record.Address
		if location == "" {
			location = query.Destination
		}

		tag := "Best Value"
		switch {
		case record.PricePerNight > 8000:
			tag = "Luxury Pick"
		case record.PricePerNight < 1500:
			tag = "Budget Friendly"
		case record.FamilyFriendly:
			tag = "Family Friendly"
		}

		hotels = append(hotels, models.Hotel{
			ID:          fmt.Sprintf("real_hotel_%s", record.ID),
			Name:        record.Name,
			Price:       math.Round(record.PricePerNight),
			Rating:      rating,
			Image:       photo,
			Location:    location,
			Amenities:   parseFacilities(record.Facilities),
			Description: record.Name,
			Tag:         tag,
		})

		if len(hotels) == fallbackHotelCount {
			break
		}
	}

	return hotels
}

// mapSuggestions приводит ответ модели к сущностям; цены выше полуторного
// потолка переоцениваются в 80% потолка.
func (a *HotelAgent) mapSuggestions(payloads []ai.HotelPayload, query HotelQuery) []models.Hotel {
	limited := payloads
	if len(limited) > fallbackHotelCount {
		limited = limited[:fallbackHotelCount]
	}

	return lo.Map(limited, func(payload ai.HotelPayload, idx int) models.Hotel {
		price := float64(payload.Price)
		if price > query.MaxPricePerNight*1.5 {
			price = query.MaxPricePerNight * 0.8
		}

		rating := payload.Rating
		if rating <= 0 {
			rating = 4.0
		}

		amenities := payload.Amenities
		if len(amenities) == 0 {
			amenities = []string{"WiFi", "Parking", "Breakfast"}
		}
		if len(amenities) > 5 {
			amenities = amenities[:5]
		}

		location := payload.Location
		if location == "" {
			location = "City Center"
		}

		description := payload.Description
		if description == "" {
			description = "Comfortable accommodation"
		}

		tag := payload.Tag
		if tag == "" {
			tag = "Recommended"
		}

		return models.Hotel{
			ID:          fmt.Sprintf("hotel_%d", idx+1),
			Name:        payload.Name,
			Price:       round2(price),
			Rating:      rating,
			Image:       hotelImage(idx),
			Location:    location,
			Amenities:   amenities,
			Description: description,
			Tag:         tag,
		}
	})
}

type hotelTemplate struct {
	Name      string
	BasePrice float64
	Rating    float64
}

var hotelChains = map[string][]hotelTemplate{
	"luxury": {
		{"Taj Palace", 8000, 4.7},
		{"The Oberoi", 12000, 4.8},
		{"ITC Grand", 9000, 4.6},
		{"Leela Palace", 11000, 4.8},
		{"JW Marriott", 7500, 4.6},
	},
	"premium": {
		{"Hyatt Regency", 5500, 4.5},
		{"Radisson Blu", 4500, 4.4},
		{"Novotel", 4000, 4.3},
		{"Holiday Inn", 3500, 4.2},
		{"Crowne Plaza", 5000, 4.4},
	},
	"midrange": {
		{"Lemon Tree Hotel", 2500, 4.0},
		{"Ginger Hotel", 2000, 3.9},
		{"Treebo Hotels", 1800, 3.8},
		{"FabHotel", 1500, 3.7},
		{"Bloom Hotel", 2200, 4.0},
	},
	"budget": {
		{"OYO Flagship", 1200, 3.5},
		{"Collection O", 1000, 3.6},
		{"Zostel", 800, 4.2},
		{"GoStays", 900, 3.4},
		{"Spot ON", 1100, 3.5},
	},
}

var hotelLocations = map[string][]string{
	"goa":       {"Calangute", "Baga Beach", "Anjuna", "Candolim", "Panjim"},
	"mumbai":    {"Colaba", "Bandra", "Andheri", "Powai", "Lower Parel"},
	"delhi":     {"Connaught Place", "Aerocity", "Karol Bagh", "Paharganj", "Dwarka"},
	"bangalore": {"MG Road", "Whitefield", "Indiranagar", "Koramangala", "Electronic City"},
	"chennai":   {"T Nagar", "Anna Salai", "Egmore", "Mylapore", "OMR"},
	"jaipur":    {"City Palace Area", "MI Road", "Bani Park", "Malviya Nagar", "Vaishali Nagar"},
}

var defaultLocations = []string{"City Center", "Downtown", "Near Station", "Airport Road", "Main Street"}

var amenityPool = [][]string{
	{"Free WiFi", "Swimming Pool", "Gym", "Restaurant", "Room Service"},
	{"Free WiFi", "Parking", "Restaurant", "24/7 Front Desk"},
	{"Free WiFi", "Complimentary Breakfast", "AC Rooms", "TV"},
	{"WiFi", "Hot Water", "Clean Rooms", "Laundry Service"},
	{"Free WiFi", "Bar", "Spa", "Conference Room", "Airport Shuttle"},
	{"WiFi", "Rooftop Restaurant", "Gym", "Pool", "Concierge"},
}

var bandTags = map[string]string{
	"luxury":   "Luxury Pick",
	"premium":  "Best Value",
	"midrange": "Family Friendly",
	"budget":   "Budget Friendly",
}

// fallbackHotels синтезирует подборку без внешних зависимостей. Генератор
// детерминирован для пары направление+дата заезда; цены распределяются по
// диапазону политики и после сортировки строго различимы.
func (a *HotelAgent) fallbackHotels(query HotelQuery, count int) []models.Hotel {
	if count <= 0 {
		return nil
	}

	ceiling := query.MaxPricePerNight
	rng := rand.New(rand.NewSource(seedFor(query.Destination, query.CheckIn)))

	templates := templatesForBudget(ceiling)
	rng.Shuffle(len(templates), func(i, j int) {
		templates[i], templates[j] = templates[j], templates[i]
	})
	if count > len(templates) {
		count = len(templates)
	}

	locations := hotelLocations[strings.ToLower(strings.TrimSpace(query.Destination))]
	if len(locations) == 0 {
		locations = defaultLocations
	}

	span := a.policy.CeilPct - a.policy.FloorPct
	prices := make([]float64, count)
	for i := range prices {
		fraction := 0.0
		if count > 1 {
			fraction = float64(i) / float64(count-1)
		}
		base := ceiling * (a.policy.FloorPct + span*fraction)
		jitter := 1 + (rng.Float64()*2-1)*a.policy.JitterPct
		prices[i] = round2(base * jitter)
	}

	sort.Float64s(prices)
	for i := 1; i < len(prices); i++ {
		if prices[i] <= prices[i-1] {
			prices[i] = round2(prices[i-1] + 0.01)
		}
	}

	hotels := make([]models.Hotel, 0, count)
	for i := 0; i < count; i++ {
		template := templates[i]
		price := prices[i]
		band := priceBand(price)

		rating := template.Rating + (rng.Float64()*0.4 - 0.2)
		rating = math.Round(clampFloat(rating, 3.0, 4.9)*10) / 10

		hotels = append(hotels, models.Hotel{
			ID:          fmt.Sprintf("hotel_%d", i+1),
			Name:        fmt.Sprintf("%s %s", template.Name, query.Destination),
			Price:       price,
			Rating:      rating,
			Image:       hotelImage(i),
			Location:    locations[rng.Intn(len(locations))],
			Amenities:   amenityPool[rng.Intn(len(amenityPool))],
			Description: fmt.Sprintf("Well-appointed %s hotel in %s, perfect for %s travelers.", band, query.Destination, query.TripType),
			Tag:         bandTags[band],
		})
	}

	return hotels
}

// templatesForBudget собирает пул из эшелона потолка и двух соседних,
// чтобы имена в подборке не повторялись.
func templatesForBudget(ceiling float64) []hotelTemplate {
	var templates []hotelTemplate
	switch {
	case ceiling > 8000:
		templates = append(templates, hotelChains["luxury"]...)
		templates = append(templates, hotelChains["premium"]...)
		templates = append(templates, hotelChains["midrange"]...)
	case ceiling > 4000:
		templates = append(templates, hotelChains["premium"]...)
		templates = append(templates, hotelChains["midrange"]...)
		templates = append(templates, hotelChains["luxury"]...)
	case ceiling > 1500:
		templates = append(templates, hotelChains["midrange"]...)
		templates = append(templates, hotelChains["budget"]...)
		templates = append(templates, hotelChains["premium"]...)
	default:
		templates = append(templates, hotelChains["budget"]...)
		templates = append(templates, hotelChains["midrange"]...)
		templates = append(templates, hotelChains["premium"]...)
	}

	return templates
}

func priceBand(price float64) string {
	switch {
	case price > 8000:
		return "luxury"
	case price > 4000:
		return "premium"
	case price > 1500:
		return "midrange"
	default:
		return "budget"
	}
}

func parseFacilities(facilities string) []string {
	defaults := []string{"WiFi", "Air Conditioning", "Room Service"}
	if strings.TrimSpace(facilities) == "" {
		return defaults
	}

	facilityMap := []struct {
		key   string
		label string
	}{
		{"wifi", "Free WiFi"},
		{"pool", "Swimming Pool"},
		{"gym", "Fitness Center"},
		{"spa", "Spa"},
		{"restaurant", "Restaurant"},
		{"bar", "Bar"},
		{"parking", "Free Parking"},
		{"breakfast", "Breakfast Included"},
		{"room service", "Room Service"},
	}

	lowered := strings.ToLower(facilities)
	parsed := make([]string, 0, 5)
	for _, entry := range facilityMap {
		if strings.Contains(lowered, entry.key) && len(parsed) < 5 {
			parsed = append(parsed, entry.label)
		}
	}

	if len(parsed) == 0 {
		return defaults
	}

	return parsed
}

var hotelImages = []string{
	"https://images.unsplash.com/photo-1566073771259-6a8506099945?w=800",
	"https://images.unsplash.com/photo-1542314831-068cd1dbfeeb?w=800",
	"https://images.unsplash.com/photo-1445019980597-93fa8acb246c?w=800",
	"https://images.unsplash.com/photo-1551882547-ff40c63fe5fa?w=800",
	"https://images.unsplash.com/photo-1582719508461-905c673771fd?w=800",
	"https://images.unsplash.com/photo-1571896349842-33c89424de2d?w=800",
	"https://images.unsplash.com/photo-1564501049412-61c2a3083791?w=800",
	"https://images.unsplash.com/photo-1520250497591-112f2f40a3f4?w=800",
	"https://images.unsplash.com/photo-1584132967334-10e028bd69f7?w=800",
	"https://images.unsplash.com/photo-1512918728675-ed5a9ecdebfd?w=800",
	"https://images.unsplash.com/photo-1611892440504-42a792e24d32?w=800",
	"https://images.unsplash.com/photo-1631049307264-da0ec9d70304?w=800",
	"https://images.unsplash.com/photo-1618773928121-c32242e63f39?w=800",
	"https://images.unsplash.com/photo-1590490360182-c33d57733427?w=800",
	"https://images.unsplash.com/photo-1455587734955-081b22074882?w=800",
}

func hotelImage(index int) string {
	return hotelImages[index%len(hotelImages)]
}

func seedFor(parts ...any) int64 {
	h := fnv.New64a()
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(v))))
		case time.Time:
			_, _ = h.Write([]byte(v.Format("2006-01-02")))
		}
		_, _ = h.Write([]byte{'|'})
	}

	return int64(h.Sum64())
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}

	return value
}
