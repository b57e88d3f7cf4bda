package models

import (
	"time"

	"github.com/google/uuid"
)

type TripRequest struct {
	TripType    string    `json:"trip_type"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Budget      float64   `json:"budget"`
	Adults      int       `json:"adults"`
	Children    int       `json:"children"`
}

// Days возвращает длительность поездки в днях.
func (t TripRequest) Days() int {
	return int(t.EndDate.Sub(t.StartDate).Hours() / 24)
}

type BudgetBreakdown struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type BudgetAllocation struct {
	Total            float64           `json:"total"`
	Breakdown        []BudgetBreakdown `json:"breakdown"`
	Accommodation    float64           `json:"accommodation_budget"`
	HotelPerNight    float64           `json:"hotel_budget_per_night"`
	Transport        float64           `json:"transport_budget"`
	Activities       float64           `json:"activities_budget"`
	ActivitiesPerDay float64           `json:"activities_budget_per_day"`
	Food             float64           `json:"food_budget"`
	FoodPerDay       float64           `json:"food_budget_per_day"`
	Miscellaneous    float64           `json:"miscellaneous_budget"`
	Days             int               `json:"trip_duration_days"`
	Nights           int               `json:"trip_duration_nights"`
}

type Hotel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Image       string   `json:"image"`
	Location    string   `json:"location"`
	Amenities   []string `json:"amenities"`
	Description string   `json:"description"`
	Tag         string   `json:"tag"`
}

type TransportOption struct {
	Carrier   string  `json:"carrier"`
	Time      string  `json:"time"`
	Price     float64 `json:"price"`
	Duration  string  `json:"duration"`
	ClassType string  `json:"class_type,omitempty"`
}

type TransportMode struct {
	Mode       string            `json:"mode"`
	Icon       string            `json:"icon"`
	Duration   string            `json:"duration"`
	PriceRange string            `json:"price_range"`
	Note       string            `json:"note"`
	Options    []TransportOption `json:"options"`
}

type Activity struct {
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Time        string  `json:"time"`
	Cost        float64 `json:"cost"`
	Description string  `json:"description"`
}

type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
	TotalCost  float64    `json:"total_cost"`
}

type Itinerary struct {
	Days            []DayPlan `json:"itinerary"`
	TotalCost       float64   `json:"total_activities_cost"`
	Recommendations string    `json:"recommendations"`
}

type SavedTrip struct {
	ID        uuid.UUID        `json:"id"`
	UserID    string           `json:"user_id"`
	Trip      TripRequest      `json:"trip_details"`
	Budget    BudgetAllocation `json:"budget"`
	Hotel     *Hotel           `json:"hotel,omitempty"`
	Transport *TransportMode   `json:"transport,omitempty"`
	Itinerary *Itinerary       `json:"itinerary,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
