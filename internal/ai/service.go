package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const systemPrompt = "You are a travel planning assistant. Respond with JSON only, without extra text."

type Service struct {
	client     Client
	maxRetries int
	retryDelay time.Duration
}

// NewService создает сервис работы с AI-клиентом.
// При ErrRateLimited запрос повторяется с экспоненциальной задержкой,
// не более maxRetries раз.
func NewService(client Client, maxRetries int, retryDelay time.Duration) *Service {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	return &Service{client: client, maxRetries: maxRetries, retryDelay: retryDelay}
}

type HotelsInput struct {
	Destination string
	TripType    string
	MaxPerNight float64
	Count       int
}

type TransportInput struct {
	Origin      string
	Destination string
	TravelDate  string
	Mode        string
}

type ItineraryInput struct {
	Destination string
	TripType    string
	StartDate   string
	Days        int
	Budget      float64
	Interests   []string
}

// SuggestHotels запрашивает у модели список отелей и разбирает ответ.
func (s *Service) SuggestHotels(ctx context.Context, input HotelsInput) ([]HotelPayload, error) {
	prompt := buildHotelsPrompt(input)

	content, err := s.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload := extractArray(stripFences(content))
	if payload == "" {
		return nil, errors.New("hotel response does not contain a json array")
	}

	var hotels []HotelPayload
	if err := json.Unmarshal([]byte(trimTrailingCommas(payload)), &hotels); err != nil {
		return nil, fmt.Errorf("parse hotel response: %w", err)
	}

	valid := make([]HotelPayload, 0, len(hotels))
	for _, hotel := range hotels {
		if strings.TrimSpace(hotel.Name) == "" || hotel.Price <= 0 {
			continue
		}
		valid = append(valid, hotel)
	}

	if len(valid) == 0 {
		return nil, errors.New("hotel response has no usable entries")
	}

	return valid, nil
}

// TransportOptions запрашивает варианты транспорта для одного вида сообщения.
func (s *Service) TransportOptions(ctx context.Context, input TransportInput) (TransportPayload, error) {
	prompt := buildTransportPrompt(input)

	content, err := s.chat(ctx, prompt)
	if err != nil {
		return TransportPayload{}, err
	}

	payload := extractObject(stripFences(content))
	if payload == "" {
		return TransportPayload{}, errors.New("transport response does not contain a json object")
	}

	var parsed TransportPayload
	if err := json.Unmarshal([]byte(trimTrailingCommas(payload)), &parsed); err != nil {
		return TransportPayload{}, fmt.Errorf("parse transport response: %w", err)
	}

	valid := make([]TransportOptionPayload, 0, len(parsed.Options))
	for _, option := range parsed.Options {
		if strings.TrimSpace(option.Carrier) == "" || option.Price <= 0 {
			continue
		}
		valid = append(valid, option)
	}

	if len(valid) == 0 {
		return TransportPayload{}, errors.New("transport response has no usable options")
	}

	parsed.Options = valid
	return parsed, nil
}

// GenerateItinerary запрашивает план по дням и восстанавливает его из сырого текста.
func (s *Service) GenerateItinerary(ctx context.Context, input ItineraryInput) ([]DayPayload, error) {
	prompt := buildItineraryPrompt(input)

	content, err := s.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return RepairDays(content)
}

func (s *Service) chat(ctx context.Context, prompt string) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	delay := s.retryDelay
	for attempt := 0; ; attempt++ {
		content, _, err := s.client.Chat(ctx, messages)
		if err == nil {
			if strings.TrimSpace(content) == "" {
				return "", errors.New("ai response is empty")
			}
			return content, nil
		}

		if !errors.Is(err, ErrRateLimited) || attempt >= s.maxRetries {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func buildHotelsPrompt(input HotelsInput) string {
	return fmt.Sprintf(`Generate %d real hotels in %s, India as a JSON array.

Budget: %d INR/night max
Type: %s

Use real Indian hotel chains: Taj, Oberoi, ITC, Leela, Marriott, Hyatt, Radisson, Novotel, Lemon Tree, Ginger, Treebo, FabHotel, OYO

Format (return ONLY the JSON array, no markdown):
[{"name":"Taj Palace Delhi","price":2500,"rating":4.2,"location":"Connaught Place","amenities":["WiFi","Pool","Gym"],"description":"Luxury hotel in city center","tag":"Luxury Pick"}]

Rules:
- price: number 800-%d
- rating: 3.5-4.8
- tag: one of "Luxury Pick","Budget Friendly","Family Friendly","Best Value"
- description: max 80 chars
- exactly %d hotels`,
		input.Count, input.Destination, int(input.MaxPerNight), input.TripType, int(input.MaxPerNight*1.2), input.Count)
}

func buildTransportPrompt(input TransportInput) string {
	return fmt.Sprintf(`Generate realistic %s options from %s to %s on %s.

Return a JSON object with:
- duration: estimated journey time (e.g., "12h 30m")
- options: array of 3-5 options, each with:
  - carrier: operator name
  - time: departure time
  - price: single number in INR (e.g., 1200, NOT "1200-1500")
  - class_type: travel class

IMPORTANT: price must be a single number, not a range.
Return ONLY valid JSON, no other text.`,
		input.Mode, input.Origin, input.Destination, input.TravelDate)
}

func buildItineraryPrompt(input ItineraryInput) string {
	interests := "general tourism"
	if len(input.Interests) > 0 {
		interests = strings.Join(input.Interests, ", ")
	}

	return fmt.Sprintf(`Create a detailed %d-day itinerary for %s.

Trip Details:
- Type: %s
- Start Date: %s
- Budget for activities: %.0f INR
- Interests: %s

For each day, suggest 3-4 activities with:
- name: activity name
- icon: single emoji representing the activity
- time: suggested time (e.g., "09:00 AM")
- cost: estimated cost in INR (0 for free activities)
- description: brief description (one sentence)

Ensure activities are appropriate for the trip type, realistic for the
destination, well-timed throughout the day and within the budget allocation.

Return as a JSON array with this structure:
[{"day":1,"activities":[{"name":"...","icon":"🏨","time":"...","cost":0,"description":"..."}]}]

Return ONLY valid JSON, no other text.`,
		input.Days, input.Destination, input.TripType, input.StartDate, input.Budget, interests)
}

func extractArray(input string) string {
	start := strings.Index(input, "[")
	end := strings.LastIndex(input, "]")
	if start == -1 || end <= start {
		return ""
	}

	return input[start : end+1]
}

func extractObject(input string) string {
	start := strings.Index(input, "{")
	end := strings.LastIndex(input, "}")
	if start == -1 || end <= start {
		return ""
	}

	return input[start : end+1]
}
