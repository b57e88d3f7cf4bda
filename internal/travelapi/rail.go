package travelapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RailClient обращается к API железнодорожного расписания (RapidAPI).
// Ответы по маршруту кешируются на все время жизни процесса: записи
// write-once, поэтому конкурентные чтения безопасны.
type RailClient struct {
	apiKey     string
	baseURL    string
	host       string
	httpClient *http.Client
	cache      *gocache.Cache
}

type TrainRecord struct {
	Number    string
	Name      string
	Departure string
	Arrival   string
	Duration  string
	Classes   []string
}

type railResponse struct {
	Errors json.RawMessage `json:"errors,omitempty"`
	Data   []struct {
		TrainNumber json.Number `json:"train_number"`
		TrainName   string      `json:"train_name"`
		FromSTD     string      `json:"from_std"`
		ToSTA       string      `json:"to_sta"`
		Duration    string      `json:"duration"`
		ClassType   []string    `json:"class_type"`
	} `json:"data"`
}

// Примерные тарифы Индийских железных дорог по классам обслуживания.
var classFares = map[string]float64{
	"1A": 2500,
	"2A": 1500,
	"3A": 900,
	"SL": 400,
	"2S": 200,
	"CC": 1200,
	"EC": 1800,
}

var stationCodes = map[string]string{
	"delhi":     "NDLS",
	"new delhi": "NDLS",
	"mumbai":    "CSTM",
	"bombay":    "CSTM",
	"bangalore": "SBC",
	"bengaluru": "SBC",
	"chennai":   "MAS",
	"madras":    "MAS",
	"kolkata":   "HWH",
	"calcutta":  "HWH",
	"hyderabad": "HYB",
	"pune":      "PUNE",
	"goa":       "MAO",
	"jaipur":    "JP",
	"ahmedabad": "ADI",
	"kochi":     "ERS",
	"cochin":    "ERS",
	"vellore":   "VLR",
	"pondicherry": "PDY",
	"puducherry":  "PDY",
}

// NewRailClient создает клиент железнодорожного API с кешем маршрутов.
func NewRailClient(apiKey, baseURL string, timeout time.Duration) *RailClient {
	trimmed := strings.TrimRight(baseURL, "/")
	host := strings.TrimPrefix(strings.TrimPrefix(trimmed, "https://"), "http://")

	return &RailClient{
		apiKey:  apiKey,
		baseURL: trimmed,
		host:    host,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Enabled сообщает, задан ли ключ API.
func (c *RailClient) Enabled() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// TrainsBetween возвращает поезда между городами на дату, используя кеш по
// ключу маршрут+дата.
func (c *RailClient) TrainsBetween(ctx context.Context, origin, destination string, travelDate time.Time) ([]TrainRecord, error) {
	if !c.Enabled() {
		return nil, ErrNoCredentials
	}

	from := StationCode(origin)
	to := StationCode(destination)
	dateStr := travelDate.Format("2006-01-02")
	cacheKey := fmt.Sprintf("%s_%s_%s", from, to, dateStr)

	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]TrainRecord), nil
	}

	query := url.Values{}
	query.Set("fromStationCode", from)
	query.Set("toStationCode", to)
	query.Set("dateOfJourney", dateStr)

	endpoint := c.baseURL + "/api/v3/trainBetweenStations?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case response.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case response.StatusCode < 200 || response.StatusCode >= 300:
		return nil, fmt.Errorf("rail api error %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed railResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse rail response: %w", err)
	}

	if len(parsed.Errors) > 0 && string(parsed.Errors) != "null" {
		return nil, fmt.Errorf("rail api returned errors: %s", string(parsed.Errors))
	}

	trains := make([]TrainRecord, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		if item.TrainName == "" {
			continue
		}
		trains = append(trains, TrainRecord{
			Number:    item.TrainNumber.String(),
			Name:      item.TrainName,
			Departure: item.FromSTD,
			Arrival:   item.ToSTA,
			Duration:  item.Duration,
			Classes:   item.ClassType,
		})
	}

	if len(trains) == 0 {
		return nil, fmt.Errorf("no trains found for %s -> %s", from, to)
	}

	c.cache.Set(cacheKey, trains, gocache.NoExpiration)
	return trains, nil
}

// ClassFare возвращает примерный тариф для класса обслуживания.
func ClassFare(class string) (float64, bool) {
	fare, ok := classFares[strings.ToUpper(strings.TrimSpace(class))]
	return fare, ok
}

// StationCode переводит название города в код станции; для неизвестных
// городов берутся первые четыре буквы в верхнем регистре.
func StationCode(city string) string {
	normalized := strings.ToLower(strings.TrimSpace(city))
	if code, ok := stationCodes[normalized]; ok {
		return code
	}

	upper := strings.ToUpper(normalized)
	if len(upper) > 4 {
		upper = upper[:4]
	}

	return upper
}
