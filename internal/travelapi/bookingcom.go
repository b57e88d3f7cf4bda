package travelapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoCredentials означает, что ключ внешнего API не задан; вызывающий
// код должен уйти на синтетические данные.
var ErrNoCredentials = errors.New("travel api credentials are missing")

// ErrRateLimited означает исчерпание квоты внешнего API.
var ErrRateLimited = errors.New("travel api rate limited")

// BookingClient обращается к Booking.com через RapidAPI: сперва резолвит
// направление в dest_id, затем ищет отели на даты заезда.
type BookingClient struct {
	apiKey     string
	baseURL    string
	host       string
	httpClient *http.Client
}

type HotelRecord struct {
	ID             string
	Name           string
	PricePerNight  float64
	Rating         float64
	PhotoURL       string
	Address        string
	Facilities     string
	FamilyFriendly bool
}

type bookingLocation struct {
	DestID   string `json:"dest_id"`
	DestType string `json:"dest_type"`
}

type bookingSearchResponse struct {
	Result []struct {
		HotelID        json.Number `json:"hotel_id"`
		HotelName      string      `json:"hotel_name"`
		ReviewScore    json.Number `json:"review_score"`
		MainPhotoURL   string      `json:"main_photo_url"`
		MaxPhotoURL    string      `json:"max_photo_url"`
		Address        string      `json:"address"`
		City           string      `json:"city"`
		Facilities     string      `json:"hotel_facilities"`
		FamilyFriendly bool        `json:"is_family_friendly"`
		PriceBreakdown struct {
			GrossPrice json.Number `json:"gross_price"`
		} `json:"price_breakdown"`
	} `json:"result"`
}

// NewBookingClient создает клиент Booking.com (RapidAPI).
func NewBookingClient(apiKey, baseURL string, timeout time.Duration) *BookingClient {
	trimmed := strings.TrimRight(baseURL, "/")
	host := strings.TrimPrefix(strings.TrimPrefix(trimmed, "https://"), "http://")

	return &BookingClient{
		apiKey:  apiKey,
		baseURL: trimmed,
		host:    host,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled сообщает, задан ли ключ API.
func (c *BookingClient) Enabled() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// SearchHotels ищет отели по направлению. Цена приводится к стоимости
// за ночь делением на число ночей.
func (c *BookingClient) SearchHotels(ctx context.Context, destination string, checkIn, checkOut time.Time, adults, children int) ([]HotelRecord, error) {
	if !c.Enabled() {
		return nil, ErrNoCredentials
	}

	destID, destType, err := c.lookupDestination(ctx, destination)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("dest_id", destID)
	query.Set("dest_type", destType)
	query.Set("checkin_date", checkIn.Format("2006-01-02"))
	query.Set("checkout_date", checkOut.Format("2006-01-02"))
	query.Set("adults_number", strconv.Itoa(adults))
	query.Set("children_number", strconv.Itoa(children))
	query.Set("room_number", "1")
	query.Set("units", "metric")
	query.Set("order_by", "popularity")
	query.Set("filter_by_currency", "INR")
	query.Set("locale", "en-gb")
	query.Set("page_number", "0")

	body, err := c.get(ctx, "/v1/hotels/search", query)
	if err != nil {
		return nil, err
	}

	var parsed bookingSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse hotel search response: %w", err)
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	records := make([]HotelRecord, 0, len(parsed.Result))
	for _, item := range parsed.Result {
		gross, _ := item.PriceBreakdown.GrossPrice.Float64()
		if gross <= 0 {
			continue
		}

		rating, _ := item.ReviewScore.Float64()
		photo := item.MainPhotoURL
		if photo == "" {
			photo = item.MaxPhotoURL
		}

		address := item.Address
		if address == "" {
			address = item.City
		}

		records = append(records, HotelRecord{
			ID:             item.HotelID.String(),
			Name:           item.HotelName,
			PricePerNight:  gross / float64(nights),
			Rating:         rating,
			PhotoURL:       photo,
			Address:        address,
			Facilities:     item.Facilities,
			FamilyFriendly: item.FamilyFriendly,
		})
	}

	if len(records) == 0 {
		return nil, errors.New("hotel search returned no priced results")
	}

	return records, nil
}

func (c *BookingClient) lookupDestination(ctx context.Context, destination string) (string, string, error) {
	query := url.Values{}
	query.Set("name", strings.TrimSpace(destination))
	query.Set("locale", "en-gb")

	body, err := c.get(ctx, "/v1/hotels/locations", query)
	if err != nil {
		return "", "", err
	}

	var locations []bookingLocation
	if err := json.Unmarshal(body, &locations); err != nil {
		return "", "", fmt.Errorf("parse locations response: %w", err)
	}

	if len(locations) == 0 || locations[0].DestID == "" {
		return "", "", fmt.Errorf("no location found for %q", destination)
	}

	destType := locations[0].DestType
	if destType == "" {
		destType = "city"
	}

	return locations[0].DestID, destType, nil
}

func (c *BookingClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + query.Encode()
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
	case response.StatusCode == http.StatusForbidden:
		return nil, errors.New("travel api key invalid or subscription required")
	case response.StatusCode < 200 || response.StatusCode >= 300:
		return nil, fmt.Errorf("travel api error %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
