package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

type HotelPayload struct {
	Name        string    `json:"name"`
	Price       FlexPrice `json:"price"`
	Rating      float64   `json:"rating"`
	Location    string    `json:"location"`
	Amenities   []string  `json:"amenities"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
}

type TransportPayload struct {
	Duration string                   `json:"duration"`
	Options  []TransportOptionPayload `json:"options"`
}

type TransportOptionPayload struct {
	Carrier   string    `json:"carrier"`
	Time      string    `json:"time"`
	Price     FlexPrice `json:"price"`
	ClassType string    `json:"class_type"`
}

type DayPayload struct {
	Day        int               `json:"day"`
	Activities []ActivityPayload `json:"activities"`
}

type ActivityPayload struct {
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Time        string    `json:"time"`
	Cost        FlexPrice `json:"cost"`
	Description string    `json:"description"`
}

// FlexPrice принимает цену как число или как строку с валютой и диапазонами
// ("₹1,200", "1200-1500", из диапазона берется нижняя граница). Модели регулярно нарушают
// формат, поэтому разбор терпимый.
type FlexPrice float64

func (p *FlexPrice) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*p = 0
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = FlexPrice(parsePriceString(s))
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// Нечисловой мусор не должен ронять разбор всего ответа.
		*p = 0
		return nil
	}
	*p = FlexPrice(v)
	return nil
}

func parsePriceString(value string) float64 {
	cleaned := strings.NewReplacer("INR", "", "₹", "", "Rs.", "", "Rs", "", ",", "").Replace(value)
	cleaned = strings.TrimSpace(cleaned)

	if idx := strings.Index(cleaned, "-"); idx > 0 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return parsed
}
