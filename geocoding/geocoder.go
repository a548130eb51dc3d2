// Package geocoding обогащает очищенные адреса координатами через
// Google Maps Geocoding API. Необязательный проход после конвейера:
// его ошибки никогда не влияют на результат очистки.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// confidenceByLocationType — оценка достоверности по точности привязки.
var confidenceByLocationType = map[string]float64{
	"ROOFTOP":            1.0,
	"RANGE_INTERPOLATED": 0.8,
	"GEOMETRIC_CENTER":   0.6,
	"APPROXIMATE":        0.4,
}

// Result — результат геокодирования одного адреса.
type Result struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	LocationType     string
	Confidence       float64
	MapsLink         string
}

// Client — клиент Google Maps Geocoding API с ограничением частоты и
// кэшем результатов в памяти.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *resultCache
}

// NewClient создает клиент геокодирования.
func NewClient(apiKey string, timeout time.Duration, requestsPerSecond float64, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL:    defaultGeocodeBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		cache:      newResultCache(cacheTTL),
	}
}

// WithBaseURL переопределяет адрес API (для тестов).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// buildComponents собирает компонентный фильтр запроса: страна всегда,
// город и департамент добавляются при наличии.
func buildComponents(city, state string) string {
	components := []string{"country:PY"}
	if c := strings.TrimSpace(city); c != "" {
		components = append(components, "locality:"+c)
	}
	if s := strings.TrimSpace(state); s != "" {
		components = append(components, "administrative_area:"+s)
	}
	return strings.Join(components, "|")
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// GeocodeRow геокодирует очищенную строку: запрос строится как
// "адрес, город, департамент, Paraguay", поиск ограничен Парагваем.
func (c *Client) GeocodeRow(ctx context.Context, address, city, state string) (Result, error) {
	var parts []string
	for _, p := range []string{address, city, state} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	if len(parts) == 0 {
		return Result{}, fmt.Errorf("nothing to geocode")
	}
	query := strings.Join(parts, ", ") + ", Paraguay"

	if cached, ok := c.cache.get(query); ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("components", buildComponents(city, state))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Status != "OK" || len(parsed.Results) == 0 {
		if parsed.ErrorMessage != "" {
			return Result{}, fmt.Errorf("geocoding failed: %s (%s)", parsed.Status, parsed.ErrorMessage)
		}
		return Result{}, fmt.Errorf("geocoding failed: %s", parsed.Status)
	}

	first := parsed.Results[0]
	locationType := first.Geometry.LocationType
	confidence, ok := confidenceByLocationType[locationType]
	if !ok {
		confidence = 0.5
	}
	result := Result{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
		LocationType:     locationType,
		Confidence:       confidence,
		MapsLink:         fmt.Sprintf("https://www.google.com/maps?q=%f,%f", first.Geometry.Location.Lat, first.Geometry.Location.Lng),
	}

	c.cache.put(query, result)
	log.Printf("[Geocoder] %q -> %s (confidence %.1f)", query, locationType, confidence)
	return result, nil
}
