package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

// WeatherConnector queries a per-city weather API and derives heat and
// humidity alerts from current conditions. A missing API key yields an
// empty batch, not an error.
type WeatherConnector struct {
	name    string
	baseURL string
	apiKey  string
	cities  []string
	client  *http.Client
}

func NewWeatherConnector(name, baseURL, apiKey string, cities []string, timeout time.Duration) *WeatherConnector {
	return &WeatherConnector{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		cities:  cities,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *WeatherConnector) Name() string {
	return c.name
}

type weatherResponse struct {
	Weather struct {
		Current struct {
			Temperature struct {
				Max struct {
					Value float64 `json:"value"`
				} `json:"max"`
				Min struct {
					Value float64 `json:"value"`
				} `json:"min"`
			} `json:"temperature"`
			Humidity struct {
				Evening float64 `json:"evening"`
			} `json:"humidity"`
		} `json:"current"`
	} `json:"weather"`
}

// Alert thresholds in degrees Celsius / percent relative humidity.
const (
	heatwaveMaxTemp  = 45
	heatwaveCritTemp = 48
	humidityAlertRH  = 90
	humidityMinTemp  = 35
)

func (c *WeatherConnector) Fetch(ctx context.Context) (Batch, error) {
	if c.apiKey == "" {
		slog.Warn("weather API key not provided, skipping weather alerts", "source", c.name)
		return Batch{}, nil
	}

	var disasters []models.Disaster
	failures := 0
	for _, city := range c.cities {
		data, err := c.fetchCity(ctx, city)
		if err != nil {
			slog.Warn("weather fetch failed for city", "source", c.name, "city", city, "error", err)
			failures++
			continue
		}
		disasters = append(disasters, deriveWeatherAlerts(data, city, c.name)...)
	}

	if failures == len(c.cities) && len(c.cities) > 0 {
		return Batch{}, fmt.Errorf("weather API unreachable for all %d cities", len(c.cities))
	}
	return Batch{Disasters: disasters}, nil
}

func (c *WeatherConnector) fetchCity(ctx context.Context, city string) (*weatherResponse, error) {
	endpoint := fmt.Sprintf("%s/india/weather?city=%s", c.baseURL, url.QueryEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return &data, nil
}

// deriveWeatherAlerts turns current conditions into canonical disasters.
func deriveWeatherAlerts(data *weatherResponse, city, source string) []models.Disaster {
	var alerts []models.Disaster
	current := data.Weather.Current
	maxTemp := current.Temperature.Max.Value
	state := stateForLocation(city)

	if maxTemp >= heatwaveMaxTemp {
		severity := models.SeverityHigh
		if maxTemp >= heatwaveCritTemp {
			severity = models.SeverityCritical
		}
		alerts = append(alerts, models.Disaster{
			Title:       fmt.Sprintf("Extreme Heat Warning - %s", city),
			Description: fmt.Sprintf("Severe heat wave conditions with maximum temperature of %.0f°C recorded in %s.", maxTemp, city),
			Type:        models.TypeHeatwave,
			Severity:    severity,
			State:       state,
			District:    city,
			Source:      source,
			IsVerified:  true,
			Metadata: map[string]any{
				"maxTemp": maxTemp,
				"minTemp": current.Temperature.Min.Value,
			},
			ReportedAt: time.Now(),
			IsActive:   true,
		})
	}

	if current.Humidity.Evening >= humidityAlertRH && maxTemp >= humidityMinTemp {
		alerts = append(alerts, models.Disaster{
			Title:       fmt.Sprintf("High Humidity Alert - %s", city),
			Description: fmt.Sprintf("Very high humidity (%.0f%%) combined with high temperature may cause discomfort in %s.", current.Humidity.Evening, city),
			Type:        models.TypeOther,
			Severity:    models.SeverityMedium,
			State:       state,
			District:    city,
			Source:      source,
			IsVerified:  true,
			Metadata: map[string]any{
				"humidity":    current.Humidity.Evening,
				"temperature": maxTemp,
			},
			ReportedAt: time.Now(),
			IsActive:   true,
		})
	}

	return alerts
}
