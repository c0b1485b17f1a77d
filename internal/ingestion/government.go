package ingestion

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

// GovernmentConnector polls national disaster-alert RSS feeds, falling back
// to scraping the alert portal's earthquake listing when no feed answers.
type GovernmentConnector struct {
	name      string
	feedURLs  []string
	portalURL string
	client    *http.Client
}

func NewGovernmentConnector(name string, feedURLs []string, portalURL string, timeout time.Duration) *GovernmentConnector {
	return &GovernmentConnector{
		name:      name,
		feedURLs:  feedURLs,
		portalURL: portalURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *GovernmentConnector) Name() string {
	return c.name
}

func (c *GovernmentConnector) Fetch(ctx context.Context) (Batch, error) {
	for _, url := range c.feedURLs {
		disasters, err := c.fetchFeed(ctx, url)
		if err != nil {
			slog.Debug("alert feed not available", "source", c.name, "url", url, "error", err)
			continue
		}
		if len(disasters) > 0 {
			return Batch{Disasters: disasters}, nil
		}
	}

	// No feed answered with items; scrape recent earthquakes off the portal.
	disasters, err := c.scrapeEarthquakes(ctx)
	if err != nil {
		return Batch{}, err
	}
	return Batch{Disasters: disasters}, nil
}

type alertFeed struct {
	Channel alertChannel `xml:"channel"`
}
type alertChannel struct {
	Items []alertItem `xml:"item"`
}
type alertItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

func (c *GovernmentConnector) fetchFeed(ctx context.Context, url string) ([]models.Disaster, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var feed alertFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	disasters := make([]models.Disaster, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		title := item.Title
		if title == "" {
			title = "Government Alert"
		}

		reportedAt := time.Now()
		if item.PubDate != "" {
			if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
				reportedAt = t
			} else if t, err := time.Parse(time.RFC1123, item.PubDate); err == nil {
				reportedAt = t
			} else {
				slog.Warn("alert feed timestamp parsing failed", "source", c.name, "pubDate", item.PubDate)
			}
		}

		disasters = append(disasters, models.Disaster{
			Title:       title,
			Description: item.Description,
			Type:        inferDisasterType(title),
			Severity:    inferSeverity(title),
			State:       extractState(title),
			Source:      c.name,
			SourceURL:   item.Link,
			IsVerified:  true,
			Metadata: map[string]any{
				"guid":    item.GUID,
				"pubDate": item.PubDate,
			},
			ReportedAt: reportedAt,
			IsActive:   true,
		})
	}

	return disasters, nil
}

// earthquakeRow matches the portal's "*** **4.2 Magnitude** | location | time ***" rows.
var earthquakeRow = regexp.MustCompile(`\*\*\*\s*\*\*(\d+\.\d+)\s+Magnitude\*\*\s*\|\s*([^|]+)\s*\|\s*([^*]+)\*\*\*`)

const (
	minScrapedMagnitude = 3.5
	maxScrapedQuakes    = 5
)

func (c *GovernmentConnector) scrapeEarthquakes(ctx context.Context) ([]models.Disaster, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.portalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading resp.Body: %w", err)
	}

	var disasters []models.Disaster
	for _, match := range earthquakeRow.FindAllStringSubmatch(string(body), -1) {
		magnitude, err := strconv.ParseFloat(match[1], 64)
		if err != nil || magnitude < minScrapedMagnitude {
			continue
		}
		location := strings.TrimSpace(match[2])
		timeStr := strings.TrimSpace(match[3])

		disasters = append(disasters, models.Disaster{
			Title:       fmt.Sprintf("Earthquake - Magnitude %.1f - %s", magnitude, location),
			Description: fmt.Sprintf("Earthquake of magnitude %.1f reported in %s region.", magnitude, location),
			Type:        models.TypeEarthquake,
			Severity:    magnitudeSeverity(magnitude),
			State:       stateForLocation(location),
			Source:      c.name,
			SourceURL:   c.portalURL,
			IsVerified:  true,
			Metadata: map[string]any{
				"magnitude": magnitude,
				"time":      timeStr,
				"region":    location,
			},
			ReportedAt: time.Now(),
			IsActive:   true,
		})
		if len(disasters) == maxScrapedQuakes {
			break
		}
	}

	return disasters, nil
}

func magnitudeSeverity(magnitude float64) models.Severity {
	switch {
	case magnitude >= 6:
		return models.SeverityCritical
	case magnitude >= 5:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
