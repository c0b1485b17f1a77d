package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

// SocialConnector runs a keyworded recent-post search against a social
// platform and maps the results to canonical social reports. A missing
// bearer token yields an empty batch, not an error.
type SocialConnector struct {
	name        string
	baseURL     string
	bearerToken string
	keywords    []string
	client      *http.Client
}

func NewSocialConnector(name, baseURL, bearerToken string, keywords []string, timeout time.Duration) *SocialConnector {
	return &SocialConnector{
		name:        name,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		keywords:    keywords,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *SocialConnector) Name() string {
	return c.name
}

type searchResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Users  []tweetUser  `json:"users"`
		Places []tweetPlace `json:"places"`
	} `json:"includes"`
}

type tweet struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	Geo       struct {
		PlaceID string `json:"place_id"`
	} `json:"geo"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
}

type tweetUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
}

type tweetPlace struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Geo      struct {
		BBox []float64 `json:"bbox"` // [west, south, east, north]
	} `json:"geo"`
}

func (c *SocialConnector) Fetch(ctx context.Context) (Batch, error) {
	if c.bearerToken == "" {
		slog.Warn("social bearer token not provided, skipping social media fetch", "source", c.name)
		return Batch{}, nil
	}

	terms := make([]string, len(c.keywords))
	for i, kw := range c.keywords {
		terms[i] = kw + " india"
	}
	query := strings.Join(terms, " OR ")

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", "50")
	params.Set("tweet.fields", "created_at,author_id,public_metrics,geo")
	params.Set("user.fields", "username,verified")
	params.Set("expansions", "author_id,geo.place_id")
	params.Set("place.fields", "full_name,geo")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return Batch{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return Batch{}, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Batch{}, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Batch{}, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return Batch{SocialReports: mapSearchResponse(&data, c.name)}, nil
}

func mapSearchResponse(data *searchResponse, platform string) []models.SocialReport {
	users := make(map[string]tweetUser, len(data.Includes.Users))
	for _, u := range data.Includes.Users {
		users[u.ID] = u
	}
	places := make(map[string]tweetPlace, len(data.Includes.Places))
	for _, p := range data.Includes.Places {
		places[p.ID] = p
	}

	reports := make([]models.SocialReport, 0, len(data.Data))
	for _, t := range data.Data {
		author, hasAuthor := users[t.AuthorID]
		username := author.Username
		if username == "" {
			username = "user_" + t.AuthorID
		}

		report := models.SocialReport{
			Platform:           platform,
			PostID:             t.ID,
			AuthorUsername:     username,
			Content:            t.Text,
			MediaURLs:          []string{},
			Hashtags:           extractHashtags(t.Text),
			IsVerified:         hasAuthor && author.Verified,
			VerificationStatus: models.VerificationPending,
			Engagement: models.Engagement{
				Retweets: t.PublicMetrics.RetweetCount,
				Likes:    t.PublicMetrics.LikeCount,
				Replies:  t.PublicMetrics.ReplyCount,
			},
			ReportedAt: parseTweetTime(t.CreatedAt),
		}

		if place, ok := places[t.Geo.PlaceID]; ok && t.Geo.PlaceID != "" {
			report.Location = place.FullName
			if len(place.Geo.BBox) == 4 {
				lat := (place.Geo.BBox[1] + place.Geo.BBox[3]) / 2
				lng := (place.Geo.BBox[0] + place.Geo.BBox[2]) / 2
				report.Latitude = &lat
				report.Longitude = &lng
			}
		} else {
			report.Location = extractLocation(t.Text)
		}

		reports = append(reports, report)
	}
	return reports
}

func parseTweetTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

func extractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	hashtags := make([]string, 0, len(matches))
	for _, m := range matches {
		hashtags = append(hashtags, m[1])
	}
	return hashtags
}

var locationPattern = regexp.MustCompile(`(?i)(Mumbai|Delhi|Bangalore|Hyderabad|Chennai|Kolkata|Pune|Ahmedabad|Jaipur|Lucknow|Nagpur|Indore|Bhopal|Patna|Varanasi|Srinagar|Amritsar|Ranchi|Coimbatore|Gwalior|Jodhpur|Madurai|Raipur|Chandigarh|Guwahati|Mysore|Gurgaon|Bhubaneswar|Noida|Cuttack|Kochi|Dehradun|Rishikesh|Haridwar|Shimla|Nainital|Balasore|Maharashtra|Kerala|Tamil Nadu|Karnataka|Andhra Pradesh|Telangana|Gujarat|Rajasthan|Punjab|Haryana|Uttar Pradesh|West Bengal|Odisha|Bihar|Jharkhand|Assam|Himachal Pradesh|Uttarakhand|Goa|Manipur|Tripura|Meghalaya|Mizoram|Nagaland|Arunachal Pradesh|Sikkim|Jammu and Kashmir|Ladakh)`)

// extractLocation pulls the first recognizable Indian city or state name out
// of free text. Returns "" when nothing matches.
func extractLocation(text string) string {
	return locationPattern.FindString(text)
}
