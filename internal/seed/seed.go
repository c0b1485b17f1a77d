package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/store"
)

// Load inserts demonstration fixtures so a fresh deployment shows a
// populated dashboard before the first poll completes.
func Load(ctx context.Context, st store.Store) error {
	now := time.Now()
	disasters := sampleDisasters(now)
	reports := sampleSocialReports(now)

	for _, d := range disasters {
		if _, err := st.CreateDisaster(ctx, d); err != nil {
			return fmt.Errorf("error seeding disaster %q: %w", d.Title, err)
		}
	}
	for _, r := range reports {
		if _, err := st.CreateSocialReport(ctx, r); err != nil {
			return fmt.Errorf("error seeding social report %q: %w", r.PostID, err)
		}
	}

	slog.Info("sample data loaded", "disasters", len(disasters), "social_reports", len(reports))
	return nil
}

func sampleDisasters(now time.Time) []models.Disaster {
	return []models.Disaster{
		{
			Title:              "Severe Cyclone Warning - Odisha Coast",
			Description:        "Cyclone Yaas is approaching the Odisha coast with wind speeds of 165-175 kmph. Coastal areas have been evacuated.",
			Type:               models.TypeCyclone,
			Severity:           models.SeverityCritical,
			State:              "Odisha",
			District:           "Bhadrak",
			Latitude:           ptr(21.0547),
			Longitude:          ptr(86.7903),
			Source:             "IMD",
			SourceURL:          "https://mausam.imd.gov.in",
			AffectedPopulation: ptr(500000),
			IsVerified:         true,
			Metadata: map[string]any{
				"windSpeed": "165-175 kmph",
				"landfall":  "Expected within 6 hours",
				"evacuated": "2 lakh people",
			},
			ReportedAt: now.Add(-2 * time.Hour),
			IsActive:   true,
		},
		{
			Title:              "Flash Flood Alert - Mumbai Metropolitan Region",
			Description:        "Heavy rainfall has caused waterlogging in several areas of Mumbai. Local train services partially suspended.",
			Type:               models.TypeFlood,
			Severity:           models.SeverityHigh,
			State:              "Maharashtra",
			District:           "Mumbai",
			Latitude:           ptr(19.0760),
			Longitude:          ptr(72.8777),
			Source:             "NDMA",
			SourceURL:          "https://ndma.gov.in",
			AffectedPopulation: ptr(200000),
			IsVerified:         true,
			Metadata: map[string]any{
				"rainfall":   "150mm in 3 hours",
				"waterLevel": "3 feet in low-lying areas",
				"services":   "Local trains disrupted",
			},
			ReportedAt: now.Add(-1 * time.Hour),
			IsActive:   true,
		},
		{
			Title:              "Earthquake - Magnitude 4.2 - Himachal Pradesh",
			Description:        "Moderate earthquake felt in Shimla and surrounding areas. No casualties reported.",
			Type:               models.TypeEarthquake,
			Severity:           models.SeverityMedium,
			State:              "Himachal Pradesh",
			District:           "Shimla",
			Latitude:           ptr(31.1048),
			Longitude:          ptr(77.1734),
			Source:             "NDMA",
			SourceURL:          "https://ndma.gov.in",
			AffectedPopulation: ptr(50000),
			IsVerified:         true,
			Metadata: map[string]any{
				"magnitude": "4.2",
				"depth":     "15 km",
				"epicenter": "12 km NE of Shimla",
			},
			ReportedAt: now.Add(-30 * time.Minute),
			IsActive:   true,
		},
		{
			Title:              "Forest Fire - Uttarakhand Hills",
			Description:        "Wildfire spreading in the forest areas near Nainital. Firefighting operations underway.",
			Type:               models.TypeFire,
			Severity:           models.SeverityHigh,
			State:              "Uttarakhand",
			District:           "Nainital",
			Latitude:           ptr(29.3803),
			Longitude:          ptr(79.4636),
			Source:             "State Forest Department",
			AffectedPopulation: ptr(10000),
			IsVerified:         true,
			Metadata: map[string]any{
				"area":  "200 hectares",
				"teams": "15 fire brigades deployed",
				"cause": "Under investigation",
			},
			ReportedAt: now.Add(-4 * time.Hour),
			IsActive:   true,
		},
		{
			Title:              "Heat Wave Warning - Rajasthan",
			Description:        "Severe heat wave conditions with temperatures reaching 48°C in parts of Rajasthan.",
			Type:               models.TypeHeatwave,
			Severity:           models.SeverityMedium,
			State:              "Rajasthan",
			District:           "Churu",
			Latitude:           ptr(28.2969),
			Longitude:          ptr(74.9647),
			Source:             "IMD",
			SourceURL:          "https://mausam.imd.gov.in",
			AffectedPopulation: ptr(300000),
			IsVerified:         true,
			Metadata: map[string]any{
				"temperature": "48°C",
				"duration":    "Expected for 3 days",
				"advisory":    "Avoid outdoor activities",
			},
			ReportedAt: now.Add(-6 * time.Hour),
			IsActive:   true,
		},
	}
}

func sampleSocialReports(now time.Time) []models.SocialReport {
	return []models.SocialReport{
		{
			Platform:       "twitter",
			PostID:         "1234567890",
			AuthorUsername: "WeatherAlert_IN",
			Content:        "Heavy rains causing waterlogging in Andheri East. Traffic moving very slowly on Western Express Highway. #MumbaiRains #Traffic",
			Location:       "Mumbai, Maharashtra",
			Latitude:       ptr(19.1136),
			Longitude:      ptr(72.8697),
			MediaURLs:      []string{},
			Hashtags:       []string{"MumbaiRains", "Traffic"},
			Engagement:     models.Engagement{Retweets: 45, Likes: 123, Replies: 12},
			ReportedAt:     now.Add(-15 * time.Minute),
		},
		{
			Platform:           "twitter",
			PostID:             "1234567891",
			AuthorUsername:     "OdishaEmergency",
			Content:            "Cyclone shelter opened at Government High School, Balasore. All residents near coast requested to move to safety immediately. #CycloneYaas #Odisha",
			Location:           "Balasore, Odisha",
			Latitude:           ptr(21.4942),
			Longitude:          ptr(86.9268),
			MediaURLs:          []string{},
			Hashtags:           []string{"CycloneYaas", "Odisha"},
			Engagement:         models.Engagement{Retweets: 89, Likes: 245, Replies: 23},
			IsVerified:         true,
			VerificationStatus: models.VerificationVerified,
			ReportedAt:         now.Add(-45 * time.Minute),
		},
		{
			Platform:       "twitter",
			PostID:         "1234567892",
			AuthorUsername: "HimachalUpdates",
			Content:        "Felt tremors in Shimla area around 1:30 PM. Buildings shook for about 10 seconds. Everyone is safe in our locality. #Earthquake #Shimla",
			Location:       "Shimla, Himachal Pradesh",
			Latitude:       ptr(31.1048),
			Longitude:      ptr(77.1734),
			MediaURLs:      []string{},
			Hashtags:       []string{"Earthquake", "Shimla"},
			Engagement:     models.Engagement{Retweets: 67, Likes: 156, Replies: 34},
			ReportedAt:     now.Add(-25 * time.Minute),
		},
	}
}

func ptr[T any](v T) *T { return &v }
