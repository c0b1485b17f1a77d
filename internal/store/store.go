package store

import (
	"context"
	"errors"
	"math"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

// ErrNotFound is returned when a lookup or update names an unknown id.
var ErrNotFound = errors.New("record not found")

// DisasterFilter narrows a disaster query. Zero-valued fields are ignored.
type DisasterFilter struct {
	Type     models.DisasterType
	Severity models.Severity
	State    string
	Search   string // case-insensitive substring over title, description, state, district
	IsActive *bool
}

// SocialReportFilter narrows a social report query. Zero-valued fields are ignored.
type SocialReportFilter struct {
	Platform   string
	IsVerified *bool
	Location   string // case-insensitive substring
}

// Store is the record set behind the engine. The engine is written against
// this interface so a durable backend can be substituted without touching
// connectors, the scheduler, or the broadcast hub.
//
// Results of list queries are sorted by reportedAt descending. All mutating
// operations on a given logical table are serialized with respect to each
// other; reads observe a consistent snapshot of the table they read.
type Store interface {
	Disasters(ctx context.Context, f DisasterFilter) ([]models.Disaster, error)
	Disaster(ctx context.Context, id string) (models.Disaster, error)
	CreateDisaster(ctx context.Context, d models.Disaster) (models.Disaster, error)
	UpdateDisaster(ctx context.Context, id string, patch models.DisasterPatch) (models.Disaster, error)
	DisastersNear(ctx context.Context, lat, lng, radiusKm float64) ([]models.Disaster, error)

	SocialReports(ctx context.Context, f SocialReportFilter) ([]models.SocialReport, error)
	CreateSocialReport(ctx context.Context, r models.SocialReport) (models.SocialReport, error)
	SetVerification(ctx context.Context, id string, status models.VerificationStatus) (models.SocialReport, error)

	SourceStatuses(ctx context.Context) ([]models.SourceStatus, error)
	UpsertSourceStatus(ctx context.Context, s models.SourceStatus) (models.SourceStatus, error)

	AlertSummary(ctx context.Context) (models.AlertSummary, error)
}

const earthRadiusKm = 6371

// haversineKm returns the great-circle distance between two points in
// kilometers.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
