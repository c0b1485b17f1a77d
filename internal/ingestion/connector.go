package ingestion

import (
	"context"
	"strings"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

// Batch is the canonical output of one connector fetch.
type Batch struct {
	Disasters     []models.Disaster
	SocialReports []models.SocialReport
}

// Connector translates one external source's response into canonical
// records. A connector holds no state between fetches and never writes to
// the store; given the same external response it produces the same records.
// An empty batch with a nil error means the source legitimately has nothing
// new.
type Connector interface {
	Name() string
	Fetch(ctx context.Context) (Batch, error)
}

// DelayedError marks an upstream that answered, but too slowly to be
// considered healthy. The scheduler records it as a "delayed" status
// instead of "error".
type DelayedError struct {
	Message string
}

func (e *DelayedError) Error() string {
	return e.Message
}

// typeKeywords maps free-text markers to canonical disaster types. Checked
// case-insensitively; the first matching entry wins in declaration order.
var typeKeywords = []struct {
	t        models.DisasterType
	keywords []string
}{
	{models.TypeEarthquake, []string{"earthquake", "tremor"}},
	{models.TypeFlood, []string{"flood", "inundation"}},
	{models.TypeCyclone, []string{"cyclone", "hurricane"}},
	{models.TypeFire, []string{"fire", "wildfire"}},
	{models.TypeLandslide, []string{"landslide", "mudslide"}},
	{models.TypeHeatwave, []string{"heatwave", "heat wave"}},
	{models.TypeThunderstorm, []string{"thunderstorm", "lightning"}},
}

var severityKeywords = []struct {
	s        models.Severity
	keywords []string
}{
	{models.SeverityCritical, []string{"severe", "critical", "extreme"}},
	{models.SeverityHigh, []string{"high", "major", "significant"}},
	{models.SeverityMedium, []string{"moderate", "medium"}},
	{models.SeverityLow, []string{"low", "minor"}},
}

func inferDisasterType(text string) models.DisasterType {
	lower := strings.ToLower(text)
	for _, entry := range typeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.t
			}
		}
	}
	return models.TypeOther
}

func inferSeverity(text string) models.Severity {
	lower := strings.ToLower(text)
	for _, entry := range severityKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.s
			}
		}
	}
	return models.SeverityMedium
}

var indianStates = []string{
	"Maharashtra", "Kerala", "Tamil Nadu", "Karnataka", "Andhra Pradesh", "Telangana",
	"Gujarat", "Rajasthan", "Punjab", "Haryana", "Uttar Pradesh", "West Bengal",
	"Odisha", "Bihar", "Jharkhand", "Assam", "Himachal Pradesh", "Uttarakhand",
	"Madhya Pradesh", "Chhattisgarh", "Goa", "Manipur", "Tripura", "Meghalaya",
	"Mizoram", "Nagaland", "Arunachal Pradesh", "Sikkim", "Delhi",
}

// extractState finds the first Indian state named in text, or "Unknown".
func extractState(text string) string {
	for _, state := range indianStates {
		if strings.Contains(text, state) {
			return state
		}
	}
	return "Unknown"
}

// cityStates maps major city references to their state, used when a source
// reports a city instead of a state. First match wins in declaration order.
var cityStates = []struct{ city, state string }{
	{"Mumbai", "Maharashtra"},
	{"Delhi", "Delhi"},
	{"Bangalore", "Karnataka"},
	{"Chennai", "Tamil Nadu"},
	{"Kolkata", "West Bengal"},
	{"Hyderabad", "Telangana"},
	{"Pune", "Maharashtra"},
	{"Ahmedabad", "Gujarat"},
	{"Shimla", "Himachal Pradesh"},
	{"Nainital", "Uttarakhand"},
	{"Bhadrak", "Odisha"},
	{"Balasore", "Odisha"},
}

func stateForLocation(location string) string {
	for _, entry := range cityStates {
		if strings.Contains(location, entry.city) {
			return entry.state
		}
	}
	return extractState(location)
}
