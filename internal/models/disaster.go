package models

import (
	"strings"
	"time"
)

type DisasterType string

const (
	TypeEarthquake   DisasterType = "earthquake"
	TypeFlood        DisasterType = "flood"
	TypeCyclone      DisasterType = "cyclone"
	TypeFire         DisasterType = "fire"
	TypeLandslide    DisasterType = "landslide"
	TypeHeatwave     DisasterType = "heatwave"
	TypeThunderstorm DisasterType = "thunderstorm"
	TypeOther        DisasterType = "other"
)

type Severity string

// Ordered from most to least severe.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Disaster is a single reported hazard event in canonical form, independent
// of which upstream source produced it.
type Disaster struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Type               DisasterType   `json:"type"`
	Severity           Severity       `json:"severity"`
	State              string         `json:"state"`
	District           string         `json:"district,omitempty"`
	Latitude           *float64       `json:"latitude,omitempty"`
	Longitude          *float64       `json:"longitude,omitempty"`
	Source             string         `json:"source"`
	SourceURL          string         `json:"sourceUrl,omitempty"`
	AffectedPopulation *int           `json:"affectedPopulation,omitempty"`
	IsVerified         bool           `json:"isVerified"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	ReportedAt         time.Time      `json:"reportedAt"`
	LastUpdated        time.Time      `json:"lastUpdated"`
	IsActive           bool           `json:"isActive"`
}

// HasCoordinates reports whether both latitude and longitude are set.
// The two fields are always paired.
func (d *Disaster) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// DisasterPatch is a partial update. Nil fields retain the stored value.
type DisasterPatch struct {
	Title              *string        `json:"title"`
	Description        *string        `json:"description"`
	Type               *DisasterType  `json:"type"`
	Severity           *Severity      `json:"severity"`
	State              *string        `json:"state"`
	District           *string        `json:"district"`
	Latitude           *float64       `json:"latitude"`
	Longitude          *float64       `json:"longitude"`
	Source             *string        `json:"source"`
	SourceURL          *string        `json:"sourceUrl"`
	AffectedPopulation *int           `json:"affectedPopulation"`
	IsVerified         *bool          `json:"isVerified"`
	Metadata           map[string]any `json:"metadata"`
	ReportedAt         *time.Time     `json:"reportedAt"`
	IsActive           *bool          `json:"isActive"`
}

// AlertSummary is derived on demand from the active disaster set.
type AlertSummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// ParseDisasterType maps a free-form type marker to the canonical enum.
// Unknown values fall back to "other" rather than being rejected.
func ParseDisasterType(s string) DisasterType {
	switch DisasterType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeEarthquake:
		return TypeEarthquake
	case TypeFlood:
		return TypeFlood
	case TypeCyclone:
		return TypeCyclone
	case TypeFire:
		return TypeFire
	case TypeLandslide:
		return TypeLandslide
	case TypeHeatwave:
		return TypeHeatwave
	case TypeThunderstorm:
		return TypeThunderstorm
	default:
		return TypeOther
	}
}

// ParseSeverity maps a free-form severity marker to the canonical enum.
// Unknown values fall back to "medium".
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
