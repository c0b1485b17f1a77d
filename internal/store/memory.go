package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

// MemoryStore is the default Store backend. Each logical table has its own
// lock so writes to disasters never block reads of social reports or source
// statuses.
type MemoryStore struct {
	disastersMu sync.RWMutex
	disasters   map[string]models.Disaster

	reportsMu sync.RWMutex
	reports   map[string]models.SocialReport

	statusesMu sync.RWMutex
	statuses   map[string]models.SourceStatus // keyed by serviceName
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		disasters: make(map[string]models.Disaster),
		reports:   make(map[string]models.SocialReport),
		statuses:  make(map[string]models.SourceStatus),
	}
}

func (s *MemoryStore) Disasters(_ context.Context, f DisasterFilter) ([]models.Disaster, error) {
	s.disastersMu.RLock()
	defer s.disastersMu.RUnlock()

	result := make([]models.Disaster, 0, len(s.disasters))
	for _, d := range s.disasters {
		if matchDisaster(&d, f) {
			result = append(result, d)
		}
	}
	sortByReportedAt(result, func(d models.Disaster) time.Time { return d.ReportedAt })
	return result, nil
}

func matchDisaster(d *models.Disaster, f DisasterFilter) bool {
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Severity != "" && d.Severity != f.Severity {
		return false
	}
	if f.State != "" && d.State != f.State {
		return false
	}
	if f.IsActive != nil && d.IsActive != *f.IsActive {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(d.Title), q) &&
			!strings.Contains(strings.ToLower(d.Description), q) &&
			!strings.Contains(strings.ToLower(d.State), q) &&
			!strings.Contains(strings.ToLower(d.District), q) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Disaster(_ context.Context, id string) (models.Disaster, error) {
	s.disastersMu.RLock()
	defer s.disastersMu.RUnlock()

	d, ok := s.disasters[id]
	if !ok {
		return models.Disaster{}, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) CreateDisaster(_ context.Context, d models.Disaster) (models.Disaster, error) {
	d.ID = uuid.NewString()
	d.Type = models.ParseDisasterType(string(d.Type))
	d.Severity = models.ParseSeverity(string(d.Severity))
	d.LastUpdated = time.Now()
	if d.ReportedAt.IsZero() {
		d.ReportedAt = d.LastUpdated
	}

	s.disastersMu.Lock()
	s.disasters[d.ID] = d
	s.disastersMu.Unlock()
	return d, nil
}

func (s *MemoryStore) UpdateDisaster(_ context.Context, id string, patch models.DisasterPatch) (models.Disaster, error) {
	s.disastersMu.Lock()
	defer s.disastersMu.Unlock()

	d, ok := s.disasters[id]
	if !ok {
		return models.Disaster{}, ErrNotFound
	}
	applyPatch(&d, patch)
	d.LastUpdated = time.Now()
	s.disasters[id] = d
	return d, nil
}

// applyPatch merges non-nil patch fields into d. The id is never touched.
func applyPatch(d *models.Disaster, p models.DisasterPatch) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Type != nil {
		d.Type = models.ParseDisasterType(string(*p.Type))
	}
	if p.Severity != nil {
		d.Severity = models.ParseSeverity(string(*p.Severity))
	}
	if p.State != nil {
		d.State = *p.State
	}
	if p.District != nil {
		d.District = *p.District
	}
	if p.Latitude != nil {
		lat := *p.Latitude
		d.Latitude = &lat
	}
	if p.Longitude != nil {
		lng := *p.Longitude
		d.Longitude = &lng
	}
	if p.Source != nil {
		d.Source = *p.Source
	}
	if p.SourceURL != nil {
		d.SourceURL = *p.SourceURL
	}
	if p.AffectedPopulation != nil {
		pop := *p.AffectedPopulation
		d.AffectedPopulation = &pop
	}
	if p.IsVerified != nil {
		d.IsVerified = *p.IsVerified
	}
	if p.Metadata != nil {
		d.Metadata = p.Metadata
	}
	if p.ReportedAt != nil {
		d.ReportedAt = *p.ReportedAt
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
}

func (s *MemoryStore) DisastersNear(_ context.Context, lat, lng, radiusKm float64) ([]models.Disaster, error) {
	s.disastersMu.RLock()
	defer s.disastersMu.RUnlock()

	var result []models.Disaster
	for _, d := range s.disasters {
		if !d.HasCoordinates() {
			continue
		}
		if haversineKm(lat, lng, *d.Latitude, *d.Longitude) <= radiusKm {
			result = append(result, d)
		}
	}
	sortByReportedAt(result, func(d models.Disaster) time.Time { return d.ReportedAt })
	return result, nil
}

func (s *MemoryStore) SocialReports(_ context.Context, f SocialReportFilter) ([]models.SocialReport, error) {
	s.reportsMu.RLock()
	defer s.reportsMu.RUnlock()

	result := make([]models.SocialReport, 0, len(s.reports))
	for _, r := range s.reports {
		if f.Platform != "" && r.Platform != f.Platform {
			continue
		}
		if f.IsVerified != nil && r.IsVerified != *f.IsVerified {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(r.Location), strings.ToLower(f.Location)) {
			continue
		}
		result = append(result, r)
	}
	sortByReportedAt(result, func(r models.SocialReport) time.Time { return r.ReportedAt })
	return result, nil
}

func (s *MemoryStore) CreateSocialReport(_ context.Context, r models.SocialReport) (models.SocialReport, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	if r.ReportedAt.IsZero() {
		r.ReportedAt = r.CreatedAt
	}
	if r.VerificationStatus == "" {
		r.VerificationStatus = models.VerificationPending
	}

	s.reportsMu.Lock()
	s.reports[r.ID] = r
	s.reportsMu.Unlock()
	return r, nil
}

func (s *MemoryStore) SetVerification(_ context.Context, id string, status models.VerificationStatus) (models.SocialReport, error) {
	s.reportsMu.Lock()
	defer s.reportsMu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return models.SocialReport{}, ErrNotFound
	}
	r.VerificationStatus = status
	r.IsVerified = status == models.VerificationVerified
	s.reports[id] = r
	return r, nil
}

func (s *MemoryStore) SourceStatuses(_ context.Context) ([]models.SourceStatus, error) {
	s.statusesMu.RLock()
	defer s.statusesMu.RUnlock()

	result := make([]models.SourceStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ServiceName < result[j].ServiceName })
	return result, nil
}

func (s *MemoryStore) UpsertSourceStatus(_ context.Context, status models.SourceStatus) (models.SourceStatus, error) {
	s.statusesMu.Lock()
	defer s.statusesMu.Unlock()

	if existing, ok := s.statuses[status.ServiceName]; ok && status.LastSuccessfulSync == nil {
		// A failed poll must not erase when the source last succeeded.
		status.LastSuccessfulSync = existing.LastSuccessfulSync
	}
	status.UpdatedAt = time.Now()
	s.statuses[status.ServiceName] = status
	return status, nil
}

func (s *MemoryStore) AlertSummary(_ context.Context) (models.AlertSummary, error) {
	s.disastersMu.RLock()
	defer s.disastersMu.RUnlock()

	var summary models.AlertSummary
	for _, d := range s.disasters {
		if !d.IsActive {
			continue
		}
		switch d.Severity {
		case models.SeverityCritical:
			summary.Critical++
		case models.SeverityHigh:
			summary.High++
		case models.SeverityMedium:
			summary.Medium++
		case models.SeverityLow:
			summary.Low++
		}
		summary.Total++
	}
	return summary, nil
}

func sortByReportedAt[T any](items []T, reportedAt func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool {
		return reportedAt(items[i]).After(reportedAt(items[j]))
	})
}
