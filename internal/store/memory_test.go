package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestMemoryStore_CreateAndGetDisaster(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateDisaster(ctx, models.Disaster{
		Title:    "Flash Flood Alert - Mumbai",
		Type:     models.TypeFlood,
		Severity: models.SeverityHigh,
		State:    "Maharashtra",
		Source:   "test",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateDisaster failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if created.ReportedAt.IsZero() {
		t.Error("expected reportedAt to default to now")
	}
	if created.LastUpdated.IsZero() {
		t.Error("expected lastUpdated to be set")
	}

	got, err := s.Disaster(ctx, created.ID)
	if err != nil {
		t.Fatalf("Disaster failed: %v", err)
	}
	if got.Title != created.Title {
		t.Errorf("expected title %q, got %q", created.Title, got.Title)
	}
}

func TestMemoryStore_GetDisaster_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Disaster(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_CreateDisaster_NormalizesUnknownMarkers(t *testing.T) {
	s := NewMemoryStore()

	created, err := s.CreateDisaster(context.Background(), models.Disaster{
		Title:    "Volcano Watch",
		Type:     models.DisasterType("volcano"),
		Severity: models.Severity("catastrophic"),
		State:    "Unknown",
		Source:   "test",
	})
	if err != nil {
		t.Fatalf("CreateDisaster failed: %v", err)
	}
	if created.Type != models.TypeOther {
		t.Errorf("expected type other, got %s", created.Type)
	}
	if created.Severity != models.SeverityMedium {
		t.Errorf("expected severity medium, got %s", created.Severity)
	}
}

func TestMemoryStore_Disasters_Filters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedDisasters := []models.Disaster{
		{Title: "Cyclone Warning", Type: models.TypeCyclone, Severity: models.SeverityCritical, State: "Odisha", IsActive: true},
		{Title: "Flood Alert", Type: models.TypeFlood, Severity: models.SeverityHigh, State: "Maharashtra", District: "Mumbai", IsActive: true},
		{Title: "Old Flood", Type: models.TypeFlood, Severity: models.SeverityHigh, State: "Maharashtra", IsActive: false},
	}
	for _, d := range seedDisasters {
		if _, err := s.CreateDisaster(ctx, d); err != nil {
			t.Fatalf("CreateDisaster failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter DisasterFilter
		want   int
	}{
		{"no filter", DisasterFilter{}, 3},
		{"by type", DisasterFilter{Type: models.TypeFlood}, 2},
		{"by severity", DisasterFilter{Severity: models.SeverityCritical}, 1},
		{"by state", DisasterFilter{State: "Maharashtra"}, 2},
		{"active only", DisasterFilter{IsActive: ptr(true)}, 2},
		{"inactive only", DisasterFilter{IsActive: ptr(false)}, 1},
		{"search in title", DisasterFilter{Search: "cyclone"}, 1},
		{"search in district", DisasterFilter{Search: "mumbai"}, 1},
		{"combined", DisasterFilter{Type: models.TypeFlood, IsActive: ptr(true)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Disasters(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Disasters failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d disasters, got %d", tt.want, len(got))
			}
		})
	}
}

func TestMemoryStore_Disasters_SortedNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i, age := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		_, err := s.CreateDisaster(ctx, models.Disaster{
			Title:      fmt.Sprintf("event %d", i),
			State:      "Kerala",
			ReportedAt: now.Add(-age),
		})
		if err != nil {
			t.Fatalf("CreateDisaster failed: %v", err)
		}
	}

	got, err := s.Disasters(ctx, DisasterFilter{})
	if err != nil {
		t.Fatalf("Disasters failed: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].ReportedAt.After(got[i-1].ReportedAt) {
			t.Errorf("disasters not sorted newest first at index %d", i)
		}
	}
}

func TestMemoryStore_UpdateDisaster_MergesPatch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateDisaster(ctx, models.Disaster{
		Title:       "Forest Fire - Nainital",
		Description: "Spreading in forest areas.",
		Type:        models.TypeFire,
		Severity:    models.SeverityHigh,
		State:       "Uttarakhand",
		Source:      "test",
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("CreateDisaster failed: %v", err)
	}

	updated, err := s.UpdateDisaster(ctx, created.ID, models.DisasterPatch{
		Severity: ptr(models.SeverityCritical),
		IsActive: ptr(false),
	})
	if err != nil {
		t.Fatalf("UpdateDisaster failed: %v", err)
	}

	if updated.Severity != models.SeverityCritical {
		t.Errorf("expected severity critical, got %s", updated.Severity)
	}
	if updated.IsActive {
		t.Error("expected isActive false")
	}
	// Untouched fields survive
	if updated.Title != created.Title {
		t.Errorf("title changed unexpectedly: %q", updated.Title)
	}
	if updated.Description != created.Description {
		t.Errorf("description changed unexpectedly: %q", updated.Description)
	}
	if updated.ID != created.ID {
		t.Errorf("id changed: %q -> %q", created.ID, updated.ID)
	}
	if !updated.LastUpdated.After(created.LastUpdated) && !updated.LastUpdated.Equal(created.LastUpdated) {
		t.Error("expected lastUpdated to advance")
	}
}

func TestMemoryStore_UpdateDisaster_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.UpdateDisaster(context.Background(), "missing", models.DisasterPatch{Title: ptr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_DisastersNear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Mumbai, Pune (~120 km apart), and one without coordinates.
	fixtures := []models.Disaster{
		{Title: "Mumbai Flood", State: "Maharashtra", Latitude: ptr(19.0760), Longitude: ptr(72.8777)},
		{Title: "Pune Storm", State: "Maharashtra", Latitude: ptr(18.5204), Longitude: ptr(73.8567)},
		{Title: "No Coordinates", State: "Maharashtra"},
	}
	for _, d := range fixtures {
		if _, err := s.CreateDisaster(ctx, d); err != nil {
			t.Fatalf("CreateDisaster failed: %v", err)
		}
	}

	near, err := s.DisastersNear(ctx, 19.0760, 72.8777, 50)
	if err != nil {
		t.Fatalf("DisastersNear failed: %v", err)
	}
	if len(near) != 1 {
		t.Fatalf("expected 1 disaster within 50km, got %d", len(near))
	}
	if near[0].Title != "Mumbai Flood" {
		t.Errorf("unexpected disaster: %s", near[0].Title)
	}

	near, err = s.DisastersNear(ctx, 19.0760, 72.8777, 200)
	if err != nil {
		t.Fatalf("DisastersNear failed: %v", err)
	}
	if len(near) != 2 {
		t.Errorf("expected 2 disasters within 200km, got %d", len(near))
	}
}

func TestMemoryStore_SocialReports_Filters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	fixtures := []models.SocialReport{
		{Platform: "twitter", AuthorUsername: "a", Content: "x", Location: "Mumbai, Maharashtra", IsVerified: true},
		{Platform: "twitter", AuthorUsername: "b", Content: "y", Location: "Balasore, Odisha"},
		{Platform: "facebook", AuthorUsername: "c", Content: "z", Location: "Mumbai"},
	}
	for _, r := range fixtures {
		if _, err := s.CreateSocialReport(ctx, r); err != nil {
			t.Fatalf("CreateSocialReport failed: %v", err)
		}
	}

	got, err := s.SocialReports(ctx, SocialReportFilter{Platform: "twitter"})
	if err != nil {
		t.Fatalf("SocialReports failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 twitter reports, got %d", len(got))
	}

	got, _ = s.SocialReports(ctx, SocialReportFilter{IsVerified: ptr(true)})
	if len(got) != 1 {
		t.Errorf("expected 1 verified report, got %d", len(got))
	}

	got, _ = s.SocialReports(ctx, SocialReportFilter{Location: "mumbai"})
	if len(got) != 2 {
		t.Errorf("expected 2 reports matching mumbai, got %d", len(got))
	}
}

func TestMemoryStore_CreateSocialReport_Defaults(t *testing.T) {
	s := NewMemoryStore()

	created, err := s.CreateSocialReport(context.Background(), models.SocialReport{
		Platform:       "twitter",
		AuthorUsername: "user1",
		Content:        "tremors felt",
	})
	if err != nil {
		t.Fatalf("CreateSocialReport failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if created.VerificationStatus != models.VerificationPending {
		t.Errorf("expected pending status, got %s", created.VerificationStatus)
	}
	if created.ReportedAt.IsZero() {
		t.Error("expected reportedAt to default to now")
	}
}

func TestMemoryStore_SetVerification(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateSocialReport(ctx, models.SocialReport{
		Platform:       "twitter",
		AuthorUsername: "user1",
		Content:        "shelter opened",
	})
	if err != nil {
		t.Fatalf("CreateSocialReport failed: %v", err)
	}

	verified, err := s.SetVerification(ctx, created.ID, models.VerificationVerified)
	if err != nil {
		t.Fatalf("SetVerification failed: %v", err)
	}
	if !verified.IsVerified {
		t.Error("expected isVerified true after verification")
	}

	flagged, err := s.SetVerification(ctx, created.ID, models.VerificationFlagged)
	if err != nil {
		t.Fatalf("SetVerification failed: %v", err)
	}
	if flagged.IsVerified {
		t.Error("expected isVerified false after flagging")
	}

	if _, err := s.SetVerification(ctx, "missing", models.VerificationVerified); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_UpsertSourceStatus_RetainsLastSync(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	syncTime := time.Now().Add(-time.Minute)
	_, err := s.UpsertSourceStatus(ctx, models.SourceStatus{
		ServiceName:        "NDMA API",
		Status:             models.SourceOnline,
		LastSuccessfulSync: &syncTime,
	})
	if err != nil {
		t.Fatalf("UpsertSourceStatus failed: %v", err)
	}

	// A failed poll reports no sync time; the previous one must survive.
	failed, err := s.UpsertSourceStatus(ctx, models.SourceStatus{
		ServiceName:  "NDMA API",
		Status:       models.SourceError,
		ErrorMessage: "connection refused",
	})
	if err != nil {
		t.Fatalf("UpsertSourceStatus failed: %v", err)
	}
	if failed.LastSuccessfulSync == nil {
		t.Fatal("expected lastSuccessfulSync to be retained")
	}
	if !failed.LastSuccessfulSync.Equal(syncTime) {
		t.Errorf("expected retained sync time %v, got %v", syncTime, *failed.LastSuccessfulSync)
	}
	if failed.Status != models.SourceError {
		t.Errorf("expected status error, got %s", failed.Status)
	}

	statuses, err := s.SourceStatuses(ctx)
	if err != nil {
		t.Fatalf("SourceStatuses failed: %v", err)
	}
	if len(statuses) != 1 {
		t.Errorf("expected 1 status, got %d", len(statuses))
	}
}

func TestMemoryStore_AlertSummary_ActiveOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	fixtures := []models.Disaster{
		{Title: "a", Severity: models.SeverityCritical, State: "Odisha", IsActive: true},
		{Title: "b", Severity: models.SeverityHigh, State: "Kerala", IsActive: true},
		{Title: "c", Severity: models.SeverityHigh, State: "Kerala", IsActive: true},
		{Title: "d", Severity: models.SeverityLow, State: "Goa", IsActive: false},
	}
	for _, d := range fixtures {
		if _, err := s.CreateDisaster(ctx, d); err != nil {
			t.Fatalf("CreateDisaster failed: %v", err)
		}
	}

	summary, err := s.AlertSummary(ctx)
	if err != nil {
		t.Fatalf("AlertSummary failed: %v", err)
	}
	if summary.Critical != 1 || summary.High != 2 || summary.Low != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.Total != 3 {
		t.Errorf("expected total 3, got %d", summary.Total)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.CreateDisaster(ctx, models.Disaster{
					Title:    fmt.Sprintf("disaster_%d_%d", n, j),
					State:    "Assam",
					IsActive: true,
				})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Disasters(ctx, DisasterFilter{IsActive: ptr(true)})
				s.AlertSummary(ctx)
			}
		}()
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.UpsertSourceStatus(ctx, models.SourceStatus{
					ServiceName: fmt.Sprintf("source_%d", n),
					Status:      models.SourceOnline,
				})
			}
		}(i)
	}

	wg.Wait()

	got, err := s.Disasters(ctx, DisasterFilter{})
	if err != nil {
		t.Fatalf("Disasters failed: %v", err)
	}
	if len(got) != 200 {
		t.Errorf("expected 200 disasters, got %d", len(got))
	}
}
