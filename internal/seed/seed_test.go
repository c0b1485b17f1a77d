package seed

import (
	"context"
	"testing"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/store"
)

func TestLoad(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	if err := Load(ctx, st); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	disasters, err := st.Disasters(ctx, store.DisasterFilter{})
	if err != nil {
		t.Fatalf("Disasters failed: %v", err)
	}
	if len(disasters) != 5 {
		t.Errorf("expected 5 seeded disasters, got %d", len(disasters))
	}
	for _, d := range disasters {
		if !d.IsActive || !d.IsVerified {
			t.Errorf("seeded disaster %q should be active and verified", d.Title)
		}
		if d.ID == "" {
			t.Error("seeded disaster missing ID")
		}
	}

	reports, err := st.SocialReports(ctx, store.SocialReportFilter{})
	if err != nil {
		t.Fatalf("SocialReports failed: %v", err)
	}
	if len(reports) != 3 {
		t.Errorf("expected 3 seeded social reports, got %d", len(reports))
	}

	verified := 0
	for _, r := range reports {
		if r.VerificationStatus == models.VerificationVerified {
			verified++
		}
	}
	if verified != 1 {
		t.Errorf("expected exactly 1 pre-verified report, got %d", verified)
	}

	summary, err := st.AlertSummary(ctx)
	if err != nil {
		t.Fatalf("AlertSummary failed: %v", err)
	}
	if summary.Total != 5 || summary.Critical != 1 || summary.High != 2 || summary.Medium != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}
