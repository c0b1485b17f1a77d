package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/observability"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestHub(t *testing.T) (*Hub, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewHub(st, metrics), st
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	h, _ := newTestHub(t)

	id, ch := h.Subscribe()
	if h.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", h.SubscriberCount())
	}

	h.Unsubscribe(id)
	if h.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", h.SubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestHub_BroadcastDeliversSnapshot(t *testing.T) {
	h, st := newTestHub(t)
	ctx := context.Background()

	if _, err := st.CreateDisaster(ctx, models.Disaster{
		Title:    "Cyclone Warning",
		Severity: models.SeverityCritical,
		State:    "Odisha",
		IsActive: true,
	}); err != nil {
		t.Fatalf("CreateDisaster failed: %v", err)
	}

	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	h.Broadcast()

	select {
	case raw := <-ch:
		var msg struct {
			Type      string    `json:"type"`
			Data      Dashboard `json:"data"`
			Timestamp time.Time `json:"timestamp"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("failed to parse broadcast: %v", err)
		}
		if msg.Type != "dashboard_update" {
			t.Errorf("expected type dashboard_update, got %q", msg.Type)
		}
		if len(msg.Data.Disasters) != 1 {
			t.Errorf("expected 1 disaster in snapshot, got %d", len(msg.Data.Disasters))
		}
		if msg.Data.AlertSummary.Critical != 1 || msg.Data.AlertSummary.Total != 1 {
			t.Errorf("unexpected summary: %+v", msg.Data.AlertSummary)
		}
		if msg.Data.LastUpdated.IsZero() || msg.Timestamp.IsZero() {
			t.Error("expected timestamps to be set")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast")
	}
}

func TestHub_SlowSubscriberSkipped(t *testing.T) {
	h, _ := newTestHub(t)

	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	// Fill the buffer (8) and then some; the extra broadcasts must not block.
	for i := 0; i < 12; i++ {
		h.Broadcast()
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			if count != 8 {
				t.Errorf("expected 8 buffered messages, got %d", count)
			}
			return
		}
	}
}

func TestHub_InactiveDisastersExcluded(t *testing.T) {
	h, st := newTestHub(t)
	ctx := context.Background()

	st.CreateDisaster(ctx, models.Disaster{Title: "active", State: "Kerala", IsActive: true})
	st.CreateDisaster(ctx, models.Disaster{Title: "resolved", State: "Kerala", IsActive: false})

	dashboard, err := BuildDashboard(ctx, h.st)
	if err != nil {
		t.Fatalf("BuildDashboard failed: %v", err)
	}
	if len(dashboard.Disasters) != 1 {
		t.Fatalf("expected only active disasters, got %d", len(dashboard.Disasters))
	}
	if dashboard.Disasters[0].Title != "active" {
		t.Errorf("unexpected disaster: %s", dashboard.Disasters[0].Title)
	}
}

func TestBuildDashboard_CapsPayload(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < MaxSnapshotDisasters+5; i++ {
		if _, err := st.CreateDisaster(ctx, models.Disaster{
			Title:    fmt.Sprintf("disaster %d", i),
			State:    "Assam",
			IsActive: true,
		}); err != nil {
			t.Fatalf("CreateDisaster failed: %v", err)
		}
	}
	for i := 0; i < MaxSnapshotReports+5; i++ {
		if _, err := st.CreateSocialReport(ctx, models.SocialReport{
			Platform:       "twitter",
			AuthorUsername: fmt.Sprintf("user%d", i),
			Content:        "report",
		}); err != nil {
			t.Fatalf("CreateSocialReport failed: %v", err)
		}
	}

	dashboard, err := BuildDashboard(ctx, st)
	if err != nil {
		t.Fatalf("BuildDashboard failed: %v", err)
	}
	if len(dashboard.Disasters) != MaxSnapshotDisasters {
		t.Errorf("expected %d disasters, got %d", MaxSnapshotDisasters, len(dashboard.Disasters))
	}
	if len(dashboard.SocialReports) != MaxSnapshotReports {
		t.Errorf("expected %d reports, got %d", MaxSnapshotReports, len(dashboard.SocialReports))
	}
	// The summary counts everything active, not just the capped page.
	if dashboard.AlertSummary.Total != MaxSnapshotDisasters+5 {
		t.Errorf("expected summary total %d, got %d", MaxSnapshotDisasters+5, dashboard.AlertSummary.Total)
	}
}

func TestHub_Close(t *testing.T) {
	h, _ := newTestHub(t)

	var channels []chan []byte
	for i := 0; i < 5; i++ {
		_, ch := h.Subscribe()
		channels = append(channels, ch)
	}

	h.Close()

	if h.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", h.SubscriberCount())
	}
	for i, ch := range channels {
		select {
		case _, ok := <-ch:
			if ok {
				t.Errorf("channel %d should be closed", i)
			}
		default:
			t.Errorf("channel %d should be closed and readable", i)
		}
	}
}
