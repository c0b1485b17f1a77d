package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/observability"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/store"
)

// Snapshot caps keep the push payload bounded regardless of store size.
const (
	MaxSnapshotDisasters = 50
	MaxSnapshotReports   = 20
)

// Dashboard is the full aggregate state pushed to live subscribers and
// served by the dashboard endpoint.
type Dashboard struct {
	Disasters      []models.Disaster     `json:"disasters"`
	SocialReports  []models.SocialReport `json:"socialReports"`
	SourceStatuses []models.SourceStatus `json:"sourceStatuses"`
	AlertSummary   models.AlertSummary   `json:"alertSummary"`
	LastUpdated    time.Time             `json:"lastUpdated"`
}

// BuildDashboard assembles the current snapshot from the store: active
// disasters and recent social reports (both capped), every source status,
// and the alert summary.
func BuildDashboard(ctx context.Context, st store.Store) (Dashboard, error) {
	active := true
	disasters, err := st.Disasters(ctx, store.DisasterFilter{IsActive: &active})
	if err != nil {
		return Dashboard{}, err
	}
	reports, err := st.SocialReports(ctx, store.SocialReportFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	statuses, err := st.SourceStatuses(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	summary, err := st.AlertSummary(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	if len(disasters) > MaxSnapshotDisasters {
		disasters = disasters[:MaxSnapshotDisasters]
	}
	if len(reports) > MaxSnapshotReports {
		reports = reports[:MaxSnapshotReports]
	}

	return Dashboard{
		Disasters:      disasters,
		SocialReports:  reports,
		SourceStatuses: statuses,
		AlertSummary:   summary,
		LastUpdated:    time.Now(),
	}, nil
}

type pushMessage struct {
	Type      string    `json:"type"`
	Data      Dashboard `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans the dashboard snapshot out to live subscribers. Delivery is
// at-least-once, last-value-wins: a subscriber that cannot keep up is
// skipped, and reconnecting clients get a fresh snapshot instead of replay.
type Hub struct {
	st          store.Store
	metrics     *observability.Metrics
	subscribers map[uint64]chan []byte
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewHub(st store.Store, metrics *observability.Metrics) *Hub {
	return &Hub{
		st:          st,
		metrics:     metrics,
		subscribers: make(map[uint64]chan []byte),
	}
}

func (h *Hub) Subscribe() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	ch := make(chan []byte, 8)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	h.metrics.Subscribers.Inc()
	return id, ch
}

func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
		h.metrics.Subscribers.Dec()
	}
	h.mu.Unlock()
}

// Broadcast rebuilds the snapshot and pushes it to every subscriber.
func (h *Hub) Broadcast() {
	msg, err := h.snapshotMessage(context.Background())
	if err != nil {
		slog.Error("error building broadcast snapshot", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			// Skip slow subscribers
		}
	}
	h.metrics.Broadcasts.Inc()
}

func (h *Hub) snapshotMessage(ctx context.Context) ([]byte, error) {
	dashboard, err := BuildDashboard(ctx, h.st)
	if err != nil {
		return nil, err
	}
	return json.Marshal(pushMessage{
		Type:      "dashboard_update",
		Data:      dashboard,
		Timestamp: time.Now(),
	})
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close closes all subscriber channels, causing their connections to exit
// gracefully.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
		h.metrics.Subscribers.Dec()
	}
}
