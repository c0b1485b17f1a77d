package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/observability"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/store"
)

// Broadcaster is notified after every tick so status changes reach live
// subscribers even when a poll fails.
type Broadcaster interface {
	Broadcast()
}

// DisasterPublisher receives every newly stored disaster.
type DisasterPublisher interface {
	PublishDisaster(ctx context.Context, d models.Disaster) error
}

type source struct {
	connector Connector
	interval  time.Duration
	timeout   time.Duration
	nudge     chan struct{}
}

// Scheduler runs each registered connector on its own fixed interval. Ticks
// for the same source never overlap; a manual refresh queues behind any
// in-flight tick. Sources run fully concurrently with each other.
type Scheduler struct {
	st        store.Store
	hub       Broadcaster
	publisher DisasterPublisher
	metrics   *observability.Metrics
	clock     clockwork.Clock
	sources   []*source
	wg        sync.WaitGroup
}

func NewScheduler(st store.Store, hub Broadcaster, publisher DisasterPublisher, metrics *observability.Metrics, clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		st:        st,
		hub:       hub,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
	}
}

// Register adds a source. Must be called before Start.
func (s *Scheduler) Register(c Connector, interval, timeout time.Duration) {
	s.sources = append(s.sources, &source{
		connector: c,
		interval:  interval,
		timeout:   timeout,
		nudge:     make(chan struct{}, 1),
	})
}

// Start launches one polling goroutine per source, each doing an immediate
// first run.
func (s *Scheduler) Start(ctx context.Context) {
	for _, src := range s.sources {
		s.wg.Add(1)
		go s.runSource(ctx, src)
	}
}

// Stop blocks until all polling goroutines have exited. Cancel the context
// passed to Start first.
func (s *Scheduler) Stop() {
	s.wg.Wait()
	slog.Info("scheduler stopped")
}

// Refresh nudges every source to poll immediately. Non-blocking; a source
// already holding a pending nudge or mid-tick simply runs next.
func (s *Scheduler) Refresh() {
	for _, src := range s.sources {
		select {
		case src.nudge <- struct{}{}:
		default:
		}
	}
}

func (s *Scheduler) runSource(ctx context.Context, src *source) {
	defer s.wg.Done()
	name := src.connector.Name()
	slog.Info("starting poller", "source", name, "interval", src.interval)

	ticker := s.clock.NewTicker(src.interval)
	defer ticker.Stop()

	s.tick(ctx, src)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", name)
			return
		case <-ticker.Chan():
			s.tick(ctx, src)
		case <-src.nudge:
			s.tick(ctx, src)
		}
	}
}

// tick is one attempt-and-record cycle: fetch, store, status upsert,
// broadcast. It runs synchronously within the source's goroutine, which is
// what guarantees ticks for one source never overlap.
func (s *Scheduler) tick(ctx context.Context, src *source) {
	name := src.connector.Name()
	slog.Debug("polling", "source", name)

	fetchCtx, cancel := context.WithTimeout(ctx, src.timeout)
	start := s.clock.Now()
	batch, err := src.connector.Fetch(fetchCtx)
	cancel()
	elapsed := s.clock.Since(start)
	responseMS := elapsed.Milliseconds()

	var delayed *DelayedError
	switch {
	case err == nil:
		s.storeBatch(ctx, name, batch)
		now := s.clock.Now()
		s.upsertStatus(ctx, models.SourceStatus{
			ServiceName:        name,
			Status:             models.SourceOnline,
			LastSuccessfulSync: &now,
			ResponseTimeMS:     &responseMS,
		})
		s.metrics.Polls.WithLabelValues(name, "success").Inc()
		slog.Debug("poll complete", "source", name,
			"disasters", len(batch.Disasters), "social_reports", len(batch.SocialReports))

	case errors.As(err, &delayed):
		s.upsertStatus(ctx, models.SourceStatus{
			ServiceName:  name,
			Status:       models.SourceDelayed,
			ErrorMessage: delayed.Message,
		})
		s.metrics.Polls.WithLabelValues(name, "delayed").Inc()
		slog.Warn("source delayed", "source", name, "error", err)

	default:
		s.upsertStatus(ctx, models.SourceStatus{
			ServiceName:  name,
			Status:       models.SourceError,
			ErrorMessage: err.Error(),
		})
		s.metrics.Polls.WithLabelValues(name, "error").Inc()
		slog.Error("poll failed", "source", name, "error", err)
	}

	s.metrics.PollDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if s.hub != nil {
		s.hub.Broadcast()
	}
}

func (s *Scheduler) storeBatch(ctx context.Context, name string, batch Batch) {
	for _, d := range batch.Disasters {
		stored, err := s.st.CreateDisaster(ctx, d)
		if err != nil {
			slog.Error("error storing disaster", "source", name, "title", d.Title, "error", err)
			continue
		}
		s.metrics.RecordsIngested.WithLabelValues(name, "disaster").Inc()
		if s.publisher != nil {
			if err := s.publisher.PublishDisaster(ctx, stored); err != nil {
				slog.Warn("error publishing disaster event", "id", stored.ID, "error", err)
			}
		}
	}
	for _, r := range batch.SocialReports {
		if _, err := s.st.CreateSocialReport(ctx, r); err != nil {
			slog.Error("error storing social report", "source", name, "post_id", r.PostID, "error", err)
			continue
		}
		s.metrics.RecordsIngested.WithLabelValues(name, "social_report").Inc()
	}
}

func (s *Scheduler) upsertStatus(ctx context.Context, status models.SourceStatus) {
	if _, err := s.st.UpsertSourceStatus(ctx, status); err != nil {
		slog.Error("error upserting source status", "source", status.ServiceName, "error", err)
	}
}
