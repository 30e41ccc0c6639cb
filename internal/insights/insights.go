package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	flushInterval = 5 * time.Second
	flushSize     = 100
	queueSize     = 1024
)

// ViewEvent is one recorded listing view
type ViewEvent struct {
	ListingID uint64
	ViewerID  uint64
	IPHash    string
	ViewedAt  time.Time
}

// ListingStats summarizes view counts for one listing
type ListingStats struct {
	TodayViews    uint64 `json:"today_views"`
	WeekViews     uint64 `json:"week_views"`
	TotalViews    uint64 `json:"total_views"`
	UniqueViewers uint64 `json:"unique_viewers"`
}

// Service records listing views and answers view-count queries. A nil
// receiver or a Service built without a client is inert: RecordView
// drops events silently and Stats returns zeros.
type Service struct {
	ch     *Client
	logger zerolog.Logger
	events chan ViewEvent
	done   chan struct{}
}

// NewService creates the insights service. ch may be nil when ClickHouse
// is not configured.
func NewService(ch *Client, logger zerolog.Logger) *Service {
	s := &Service{
		ch:     ch,
		logger: logger,
		events: make(chan ViewEvent, queueSize),
		done:   make(chan struct{}),
	}
	if ch != nil {
		go s.run()
	}
	return s
}

// RecordView queues a view event. Never blocks the request path; when
// the queue is full the event is dropped.
func (s *Service) RecordView(listingID, viewerID uint64, ipHash string) {
	if s == nil || s.ch == nil {
		return
	}
	event := ViewEvent{
		ListingID: listingID,
		ViewerID:  viewerID,
		IPHash:    ipHash,
		ViewedAt:  time.Now().UTC(),
	}
	select {
	case s.events <- event:
	default:
		s.logger.Warn().Uint64("listing_id", listingID).Msg("insights queue full, view dropped")
	}
}

// Stats returns view counts for one listing, zeros when ClickHouse is absent
func (s *Service) Stats(ctx context.Context, listingID uint64) (*ListingStats, error) {
	stats := &ListingStats{}
	if s == nil || s.ch == nil {
		return stats, nil
	}

	today := time.Now().UTC().Format("2006-01-02")
	weekAgo := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")

	query := `SELECT
		countIf(toDate(viewed_at) = toDate(?)) as today_views,
		countIf(toDate(viewed_at) >= toDate(?)) as week_views,
		count() as total_views,
		uniq(viewer_id) as unique_viewers
		FROM listing_views WHERE listing_id = ?`

	row := s.ch.QueryRow(ctx, query, today, weekAgo, listingID)
	if err := row.Scan(&stats.TodayViews, &stats.WeekViews, &stats.TotalViews, &stats.UniqueViewers); err != nil {
		return nil, fmt.Errorf("insights: stats query failed: %w", err)
	}
	return stats, nil
}

// run drains the event queue, flushing on size or interval
func (s *Service) run() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]ViewEvent, 0, flushSize)
	for {
		select {
		case event := <-s.events:
			batch = append(batch, event)
			if len(batch) >= flushSize {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-s.done:
			if len(batch) > 0 {
				s.flush(batch)
			}
			return
		}
	}
}

// flush writes one batch; failures are logged and the batch is dropped
func (s *Service) flush(events []ViewEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch, err := s.ch.PrepareBatch(ctx, "INSERT INTO listing_views (listing_id, viewer_id, ip_hash, viewed_at)")
	if err != nil {
		s.logger.Warn().Err(err).Int("events", len(events)).Msg("insights batch prepare failed")
		return
	}
	for _, e := range events {
		if err := batch.Append(e.ListingID, e.ViewerID, e.IPHash, e.ViewedAt); err != nil {
			s.logger.Warn().Err(err).Msg("insights batch append failed")
			return
		}
	}
	if err := batch.Send(); err != nil {
		s.logger.Warn().Err(err).Int("events", len(events)).Msg("insights batch send failed")
	}
}

// Close stops the background flusher and closes the connection
func (s *Service) Close() error {
	if s == nil || s.ch == nil {
		return nil
	}
	close(s.done)
	return s.ch.Close()
}
