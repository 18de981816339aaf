package analytics

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/metrics"
	"github.com/scmmishra/adpair/internal/models"
)

// Recorder writes ledger events synchronously. Every event is a pair of
// independent upserts, so a failure of the second leaves the first counted.
type Recorder struct {
	db         *sql.DB
	metrics    *metrics.Metrics
	log        *zap.Logger
	filterBots bool
	now        func() time.Time
}

func NewRecorder(db *sql.DB, m *metrics.Metrics, log *zap.Logger, filterBots bool) *Recorder {
	return &Recorder{db: db, metrics: m, log: log, filterBots: filterBots, now: time.Now}
}

// Skip reports whether events from c are dropped by bot filtering.
func (rec *Recorder) Skip(c Client) bool {
	return rec.filterBots && IsBot(c.UserAgent)
}

// PageView counts one view for today plus one visit for (domain, ip).
// It returns false when the event was filtered out.
func (rec *Recorder) PageView(ctx context.Context, c Client) (bool, error) {
	if rec.Skip(c) {
		rec.log.Debug("page view from bot skipped", zap.String("ua", c.UserAgent))
		return false, nil
	}
	day := rec.now()
	if err := models.RecordPageView(ctx, rec.db, day); err != nil {
		return false, err
	}
	if err := models.RecordVisitByDomainIP(ctx, rec.db, c.Domain, c.IP, day); err != nil {
		return false, err
	}
	rec.metrics.Events.WithLabelValues(metrics.EventPageView).Inc()
	return true, nil
}

// Click counts one click of adID for today plus one for (adID, domain, ip).
// The caller has already verified that the ad exists.
func (rec *Recorder) Click(ctx context.Context, adID int64, c Client) (bool, error) {
	if rec.Skip(c) {
		rec.log.Debug("click from bot skipped", zap.Int64("ad_id", adID), zap.String("ua", c.UserAgent))
		return false, nil
	}
	day := rec.now()
	if err := models.RecordAdClick(ctx, rec.db, adID, day); err != nil {
		return false, err
	}
	if err := models.RecordClickByDomainIP(ctx, rec.db, adID, c.Domain, c.IP, day); err != nil {
		return false, err
	}
	rec.metrics.Events.WithLabelValues(metrics.EventClick).Inc()
	return true, nil
}
