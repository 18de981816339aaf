package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DayLayout is the storage format of every counter day key.
const DayLayout = "2006-01-02"

// DayKey formats day as a counter key; the zero time means today.
func DayKey(day time.Time) string {
	if day.IsZero() {
		day = time.Now()
	}
	return day.Format(DayLayout)
}

// Each counter is bumped with a single INSERT ... ON CONFLICT statement so
// concurrent events for the same key never lose an increment.

func RecordPageView(ctx context.Context, db *sql.DB, day time.Time) error {
	return upsertIncrement(ctx, db, "page view",
		`INSERT INTO page_views (day, count) VALUES (?, 1)
		ON CONFLICT(day) DO UPDATE SET count = count + 1`,
		DayKey(day),
	)
}

func RecordAdClick(ctx context.Context, db *sql.DB, adID int64, day time.Time) error {
	return upsertIncrement(ctx, db, "ad click",
		`INSERT INTO ad_clicks (ad_id, day, clicks) VALUES (?, ?, 1)
		ON CONFLICT(ad_id, day) DO UPDATE SET clicks = clicks + 1`,
		adID, DayKey(day),
	)
}

func RecordClickByDomainIP(ctx context.Context, db *sql.DB, adID int64, domain, ip string, day time.Time) error {
	return upsertIncrement(ctx, db, "click by domain/ip",
		`INSERT INTO ad_clicks_by_domain_ip (ad_id, day, domain, ip, clicks) VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(ad_id, day, domain, ip) DO UPDATE SET clicks = clicks + 1`,
		adID, DayKey(day), domain, ip,
	)
}

func RecordVisitByDomainIP(ctx context.Context, db *sql.DB, domain, ip string, day time.Time) error {
	return upsertIncrement(ctx, db, "visit by domain/ip",
		`INSERT INTO visitor_views_by_domain_ip (day, domain, ip, visits) VALUES (?, ?, ?, 1)
		ON CONFLICT(day, domain, ip) DO UPDATE SET visits = visits + 1`,
		DayKey(day), domain, ip,
	)
}

func upsertIncrement(ctx context.Context, db *sql.DB, what, query string, args ...any) error {
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record %s: %w", what, err)
	}
	return nil
}
