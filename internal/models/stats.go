package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Overview struct {
	TotalViews      int64 `json:"total_views"`
	TotalClicks     int64 `json:"total_clicks"`
	MainClicks      int64 `json:"main_clicks"`
	SecondaryClicks int64 `json:"secondary_clicks"`
}

// GetOverview sums every counter across all time. The main/secondary split
// joins against ads, so clicks of deleted ads only count toward TotalClicks.
func GetOverview(ctx context.Context, db *sql.DB) (*Overview, error) {
	var o Overview
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(count), 0) FROM page_views),
			(SELECT COALESCE(SUM(clicks), 0) FROM ad_clicks),
			(SELECT COALESCE(SUM(c.clicks), 0) FROM ad_clicks c JOIN ads a ON a.id = c.ad_id WHERE a.is_main = 1),
			(SELECT COALESCE(SUM(c.clicks), 0) FROM ad_clicks c JOIN ads a ON a.id = c.ad_id WHERE a.is_main = 0)`,
	).Scan(&o.TotalViews, &o.TotalClicks, &o.MainClicks, &o.SecondaryClicks)
	if err != nil {
		return nil, fmt.Errorf("query overview: %w", err)
	}
	return &o, nil
}

type DailyPoint struct {
	Day   string `json:"day"`
	Value int64  `json:"value"`
}

type DailyStats struct {
	PageViews       []DailyPoint `json:"page_views"`
	Clicks          []DailyPoint `json:"clicks"`
	MainClicks      []DailyPoint `json:"main_clicks"`
	SecondaryClicks []DailyPoint `json:"secondary_clicks"`
}

// GetDailyStats returns four series over [start, end] inclusive, ascending by
// day. Days without events are absent rather than zero.
func GetDailyStats(ctx context.Context, db *sql.DB, start, end time.Time) (*DailyStats, error) {
	from, to := DayKey(start), DayKey(end)

	var (
		ds  DailyStats
		err error
	)
	if ds.PageViews, err = dailySeries(ctx, db,
		`SELECT day, SUM(count) FROM page_views WHERE day >= ? AND day <= ? GROUP BY day ORDER BY day ASC`,
		from, to); err != nil {
		return nil, fmt.Errorf("daily page views: %w", err)
	}
	if ds.Clicks, err = dailySeries(ctx, db,
		`SELECT day, SUM(clicks) FROM ad_clicks WHERE day >= ? AND day <= ? GROUP BY day ORDER BY day ASC`,
		from, to); err != nil {
		return nil, fmt.Errorf("daily clicks: %w", err)
	}

	const byCategory = `SELECT c.day, SUM(c.clicks) FROM ad_clicks c JOIN ads a ON a.id = c.ad_id
		WHERE c.day >= ? AND c.day <= ? AND a.is_main = ? GROUP BY c.day ORDER BY c.day ASC`
	if ds.MainClicks, err = dailySeries(ctx, db, byCategory, from, to, 1); err != nil {
		return nil, fmt.Errorf("daily main clicks: %w", err)
	}
	if ds.SecondaryClicks, err = dailySeries(ctx, db, byCategory, from, to, 0); err != nil {
		return nil, fmt.Errorf("daily secondary clicks: %w", err)
	}
	return &ds, nil
}

func dailySeries(ctx context.Context, db *sql.DB, query string, args ...any) ([]DailyPoint, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []DailyPoint{}
	for rows.Next() {
		var p DailyPoint
		if err := rows.Scan(&p.Day, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Page is a clamped page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number to >= 1 and size to [1, MaxPageSize].
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) TotalPages(total int64) int64 {
	size := int64(p.Size)
	return (total + size - 1) / size
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

func (p Page) pagination(total int64) Pagination {
	return Pagination{
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
		TotalItems: total,
	}
}

type DomainIPClicks struct {
	Domain  string `json:"domain"`
	IP      string `json:"ip"`
	Day     string `json:"day"`
	Clicks  int64  `json:"clicks"`
	Country string `json:"country,omitempty"`
}

type ClicksReport struct {
	Rows       []DomainIPClicks `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// ClicksByDomainIP groups dimensional click counters of one ad category by
// (domain, ip, day), newest day first then most clicks.
func ClicksByDomainIP(ctx context.Context, db *sql.DB, start, end time.Time, cat Category, page Page) (*ClicksReport, error) {
	isMain, err := categoryFlag(cat)
	if err != nil {
		return nil, err
	}
	page = NewPage(page.Number, page.Size)
	from, to := DayKey(start), DayKey(end)

	const filter = `FROM ad_clicks_by_domain_ip c JOIN ads a ON a.id = c.ad_id
		WHERE c.day >= ? AND c.day <= ? AND a.is_main = ?`

	var total int64
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT 1 `+filter+` GROUP BY c.domain, c.ip, c.day)`,
		from, to, isMain,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count clicks by domain/ip: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT c.domain, c.ip, c.day, SUM(c.clicks) AS total `+filter+`
		GROUP BY c.domain, c.ip, c.day
		ORDER BY c.day DESC, total DESC, c.domain ASC, c.ip ASC
		LIMIT ? OFFSET ?`,
		from, to, isMain, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("query clicks by domain/ip: %w", err)
	}
	defer rows.Close()

	report := &ClicksReport{Rows: []DomainIPClicks{}, Pagination: page.pagination(total)}
	for rows.Next() {
		var r DomainIPClicks
		if err := rows.Scan(&r.Domain, &r.IP, &r.Day, &r.Clicks); err != nil {
			return nil, fmt.Errorf("scan clicks by domain/ip: %w", err)
		}
		report.Rows = append(report.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clicks by domain/ip: %w", err)
	}
	return report, nil
}

type DomainIPVisits struct {
	Domain  string `json:"domain"`
	IP      string `json:"ip"`
	Day     string `json:"day"`
	Visits  int64  `json:"visits"`
	Country string `json:"country,omitempty"`
}

type VisitorSummary struct {
	TotalVisits     int64 `json:"total_visits"`
	DistinctDomains int64 `json:"distinct_domains"`
	DistinctIPs     int64 `json:"distinct_ips"`
}

type VisitorsReport struct {
	Rows       []DomainIPVisits `json:"data"`
	Pagination Pagination       `json:"pagination"`
	Summary    VisitorSummary   `json:"summary"`
}

// VisitorsByDomainIP mirrors ClicksByDomainIP for page views and adds a
// summary computed over the whole range, independent of the page.
func VisitorsByDomainIP(ctx context.Context, db *sql.DB, start, end time.Time, page Page) (*VisitorsReport, error) {
	page = NewPage(page.Number, page.Size)
	from, to := DayKey(start), DayKey(end)

	var total int64
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM visitor_views_by_domain_ip
			WHERE day >= ? AND day <= ?
			GROUP BY domain, ip, day
		)`, from, to,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count visitors by domain/ip: %w", err)
	}

	report := &VisitorsReport{Rows: []DomainIPVisits{}, Pagination: page.pagination(total)}
	err = db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(visits), 0), COUNT(DISTINCT domain), COUNT(DISTINCT ip)
		FROM visitor_views_by_domain_ip
		WHERE day >= ? AND day <= ?`, from, to,
	).Scan(&report.Summary.TotalVisits, &report.Summary.DistinctDomains, &report.Summary.DistinctIPs)
	if err != nil {
		return nil, fmt.Errorf("summarize visitors: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT domain, ip, day, SUM(visits) AS total
		FROM visitor_views_by_domain_ip
		WHERE day >= ? AND day <= ?
		GROUP BY domain, ip, day
		ORDER BY day DESC, total DESC, domain ASC, ip ASC
		LIMIT ? OFFSET ?`,
		from, to, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("query visitors by domain/ip: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r DomainIPVisits
		if err := rows.Scan(&r.Domain, &r.IP, &r.Day, &r.Visits); err != nil {
			return nil, fmt.Errorf("scan visitors by domain/ip: %w", err)
		}
		report.Rows = append(report.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visitors by domain/ip: %w", err)
	}
	return report, nil
}

func categoryFlag(c Category) (int, error) {
	switch c {
	case CategoryMain:
		return 1, nil
	case CategorySecondary:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: invalid category %q", ErrValidation, c)
}
