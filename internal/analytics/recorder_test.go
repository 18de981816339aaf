package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/db"
	"github.com/scmmishra/adpair/internal/metrics"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestRecorder(t *testing.T, filterBots bool) (*Recorder, *sql.DB, *metrics.Metrics) {
	t.Helper()
	database := testDB(t)
	m := metrics.New(prometheus.NewRegistry())
	rec := NewRecorder(database, m, zap.NewNop(), filterBots)
	rec.now = func() time.Time { return time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC) }
	return rec, database, m
}

func TestRecorder_PageView(t *testing.T) {
	rec, database, m := newTestRecorder(t, false)
	c := Client{Domain: "a.com", IP: "1.1.1.1", UserAgent: browserUA}

	for range 2 {
		counted, err := rec.PageView(context.Background(), c)
		if err != nil {
			t.Fatal(err)
		}
		if !counted {
			t.Fatal("page view not counted")
		}
	}

	var views, visits int
	if err := database.QueryRow(`SELECT count FROM page_views WHERE day = '2024-01-05'`).Scan(&views); err != nil {
		t.Fatal(err)
	}
	if err := database.QueryRow(`SELECT visits FROM visitor_views_by_domain_ip WHERE domain = 'a.com' AND ip = '1.1.1.1'`).Scan(&visits); err != nil {
		t.Fatal(err)
	}
	if views != 2 || visits != 2 {
		t.Errorf("views = %d visits = %d, want 2 and 2", views, visits)
	}
	if got := testutil.ToFloat64(m.Events.WithLabelValues(metrics.EventPageView)); got != 2 {
		t.Errorf("events metric = %v, want 2", got)
	}
}

func TestRecorder_Click(t *testing.T) {
	rec, database, _ := newTestRecorder(t, false)
	c := Client{Domain: "a.com", IP: "1.1.1.1", UserAgent: browserUA}

	if _, err := rec.Click(context.Background(), 4, c); err != nil {
		t.Fatal(err)
	}

	var clicks, dimensional int
	if err := database.QueryRow(`SELECT clicks FROM ad_clicks WHERE ad_id = 4`).Scan(&clicks); err != nil {
		t.Fatal(err)
	}
	if err := database.QueryRow(`SELECT clicks FROM ad_clicks_by_domain_ip WHERE ad_id = 4 AND domain = 'a.com'`).Scan(&dimensional); err != nil {
		t.Fatal(err)
	}
	if clicks != 1 || dimensional != 1 {
		t.Errorf("clicks = %d dimensional = %d, want 1 and 1", clicks, dimensional)
	}
}

func TestRecorder_FiltersBots(t *testing.T) {
	rec, database, _ := newTestRecorder(t, true)
	bot := Client{Domain: "a.com", IP: "1.1.1.1", UserAgent: "curl/8.4.0"}

	counted, err := rec.PageView(context.Background(), bot)
	if err != nil {
		t.Fatal(err)
	}
	if counted {
		t.Error("bot page view counted")
	}
	if counted, _ := rec.Click(context.Background(), 1, bot); counted {
		t.Error("bot click counted")
	}

	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM page_views`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("page_views rows = %d, want 0", n)
	}
}

func TestRecorder_BotsCountedWhenFilterOff(t *testing.T) {
	rec, _, _ := newTestRecorder(t, false)
	counted, err := rec.PageView(context.Background(), Client{UserAgent: "curl/8.4.0", Domain: Unknown, IP: Unknown})
	if err != nil {
		t.Fatal(err)
	}
	if !counted {
		t.Error("bot page view dropped with filtering off")
	}
}
