package report

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/scmmishra/adpair/internal/db"
	"github.com/scmmishra/adpair/internal/models"
)

var (
	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	day   = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
)

func TestWriteClicks(t *testing.T) {
	rows := []models.DomainIPClicks{
		{Day: "2024-01-05", Domain: "a.com", IP: "1.1.1.1", Country: "DE", Clicks: 3},
		{Day: "2024-01-04", Domain: "b.com", IP: "2.2.2.2", Clicks: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteClicks(&buf, rows))

	xl, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer xl.Close()

	got, err := xl.GetRows(clicksSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"day", "domain", "ip", "country", "clicks"}, got[0])
	assert.Equal(t, []string{"2024-01-05", "a.com", "1.1.1.1", "DE", "3"}, got[1])
	assert.Equal(t, "b.com", got[2][1])
}

func TestWriteVisitors_Summary(t *testing.T) {
	rows := []models.DomainIPVisits{{Day: "2024-01-05", Domain: "a.com", IP: "1.1.1.1", Visits: 2}}
	sum := models.VisitorSummary{TotalVisits: 2, DistinctDomains: 1, DistinctIPs: 1}

	var buf bytes.Buffer
	require.NoError(t, WriteVisitors(&buf, rows, sum))

	xl, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer xl.Close()

	v, err := xl.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	got, err := xl.GetRows(visitorsSheet)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAllClicks_WalksPages(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ad := &models.Ad{ImgURL: "/static/a.png", Link: "https://a.example", IsMain: true}
	require.NoError(t, models.CreateAd(ctx, database, ad))

	const n = models.MaxPageSize + 5
	for i := range n {
		ip := fmt.Sprintf("10.0.%d.%d", i/256, i%256)
		require.NoError(t, models.RecordClickByDomainIP(ctx, database, ad.ID, "a.com", ip, day))
	}

	rows, err := AllClicks(ctx, database, start, end, models.CategoryMain)
	require.NoError(t, err)
	assert.Len(t, rows, n)

	none, err := AllClicks(ctx, database, start, end, models.CategorySecondary)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAllVisitors(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, models.RecordVisitByDomainIP(ctx, database, "a.com", "1.1.1.1", day))
	require.NoError(t, models.RecordVisitByDomainIP(ctx, database, "b.com", "1.1.1.1", day))

	rows, sum, err := AllVisitors(ctx, database, start, end)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, models.VisitorSummary{TotalVisits: 2, DistinctDomains: 2, DistinctIPs: 1}, sum)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "clicks_2024-01-01_2024-01-31.xlsx", Filename("clicks", start, end))
}
