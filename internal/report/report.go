// Package report renders the grouped domain/IP breakdowns as XLSX workbooks.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/scmmishra/adpair/internal/models"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	clicksSheet   = "Clicks"
	visitorsSheet = "Visitors"
	summarySheet  = "Summary"
)

// AllClicks walks every page of ClicksByDomainIP for the range.
func AllClicks(ctx context.Context, db *sql.DB, start, end time.Time, cat models.Category) ([]models.DomainIPClicks, error) {
	var rows []models.DomainIPClicks
	for page := models.NewPage(1, models.MaxPageSize); ; page.Number++ {
		r, err := models.ClicksByDomainIP(ctx, db, start, end, cat, page)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r.Rows...)
		if int64(page.Number) >= r.Pagination.TotalPages {
			return rows, nil
		}
	}
}

// AllVisitors walks every page of VisitorsByDomainIP for the range.
func AllVisitors(ctx context.Context, db *sql.DB, start, end time.Time) ([]models.DomainIPVisits, models.VisitorSummary, error) {
	var rows []models.DomainIPVisits
	for page := models.NewPage(1, models.MaxPageSize); ; page.Number++ {
		r, err := models.VisitorsByDomainIP(ctx, db, start, end, page)
		if err != nil {
			return nil, models.VisitorSummary{}, err
		}
		rows = append(rows, r.Rows...)
		if int64(page.Number) >= r.Pagination.TotalPages {
			return rows, r.Summary, nil
		}
	}
}

// WriteClicks writes a single-sheet workbook of click rows to w.
func WriteClicks(w io.Writer, rows []models.DomainIPClicks) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), clicksSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := []any{"day", "domain", "ip", "country", "clicks"}
	if err := xl.SetSheetRow(clicksSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		record := []any{r.Day, r.Domain, r.IP, r.Country, r.Clicks}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(clicksSheet, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := xl.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteVisitors writes visitor rows plus a summary sheet to w.
func WriteVisitors(w io.Writer, rows []models.DomainIPVisits, sum models.VisitorSummary) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), visitorsSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := []any{"day", "domain", "ip", "country", "visits"}
	if err := xl.SetSheetRow(visitorsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		record := []any{r.Day, r.Domain, r.IP, r.Country, r.Visits}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(visitorsSheet, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if _, err := xl.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	summary := [][]any{
		{"total_visits", sum.TotalVisits},
		{"distinct_domains", sum.DistinctDomains},
		{"distinct_ips", sum.DistinctIPs},
	}
	for i, rec := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := xl.SetSheetRow(summarySheet, cell, &rec); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := xl.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename builds the attachment name of an export, e.g.
// clicks_main_2024-01-01_2024-01-31.xlsx.
func Filename(kind string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", kind, models.DayKey(start), models.DayKey(end))
}
