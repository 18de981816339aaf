package geo

import (
	"testing"

	"github.com/scmmishra/adpair/internal/models"
)

func TestOpen_EmptyPath_ReturnsNoOpReader(t *testing.T) {
	r, err := Open("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected non-nil Reader")
	}
	if r.Enabled() {
		t.Error("no-op reader reports enabled")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/geo.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCountry_NoOpReader(t *testing.T) {
	r, _ := Open("")
	if c := r.Country("8.8.8.8"); c != "" {
		t.Errorf("country = %q, want empty", c)
	}
	if c := r.Country("not-an-ip"); c != "" {
		t.Errorf("country = %q, want empty", c)
	}
}

func TestAnnotate_NoOpReaderLeavesRows(t *testing.T) {
	r, _ := Open("")
	clicks := []models.DomainIPClicks{{Domain: "a.com", IP: "8.8.8.8", Clicks: 1}}
	visits := []models.DomainIPVisits{{Domain: "a.com", IP: "8.8.8.8", Visits: 1}}

	r.AnnotateClicks(clicks)
	r.AnnotateVisits(visits)

	if clicks[0].Country != "" || visits[0].Country != "" {
		t.Errorf("rows annotated by no-op reader: %+v %+v", clicks[0], visits[0])
	}
}

func TestNilReader_NoPanic(t *testing.T) {
	var r *Reader
	r.Close()
	if r.Country("8.8.8.8") != "" {
		t.Error("nil reader returned a country")
	}
	r.AnnotateClicks([]models.DomainIPClicks{{IP: "8.8.8.8"}})
}
