package geo

import (
	"net"

	"github.com/oschwald/maxminddb-golang"

	"github.com/scmmishra/adpair/internal/models"
)

type Reader struct {
	db *maxminddb.Reader
}

// Open opens a MaxMind .mmdb file. Returns a no-op Reader if path is empty.
func Open(path string) (*Reader, error) {
	if path == "" {
		return &Reader{}, nil
	}
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() {
	if r != nil && r.db != nil {
		r.db.Close()
	}
}

func (r *Reader) Enabled() bool {
	return r != nil && r.db != nil
}

// Country resolves an IP to its ISO country code, or "" when unknown.
func (r *Reader) Country(ipStr string) string {
	if !r.Enabled() {
		return ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	var record struct {
		Country struct {
			ISOCode string `maxminddb:"iso_code"`
		} `maxminddb:"country"`
	}
	if err := r.db.Lookup(ip, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// AnnotateClicks fills the Country of every row in place.
func (r *Reader) AnnotateClicks(rows []models.DomainIPClicks) {
	if !r.Enabled() {
		return
	}
	seen := map[string]string{}
	for i := range rows {
		rows[i].Country = r.cached(seen, rows[i].IP)
	}
}

// AnnotateVisits fills the Country of every row in place.
func (r *Reader) AnnotateVisits(rows []models.DomainIPVisits) {
	if !r.Enabled() {
		return
	}
	seen := map[string]string{}
	for i := range rows {
		rows[i].Country = r.cached(seen, rows[i].IP)
	}
}

func (r *Reader) cached(seen map[string]string, ip string) string {
	if c, ok := seen[ip]; ok {
		return c
	}
	c := r.Country(ip)
	seen[ip] = c
	return c
}
