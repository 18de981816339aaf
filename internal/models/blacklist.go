package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type BlacklistEntry struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// AddBlacklistDomain reports whether a new entry was created. A domain that is
// already listed is not an error; the caller decides how to surface it.
func AddBlacklistDomain(ctx context.Context, db *sql.DB, domain string) (bool, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return false, fmt.Errorf("%w: domain cannot be empty", ErrValidation)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO domain_blacklist (domain, created_at) VALUES (?, ?) ON CONFLICT(domain) DO NOTHING`,
		domain, time.Now().UTC().Truncate(time.Second),
	)
	if err != nil {
		return false, fmt.Errorf("insert blacklist domain: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert blacklist domain: %w", err)
	}
	return n > 0, nil
}

func RemoveBlacklistDomain(ctx context.Context, db *sql.DB, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM domain_blacklist WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete blacklist domain: %w", err)
	}
	return nil
}

func ListBlacklist(ctx context.Context, db *sql.DB) ([]BlacklistEntry, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, domain, created_at FROM domain_blacklist ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	entries := []BlacklistEntry{}
	for rows.Next() {
		var e BlacklistEntry
		if err := rows.Scan(&e.ID, &e.Domain, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// IsBlacklisted is an exact match; no case folding or subdomain matching.
func IsBlacklisted(ctx context.Context, db *sql.DB, domain string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM domain_blacklist WHERE domain = ?`, domain).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return count > 0, nil
}
