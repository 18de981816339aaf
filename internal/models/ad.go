package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryMain      Category = "main"
	CategorySecondary Category = "secondary"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseCategory accepts "main" or "secondary".
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryMain, CategorySecondary:
		return c, nil
	}
	return "", fmt.Errorf("%w: invalid category %q", ErrValidation, s)
}

// ParseStatus accepts "active" or "inactive".
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusInactive:
		return st, nil
	}
	return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
}

type Ad struct {
	ID               int64     `json:"id"`
	ImgURL           string    `json:"img_url"`
	Link             string    `json:"link"`
	IsMain           bool      `json:"is_main"`
	Status           Status    `json:"status"`
	XRedirectEnabled bool      `json:"x_redirect_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

func (a *Ad) Category() Category {
	if a.IsMain {
		return CategoryMain
	}
	return CategorySecondary
}

// AdFilter narrows ListAds. Zero values mean "no constraint".
type AdFilter struct {
	Start    time.Time
	End      time.Time
	Category Category
	Status   Status
}

// AdPatch carries the fields of a partial update. Nil fields are left untouched.
type AdPatch struct {
	ImgURL           *string
	Link             *string
	IsMain           *bool
	XRedirectEnabled *bool
}

type assignment struct {
	column string
	value  any
}

func (p AdPatch) assignments() []assignment {
	var set []assignment
	if p.ImgURL != nil {
		set = append(set, assignment{"img_url", *p.ImgURL})
	}
	if p.Link != nil {
		set = append(set, assignment{"link", *p.Link})
	}
	if p.IsMain != nil {
		set = append(set, assignment{"is_main", boolToInt(*p.IsMain)})
	}
	if p.XRedirectEnabled != nil {
		set = append(set, assignment{"x_redirect_enabled", boolToInt(*p.XRedirectEnabled)})
	}
	return set
}

const adColumns = `id, img_url, link, is_main, status, x_redirect_enabled, created_at`

func CreateAd(ctx context.Context, db *sql.DB, a *Ad) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.ExecContext(ctx,
		`INSERT INTO ads (img_url, link, is_main, x_redirect_enabled, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ImgURL, a.Link, boolToInt(a.IsMain), boolToInt(a.XRedirectEnabled), now,
	)
	if err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert ad id: %w", err)
	}

	// Re-read to pick up column defaults
	created, err := GetAd(ctx, db, id)
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

func GetAd(ctx context.Context, db *sql.DB, id int64) (*Ad, error) {
	row := db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE id = ?`, id)
	a, err := scanAd(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	return a, nil
}

func ListAds(ctx context.Context, db *sql.DB, f AdFilter) ([]Ad, error) {
	var where []string
	var args []any

	switch f.Category {
	case "":
	case CategoryMain:
		where = append(where, "is_main = 1")
	case CategorySecondary:
		where = append(where, "is_main = 0")
	default:
		return nil, fmt.Errorf("%w: invalid category %q", ErrValidation, f.Category)
	}
	if f.Status != "" {
		if _, err := ParseStatus(string(f.Status)); err != nil {
			return nil, err
		}
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.Start.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.Start.UTC())
	}
	if !f.End.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, f.End.UTC())
	}

	query := `SELECT ` + adColumns + ` FROM ads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	ads := []Ad{}
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		ads = append(ads, *a)
	}
	return ads, rows.Err()
}

// ActiveAds returns every active ad of one category, the selection candidates.
func ActiveAds(ctx context.Context, db *sql.DB, c Category) ([]Ad, error) {
	return ListAds(ctx, db, AdFilter{Category: c, Status: StatusActive})
}

func DeleteAd(ctx context.Context, db *sql.DB, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM ads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	return nil
}

func UpdateAdStatus(ctx context.Context, db *sql.DB, id int64, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `UPDATE ads SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return fmt.Errorf("update ad status: %w", err)
	}
	return nil
}

func UpdateAdRedirect(ctx context.Context, db *sql.DB, id int64, enabled bool) error {
	if _, err := db.ExecContext(ctx, `UPDATE ads SET x_redirect_enabled = ? WHERE id = ?`, boolToInt(enabled), id); err != nil {
		return fmt.Errorf("update ad redirect: %w", err)
	}
	return nil
}

// UpdateAd writes only the fields present in p. An empty patch is a no-op.
func UpdateAd(ctx context.Context, db *sql.DB, id int64, p AdPatch) error {
	set := p.assignments()
	if len(set) == 0 {
		return nil
	}

	columns := make([]string, len(set))
	args := make([]any, 0, len(set)+1)
	for i, a := range set {
		columns[i] = a.column + " = ?"
		args = append(args, a.value)
	}
	args = append(args, id)

	query := `UPDATE ads SET ` + strings.Join(columns, ", ") + ` WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update ad: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(row rowScanner) (*Ad, error) {
	var a Ad
	var isMain, redirect int
	var status string
	if err := row.Scan(&a.ID, &a.ImgURL, &a.Link, &isMain, &status, &redirect, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.IsMain = isMain == 1
	a.Status = Status(status)
	a.XRedirectEnabled = redirect == 1
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
