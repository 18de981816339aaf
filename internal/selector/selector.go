// Package selector picks the ad pair shown to a visitor.
package selector

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"github.com/scmmishra/adpair/internal/models"
)

// Settings supplies the delivery gates.
type Settings interface {
	AdSettings(ctx context.Context) (models.AdSettings, error)
}

// Catalog supplies the active candidates of one category.
type Catalog interface {
	ActiveAds(ctx context.Context, c models.Category) ([]models.Ad, error)
}

// Pair is one selection result. A nil side means nothing is shown there.
// Settings is the snapshot the gates were read from.
type Pair struct {
	Main      *models.Ad        `json:"main"`
	Secondary *models.Ad        `json:"secondary"`
	Settings  models.AdSettings `json:"-"`
}

type Selector struct {
	settings Settings
	catalog  Catalog
	pick     func(n int) int
}

func New(settings Settings, catalog Catalog) *Selector {
	return &Selector{settings: settings, catalog: catalog, pick: rand.IntN}
}

// SelectPair reads the gates and draws one active ad per enabled category.
// It never writes and never consults the blacklist.
func (s *Selector) SelectPair(ctx context.Context) (Pair, error) {
	cfg, err := s.settings.AdSettings(ctx)
	if err != nil {
		return Pair{}, fmt.Errorf("read ad settings: %w", err)
	}
	p := Pair{Settings: cfg}
	if !cfg.GlobalEnabled {
		return p, nil
	}

	if cfg.MainEnabled {
		if p.Main, err = s.draw(ctx, models.CategoryMain); err != nil {
			return Pair{}, err
		}
	}
	if cfg.SecondaryEnabled {
		if p.Secondary, err = s.draw(ctx, models.CategorySecondary); err != nil {
			return Pair{}, err
		}
	}
	return p, nil
}

func (s *Selector) draw(ctx context.Context, c models.Category) (*models.Ad, error) {
	ads, err := s.catalog.ActiveAds(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("load %s candidates: %w", c, err)
	}
	if len(ads) == 0 {
		return nil, nil
	}
	ad := ads[s.pick(len(ads))]
	return &ad, nil
}

// Store adapts a database handle to both Settings and Catalog.
type Store struct {
	DB *sql.DB
}

func (s Store) AdSettings(ctx context.Context) (models.AdSettings, error) {
	return models.GetAdSettings(ctx, s.DB)
}

func (s Store) ActiveAds(ctx context.Context, c models.Category) ([]models.Ad, error) {
	return models.ActiveAds(ctx, s.DB, c)
}

// FromDB builds a Selector backed directly by the store.
func FromDB(db *sql.DB) *Selector {
	st := Store{DB: db}
	return New(st, st)
}
