package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmmishra/adpair/internal/db"
	"github.com/scmmishra/adpair/internal/models"
)

type fakeSettings struct {
	s     models.AdSettings
	err   error
	reads int
}

func (f *fakeSettings) AdSettings(context.Context) (models.AdSettings, error) {
	f.reads++
	return f.s, f.err
}

type fakeCatalog struct {
	ads   map[models.Category][]models.Ad
	err   error
	reads []models.Category
}

func (f *fakeCatalog) ActiveAds(_ context.Context, c models.Category) ([]models.Ad, error) {
	f.reads = append(f.reads, c)
	return f.ads[c], f.err
}

func fullCatalog() *fakeCatalog {
	return &fakeCatalog{ads: map[models.Category][]models.Ad{
		models.CategoryMain:      {{ID: 1, IsMain: true}, {ID: 2, IsMain: true}},
		models.CategorySecondary: {{ID: 3}},
	}}
}

func TestSelectPair_GlobalDisabled(t *testing.T) {
	settings := &fakeSettings{s: models.AdSettings{MainEnabled: true, SecondaryEnabled: true}}
	catalog := fullCatalog()

	p, err := New(settings, catalog).SelectPair(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p.Main)
	assert.Nil(t, p.Secondary)
	assert.Empty(t, catalog.reads, "catalog must not be read when globally disabled")
	assert.Equal(t, settings.s, p.Settings)
}

func TestSelectPair_BothCategories(t *testing.T) {
	settings := &fakeSettings{s: models.DefaultAdSettings}
	catalog := fullCatalog()
	sel := New(settings, catalog)
	sel.pick = func(n int) int { return n - 1 }

	p, err := sel.SelectPair(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p.Main)
	require.NotNil(t, p.Secondary)
	assert.Equal(t, int64(2), p.Main.ID)
	assert.Equal(t, int64(3), p.Secondary.ID)
	assert.Equal(t, 1, settings.reads)
	assert.Equal(t, models.DefaultAdSettings, p.Settings)
}

func TestSelectPair_CategoryGates(t *testing.T) {
	settings := &fakeSettings{s: models.AdSettings{GlobalEnabled: true, SecondaryEnabled: true}}
	catalog := fullCatalog()

	p, err := New(settings, catalog).SelectPair(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p.Main)
	require.NotNil(t, p.Secondary)
	assert.Equal(t, []models.Category{models.CategorySecondary}, catalog.reads)
}

func TestSelectPair_EmptyCandidates(t *testing.T) {
	settings := &fakeSettings{s: models.DefaultAdSettings}
	catalog := &fakeCatalog{ads: map[models.Category][]models.Ad{
		models.CategorySecondary: {{ID: 9}},
	}}
	sel := New(settings, catalog)
	sel.pick = func(n int) int {
		if n == 0 {
			t.Fatal("pick called with n=0")
		}
		return 0
	}

	p, err := sel.SelectPair(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p.Main)
	require.NotNil(t, p.Secondary)
	assert.Equal(t, int64(9), p.Secondary.ID)
}

func TestSelectPair_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&fakeSettings{err: boom}, fullCatalog()).SelectPair(context.Background())
	assert.ErrorIs(t, err, boom)

	catalog := fullCatalog()
	catalog.err = boom
	_, err = New(&fakeSettings{s: models.DefaultAdSettings}, catalog).SelectPair(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSelectPair_Uniform(t *testing.T) {
	settings := &fakeSettings{s: models.AdSettings{GlobalEnabled: true, MainEnabled: true}}
	sel := New(settings, fullCatalog())

	seen := map[int64]int{}
	for range 400 {
		p, err := sel.SelectPair(context.Background())
		require.NoError(t, err)
		require.NotNil(t, p.Main)
		seen[p.Main.ID]++
	}
	assert.Len(t, seen, 2)
	assert.Greater(t, seen[1], 100)
	assert.Greater(t, seen[2], 100)
}

func TestFromDB(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ad := &models.Ad{ImgURL: "/static/m.png", Link: "https://m.example", IsMain: true}
	require.NoError(t, models.CreateAd(ctx, database, ad))

	p, err := FromDB(database).SelectPair(ctx)
	require.NoError(t, err)
	require.NotNil(t, p.Main)
	assert.Equal(t, ad.ID, p.Main.ID)
	assert.Nil(t, p.Secondary)

	require.NoError(t, models.UpdateAdStatus(ctx, database, ad.ID, models.StatusInactive))
	p, err = FromDB(database).SelectPair(ctx)
	require.NoError(t, err)
	assert.Nil(t, p.Main)
}
