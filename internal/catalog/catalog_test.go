package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/repository"
	"github.com/ecomkit/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	db := testutil.NewTestDB(t)
	clock := func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }
	return NewService(repository.NewGormProductRepository(db), WithLocation(time.UTC), WithClock(clock)), db
}

func mustFilters(t *testing.T, raw map[string]interface{}) ListFilters {
	t.Helper()
	f, err := ParseFilters(raw)
	require.NoError(t, err)
	return f
}

func mustInput(t *testing.T, raw map[string]interface{}) ProductInput {
	t.Helper()
	in, err := ParseProductInput(raw, "Invalid Inputs for Creating Product")
	require.NoError(t, err)
	return in
}

func names(page *ProductPage) []string {
	out := make([]string, 0, len(page.Products))
	for _, p := range page.Products {
		out = append(out, p.Name)
	}
	return out
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, mustInput(t, map[string]interface{}{"name": "Pen", "originalPrice": 10.0}))
	require.NoError(t, err)
	assert.False(t, p.Active)
	assert.Equal(t, 0, p.Stock)
	assert.Nil(t, p.Price)
	assert.Equal(t, 10.0, *p.OriginalPrice)

	page, err := svc.List(ctx, mustFilters(t, nil), Admin)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Pen", page.Products[0].Name)
	assert.False(t, page.Products[0].Active)
	assert.Equal(t, 0, page.Products[0].Stock)
	assert.Empty(t, page.Products[0].Tags)

	public, err := svc.List(ctx, mustFilters(t, nil), Public)
	require.NoError(t, err)
	assert.Empty(t, public.Products)
}

func TestProductInputCoercionAndValidation(t *testing.T) {
	in := mustInput(t, map[string]interface{}{
		"name":          "Lamp",
		"originalPrice": "19.5",
		"price":         "15",
		"stock":         "4",
		"active":        "true",
		"tags":          []interface{}{"home"},
	})
	assert.Equal(t, 19.5, *in.OriginalPrice)
	assert.Equal(t, 15.0, *in.Price)
	stock, issue := in.stock()
	assert.Nil(t, issue)
	assert.Equal(t, 4, stock)
	assert.True(t, in.active())
	assert.Equal(t, []string{"home"}, in.Tags)

	in = mustInput(t, map[string]interface{}{
		"name":          "Lamp",
		"originalPrice": 1,
		"tags":          "home, desk ,",
	})
	assert.Equal(t, []string{"home", "desk"}, in.Tags)
	assert.Equal(t, []string{}, in.Images)

	bad := []map[string]interface{}{
		{"originalPrice": 1.0},
		{"name": "9 Lives", "originalPrice": 1.0},
		{"name": "Lamp"},
		{"name": "Lamp", "originalPrice": -1.0},
		{"name": "Lamp", "originalPrice": 1.0, "stock": 1.5},
		{"name": "Lamp", "originalPrice": 1.0, "stock": -2.0},
		{"name": "Lamp", "originalPrice": "cheap"},
		{"name": "Lamp", "originalPrice": 1.0, "description": "#1 lamp"},
	}
	for _, raw := range bad {
		_, err := ParseProductInput(raw, "Invalid Inputs for Creating Product")
		assert.True(t, apperr.Is(err, apperr.Validation), "%v", raw)
	}
}

func TestSoftDeletedProductsAreHidden(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, mustInput(t, map[string]interface{}{"name": "Mug", "originalPrice": 4.0, "active": true}))
	require.NoError(t, err)

	_, err = svc.Delete(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, p.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = svc.Get(ctx, p.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = svc.Edit(ctx, p.ID, mustInput(t, map[string]interface{}{"name": "Cup", "originalPrice": 4.0}))
	assert.True(t, apperr.Is(err, apperr.NotFound))

	page, err := svc.List(ctx, mustFilters(t, nil), Admin)
	require.NoError(t, err)
	assert.Empty(t, page.Products)

	var stored domain.Product
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.NotNil(t, stored.DeletedAt)
}

func TestEditReplacesDocument(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, mustInput(t, map[string]interface{}{
		"name": "Desk", "description": "Oak", "originalPrice": 100.0, "price": 80.0, "stock": 2.0, "tags": []interface{}{"wood"},
	}))
	require.NoError(t, err)

	edited, err := svc.Edit(ctx, p.ID, mustInput(t, map[string]interface{}{"name": "Desk XL", "originalPrice": 120.0}))
	require.NoError(t, err)
	assert.Equal(t, "Desk XL", edited.Name)
	assert.Nil(t, edited.Description)
	assert.Nil(t, edited.Price)
	assert.Equal(t, 0, edited.Stock)
	assert.Empty(t, edited.Tags)
}

// Price sort orders by price, and overrides a date sort when both are given.
func TestListPriceSortWinsOverDateSort(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, price := range []float64{30, 10, 20} {
		testutil.CreateProduct(t, db, domain.Product{
			Name: []string{"Oldest", "Middle", "Newest"}[i], Price: testutil.Float(price), Active: true,
			CreatedAt: base.AddDate(0, 0, i),
		})
	}

	page, err := svc.List(ctx, mustFilters(t, map[string]interface{}{"priceSort": "asc", "dateSort": "DESC"}), Admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Middle", "Newest", "Oldest"}, names(page))

	page, err = svc.List(ctx, mustFilters(t, map[string]interface{}{"priceSort": "DESC"}), Admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Oldest", "Newest", "Middle"}, names(page))

	page, err = svc.List(ctx, mustFilters(t, map[string]interface{}{"dateSort": "ASC"}), Admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Oldest", "Middle", "Newest"}, names(page))

	_, err = ParseFilters(map[string]interface{}{"priceSort": "cheapest"})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestListDateToIncludesWholeDay(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	testutil.CreateProduct(t, db, domain.Product{Name: "Late", CreatedAt: time.Date(2024, 5, 2, 23, 59, 59, 0, time.UTC)})
	testutil.CreateProduct(t, db, domain.Product{Name: "Next", CreatedAt: time.Date(2024, 5, 3, 0, 0, 1, 0, time.UTC)})
	testutil.CreateProduct(t, db, domain.Product{Name: "Early", CreatedAt: time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)})

	page, err := svc.List(ctx, mustFilters(t, map[string]interface{}{"dateFrom": "2024-05-01", "dateTo": "2024-05-02"}), Admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Late"}, names(page))

	_, err = svc.List(ctx, mustFilters(t, map[string]interface{}{"dateTo": "not a date"}), Admin)
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestListFiltersAndPagination(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	testutil.CreateProduct(t, db, domain.Product{Name: "Blue Pen", Price: testutil.Float(2), Tags: domain.StringList{"office"}, Active: true})
	testutil.CreateProduct(t, db, domain.Product{Name: "Green Pen", Price: testutil.Float(4), Tags: domain.StringList{"gift"}, Active: true})
	testutil.CreateProduct(t, db, domain.Product{Name: "Stapler", Price: testutil.Float(9), Tags: domain.StringList{"office"}, Active: false})

	page, err := svc.List(ctx, mustFilters(t, map[string]interface{}{"tags": "gift, office"}), Public)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Blue Pen", "Green Pen"}, names(page))

	page, err = svc.List(ctx, mustFilters(t, map[string]interface{}{"active": "false"}), Admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Stapler"}, names(page))

	page, err = svc.List(ctx, mustFilters(t, map[string]interface{}{"minPrice": "3", "maxPrice": 9.0}), Admin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Green Pen", "Stapler"}, names(page))

	page, err = svc.List(ctx, mustFilters(t, map[string]interface{}{"name": "PEN", "page": "2", "limit": 1.0, "priceSort": "ASC"}), Admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Green Pen"}, names(page))
	assert.Equal(t, Pagination{Page: 2, Limit: 1, Total: 2, Pages: 2, HasNext: false, HasPrev: true}, page.Pagination)
}

func TestParseFiltersDefaults(t *testing.T) {
	f := mustFilters(t, map[string]interface{}{"page": "0", "limit": "1000", "name": "  "})
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, "", f.Name)

	f = mustFilters(t, map[string]interface{}{"page": "9223372036854775807", "limit": "100"})
	assert.Equal(t, MaxPage, f.Page)

	_, err := ParseFilters(map[string]interface{}{"minPrice": "free"})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestListFarPageIsEmpty(t *testing.T) {
	svc, db := newService(t)
	testutil.CreateProduct(t, db, domain.Product{Name: "Lamp", Active: true})

	f := mustFilters(t, map[string]interface{}{"page": "9223372036854775807", "limit": "100"})
	page, err := svc.List(context.Background(), f, Admin)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.EqualValues(t, 1, page.Pagination.Total)
	assert.Equal(t, MaxPage, page.Pagination.Page)
	assert.False(t, page.Pagination.HasNext)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0}, NewPagination(1, 10, 0))
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 21, Pages: 3, HasNext: true}, NewPagination(1, 10, 21))
}
