// Package catalog implements filtered product listing and the admin product
// lifecycle on top of the product repository.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/araddon/dateparse"
	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/repository"
	"github.com/ecomkit/storefront/internal/validation"
	"github.com/ecomkit/storefront/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 100000
)

// Pagination describes one offset page of a list.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type ProductPage struct {
	Products   []*domain.Product `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

// Scope selects which products a listing may expose.
type Scope int

const (
	// Public lists active products only.
	Public Scope = iota
	// Admin lists everything not soft deleted and honours the active filter.
	Admin
)

type Service struct {
	products repository.ProductRepository
	loc      *time.Location
	now      func() time.Time
}

type Option func(*Service)

// WithLocation sets the zone date-only filters are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(products repository.ProductRepository, opts ...Option) *Service {
	s := &Service{products: products, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseFilters coerces raw list parameters.
func ParseFilters(raw map[string]interface{}) (ListFilters, error) {
	var f ListFilters
	if err := decode(raw, &f, "Invalid product filters"); err != nil {
		return f, err
	}
	f.normalize()
	if err := validation.StructWithMessage(&f, "Invalid product filters"); err != nil {
		return f, err
	}
	return f, nil
}

// ParseProductInput coerces and validates a create/edit document.
func ParseProductInput(raw map[string]interface{}, message string) (ProductInput, error) {
	var in ProductInput
	if err := decode(raw, &in, message); err != nil {
		return in, err
	}
	in.normalize()
	if err := validation.StructWithMessage(&in, message); err != nil {
		return in, err
	}
	if _, issue := in.stock(); issue != nil {
		return in, apperr.NewValidation(message, []apperr.FieldIssue{*issue})
	}
	return in, nil
}

func (s *Service) query(f ListFilters, scope Scope) (repository.ProductQuery, error) {
	q := repository.ProductQuery{
		Name:        f.Name,
		Description: f.Description,
		Tags:        common.SplitTrim(f.Tags, ","),
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		Offset:      (f.Page - 1) * f.Limit,
		Limit:       f.Limit,
	}

	switch scope {
	case Public:
		active := true
		q.Active = &active
	case Admin:
		q.Active = f.Active
	}

	var issues []apperr.FieldIssue
	if f.DateFrom != "" {
		t, err := dateparse.ParseIn(f.DateFrom, s.loc)
		if err != nil {
			issues = append(issues, apperr.FieldIssue{Field: "dateFrom", Message: "dateFrom is not a valid date"})
		} else {
			q.DateFrom = &t
		}
	}
	if f.DateTo != "" {
		t, err := dateparse.ParseIn(f.DateTo, s.loc)
		if err != nil {
			issues = append(issues, apperr.FieldIssue{Field: "dateTo", Message: "dateTo is not a valid date"})
		} else {
			end := common.EndOfDay(t)
			q.DateTo = &end
		}
	}
	if len(issues) > 0 {
		return q, apperr.NewValidation("Invalid product filters", issues)
	}

	// one sort key; a price sort wins over a date sort
	switch {
	case f.PriceSort != "":
		q.SortBy, q.SortDesc = "price", f.PriceSort == "DESC"
	case f.DateSort != "":
		q.SortBy, q.SortDesc = "created_at", f.DateSort == "DESC"
	default:
		q.SortBy, q.SortDesc = "updated_at", true
	}
	return q, nil
}

func (s *Service) List(ctx context.Context, f ListFilters, scope Scope) (*ProductPage, error) {
	q, err := s.query(f, scope)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch products")
	}
	if rows == nil {
		rows = []*domain.Product{}
	}
	return &ProductPage{Products: rows, Pagination: NewPagination(f.Page, f.Limit, total)}, nil
}

// Export returns every product matching f, ignoring pagination.
func (s *Service) Export(ctx context.Context, f ListFilters) ([]*domain.Product, error) {
	q, err := s.query(f, Admin)
	if err != nil {
		return nil, err
	}
	var out []*domain.Product
	q.Offset, q.Limit = 0, 500
	for {
		rows, _, err := s.products.List(ctx, q)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to export products")
		}
		out = append(out, rows...)
		if len(rows) < q.Limit {
			return out, nil
		}
		q.Offset += q.Limit
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetLive(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Failed to fetch product")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	stock, _ := in.stock()
	now := s.now()
	p := &domain.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Images:        domain.StringList(in.Images),
		Tags:          domain.StringList(in.Tags),
		Stock:         stock,
		Active:        in.active(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(err, "Failed to create product")
	}
	zap.L().Info("product created",
		zap.String("namespace", "catalog"),
		zap.Int64("product_id", p.ID))
	return p, nil
}

// Edit replaces every editable field of a live product with in.
func (s *Service) Edit(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	stock, _ := in.stock()
	p, err := s.products.UpdateLive(ctx, id, map[string]interface{}{
		"name":           in.Name,
		"description":    in.Description,
		"price":          in.Price,
		"original_price": in.OriginalPrice,
		"images":         domain.StringList(in.Images),
		"tags":           domain.StringList(in.Tags),
		"stock":          stock,
		"active":         in.active(),
		"updated_at":     s.now(),
	})
	if err != nil {
		return nil, notFoundOr(err, "Failed to update product")
	}
	return p, nil
}

// Delete soft deletes a live product. Deleting twice is NotFound.
func (s *Service) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.SoftDelete(ctx, id, s.now())
	if err != nil {
		return nil, notFoundOr(err, "Failed to delete product")
	}
	zap.L().Info("product deleted",
		zap.String("namespace", "catalog"),
		zap.Int64("product_id", p.ID))
	return p, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "Product not found")
	}
	return apperr.Wrap(err, message)
}
