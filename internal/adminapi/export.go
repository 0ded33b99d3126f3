package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/catalog"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/webserver"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

// productRow is the CSV projection of a product.
type productRow struct {
	ID            int64  `csv:"id"`
	Name          string `csv:"name"`
	Description   string `csv:"description"`
	Price         string `csv:"price"`
	OriginalPrice string `csv:"original_price"`
	Stock         int    `csv:"stock"`
	Active        bool   `csv:"active"`
	Tags          string `csv:"tags"`
	Images        string `csv:"images"`
	CreatedAt     string `csv:"created_at"`
	UpdatedAt     string `csv:"updated_at"`
}

func newProductRow(p *domain.Product) *productRow {
	row := &productRow{
		ID:        p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		Active:    p.Active,
		Tags:      strings.Join(p.Tags, "|"),
		Images:    strings.Join(p.Images, "|"),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Description != nil {
		row.Description = *p.Description
	}
	if p.Price != nil {
		row.Price = cast.ToString(*p.Price)
	}
	if p.OriginalPrice != nil {
		row.OriginalPrice = cast.ToString(*p.OriginalPrice)
	}
	return row
}

// exportProducts writes every product matching the admin filters as CSV.
func exportProducts(c echo.Context) error {
	raw, err := webserver.BindMap(c)
	if err != nil {
		return err
	}
	filters, err := catalog.ParseFilters(raw)
	if err != nil {
		return err
	}
	products, err := webserver.GetAppContext(c).Catalog().Export(c.Request().Context(), filters)
	if err != nil {
		return err
	}
	rows := make([]*productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, newProductRow(p))
	}
	data, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return apperr.Wrap(err, "Failed to export products")
	}
	filename := fmt.Sprintf("products-%s.csv", time.Now().Format("20060102150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment;filename="+filename)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
