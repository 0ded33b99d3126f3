package catalog

import (
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/pkg/common"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

var quotedField = regexp.MustCompile(`'([^']+)'`)

// decode coerces a loosely typed payload (JSON body or query values) into out.
// Blank strings count as absent.
func decode(raw map[string]interface{}, out interface{}, message string) error {
	clean := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if v == nil {
			continue
		}
		clean[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(joinSliceHook, splitStringHook),
	})
	if err != nil {
		return apperr.Wrap(err, "failed to build decoder")
	}
	if err := dec.Decode(clean); err != nil {
		return apperr.NewValidation(message, decodeIssues(err))
	}
	return nil
}

// joinSliceHook lets a list be given where a comma separated string is expected.
func joinSliceHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if from.Kind() != reflect.Slice && from.Kind() != reflect.Array {
		return data, nil
	}
	parts := cast.ToStringSlice(data)
	return strings.Join(parts, ","), nil
}

// splitStringHook accepts "a, b" where a list is expected.
func splitStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	return common.SplitTrim(reflect.ValueOf(data).String(), ","), nil
}

func decodeIssues(err error) []apperr.FieldIssue {
	var msgs []string
	if merr, ok := err.(*mapstructure.Error); ok {
		msgs = merr.Errors
	} else {
		msgs = []string{err.Error()}
	}
	issues := make([]apperr.FieldIssue, 0, len(msgs))
	for _, msg := range msgs {
		field := ""
		if m := quotedField.FindStringSubmatch(msg); m != nil {
			field = m[1]
		}
		issues = append(issues, apperr.FieldIssue{Field: field, Message: msg})
	}
	return issues
}

// ProductInput is the create/edit document. Numeric members accept numeric strings.
type ProductInput struct {
	Name          string   `json:"name" validate:"required,startalpha"`
	Description   *string  `json:"description" validate:"omitempty,startalnum"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"required,gte=0"`
	Images        []string `json:"images"`
	Tags          []string `json:"tags"`
	Stock         *float64 `json:"stock" validate:"omitempty,gte=0"`
	Active        *bool    `json:"active"`
}

// stock returns the validated stock, defaulting to 0.
func (in *ProductInput) stock() (int, *apperr.FieldIssue) {
	if in.Stock == nil {
		return 0, nil
	}
	v := *in.Stock
	if v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, &apperr.FieldIssue{Field: "stock", Message: "stock must be an integer"}
	}
	return int(v), nil
}

func (in *ProductInput) active() bool {
	return in.Active != nil && *in.Active
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
		if d == "" {
			in.Description = nil
		}
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
}

// ListFilters are the product list parameters, accepted from query strings
// or a JSON body.
type ListFilters struct {
	Page        int      `json:"page"`
	Limit       int      `json:"limit"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        string   `json:"tags"`
	PriceSort   string   `json:"priceSort" validate:"omitempty,oneof=ASC DESC"`
	DateSort    string   `json:"dateSort" validate:"omitempty,oneof=ASC DESC"`
	MinPrice    *float64 `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice    *float64 `json:"maxPrice" validate:"omitempty,gte=0"`
	DateFrom    string   `json:"dateFrom"`
	DateTo      string   `json:"dateTo"`
	Active      *bool    `json:"active"`
}

func (f *ListFilters) normalize() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.PriceSort = strings.ToUpper(strings.TrimSpace(f.PriceSort))
	f.DateSort = strings.ToUpper(strings.TrimSpace(f.DateSort))
}
