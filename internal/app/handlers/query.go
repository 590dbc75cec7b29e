package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/service"
)

type itemQuery struct {
	filter models.ItemFilter
	page   int
	limit  int
}

// parseItemQuery разбирает category_slug, min_price, max_price, with_discount,
// in_stock, sort, page и limit; ошибки оборачивают service.ErrValidation
func parseItemQuery(r *http.Request) (itemQuery, error) {
	values := r.URL.Query()
	q := itemQuery{page: 1}

	q.filter.CategorySlug = values.Get("category_slug")

	var err error
	if q.filter.MinPrice, err = decimalParam(values.Get("min_price"), "min_price"); err != nil {
		return q, err
	}
	if q.filter.MaxPrice, err = decimalParam(values.Get("max_price"), "max_price"); err != nil {
		return q, err
	}
	if q.filter.WithDiscount, err = boolParam(values.Get("with_discount"), "with_discount"); err != nil {
		return q, err
	}
	if q.filter.InStock, err = boolParam(values.Get("in_stock"), "in_stock"); err != nil {
		return q, err
	}

	sort, ok := models.ParseItemSort(values.Get("sort"))
	if !ok {
		return q, fmt.Errorf("invalid sort %q: %w", values.Get("sort"), service.ErrValidation)
	}
	q.filter.Sort = sort

	if v := values.Get("page"); v != "" {
		if q.page, err = strconv.Atoi(v); err != nil {
			return q, fmt.Errorf("invalid page: %w", service.ErrValidation)
		}
	}
	if v := values.Get("limit"); v != "" {
		if q.limit, err = strconv.Atoi(v); err != nil {
			return q, fmt.Errorf("invalid limit: %w", service.ErrValidation)
		}
	}
	return q, nil
}

func decimalParam(v, name string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, service.ErrValidation)
	}
	return &d, nil
}

func boolParam(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, service.ErrValidation)
	}
	return b, nil
}

// splitList: "red, blue,," -> [red blue]
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
