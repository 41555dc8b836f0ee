// Package seed loads catalogue documents (categories, menu items and coupons)
// from YAML and upserts them into the store.
package seed

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"coffeeshop/internal/coupon"
	"coffeeshop/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Document is a complete catalogue seed.
type Document struct {
	Categories []CategoryEntry `yaml:"categories"`
	MenuItems  []MenuItemEntry `yaml:"menu_items"`
	Coupons    []CouponEntry   `yaml:"coupons"`
}

// CategoryEntry is one category in a seed document.
type CategoryEntry struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Inactive    bool   `yaml:"inactive"`
}

// MenuItemEntry is one menu item in a seed document. Prices are in the
// catalogue base currency.
type MenuItemEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Stock       int    `yaml:"stock"`
	Unavailable bool   `yaml:"unavailable"`
	Featured    bool   `yaml:"featured"`
}

// CouponEntry is one coupon definition in a seed document.
type CouponEntry struct {
	Code            string    `yaml:"code"`
	Name            string    `yaml:"name"`
	Description     string    `yaml:"description"`
	DiscountType    string    `yaml:"discount_type"`
	DiscountValue   string    `yaml:"discount_value"`
	MinimumAmount   string    `yaml:"minimum_amount"`
	MaximumDiscount string    `yaml:"maximum_discount"`
	UsageLimit      *int      `yaml:"usage_limit"`
	ValidFrom       time.Time `yaml:"valid_from"`
	ValidTo         time.Time `yaml:"valid_to"`
	Inactive        bool      `yaml:"inactive"`
}

var gzipMagic = []byte{0x1f, 0x8b}

// Parse decodes a YAML catalogue from r. Gzipped input is detected and
// decompressed transparently.
func Parse(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(2); err == nil && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	} else {
		r = br
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}
	return &doc, nil
}

// Validate checks every entry without touching the database and reports how
// many rows Apply would write.
func (d *Document) Validate() (Result, error) {
	categories, err := d.categories()
	if err != nil {
		return Result{}, err
	}
	items, err := d.menuItems()
	if err != nil {
		return Result{}, err
	}
	coupons, err := d.coupons()
	if err != nil {
		return Result{}, err
	}
	return Result{Categories: len(categories), MenuItems: len(items), Coupons: len(coupons)}, nil
}

func (d *Document) categories() ([]model.Category, error) {
	out := make([]model.Category, 0, len(d.Categories))
	seen := make(map[string]bool, len(d.Categories))
	for i, e := range d.Categories {
		slug := strings.ToLower(strings.TrimSpace(e.Slug))
		if slug == "" || strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("category %d: slug and name are required", i)
		}
		if seen[slug] {
			return nil, fmt.Errorf("category %d: duplicate slug %q", i, slug)
		}
		seen[slug] = true
		out = append(out, model.Category{
			Slug:        slug,
			Name:        strings.TrimSpace(e.Name),
			Description: e.Description,
			IsActive:    !e.Inactive,
		})
	}
	return out, nil
}

func (d *Document) menuItems() ([]model.MenuItem, error) {
	out := make([]model.MenuItem, 0, len(d.MenuItems))
	for i, e := range d.MenuItems {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("menu item %d: name is required", i)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil {
			return nil, fmt.Errorf("menu item %q: invalid price %q: %w", name, e.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("menu item %q: %w", name, model.ErrInvalidPrice)
		}
		if e.Stock < 0 {
			return nil, fmt.Errorf("menu item %q: %w", name, model.ErrInvalidQuantity)
		}
		out = append(out, model.MenuItem{
			Name:        name,
			Description: e.Description,
			Price:       price.Round(2),
			Category:    strings.ToLower(strings.TrimSpace(e.Category)),
			Stock:       e.Stock,
			IsAvailable: !e.Unavailable,
			IsFeatured:  e.Featured,
		})
	}
	return out, nil
}

func (d *Document) coupons() ([]model.Coupon, error) {
	out := make([]model.Coupon, 0, len(d.Coupons))
	for i, e := range d.Coupons {
		code := coupon.NormalizeCode(e.Code)
		if code == "" {
			return nil, fmt.Errorf("coupon %d: code is required", i)
		}
		c := model.Coupon{
			Code:         code,
			Name:         e.Name,
			Description:  e.Description,
			DiscountType: model.DiscountType(e.DiscountType),
			UsageLimit:   e.UsageLimit,
			ValidFrom:    e.ValidFrom.UTC(),
			ValidTo:      e.ValidTo.UTC(),
			IsActive:     !e.Inactive,
		}
		if !c.DiscountType.Valid() {
			return nil, fmt.Errorf("coupon %s: unknown discount type %q", code, e.DiscountType)
		}

		var err error
		if c.DiscountValue, err = parseAmount(e.DiscountValue); err != nil {
			return nil, fmt.Errorf("coupon %s: discount_value: %w", code, err)
		}
		if c.MinimumAmount, err = parseAmount(e.MinimumAmount); err != nil {
			return nil, fmt.Errorf("coupon %s: minimum_amount: %w", code, err)
		}
		if strings.TrimSpace(e.MaximumDiscount) != "" {
			maxDiscount, err := parseAmount(e.MaximumDiscount)
			if err != nil {
				return nil, fmt.Errorf("coupon %s: maximum_discount: %w", code, err)
			}
			c.MaximumDiscount = &maxDiscount
		}
		if c.DiscountType == model.DiscountPercentage && c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("coupon %s: percentage discount above 100", code)
		}
		if c.UsageLimit != nil && *c.UsageLimit < 0 {
			return nil, fmt.Errorf("coupon %s: usage_limit cannot be negative", code)
		}
		if c.ValidFrom.IsZero() || c.ValidTo.IsZero() || c.ValidTo.Before(c.ValidFrom) {
			return nil, fmt.Errorf("coupon %s: invalid validity window", code)
		}
		out = append(out, c)
	}
	return out, nil
}

// parseAmount parses a non-negative amount; blank means zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q cannot be negative", s)
	}
	return d, nil
}
