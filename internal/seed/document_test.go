package seed

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"
	"time"

	"coffeeshop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalogue = `
categories:
  - slug: Coffee
    name: Coffee
    description: Espresso based drinks
  - slug: pastry
    name: Pastries
menu_items:
  - name: Latte
    price: "7.49"
    category: coffee
    stock: 20
    featured: true
  - name: Seasonal Tea
    price: "4.00"
    category: tea
    unavailable: true
coupons:
  - code: welcome10
    name: Welcome
    discount_type: percentage
    discount_value: "10"
    minimum_amount: "5.00"
    maximum_discount: "3.00"
    usage_limit: 100
    valid_from: 2026-01-01T00:00:00Z
    valid_to: 2026-12-31T23:59:59Z
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleCatalogue))
	require.NoError(t, err)

	assert.Len(t, doc.Categories, 2)
	assert.Len(t, doc.MenuItems, 2)
	require.Len(t, doc.Coupons, 1)
	assert.Equal(t, time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), doc.Coupons[0].ValidTo)
}

func TestParse_Gzipped(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sampleCatalogue))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	doc, err := Parse(&buf)

	require.NoError(t, err)
	assert.Len(t, doc.MenuItems, 2)
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, doc.MenuItems)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("menu_items:\n  - name: Latte\n    colour: brown\n"))

	assert.Error(t, err)
}

func TestDocument_Conversion(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleCatalogue))
	require.NoError(t, err)

	categories, err := doc.categories()
	require.NoError(t, err)
	assert.Equal(t, "coffee", categories[0].Slug)
	assert.True(t, categories[0].IsActive)

	items, err := doc.menuItems()
	require.NoError(t, err)
	assert.True(t, items[0].Price.Equal(dec("7.49")))
	assert.True(t, items[0].IsAvailable)
	assert.True(t, items[0].IsFeatured)
	assert.False(t, items[1].IsAvailable)

	coupons, err := doc.coupons()
	require.NoError(t, err)
	c := coupons[0]
	assert.Equal(t, "WELCOME10", c.Code)
	assert.Equal(t, model.DiscountPercentage, c.DiscountType)
	require.NotNil(t, c.MaximumDiscount)
	assert.True(t, c.MaximumDiscount.Equal(dec("3")))
	require.NotNil(t, c.UsageLimit)
	assert.Equal(t, 100, *c.UsageLimit)
	assert.True(t, c.IsActive)
}

func TestDocument_Validation(t *testing.T) {
	window := "    valid_from: 2026-01-01T00:00:00Z\n    valid_to: 2026-02-01T00:00:00Z\n"

	tests := []struct {
		name string
		yaml string
	}{
		{name: "duplicate category", yaml: "categories:\n  - {slug: tea, name: Tea}\n  - {slug: TEA, name: Tea}\n"},
		{name: "category without name", yaml: "categories:\n  - {slug: tea}\n"},
		{name: "item without name", yaml: "menu_items:\n  - {price: \"1.00\"}\n"},
		{name: "bad price", yaml: "menu_items:\n  - {name: Latte, price: cheap}\n"},
		{name: "negative price", yaml: "menu_items:\n  - {name: Latte, price: \"-1\"}\n"},
		{name: "negative stock", yaml: "menu_items:\n  - {name: Latte, price: \"1\", stock: -2}\n"},
		{name: "unknown discount type", yaml: "coupons:\n  - code: X\n    discount_type: bogo\n" + window},
		{name: "percentage above 100", yaml: "coupons:\n  - code: X\n    discount_type: percentage\n    discount_value: \"150\"\n" + window},
		{name: "inverted window", yaml: "coupons:\n  - code: X\n    discount_type: fixed\n    valid_from: 2026-02-01T00:00:00Z\n    valid_to: 2026-01-01T00:00:00Z\n"},
		{name: "missing window", yaml: "coupons:\n  - code: X\n    discount_type: fixed\n"},
		{name: "blank code", yaml: "coupons:\n  - code: \" \"\n    discount_type: fixed\n" + window},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.yaml))
			require.NoError(t, err)

			_, errC := doc.categories()
			_, errM := doc.menuItems()
			_, errP := doc.coupons()

			assert.True(t, errC != nil || errM != nil || errP != nil, "expected a validation error")
		})
	}
}

func TestDocument_Validate(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleCatalogue))
	require.NoError(t, err)

	result, err := doc.Validate()

	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 2, MenuItems: 2, Coupons: 1}, result)

	doc.MenuItems[0].Price = "-1"
	_, err = doc.Validate()
	assert.ErrorIs(t, err, model.ErrInvalidPrice)
}
