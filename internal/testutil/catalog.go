package testutil

import (
	"context"
	"time"

	"github.com/moodlet/moodlet-backend/internal/model"
)

// Catalog builds furniture fixtures with strictly increasing creation times,
// so insertion order is also recency order.
type Catalog struct {
	next     time.Time
	products []*model.FurnitureProduct
}

// NewCatalog starts an empty fixture set.
func NewCatalog() *Catalog {
	return &Catalog{next: time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)}
}

// Add appends a scored product of themeID in category.
func (c *Catalog) Add(name string, themeID int64, category string, score float64) *Catalog {
	return c.add(name, &themeID, category, &score)
}

// AddUnscored appends a product without a score.
func (c *Catalog) AddUnscored(name string, themeID int64, category string) *Catalog {
	return c.add(name, &themeID, category, nil)
}

// WithPrices attaches mall offers to the most recently added product.
func (c *Catalog) WithPrices(prices ...model.FurniturePrice) *Catalog {
	if len(c.products) == 0 {
		return c
	}
	last := c.products[len(c.products)-1]
	last.Prices = append(last.Prices, prices...)
	return c
}

// Products returns the products built so far.
func (c *Catalog) Products() []*model.FurnitureProduct {
	return c.products
}

func (c *Catalog) add(name string, themeID *int64, category string, score *float64) *Catalog {
	low := int64(99000 + 1000*len(c.products))
	high := low + 50000
	c.products = append(c.products, &model.FurnitureProduct{
		Name:         name,
		Category:     category,
		ThemeID:      themeID,
		Score:        score,
		LowestPrice:  &low,
		HighestPrice: &high,
		ImageURL:     "https://img.example.com/" + name + ".jpg",
		DetailURL:    "https://shop.example.com/" + name,
		CreatedAt:    c.next,
	})
	c.next = c.next.Add(time.Minute)
	return c
}

// SeedFurniture stores products and fails the test on error. IDs are written
// back into the products.
func (db *TestDB) SeedFurniture(products ...*model.FurnitureProduct) {
	db.t.Helper()
	for _, p := range products {
		if err := db.Storage.SaveFurniture(context.Background(), p); err != nil {
			db.t.Fatalf("failed to seed furniture %q: %v", p.Name, err)
		}
	}
}
