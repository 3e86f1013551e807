package catalog

import (
	"math/rand/v2"

	"nutristat-api/internal/nutrition"
)

// filter is the hard-coded selection policy for one category.
type filter struct {
	columns []*numericColumn
	match   func(c *Catalog, row int) bool
}

func (c *Catalog) filterFor(category nutrition.Category) (filter, bool) {
	switch category {
	case nutrition.WellNourished:
		return filter{
			columns: []*numericColumn{&c.caloric, &c.protein},
			match: func(c *Catalog, i int) bool {
				return c.caloric.values[i] > 50 && c.caloric.values[i] < 200 && c.protein.values[i] > 5
			},
		}, true
	case nutrition.Undernourished:
		return filter{
			columns: []*numericColumn{&c.caloric, &c.protein},
			match: func(c *Catalog, i int) bool {
				return c.caloric.values[i] >= 200 && c.protein.values[i] > 10
			},
		}, true
	case nutrition.Overnourished:
		return filter{
			columns: []*numericColumn{&c.caloric, &c.fat},
			match: func(c *Catalog, i int) bool {
				return c.caloric.values[i] < 50 && c.fat.values[i] < 5
			},
		}, true
	}
	return filter{}, false
}

// Matches returns the row indices selected by the category filter, in
// dataset order.
func (c *Catalog) Matches(category nutrition.Category) ([]int, error) {
	f, ok := c.filterFor(category)
	if !ok {
		return nil, nil
	}
	for _, col := range f.columns {
		if col.err != nil {
			return nil, col.err
		}
	}
	var rows []int
	for i := 0; i < c.rows; i++ {
		if f.match(c, i) {
			rows = append(rows, i)
		}
	}
	return rows, nil
}

// Recommend samples min(n, matches) rows without replacement. An unknown
// category, no matching rows or n <= 0 all yield an empty slice. Order is
// random and not reproducible.
func (c *Catalog) Recommend(category nutrition.Category, n int) ([]FoodItem, error) {
	rows, err := c.Matches(category)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || n <= 0 {
		return []FoodItem{}, nil
	}
	if c.food.err != nil {
		return nil, c.food.err
	}
	if c.protein.err != nil {
		return nil, c.protein.err
	}

	k := min(n, len(rows))
	items := make([]FoodItem, 0, k)
	for _, p := range rand.Perm(len(rows))[:k] {
		row := rows[p]
		items = append(items, FoodItem{
			Name:         c.food.values[row],
			CaloricValue: Nutrient(c.caloric.values[row]),
			Protein:      Nutrient(c.protein.values[row]),
		})
	}
	return items, nil
}
