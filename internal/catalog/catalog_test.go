package catalog

import (
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"nutristat-api/internal/nutrition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(filepath.Join("testdata", "food-data.csv"))
	require.NoError(t, err)
	return c
}

func TestLoad(t *testing.T) {
	c := loadTestCatalog(t)
	assert.Equal(t, 12, c.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)
}

func TestMatches(t *testing.T) {
	c := loadTestCatalog(t)

	tests := []struct {
		category nutrition.Category
		want     []string
	}{
		{nutrition.WellNourished, []string{"tempeh goreng", "tahu kukus", "dada ayam panggang", "telur rebus"}},
		{nutrition.Undernourished, []string{"daging sapi rendang", "kacang tanah sangrai"}},
		{nutrition.Overnourished, []string{"bayam rebus", "ketimun", "tomat"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			rows, err := c.Matches(tt.category)
			require.NoError(t, err)
			var names []string
			for _, r := range rows {
				names = append(names, c.food.values[r])
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestRecommend_SampleSize(t *testing.T) {
	c := loadTestCatalog(t)

	items, err := c.Recommend(nutrition.WellNourished, 5)
	require.NoError(t, err)
	assert.Len(t, items, 4)

	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.Name], "duplicate item %s", it.Name)
		seen[it.Name] = true
		assert.Greater(t, float64(it.CaloricValue), 50.0)
		assert.Less(t, float64(it.CaloricValue), 200.0)
		assert.Greater(t, float64(it.Protein), 5.0)
	}

	items, err = c.Recommend(nutrition.WellNourished, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRecommend_Thresholds(t *testing.T) {
	c := loadTestCatalog(t)

	items, err := c.Recommend(nutrition.Undernourished, 10)
	require.NoError(t, err)
	for _, it := range items {
		assert.GreaterOrEqual(t, float64(it.CaloricValue), 200.0)
		assert.Greater(t, float64(it.Protein), 10.0)
	}

	items, err = c.Recommend(nutrition.Overnourished, 10)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	for _, it := range items {
		assert.Less(t, float64(it.CaloricValue), 50.0)
	}
}

func TestRecommend_BoundaryValues(t *testing.T) {
	data := "food,Caloric Value,Protein,Fat\n" +
		"edge50,50,20,1\n" +
		"edge200,200,10,1\n" +
		"edge200b,200,10.5,1\n" +
		"edge49,49.9,1,5\n"
	c, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	items, err := c.Recommend(nutrition.WellNourished, 5)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = c.Recommend(nutrition.Undernourished, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "edge200b", items[0].Name)

	items, err = c.Recommend(nutrition.Overnourished, 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRecommend_EmptyCases(t *testing.T) {
	c := loadTestCatalog(t)

	items, err := c.Recommend(nutrition.WellNourished, 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, err = c.Recommend(nutrition.Category("InvalidX"), 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRecommend_MalformedColumn(t *testing.T) {
	data := "food,Caloric Value,Protein,Fat\n" +
		"a,100,8,abc\n" +
		"b,20,1,2\n"
	c, err := Parse(strings.NewReader(data))
	require.NoError(t, err, "malformed cells must not fail the load")

	_, err = c.Recommend(nutrition.Overnourished, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColumnFat)

	items, err := c.Recommend(nutrition.WellNourished, 5)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRecommend_MissingColumn(t *testing.T) {
	c, err := Parse(strings.NewReader("food,Caloric Value,Protein\nx,20,1\n"))
	require.NoError(t, err)

	_, err = c.Recommend(nutrition.Overnourished, 5)
	require.Error(t, err)

	_, err = c.Recommend(nutrition.Undernourished, 5)
	require.NoError(t, err)
}

func TestRecommend_EmptyProteinEncodesAsNull(t *testing.T) {
	c, err := Parse(strings.NewReader("food,Caloric Value,Fat,Protein\nselada,15,0.2,\n"))
	require.NoError(t, err)

	items, err := c.Recommend(nutrition.Overnourished, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, math.IsNaN(float64(items[0].Protein)))

	raw, err := json.Marshal(items)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"food":"selada","Caloric Value":15,"Protein":null}]`, string(raw))

	var decoded []FoodItem
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.True(t, math.IsNaN(float64(decoded[0].Protein)))
	assert.Equal(t, Nutrient(15), decoded[0].CaloricValue)
}
