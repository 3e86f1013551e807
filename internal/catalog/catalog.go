// Package catalog loads the nutrition dataset into memory and filters it into
// food recommendations per nutrition category.
//
// The table is read once at startup and never mutated, so a *Catalog is safe
// for concurrent use without locking. Loading performs no schema validation:
// a missing column or a non-numeric cell is remembered and reported by
// Recommend for the categories whose filter reads that column.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Dataset column headers.
const (
	ColumnFood    = "food"
	ColumnCaloric = "Caloric Value"
	ColumnProtein = "Protein"
	ColumnFat     = "Fat"
)

// FoodItem is one recommended row. JSON keys follow the dataset headers.
type FoodItem struct {
	Name         string   `json:"food" yaml:"food"`
	CaloricValue Nutrient `json:"Caloric Value" yaml:"Caloric Value"`
	Protein      Nutrient `json:"Protein" yaml:"Protein"`
}

// Nutrient is a numeric dataset value. Empty cells are NaN in memory and
// null on the wire.
type Nutrient float64

func (n Nutrient) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (n *Nutrient) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Nutrient(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Nutrient(f)
	return nil
}

type numericColumn struct {
	values []float64
	err    error
}

type textColumn struct {
	values []string
	err    error
}

type Catalog struct {
	rows    int
	food    textColumn
	caloric numericColumn
	protein numericColumn
	fat     numericColumn
}

// Load reads a CSV dataset with a header row from path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open food dataset %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read food dataset %s: %w", path, err)
	}
	return c, nil
}

// Parse reads a CSV dataset from r. Only an unreadable stream or a missing
// header row fail here.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset has no header row")
		}
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	return &Catalog{
		rows:    len(records),
		food:    readText(records, index, ColumnFood),
		caloric: readNumeric(records, index, ColumnCaloric),
		protein: readNumeric(records, index, ColumnProtein),
		fat:     readNumeric(records, index, ColumnFat),
	}, nil
}

func cell(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func readText(records [][]string, index map[string]int, name string) textColumn {
	i, ok := index[name]
	if !ok {
		return textColumn{err: fmt.Errorf("column %q not found", name)}
	}
	values := make([]string, len(records))
	for r, record := range records {
		values[r] = cell(record, i)
	}
	return textColumn{values: values}
}

// readNumeric treats empty cells as NaN so they never satisfy a filter.
func readNumeric(records [][]string, index map[string]int, name string) numericColumn {
	i, ok := index[name]
	if !ok {
		return numericColumn{err: fmt.Errorf("column %q not found", name)}
	}
	values := make([]float64, len(records))
	for r, record := range records {
		raw := cell(record, i)
		if raw == "" {
			values[r] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return numericColumn{err: fmt.Errorf("column %q row %d: non-numeric value %q", name, r+1, raw)}
		}
		values[r] = v
	}
	return numericColumn{values: values}
}

// Len returns the number of data rows.
func (c *Catalog) Len() int {
	return c.rows
}
