// Package nutrition defines the domain vocabulary shared by the model adapter,
// the food catalog and the history store: categories, sex literals and the
// model feature vector.
package nutrition

import "fmt"

// Category is a nutritional status class. Values are the wire literals.
type Category string

const (
	WellNourished  Category = "Gizi Baik"
	Undernourished Category = "Gizi Kurang"
	Overnourished  Category = "Gizi Lebih"
)

// Categories lists the classes in model output order.
var Categories = []Category{WellNourished, Undernourished, Overnourished}

var descriptions = map[Category]string{
	WellNourished:  "Anak memiliki berat badan yang sesuai dengan tinggi badan dan usianya. Untuk menjaga status gizi yang baik, kami merekomendasikan makanan dengan kandungan nutrisi seimbang yang mendukung pertumbuhan optimal serta menjaga energi dan kesehatan tubuh.",
	Undernourished: "Anak memiliki berat badan yang kurang dibandingkan tinggi badan dan usianya. Untuk membantu mencapai status gizi yang baik, kami merekomendasikan makanan dengan kandungan kalori dan protein tinggi untuk mendukung pertumbuhan berat badan dan energi tubuh.",
	Overnourished:  "Anak memiliki berat badan yang lebih dibandingkan tinggi badan dan usianya. Untuk membantu mencapai status gizi yang baik, kami merekomendasikan makanan rendah kalori, tinggi serat, dan rendah lemak untuk mengontrol berat badan tanpa mengorbankan kebutuhan nutrisi tubuh.",
}

// ParseCategory accepts only the exact wire literals.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := descriptions[c]
	return c, ok
}

// CategoryAt maps a model output index to its category.
func CategoryAt(i int) (Category, error) {
	if i < 0 || i >= len(Categories) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", i, len(Categories))
	}
	return Categories[i], nil
}

func (c Category) Description() string {
	return descriptions[c]
}

func (c Category) String() string {
	return string(c)
}

// Sex is validated and stored but never fed to the model; the trained
// network only takes height, weight and age.
type Sex string

const (
	Male   Sex = "Laki-laki"
	Female Sex = "Perempuan"
)

func ParseSex(s string) (Sex, bool) {
	switch Sex(s) {
	case Male, Female:
		return Sex(s), true
	}
	return "", false
}

// Features is the model input: height in meters, weight in kg, age.
type Features struct {
	HeightM  float64
	WeightKg float64
	Age      float64
}

func NewFeatures(heightCm, weightKg, age float64) Features {
	return Features{HeightM: heightCm / 100, WeightKg: weightKg, Age: age}
}

// Tensor returns the features shaped as one batch of one time step.
func (f Features) Tensor() [][][]float64 {
	return [][][]float64{{{f.HeightM, f.WeightKg, f.Age}}}
}
