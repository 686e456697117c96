package services

import (
	"encoding/json"
	"fmt"
	"strconv"

	"rental-pricing-api/models"
)

// Transformer turns feature records into the numeric matrix the regression
// model was trained on. It is the Go reading of a fitted column
// transformer: standardised numeric columns, one-hot categorical columns
// and 0/1 passthrough columns, concatenated in that order.
type Transformer struct {
	Numeric     []NumericColumn     `json:"numeric"`
	Categorical []CategoricalColumn `json:"categorical"`
	Passthrough []string            `json:"passthrough"`
}

type NumericColumn struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

type CategoricalColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	// DropFirst mirrors OneHotEncoder(drop="first"): the first category
	// encodes as all zeros and gets no output column.
	DropFirst bool `json:"drop_first"`
}

func (c CategoricalColumn) width() int {
	if c.DropFirst && len(c.Categories) > 0 {
		return len(c.Categories) - 1
	}
	return len(c.Categories)
}

// ParseTransformer decodes and validates a transformer artifact.
func ParseTransformer(data []byte) (*Transformer, error) {
	var t Transformer
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid transformer artifact: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that every referenced column belongs to the feature
// schema and appears once.
func (t *Transformer) Validate() error {
	seen := make(map[string]bool)
	check := func(name string) error {
		if _, ok := (models.FeatureRecord{}).Value(name); !ok {
			return fmt.Errorf("transformer references unknown column %q", name)
		}
		if seen[name] {
			return fmt.Errorf("transformer references column %q twice", name)
		}
		seen[name] = true
		return nil
	}
	for _, c := range t.Numeric {
		if err := check(c.Name); err != nil {
			return err
		}
	}
	for _, c := range t.Categorical {
		if err := check(c.Name); err != nil {
			return err
		}
	}
	for _, name := range t.Passthrough {
		if err := check(name); err != nil {
			return err
		}
	}
	if t.Width() == 0 {
		return fmt.Errorf("transformer produces no output columns")
	}
	return nil
}

// Width is the number of output columns.
func (t *Transformer) Width() int {
	w := len(t.Numeric) + len(t.Passthrough)
	for _, c := range t.Categorical {
		w += c.width()
	}
	return w
}

// Transform encodes records row by row. Unknown categories encode as all
// zeros.
func (t *Transformer) Transform(records []models.FeatureRecord) ([][]float64, error) {
	out := make([][]float64, len(records))
	width := t.Width()
	for i, rec := range records {
		row := make([]float64, 0, width)
		for _, c := range t.Numeric {
			v, err := numericValue(rec, c.Name)
			if err != nil {
				return nil, err
			}
			scale := c.Scale
			if scale == 0 {
				scale = 1
			}
			row = append(row, (v-c.Mean)/scale)
		}
		for _, c := range t.Categorical {
			v, _ := rec.Value(c.Name)
			row = appendOneHot(row, c, categoryString(v))
		}
		for _, name := range t.Passthrough {
			v, err := numericValue(rec, name)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		out[i] = row
	}
	return out, nil
}

func appendOneHot(row []float64, c CategoricalColumn, value string) []float64 {
	start := 0
	if c.DropFirst && len(c.Categories) > 0 {
		start = 1
	}
	for _, cat := range c.Categories[start:] {
		if cat == value {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}
	return row
}

func numericValue(rec models.FeatureRecord, name string) (float64, error) {
	v, ok := rec.Value(name)
	if !ok {
		return 0, fmt.Errorf("unknown column %q", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("column %q is not numeric", name)
}

func categoryString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		if s {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
