package services

import (
	"testing"

	"rental-pricing-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformerWidth(t *testing.T) {
	assert.Equal(t, 6, testTransformer().Width())

	noDrop := testTransformer()
	noDrop.Categorical[0].DropFirst = false
	assert.Equal(t, 7, noDrop.Width())
}

func TestTransformerTransform(t *testing.T) {
	rows, err := testTransformer().Transform([]models.FeatureRecord{testRecord()})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// mileage, engine_power, fuel=petrol, fuel=hybrid_petrol, has_gps, winter_tires
	assert.Equal(t, []float64{1, 1, 1, 0, 1, 0}, rows[0])
}

func TestTransformerUnknownCategoryEncodesZeros(t *testing.T) {
	rec := testRecord()
	rec.Fuel = "electro"
	rows, err := testTransformer().Transform([]models.FeatureRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, rows[0][2:4])
}

func TestTransformerZeroScale(t *testing.T) {
	tr := &Transformer{Numeric: []NumericColumn{{Name: "mileage", Mean: 10, Scale: 0}}}
	rows, err := tr.Transform([]models.FeatureRecord{{Mileage: 15}})
	require.NoError(t, err)
	assert.Equal(t, 5.0, rows[0][0])
}

func TestParseTransformer(t *testing.T) {
	artifact := `{
		"numeric": [{"name": "mileage", "mean": 140000, "scale": 60000}],
		"categorical": [{"name": "car_type", "categories": ["estate", "sedan", "suv"]}],
		"passthrough": ["automatic_car"]
	}`
	tr, err := ParseTransformer([]byte(artifact))
	require.NoError(t, err)
	assert.Equal(t, 5, tr.Width())

	tests := []struct {
		name     string
		artifact string
	}{
		{"not json", `{`},
		{"unknown column", `{"numeric": [{"name": "price", "mean": 1, "scale": 1}]}`},
		{"duplicate column", `{"numeric": [{"name": "mileage"}], "passthrough": ["mileage"]}`},
		{"empty", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTransformer([]byte(tt.artifact))
			assert.Error(t, err)
		})
	}
}

func TestTransformerRejectsTextAsNumber(t *testing.T) {
	tr := &Transformer{Passthrough: []string{"fuel"}}
	_, err := tr.Transform([]models.FeatureRecord{testRecord()})
	assert.Error(t, err)
}
