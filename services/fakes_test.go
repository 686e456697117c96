package services

import (
	"context"
	"errors"
	"sync/atomic"

	"rental-pricing-api/models"
)

type fakeFetcher struct {
	bodies map[string][]byte
	calls  atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found: " + url)
	}
	return body, nil
}

// linearModel prices a row as bias plus the sum of weight*feature.
type linearModel struct {
	bias    float64
	weights []float64
}

func (m linearModel) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(m.weights) {
			return nil, errors.New("width mismatch")
		}
		out[i] = m.bias
		for j, v := range row {
			out[i] += m.weights[j] * v
		}
	}
	return out, nil
}

type fakeLoader struct {
	transformer     *Transformer
	model           Regressor
	err             error
	transformerLoad atomic.Int32
	modelLoad       atomic.Int32
}

func (l *fakeLoader) LoadTransformer(context.Context) (*Transformer, error) {
	l.transformerLoad.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.transformer, nil
}

func (l *fakeLoader) LoadModel(context.Context) (Regressor, error) {
	l.modelLoad.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

func testTransformer() *Transformer {
	return &Transformer{
		Numeric: []NumericColumn{
			{Name: "mileage", Mean: 100000, Scale: 50000},
			{Name: "engine_power", Mean: 100, Scale: 50},
		},
		Categorical: []CategoricalColumn{
			{Name: "fuel", Categories: []string{"diesel", "petrol", "hybrid_petrol"}, DropFirst: true},
		},
		Passthrough: []string{"has_gps", "winter_tires"},
	}
}

func testRecord() models.FeatureRecord {
	return models.FeatureRecord{
		ModelKey:    "Citroën",
		Mileage:     150000,
		EnginePower: 150,
		Fuel:        "petrol",
		PaintColor:  "black",
		CarType:     "estate",
		HasGPS:      true,
	}
}
