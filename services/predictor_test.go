package services

import (
	"context"
	"errors"
	"testing"

	"rental-pricing-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictorSingleRecord(t *testing.T) {
	loader := &fakeLoader{
		transformer: testTransformer(),
		model:       linearModel{bias: 100, weights: []float64{10, 5, 3, 2, 1, 1}},
	}
	preds, err := NewPredictor(loader).Predict(context.Background(), []models.FeatureRecord{testRecord()})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.InDelta(t, 119.0, preds[0], 1e-9)
}

func TestPredictorKeepsInputOrder(t *testing.T) {
	loader := &fakeLoader{
		transformer: &Transformer{Numeric: []NumericColumn{{Name: "mileage", Mean: 0, Scale: 1}}},
		model:       linearModel{weights: []float64{1}},
	}
	records := []models.FeatureRecord{{Mileage: 3}, {Mileage: 1}, {Mileage: 2}}
	preds, err := NewPredictor(loader).Predict(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, preds)
}

func TestPredictorLoadsArtifactsPerCall(t *testing.T) {
	loader := &fakeLoader{transformer: testTransformer(), model: linearModel{weights: make([]float64, 6)}}
	p := NewPredictor(loader)
	for i := 0; i < 3; i++ {
		_, err := p.Predict(context.Background(), []models.FeatureRecord{testRecord()})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), loader.transformerLoad.Load())
	assert.Equal(t, int32(3), loader.modelLoad.Load())
}

func TestPredictorErrors(t *testing.T) {
	_, err := NewPredictor(&fakeLoader{}).Predict(context.Background(), nil)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	down := &fakeLoader{err: Upstream("registry down", errors.New("timeout"))}
	_, err = NewPredictor(down).Predict(context.Background(), []models.FeatureRecord{testRecord()})
	assert.Equal(t, KindUpstream, KindOf(err))

	mismatch := &fakeLoader{transformer: testTransformer(), model: linearModel{weights: []float64{1}}}
	_, err = NewPredictor(mismatch).Predict(context.Background(), []models.FeatureRecord{testRecord()})
	assert.Equal(t, KindModel, KindOf(err))
}
