package services

import (
	"context"
	"fmt"

	"rental-pricing-api/models"
)

// Predictor runs the transform-then-predict pipeline. Artifacts are
// requested from the loader on every call; wrap the loader in a
// CachingLoader to reuse them.
type Predictor struct {
	loader ArtifactLoader
}

func NewPredictor(loader ArtifactLoader) *Predictor {
	return &Predictor{loader: loader}
}

// Predict returns one price per record, in input order.
func (p *Predictor) Predict(ctx context.Context, records []models.FeatureRecord) ([]float64, error) {
	if len(records) == 0 {
		return nil, InvalidInput("input must contain at least one record")
	}

	transformer, err := p.loader.LoadTransformer(ctx)
	if err != nil {
		return nil, err
	}
	model, err := p.loader.LoadModel(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := transformer.Transform(records)
	if err != nil {
		return nil, ModelFailure("preprocessing failed", err)
	}
	predictions, err := model.Predict(rows)
	if err != nil {
		return nil, ModelFailure("inference failed", err)
	}
	if len(predictions) != len(records) {
		return nil, ModelFailure("inference failed",
			fmt.Errorf("model returned %d predictions for %d records", len(predictions), len(records)))
	}
	return predictions, nil
}
