package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"rental-pricing-api/config"
	"rental-pricing-api/dataset"

	"github.com/dmitryikh/leaves"
	"github.com/rs/zerolog/log"
)

const (
	transformerFile   = "transformer.json"
	xgboostModelFile  = "model.xgb"
	lightgbmModelFile = "model.txt"
)

// Regressor scores transformed rows, one price per row.
type Regressor interface {
	Predict(rows [][]float64) ([]float64, error)
}

// ArtifactLoader provides the preprocessing transformer and the
// regression model.
type ArtifactLoader interface {
	LoadTransformer(ctx context.Context) (*Transformer, error)
	LoadModel(ctx context.Context) (Regressor, error)
}

// Registry resolves runs:/<run_id>/<artifact_path> URIs against an
// artifact root laid out as <root>/<run_id>/artifacts/<artifact_path>/.
type Registry struct {
	root           string
	fetcher        dataset.Fetcher
	transformerURI string
	modelURI       string
	modelFormat    string
}

func NewRegistry(cfg config.RegistryConfig, fetcher dataset.Fetcher) *Registry {
	return &Registry{
		root:           cfg.ArtifactRoot,
		fetcher:        fetcher,
		transformerURI: cfg.TransformerURI,
		modelURI:       cfg.ModelURI,
		modelFormat:    cfg.ModelFormat,
	}
}

func (r *Registry) ModelURI() string {
	return r.modelURI
}

// ResolveArtifactURL maps a runs:/ URI and a file name to a fetchable URL.
func ResolveArtifactURL(root, uri, file string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "runs:/")
	if !ok {
		return "", fmt.Errorf("unsupported artifact uri %q", uri)
	}
	runID, artifactPath, ok := strings.Cut(strings.TrimLeft(rest, "/"), "/")
	artifactPath = strings.Trim(artifactPath, "/")
	if !ok || runID == "" || artifactPath == "" {
		return "", fmt.Errorf("artifact uri %q must look like runs:/<run_id>/<path>", uri)
	}
	return fmt.Sprintf("%s/%s/artifacts/%s/%s", strings.TrimRight(root, "/"), runID, artifactPath, file), nil
}

func (r *Registry) fetch(ctx context.Context, uri, file string) ([]byte, error) {
	url, err := ResolveArtifactURL(r.root, uri, file)
	if err != nil {
		return nil, ModelFailure("invalid artifact reference", err)
	}
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, Upstream("failed to fetch artifact "+uri, err)
	}
	return body, nil
}

func (r *Registry) LoadTransformer(ctx context.Context) (*Transformer, error) {
	start := time.Now()
	defer func() {
		artifactLoadDuration.WithLabelValues("transformer").Observe(time.Since(start).Seconds())
	}()

	body, err := r.fetch(ctx, r.transformerURI, transformerFile)
	if err != nil {
		return nil, err
	}
	t, err := ParseTransformer(body)
	if err != nil {
		return nil, ModelFailure("failed to load transformer "+r.transformerURI, err)
	}
	log.Debug().Str("uri", r.transformerURI).Int("width", t.Width()).Msg("transformer loaded")
	return t, nil
}

func (r *Registry) LoadModel(ctx context.Context) (Regressor, error) {
	start := time.Now()
	defer func() {
		artifactLoadDuration.WithLabelValues("model").Observe(time.Since(start).Seconds())
	}()

	file := xgboostModelFile
	if r.modelFormat == "lightgbm" {
		file = lightgbmModelFile
	}
	body, err := r.fetch(ctx, r.modelURI, file)
	if err != nil {
		return nil, err
	}

	reader := bufio.NewReader(bytes.NewReader(body))
	var ensemble *leaves.Ensemble
	if r.modelFormat == "lightgbm" {
		ensemble, err = leaves.LGEnsembleFromReader(reader, false)
	} else {
		ensemble, err = leaves.XGEnsembleFromReader(reader, false)
	}
	if err != nil {
		return nil, ModelFailure("failed to load model "+r.modelURI, err)
	}
	log.Debug().
		Str("uri", r.modelURI).
		Str("format", r.modelFormat).
		Int("features", ensemble.NFeatures()).
		Msg("model loaded")
	return &ensembleRegressor{ensemble: ensemble}, nil
}

type ensembleRegressor struct {
	ensemble *leaves.Ensemble
}

func (m *ensembleRegressor) Predict(rows [][]float64) ([]float64, error) {
	want := m.ensemble.NFeatures()
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != want {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(row), want)
		}
		out[i] = m.ensemble.PredictSingle(row, 0)
	}
	return out, nil
}

// CachingLoader keeps loaded artifacts for a fixed time instead of
// reloading them from the registry on every request.
type CachingLoader struct {
	next ArtifactLoader
	ttl  time.Duration
	now  func() time.Time

	mu                 sync.Mutex
	transformer        *Transformer
	transformerExpires time.Time
	model              Regressor
	modelExpires       time.Time
}

func NewCachingLoader(next ArtifactLoader, ttl time.Duration) *CachingLoader {
	return &CachingLoader{next: next, ttl: ttl, now: time.Now}
}

func (c *CachingLoader) LoadTransformer(ctx context.Context) (*Transformer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transformer != nil && c.now().Before(c.transformerExpires) {
		return c.transformer, nil
	}
	t, err := c.next.LoadTransformer(ctx)
	if err != nil {
		return nil, err
	}
	c.transformer, c.transformerExpires = t, c.now().Add(c.ttl)
	return t, nil
}

func (c *CachingLoader) LoadModel(ctx context.Context) (Regressor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil && c.now().Before(c.modelExpires) {
		return c.model, nil
	}
	m, err := c.next.LoadModel(ctx)
	if err != nil {
		return nil, err
	}
	c.model, c.modelExpires = m, c.now().Add(c.ttl)
	return m, nil
}
