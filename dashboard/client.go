package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rental-pricing-api/models"
	"rental-pricing-api/services"
)

const serviceName = "dashboard"

// PricingClient calls the prediction service.
type PricingClient struct {
	baseURL    string
	httpClient *http.Client
	auth       *services.AuthService
}

// NewPricingClient signs requests with a service token when auth is
// enabled.
func NewPricingClient(baseURL string, timeout time.Duration, auth *services.AuthService) *PricingClient {
	return &PricingClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		auth:       auth,
	}
}

type predictRequest struct {
	Input []models.FeatureRecord `json:"input"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
	Error       string    `json:"error"`
}

// Predict prices a single car.
func (c *PricingClient) Predict(ctx context.Context, rec models.FeatureRecord) (float64, error) {
	body, err := json.Marshal(predictRequest{Input: []models.FeatureRecord{rec}})
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth.Enabled() {
		token, err := c.auth.GenerateToken(serviceName, services.ScopePredict)
		if err != nil {
			return 0, fmt.Errorf("failed to sign request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("prediction service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("failed to read prediction response: %w", err)
	}
	var out predictResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("prediction service returned %d with an unreadable body", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error == "" {
			out.Error = http.StatusText(resp.StatusCode)
		}
		return 0, fmt.Errorf("prediction service returned %d: %s", resp.StatusCode, out.Error)
	}
	if len(out.Predictions) == 0 {
		return 0, fmt.Errorf("prediction service returned no prediction")
	}
	return out.Predictions[0], nil
}
