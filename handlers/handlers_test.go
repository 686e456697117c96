package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"rental-pricing-api/config"
	"rental-pricing-api/dataset"
	"rental-pricing-api/models"
	"rental-pricing-api/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSnapshots struct {
	frame *dataset.Frame
	err   error
}

func (f *fakeSnapshots) Get(context.Context, dataset.Spec) (*dataset.Frame, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.frame, nil
}

// mileagePredictor prices a car at a thousandth of its mileage.
type mileagePredictor struct {
	err   error
	calls int
}

func (p *mileagePredictor) Predict(_ context.Context, records []models.FeatureRecord) ([]float64, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Mileage / 1000
	}
	return out, nil
}

func pricingFrame(rows int) *dataset.Frame {
	header := []string{"model_key", "mileage", "fuel", "has_gps", "rental_price_per_day"}
	keys := []string{"Citroën", "Peugeot", "Audi", "Citroën"}
	raw := make([][]string, rows)
	for i := range raw {
		raw[i] = []string{keys[i%len(keys)], fmt.Sprint(10000 * (i + 1)), "diesel", "True", "100"}
	}
	return dataset.NewFrame(header, raw)
}

func newTestRouter(snapshots SnapshotSource, predictor PricePredictor) *gin.Engine {
	return NewRouter(Deps{
		Snapshots:   snapshots,
		PricingSpec: dataset.Spec{URL: "https://assets.test/pricing.csv", IndexColumn: true},
		Predictor:   predictor,
		ModelURI:    "runs:/run/model",
		CORS:        config.CORSConfig{AllowedOrigins: "*"},
	})
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRootRedirectsToDocs(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/docs/index.html", w.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})
	w := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UP", decode[HealthResponse](t, w).Status)
}

func TestPreview(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{frame: pricingFrame(20)}, &mileagePredictor{})

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"default", "", 15},
		{"five", "?rows=5", 5},
		{"zero", "?rows=0", 0},
		{"truncated", "?rows=500", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, httptest.NewRequest(http.MethodGet, "/preview"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Data     []map[string]any `json:"data"`
				RowCount int              `json:"row_count"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Data, tt.want)
			assert.Equal(t, tt.want, resp.RowCount)
		})
	}
}

func TestPreviewRecordsKeepColumns(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{frame: pricingFrame(3)}, &mileagePredictor{})
	w := do(r, httptest.NewRequest(http.MethodGet, "/preview?rows=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"model_key":"Citroën","mileage":10000,"fuel":"diesel","has_gps":true,"rental_price_per_day":100}`)
}

func TestPreviewErrors(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{frame: pricingFrame(3)}, &mileagePredictor{})
	for _, q := range []string{"?rows=-1", "?rows=abc", "?rows=1.5"} {
		w := do(r, httptest.NewRequest(http.MethodGet, "/preview"+q, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, q)
		assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)
	}

	upstream := newTestRouter(&fakeSnapshots{err: services.Upstream("failed to fetch dataset", errors.New("timeout"))}, &mileagePredictor{})
	w := do(upstream, httptest.NewRequest(http.MethodGet, "/preview", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUniqueValues(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{frame: pricingFrame(8)}, &mileagePredictor{})

	w := do(r, httptest.NewRequest(http.MethodPost, "/unique-values?col_name=model_key", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		UniqueColumns []string `json:"unique_columns"`
	}](t, w)
	assert.Equal(t, []string{"Citroën", "Peugeot", "Audi"}, resp.UniqueColumns)
}

func TestUniqueValuesUnknownColumn(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{frame: pricingFrame(8)}, &mileagePredictor{})

	w := do(r, httptest.NewRequest(http.MethodPost, "/unique-values?col_name=fule", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[ColumnNotFoundResponse](t, w)
	assert.Equal(t, "Column 'fule' not found in the dataset.", resp.Error)
	assert.Equal(t, "fuel", resp.Suggestion)

	w = do(r, httptest.NewRequest(http.MethodPost, "/unique-values?col_name=completely_unrelated", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp = decode[ColumnNotFoundResponse](t, w)
	assert.Empty(t, resp.Suggestion)

	w = do(r, httptest.NewRequest(http.MethodPost, "/unique-values", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

const carJSON = `{"model_key":"Citroën","mileage":%d,"engine_power":100,"fuel":"diesel","paint_color":"black","car_type":"convertible","private_parking_available":false,"has_gps":true,"has_air_conditioning":false,"automatic_car":false,"has_getaround_connect":true,"has_speed_regulator":true,"winter_tires":false}`

func predictRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPredictSingleRecord(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})

	w := do(r, predictRequest(`{"input":[`+fmt.Sprintf(carJSON, 140000)+`]}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []float64{140}, decode[PredictionResponse](t, w).Predictions)
}

func TestPredictEveryRecordInOrder(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})

	body := `{"input":[` + fmt.Sprintf(carJSON, 3000) + `,` + fmt.Sprintf(carJSON, 1000) + `,` + fmt.Sprintf(carJSON, 2000) + `]}`
	w := do(r, predictRequest(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []float64{3, 1, 2}, decode[PredictionResponse](t, w).Predictions)
}

func TestPredictInvalidInput(t *testing.T) {
	predictor := &mileagePredictor{}
	r := newTestRouter(&fakeSnapshots{}, predictor)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"input":`},
		{"no input", `{}`},
		{"empty input", `{"input":[]}`},
		{"missing field", `{"input":[{"model_key":"Audi","mileage":1}]}`},
		{"wrong type", `{"input":[` + strings.Replace(fmt.Sprintf(carJSON, 1), `"has_gps":true`, `"has_gps":"yes"`, 1) + `]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, predictRequest(tt.body))
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
	assert.Zero(t, predictor.calls)
}

func TestPredictFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"registry down", services.Upstream("failed to fetch artifact", errors.New("503")), http.StatusBadGateway},
		{"bad model", services.ModelFailure("inference failed", errors.New("width")), http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{err: tt.err})
			w := do(r, predictRequest(`{"input":[`+fmt.Sprintf(carJSON, 1)+`]}`))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPredictRequiresTokenWhenAuthEnabled(t *testing.T) {
	authService := services.NewAuthService(config.JWTConfig{Secret: "s3cret", ExpiryHours: 1})
	r := NewRouter(Deps{
		Snapshots: &fakeSnapshots{},
		Predictor: &mileagePredictor{},
		Auth:      authService,
		CORS:      config.CORSConfig{AllowedOrigins: "*"},
	})
	body := `{"input":[` + fmt.Sprintf(carJSON, 5000) + `]}`

	w := do(r, predictRequest(body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := authService.GenerateToken("dashboard", services.ScopePredict)
	require.NoError(t, err)
	req := predictRequest(body)
	req.Header.Set("Authorization", "Bearer "+token)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func batchRequest(t *testing.T, field, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "cars.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/batch-predict", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const batchCSV = "model_key,mileage,engine_power,fuel,paint_color,car_type,private_parking_available,has_gps,has_air_conditioning,automatic_car,has_getaround_connect,has_speed_regulator,winter_tires\n" +
	"Citroën,140000,100,diesel,black,convertible,True,True,False,False,True,True,True\n" +
	"Peugeot,14000,317,petrol,grey,convertible,True,True,False,False,False,True,True\n" +
	"Audi,183000,120,diesel,white,convertible,False,False,False,False,True,False,True\n" +
	"Renault,9000,90,diesel,red,sedan,False,True,False,False,True,False,False\n"

func TestBatchPredict(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})

	w := do(r, batchRequest(t, "file", batchCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []float64{140, 14, 183, 9}, decode[PredictionResponse](t, w).Predictions)
}

func TestBatchPredictErrors(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})

	w := do(r, batchRequest(t, "upload", batchCSV))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, batchRequest(t, "file", "model_key,mileage\nAudi,1\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "missing columns")

	bad := strings.Replace(batchCSV, "183000", "lots", 1)
	w = do(r, batchRequest(t, "file", bad))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "row 4")
}

func TestFeatureDisabledEndpoints(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})

	w := do(r, httptest.NewRequest(http.MethodGet, "/predictions/log", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/ws/predictions", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(&fakeSnapshots{}, &mileagePredictor{})
	do(r, predictRequest(`{"input":[`+fmt.Sprintf(carJSON, 1000)+`]}`))

	w := do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pricing_api_predictions_total")
}

func TestParseLogQuery(t *testing.T) {
	tests := []struct {
		query     string
		limit     int
		hasBefore bool
	}{
		{"", defaultLogPageSize, false},
		{"?limit=10", 10, false},
		{"?limit=1000", maxLogPageSize, false},
		{"?limit=-3", defaultLogPageSize, false},
		{"?before=2026-03-01T08:00:00Z", defaultLogPageSize, true},
		{"?before=yesterday", defaultLogPageSize, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/predictions/log"+tt.query, nil)
			q := parseLogQuery(c)
			assert.Equal(t, tt.limit, q.limit)
			assert.Equal(t, tt.hasBefore, q.before != nil)
		})
	}
}

func TestPredictionLogPages(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	predLog, err := services.NewPredictionLogService(db)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, predLog.Record(context.Background(), &models.PredictionLog{
			RequestID: "same-id",
			Endpoint:  "predict",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	r := NewRouter(Deps{
		Snapshots:     &fakeSnapshots{},
		Predictor:     &mileagePredictor{},
		PredictionLog: predLog,
		CORS:          config.CORSConfig{AllowedOrigins: "*"},
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/predictions/log?limit=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[PredictionLogPage](t, w)
	require.Len(t, first.Data, 2)
	assert.True(t, first.HasMore)
	assert.True(t, first.Data[0].CreatedAt.After(first.Data[1].CreatedAt))
	require.NotEmpty(t, first.NextCursor)

	w = do(r, httptest.NewRequest(http.MethodGet, "/predictions/log?limit=2&before="+url.QueryEscape(first.NextCursor), nil))
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[PredictionLogPage](t, w)
	require.Len(t, second.Data, 1)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)
	assert.True(t, second.Data[0].CreatedAt.Equal(base))
}
