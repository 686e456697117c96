package handlers

import (
	"context"
	"net/http"
	"time"

	"rental-pricing-api/middleware"
	"rental-pricing-api/models"
	"rental-pricing-api/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const (
	endpointPredict = "predict"
	endpointBatch   = "batch-predict"
)

// PricePredictor scores feature records, usually a *services.Predictor.
type PricePredictor interface {
	Predict(ctx context.Context, records []models.FeatureRecord) ([]float64, error)
}

type PredictionHandler struct {
	predictor PricePredictor
	cache     *services.CacheService
	predLog   *services.PredictionLogService
	modelURI  string
}

func NewPredictionHandler(predictor PricePredictor, cache *services.CacheService, predLog *services.PredictionLogService, modelURI string) *PredictionHandler {
	return &PredictionHandler{predictor: predictor, cache: cache, predLog: predLog, modelURI: modelURI}
}

// FeatureInput is the wire form of a FeatureRecord. Pointers let the
// validator tell a missing field from a zero value.
type FeatureInput struct {
	ModelKey                *string  `json:"model_key" binding:"required" example:"Citroën"`
	Mileage                 *float64 `json:"mileage" binding:"required" example:"140411"`
	EnginePower             *float64 `json:"engine_power" binding:"required" example:"100"`
	Fuel                    *string  `json:"fuel" binding:"required" example:"diesel"`
	PaintColor              *string  `json:"paint_color" binding:"required" example:"black"`
	CarType                 *string  `json:"car_type" binding:"required" example:"convertible"`
	PrivateParkingAvailable *bool    `json:"private_parking_available" binding:"required" example:"true"`
	HasGPS                  *bool    `json:"has_gps" binding:"required" example:"true"`
	HasAirConditioning      *bool    `json:"has_air_conditioning" binding:"required" example:"false"`
	AutomaticCar            *bool    `json:"automatic_car" binding:"required" example:"false"`
	HasGetaroundConnect     *bool    `json:"has_getaround_connect" binding:"required" example:"true"`
	HasSpeedRegulator       *bool    `json:"has_speed_regulator" binding:"required" example:"true"`
	WinterTires             *bool    `json:"winter_tires" binding:"required" example:"true"`
}

func (in FeatureInput) record() models.FeatureRecord {
	return models.FeatureRecord{
		ModelKey:                *in.ModelKey,
		Mileage:                 *in.Mileage,
		EnginePower:             *in.EnginePower,
		Fuel:                    *in.Fuel,
		PaintColor:              *in.PaintColor,
		CarType:                 *in.CarType,
		PrivateParkingAvailable: *in.PrivateParkingAvailable,
		HasGPS:                  *in.HasGPS,
		HasAirConditioning:      *in.HasAirConditioning,
		AutomaticCar:            *in.AutomaticCar,
		HasGetaroundConnect:     *in.HasGetaroundConnect,
		HasSpeedRegulator:       *in.HasSpeedRegulator,
		WinterTires:             *in.WinterTires,
	}
}

type PredictionRequest struct {
	Input []FeatureInput `json:"input" binding:"required,min=1,dive"`
}

type PredictionResponse struct {
	Predictions []float64 `json:"predictions" example:"109.45"`
}

// Predict godoc
// @Summary Predict rental prices
// @Description Scores every submitted car and returns one price per day for each, in input order.
// @Tags prediction
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PredictionRequest true "Cars to price"
// @Success 200 {object} PredictionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /predict [post]
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &services.AppError{Kind: services.KindInvalidInput, Msg: "invalid request body", Err: err})
		return
	}

	records := make([]models.FeatureRecord, len(req.Input))
	for i, in := range req.Input {
		records[i] = in.record()
	}
	h.score(c, endpointPredict, records)
}

// BatchPredict godoc
// @Summary Predict rental prices from a CSV file
// @Description The CSV header must name every feature column; extra columns are ignored.
// @Tags prediction
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file of cars"
// @Success 200 {object} PredictionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /batch-predict [post]
func (h *PredictionHandler) BatchPredict(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.fail(c, services.InvalidInput("multipart field 'file' is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		h.fail(c, &services.AppError{Kind: services.KindInvalidInput, Msg: "cannot read uploaded file", Err: err})
		return
	}
	defer f.Close()

	records, err := services.ParseFeatureCSV(f)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.score(c, endpointBatch, records)
}

func (h *PredictionHandler) score(c *gin.Context, endpoint string, records []models.FeatureRecord) {
	start := time.Now()
	predictions, err := h.predictor.Predict(c.Request.Context(), records)
	if err != nil {
		h.fail(c, err)
		return
	}

	services.RecordPrediction(endpoint, len(predictions))
	requestID := middleware.GetRequestID(c)
	log.Debug().
		Str("request_id", requestID).
		Str("endpoint", endpoint).
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("prediction served")

	go h.publish(requestID, endpoint, predictions, time.Since(start))

	c.JSON(http.StatusOK, PredictionResponse{Predictions: predictions})
}

func (h *PredictionHandler) fail(c *gin.Context, err error) {
	services.RecordFailure(err)
	respondError(c, err)
}

// publish sends the live event and writes the log row. Failures are logged
// and never reach the client.
func (h *PredictionHandler) publish(requestID, endpoint string, predictions []float64, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := models.PredictionEvent{
		RequestID:   requestID,
		Endpoint:    endpoint,
		Predictions: predictions,
		TS:          time.Now().UTC(),
	}
	if err := h.cache.Publish(ctx, services.PredictionChannel, event); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("failed to publish prediction event")
	}

	if !h.predLog.Enabled() {
		return
	}
	mean := stat.Mean(predictions, nil)
	entry := &models.PredictionLog{
		RequestID:   requestID,
		Endpoint:    endpoint,
		RecordCount: len(predictions),
		ModelURI:    h.modelURI,
		MeanPrice:   &mean,
		LatencyMS:   elapsed.Milliseconds(),
	}
	if err := h.predLog.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("failed to record prediction")
	}
}
