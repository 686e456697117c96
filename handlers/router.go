package handlers

import (
	"net/http"

	"rental-pricing-api/config"
	"rental-pricing-api/dataset"
	_ "rental-pricing-api/docs"
	"rental-pricing-api/middleware"
	"rental-pricing-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the collaborators of the prediction service routes. Cache,
// PredictionLog and Auth may be disabled services.
type Deps struct {
	Snapshots     SnapshotSource
	PricingSpec   dataset.Spec
	Predictor     PricePredictor
	ModelURI      string
	Cache         *services.CacheService
	PredictionLog *services.PredictionLogService
	Auth          *services.AuthService
	CORS          config.CORSConfig
}

type HealthResponse struct {
	Status  string `json:"status" example:"UP"`
	Message string `json:"message" example:"Rental Pricing API is running"`
}

// @title Rental Pricing API
// @version 1.0
// @description Car rental price prediction and pricing dataset exploration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(deps.CORS))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/docs/index.html")
	})
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	datasets := NewDatasetHandler(deps.Snapshots, deps.PricingSpec)
	router.GET("/preview", datasets.Preview)
	router.POST("/unique-values", datasets.UniqueValues)

	predictions := NewPredictionHandler(deps.Predictor, deps.Cache, deps.PredictionLog, deps.ModelURI)
	requirePredict := middleware.RequireToken(deps.Auth, services.ScopePredict)
	router.POST("/predict", requirePredict, predictions.Predict)
	router.POST("/batch-predict", requirePredict, predictions.BatchPredict)

	predLog := NewPredictionLogHandler(deps.PredictionLog)
	router.GET("/predictions/log", requirePredict, predLog.List)
	router.GET("/ws/predictions", LivePredictions(deps.Cache, deps.Auth))

	return router
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "UP",
		Message: "Rental Pricing API is running",
	})
}
