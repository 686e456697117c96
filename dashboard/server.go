package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"rental-pricing-api/analytics"
	"rental-pricing-api/dataset"
	"rental-pricing-api/middleware"
	"rental-pricing-api/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Form bounds of the numeric car attributes.
const (
	minMileage      = 0
	maxMileage      = 300000
	defaultMileage  = 30000
	minEnginePower  = 50
	maxEnginePower  = 500
	defaultEngPower = 140
)

var choiceColumns = []string{"model_key", "fuel", "paint_color", "car_type"}

var flagFields = []struct {
	Name  string
	Label string
}{
	{"private_parking_available", "Private parking available"},
	{"has_gps", "GPS"},
	{"has_air_conditioning", "Air conditioning"},
	{"automatic_car", "Automatic transmission"},
	{"has_getaround_connect", "Getaround Connect"},
	{"has_speed_regulator", "Speed regulator"},
	{"winter_tires", "Winter tires"},
}

type SnapshotSource interface {
	Get(ctx context.Context, spec dataset.Spec) (*dataset.Frame, error)
}

type Predictor interface {
	Predict(ctx context.Context, rec models.FeatureRecord) (float64, error)
}

type Server struct {
	snapshots SnapshotSource
	delays    dataset.Spec
	pricing   dataset.Spec
	client    Predictor
}

func NewServer(snapshots SnapshotSource, delays, pricing dataset.Spec, client Predictor) *Server {
	return &Server{snapshots: snapshots, delays: delays, pricing: pricing, client: client}
}

// Router builds the dashboard routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"),
	))

	router.GET("/", s.page)
	router.GET("/api/report", s.reportJSON)
	router.POST("/predict", s.predict)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Rental analytics dashboard is running"})
	})
	return router
}

var templateFuncs = template.FuncMap{
	"fixed2": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"optional": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
	"percent": func(v float64) string { return strconv.FormatFloat(v*100, 'f', 1, 64) },
}

// FormValues is the state of the prediction form.
type FormValues struct {
	ModelKey    string
	Fuel        string
	PaintColor  string
	CarType     string
	Mileage     int
	EnginePower int
	Flags       map[string]bool
}

type pageData struct {
	Report          *analytics.Report
	TopNChoices     []int
	Options         map[string][]string
	FlagFields      []struct{ Name, Label string }
	Form            FormValues
	Prediction      *float64
	PredictionError string
}

func defaultForm() FormValues {
	return FormValues{Mileage: defaultMileage, EnginePower: defaultEngPower, Flags: map[string]bool{}}
}

func parseTopN(raw string) (int, error) {
	if raw == "" {
		return analytics.DefaultTopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !analytics.ValidTopN(n) {
		return 0, fmt.Errorf("top_n must be one of %v", analytics.TopNChoices())
	}
	return n, nil
}

func (s *Server) build(ctx context.Context, topN int) (*analytics.Report, *dataset.Frame, error) {
	delays, err := s.snapshots.Get(ctx, s.delays)
	if err != nil {
		return nil, nil, err
	}
	pricing, err := s.snapshots.Get(ctx, s.pricing)
	if err != nil {
		return nil, nil, err
	}
	report, err := analytics.Build(delays, pricing, topN)
	if err != nil {
		return nil, nil, err
	}
	return report, pricing, nil
}

func (s *Server) reportJSON(c *gin.Context) {
	topN, err := parseTopN(c.Query("top_n"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	report, _, err := s.build(c.Request.Context(), topN)
	if err != nil {
		log.Error().Err(err).Msg("failed to build report")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) page(c *gin.Context) {
	s.render(c, http.StatusOK, c.Query("top_n"), defaultForm(), nil, "")
}

func (s *Server) predict(c *gin.Context) {
	form, err := parseForm(c)
	if err != nil {
		s.render(c, http.StatusUnprocessableEntity, c.PostForm("top_n"), form, nil, err.Error())
		return
	}
	price, err := s.client.Predict(c.Request.Context(), form.record())
	if err != nil {
		log.Warn().Err(err).Msg("prediction request failed")
		s.render(c, http.StatusBadGateway, c.PostForm("top_n"), form, nil, err.Error())
		return
	}
	rounded := math.Round(price*100) / 100
	s.render(c, http.StatusOK, c.PostForm("top_n"), form, &rounded, "")
}

// render draws the report page with the given status. Form errors are the
// caller's fault (422); a failed call to the pricing API is not (502).
func (s *Server) render(c *gin.Context, status int, rawTopN string, form FormValues, prediction *float64, predErr string) {
	topN, err := parseTopN(rawTopN)
	if err != nil {
		c.String(http.StatusUnprocessableEntity, err.Error())
		return
	}
	report, pricing, err := s.build(c.Request.Context(), topN)
	if err != nil {
		log.Error().Err(err).Msg("failed to build report")
		c.String(http.StatusBadGateway, "failed to load datasets: %v", err)
		return
	}

	options := make(map[string][]string, len(choiceColumns))
	for _, col := range choiceColumns {
		options[col] = distinctStrings(pricing, col)
	}

	c.HTML(status, "report.html", pageData{
		Report:          report,
		TopNChoices:     analytics.TopNChoices(),
		Options:         options,
		FlagFields:      flagFields,
		Form:            form,
		Prediction:      prediction,
		PredictionError: predErr,
	})
}

func distinctStrings(f *dataset.Frame, column string) []string {
	values, ok := f.Unique(column)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func parseForm(c *gin.Context) (FormValues, error) {
	form := FormValues{
		ModelKey:   strings.TrimSpace(c.PostForm("model_key")),
		Fuel:       strings.TrimSpace(c.PostForm("fuel")),
		PaintColor: strings.TrimSpace(c.PostForm("paint_color")),
		CarType:    strings.TrimSpace(c.PostForm("car_type")),
		Flags:      make(map[string]bool, len(flagFields)),
	}
	for _, f := range flagFields {
		form.Flags[f.Name] = c.PostForm(f.Name) != ""
	}

	var err error
	if form.Mileage, err = boundedInt(c.PostForm("mileage"), "mileage", minMileage, maxMileage); err != nil {
		return form, err
	}
	if form.EnginePower, err = boundedInt(c.PostForm("engine_power"), "engine_power", minEnginePower, maxEnginePower); err != nil {
		return form, err
	}
	for _, pair := range [][2]string{
		{"model_key", form.ModelKey}, {"fuel", form.Fuel},
		{"paint_color", form.PaintColor}, {"car_type", form.CarType},
	} {
		if pair[1] == "" {
			return form, fmt.Errorf("%s is required", pair[0])
		}
	}
	return form, nil
}

func boundedInt(raw, name string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", name)
	}
	if v < lo || v > hi {
		return v, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}

// Selected returns the submitted value of a choice column.
func (f FormValues) Selected(column string) string {
	switch column {
	case "model_key":
		return f.ModelKey
	case "fuel":
		return f.Fuel
	case "paint_color":
		return f.PaintColor
	case "car_type":
		return f.CarType
	}
	return ""
}

func (f FormValues) record() models.FeatureRecord {
	return models.FeatureRecord{
		ModelKey:                f.ModelKey,
		Mileage:                 float64(f.Mileage),
		EnginePower:             float64(f.EnginePower),
		Fuel:                    f.Fuel,
		PaintColor:              f.PaintColor,
		CarType:                 f.CarType,
		PrivateParkingAvailable: f.Flags["private_parking_available"],
		HasGPS:                  f.Flags["has_gps"],
		HasAirConditioning:      f.Flags["has_air_conditioning"],
		AutomaticCar:            f.Flags["automatic_car"],
		HasGetaroundConnect:     f.Flags["has_getaround_connect"],
		HasSpeedRegulator:       f.Flags["has_speed_regulator"],
		WinterTires:             f.Flags["winter_tires"],
	}
}
