package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultPricingDatasetURL = "https://full-stack-assets.s3.eu-west-3.amazonaws.com/Deployment/get_around_pricing_project.csv"
	defaultDelayDatasetURL   = "https://full-stack-assets.s3.eu-west-3.amazonaws.com/Deployment/get_around_delay_analysis.xlsx"
	defaultTransformerURI    = "runs:/a73622d206e34c43be7660794faebaf3/preprocessor"
	defaultModelURI          = "runs:/cbbd70fa6f724502a277d301659450fc/XGBoost_model"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Registry  RegistryConfig
	Datasets  DatasetsConfig
	Dashboard DashboardConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig describes the Postgres instance holding the prediction log.
// The log is skipped entirely when Enabled is false.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig with an empty Host disables the shared cache and the live feed.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PingAttempts int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type CORSConfig struct {
	AllowedOrigins string
}

type RegistryConfig struct {
	ArtifactRoot   string
	TransformerURI string
	ModelURI       string
	ModelFormat    string
	CacheTTL       time.Duration
}

type DatasetsConfig struct {
	PricingURL  string
	DelayURL    string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// DashboardConfig with a zero RefreshInterval loads snapshots lazily on
// request.
type DashboardConfig struct {
	Port            int
	APIURL          string
	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	readTimeout, err := getIntEnv("SERVER_READ_TIMEOUT_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SEC: %w", err)
	}
	writeTimeout, err := getIntEnv("SERVER_WRITE_TIMEOUT_SEC", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SEC: %w", err)
	}

	dbEnabled, err := getBoolEnv("PREDICTION_LOG_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICTION_LOG_ENABLED: %w", err)
	}
	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	redisAttempts, err := getIntEnv("REDIS_PING_ATTEMPTS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PING_ATTEMPTS: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	modelCacheTTL, err := getIntEnv("MODEL_CACHE_TTL_SEC", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_CACHE_TTL_SEC: %w", err)
	}
	datasetCacheTTL, err := getIntEnv("DATASET_CACHE_TTL_SEC", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid DATASET_CACHE_TTL_SEC: %w", err)
	}
	httpTimeout, err := getIntEnv("HTTP_CLIENT_TIMEOUT_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_CLIENT_TIMEOUT_SEC: %w", err)
	}

	dashboardPort, err := getIntEnv("DASHBOARD_PORT", 8501)
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_PORT: %w", err)
	}
	dashboardTTL, err := getIntEnv("DASHBOARD_CACHE_TTL_SEC", 3600)
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL_SEC: %w", err)
	}
	dashboardRefresh, err := getIntEnv("DASHBOARD_REFRESH_INTERVAL_SEC", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_REFRESH_INTERVAL_SEC: %w", err)
	}

	modelFormat := getEnv("MODEL_FORMAT", "xgboost")
	if modelFormat != "xgboost" && modelFormat != "lightgbm" {
		return nil, fmt.Errorf("invalid MODEL_FORMAT: %q", modelFormat)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         serverPort,
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:  dbEnabled,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "pricing"),
			Password: getEnv("DB_PASSWORD", "pricing_dev_password"),
			Name:     getEnv("DB_NAME", "pricing"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", ""),
			Port:         redisPort,
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           redisDB,
			PingAttempts: redisAttempts,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			ExpiryHours: jwtExpiry,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Registry: RegistryConfig{
			ArtifactRoot:   getEnv("MODEL_REGISTRY_ROOT", "file://./mlruns"),
			TransformerURI: getEnv("TRANSFORMER_URI", defaultTransformerURI),
			ModelURI:       getEnv("MODEL_URI", defaultModelURI),
			ModelFormat:    modelFormat,
			CacheTTL:       time.Duration(modelCacheTTL) * time.Second,
		},
		Datasets: DatasetsConfig{
			PricingURL:  getEnv("PRICING_DATASET_URL", defaultPricingDatasetURL),
			DelayURL:    getEnv("DELAY_DATASET_URL", defaultDelayDatasetURL),
			CacheTTL:    time.Duration(datasetCacheTTL) * time.Second,
			HTTPTimeout: time.Duration(httpTimeout) * time.Second,
		},
		Dashboard: DashboardConfig{
			Port:            dashboardPort,
			APIURL:          getEnv("PRICING_API_URL", "http://localhost:8080"),
			CacheTTL:        time.Duration(dashboardTTL) * time.Second,
			RefreshInterval: time.Duration(dashboardRefresh) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
