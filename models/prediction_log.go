package models

import "time"

// PredictionLog is one served prediction request. RequestID is indexed but
// not unique: clients may resend the same X-Request-ID on retries.
type PredictionLog struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	RequestID   string    `gorm:"column:request_id;index;size:64" json:"request_id"`
	Endpoint    string    `gorm:"column:endpoint;size:32" json:"endpoint"`
	RecordCount int       `gorm:"column:record_count" json:"record_count"`
	ModelURI    string    `gorm:"column:model_uri" json:"model_uri"`
	MeanPrice   *float64  `gorm:"column:mean_price" json:"mean_price"`
	LatencyMS   int64     `gorm:"column:latency_ms" json:"latency_ms"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PredictionLog) TableName() string { return "prediction_logs" }

// PredictionEvent is published on the live feed after each served prediction.
type PredictionEvent struct {
	RequestID   string    `json:"request_id"`
	Endpoint    string    `json:"endpoint"`
	Predictions []float64 `json:"predictions"`
	TS          time.Time `json:"ts"`
}
