package models

// FeatureColumns lists the car attributes in dataset order.
var FeatureColumns = []string{
	"model_key",
	"mileage",
	"engine_power",
	"fuel",
	"paint_color",
	"car_type",
	"private_parking_available",
	"has_gps",
	"has_air_conditioning",
	"automatic_car",
	"has_getaround_connect",
	"has_speed_regulator",
	"winter_tires",
}

// FeatureRecord is one car submitted for price prediction.
type FeatureRecord struct {
	ModelKey                string  `json:"model_key"`
	Mileage                 float64 `json:"mileage"`
	EnginePower             float64 `json:"engine_power"`
	Fuel                    string  `json:"fuel"`
	PaintColor              string  `json:"paint_color"`
	CarType                 string  `json:"car_type"`
	PrivateParkingAvailable bool    `json:"private_parking_available"`
	HasGPS                  bool    `json:"has_gps"`
	HasAirConditioning      bool    `json:"has_air_conditioning"`
	AutomaticCar            bool    `json:"automatic_car"`
	HasGetaroundConnect     bool    `json:"has_getaround_connect"`
	HasSpeedRegulator       bool    `json:"has_speed_regulator"`
	WinterTires             bool    `json:"winter_tires"`
}

// Value returns the attribute stored under a dataset column name.
// The second result is false for names outside the schema.
func (r FeatureRecord) Value(column string) (any, bool) {
	switch column {
	case "model_key":
		return r.ModelKey, true
	case "mileage":
		return r.Mileage, true
	case "engine_power":
		return r.EnginePower, true
	case "fuel":
		return r.Fuel, true
	case "paint_color":
		return r.PaintColor, true
	case "car_type":
		return r.CarType, true
	case "private_parking_available":
		return r.PrivateParkingAvailable, true
	case "has_gps":
		return r.HasGPS, true
	case "has_air_conditioning":
		return r.HasAirConditioning, true
	case "automatic_car":
		return r.AutomaticCar, true
	case "has_getaround_connect":
		return r.HasGetaroundConnect, true
	case "has_speed_regulator":
		return r.HasSpeedRegulator, true
	case "winter_tires":
		return r.WinterTires, true
	}
	return nil, false
}
