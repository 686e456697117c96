package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"rental-pricing-api/models"
)

// ParseFeatureCSV reads a batch file whose header names every feature
// column. Extra columns are ignored. Any missing column or unparseable cell
// fails the whole batch.
func ParseFeatureCSV(r io.Reader) ([]models.FeatureRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, InvalidInput("batch file is empty")
	}
	if err != nil {
		return nil, &AppError{Kind: KindInvalidInput, Msg: "batch file is not valid CSV", Err: err}
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	var missing []string
	for _, name := range models.FeatureColumns {
		if _, ok := pos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, InvalidInput("batch file is missing columns: %s", strings.Join(missing, ", "))
	}

	var records []models.FeatureRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &AppError{Kind: KindInvalidInput, Msg: "batch file is not valid CSV", Err: err}
		}
		rec, err := parseFeatureRow(row, pos)
		if err != nil {
			return nil, InvalidInput("row %d: %v", line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, InvalidInput("batch file has no data rows")
	}
	return records, nil
}

type cellError struct {
	column string
	value  string
	want   string
}

func (e *cellError) Error() string {
	return "column " + e.column + ": cannot read " + strconv.Quote(e.value) + " as " + e.want
}

func parseFeatureRow(row []string, pos map[string]int) (models.FeatureRecord, error) {
	cell := func(name string) string {
		i := pos[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var firstErr error
	str := func(name string) string {
		v := cell(name)
		if v == "" && firstErr == nil {
			firstErr = &cellError{column: name, value: v, want: "text"}
		}
		return v
	}
	num := func(name string) float64 {
		v := cell(name)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil && firstErr == nil {
			firstErr = &cellError{column: name, value: v, want: "number"}
		}
		return f
	}
	flag := func(name string) bool {
		v := cell(name)
		b, err := strconv.ParseBool(v)
		if err != nil && firstErr == nil {
			firstErr = &cellError{column: name, value: v, want: "boolean"}
		}
		return b
	}

	rec := models.FeatureRecord{
		ModelKey:                str("model_key"),
		Mileage:                 num("mileage"),
		EnginePower:             num("engine_power"),
		Fuel:                    str("fuel"),
		PaintColor:              str("paint_color"),
		CarType:                 str("car_type"),
		PrivateParkingAvailable: flag("private_parking_available"),
		HasGPS:                  flag("has_gps"),
		HasAirConditioning:      flag("has_air_conditioning"),
		AutomaticCar:            flag("automatic_car"),
		HasGetaroundConnect:     flag("has_getaround_connect"),
		HasSpeedRegulator:       flag("has_speed_regulator"),
		WinterTires:             flag("winter_tires"),
	}
	return rec, firstErr
}
