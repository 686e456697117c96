package analytics

import (
	"fmt"

	"rental-pricing-api/dataset"
	"rental-pricing-api/models"
)

// Delay dataset columns.
const (
	colRentalID     = "rental_id"
	colCarID        = "car_id"
	colCheckinType  = "checkin_type"
	colState        = "state"
	colDelay        = "delay_at_checkout_in_minutes"
	colPreviousID   = "previous_ended_rental_id"
	colTimeDelta    = "time_delta_with_previous_rental_in_minutes"
	maxDelayMinutes = 60 * 24 * 3
)

var rentalColumns = []string{colRentalID, colCarID, colCheckinType, colState, colDelay, colPreviousID, colTimeDelta}

// RentalsFromFrame reads the delay dataset into typed rentals.
func RentalsFromFrame(f *dataset.Frame) ([]models.Rental, error) {
	cols := make(map[string][]any, len(rentalColumns))
	for _, name := range rentalColumns {
		values, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("delay dataset has no column %q", name)
		}
		cols[name] = values
	}

	out := make([]models.Rental, f.Len())
	for i := range out {
		rentalID, ok := dataset.Int(cols[colRentalID][i])
		if !ok {
			return nil, fmt.Errorf("row %d: invalid %s", i, colRentalID)
		}
		carID, ok := dataset.Int(cols[colCarID][i])
		if !ok {
			return nil, fmt.Errorf("row %d: invalid %s", i, colCarID)
		}
		r := models.Rental{
			RentalID:              rentalID,
			CarID:                 carID,
			CheckinType:           stringCell(cols[colCheckinType][i]),
			State:                 stringCell(cols[colState][i]),
			DelayAtCheckout:       floatCell(cols[colDelay][i]),
			TimeDeltaWithPrevious: floatCell(cols[colTimeDelta][i]),
		}
		if v, ok := dataset.Int(cols[colPreviousID][i]); ok {
			r.PreviousEndedRentalID = &v
		}
		out[i] = r
	}
	return out, nil
}

func stringCell(v any) string {
	s, _ := v.(string)
	return s
}

func floatCell(v any) *float64 {
	f, ok := dataset.Float(v)
	if !ok {
		return nil
	}
	return &f
}

// Clean keeps ended rentals with a known delay inside ±3 days, followed by
// canceled rentals with no delay. Everything else is dropped.
func Clean(rentals []models.Rental) []models.Rental {
	ended := make([]models.Rental, 0, len(rentals))
	var canceled []models.Rental
	for _, r := range rentals {
		switch {
		case r.State == models.StateEnded && r.DelayAtCheckout != nil:
			if d := *r.DelayAtCheckout; d >= -maxDelayMinutes && d <= maxDelayMinutes {
				ended = append(ended, r)
			}
		case r.State == models.StateCanceled && r.DelayAtCheckout == nil:
			canceled = append(canceled, r)
		}
	}
	return append(ended, canceled...)
}
