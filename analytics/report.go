package analytics

import (
	"fmt"

	"rental-pricing-api/dataset"
	"rental-pricing-api/models"
)

const (
	DefaultTopN = 15
	MinTopN     = 15
	MaxTopN     = 50
	TopNStep    = 5

	priceColumn = "rental_price_per_day"
)

// ValidTopN reports whether n is one of the offered top-N choices.
func ValidTopN(n int) bool {
	return n >= MinTopN && n <= MaxTopN && (n-MinTopN)%TopNStep == 0
}

// TopNChoices lists the offered top-N values in ascending order.
func TopNChoices() []int {
	var out []int
	for n := MinTopN; n <= MaxTopN; n += TopNStep {
		out = append(out, n)
	}
	return out
}

type Report struct {
	Rows             int           `json:"rows"`
	Preview          []Preview     `json:"preview"`
	States           []StateShare  `json:"states"`
	CancellationRate float64       `json:"cancellation_rate"`
	Lateness         Attribution   `json:"lateness_attribution"`
	Impact           []ImpactPoint `json:"impact"`
	Resolved         []ImpactPoint `json:"resolved"`
	LateFrequency    LateFrequency `json:"late_frequency"`
	DistinctCars     int           `json:"distinct_cars"`
	TopN             int           `json:"top_n"`
	TopCars          []CarLateness `json:"top_cars"`
	AveragePrice     float64       `json:"average_price"`
	CanceledCount    int           `json:"canceled_count"`
	RevenueLoss      float64       `json:"revenue_loss"`
}

// Preview is one cleaned rental shown at the top of the report.
type Preview struct {
	RentalID    int64    `json:"rental_id"`
	CarID       int64    `json:"car_id"`
	CheckinType string   `json:"checkin_type"`
	State       string   `json:"state"`
	Delay       *float64 `json:"delay_at_checkout_in_minutes"`
}

// Build computes the full report from the delay and pricing datasets.
func Build(delays, pricing *dataset.Frame, topN int) (*Report, error) {
	if !ValidTopN(topN) {
		return nil, fmt.Errorf("top_n must be between %d and %d in steps of %d", MinTopN, MaxTopN, TopNStep)
	}
	rentals, err := RentalsFromFrame(delays)
	if err != nil {
		return nil, err
	}
	avg, ok := AveragePrice(pricing, priceColumn)
	if !ok {
		return nil, fmt.Errorf("pricing dataset has no usable %q column", priceColumn)
	}

	clean := Clean(rentals)
	attribution := LatenessAttribution(clean)
	canceled := countState(clean, models.StateCanceled)

	return &Report{
		Rows:             len(clean),
		Preview:          preview(clean, 5),
		States:           StateDistribution(clean),
		CancellationRate: CancellationRate(clean),
		Lateness:         attribution,
		Impact:           ImpactCurve(clean),
		Resolved:         ImpactCurve(attribution.PreviousRentals),
		LateFrequency:    LateCheckouts(clean),
		DistinctCars:     DistinctCars(clean),
		TopN:             topN,
		TopCars:          TopLateCars(clean, topN),
		AveragePrice:     round2(avg),
		CanceledCount:    canceled,
		RevenueLoss:      RevenueLoss(attribution.Percent, canceled, avg),
	}, nil
}

func preview(rentals []models.Rental, n int) []Preview {
	if n > len(rentals) {
		n = len(rentals)
	}
	out := make([]Preview, n)
	for i, r := range rentals[:n] {
		out[i] = Preview{
			RentalID:    r.RentalID,
			CarID:       r.CarID,
			CheckinType: r.CheckinType,
			State:       r.State,
			Delay:       r.DelayAtCheckout,
		}
	}
	return out
}
