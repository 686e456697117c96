package analytics

import (
	"math"
	"sort"

	"rental-pricing-api/dataset"
	"rental-pricing-api/models"

	"gonum.org/v1/gonum/stat"
)

type StateShare struct {
	State      string  `json:"state"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// StateDistribution returns the share of each state, most frequent first.
func StateDistribution(rentals []models.Rental) []StateShare {
	counts := make(map[string]int)
	var order []string
	for _, r := range rentals {
		if _, ok := counts[r.State]; !ok {
			order = append(order, r.State)
		}
		counts[r.State]++
	}
	out := make([]StateShare, 0, len(order))
	for _, s := range order {
		out = append(out, StateShare{
			State:      s,
			Count:      counts[s],
			Proportion: float64(counts[s]) / float64(len(rentals)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// CancellationRate is the percentage of canceled rentals, 2 decimals.
func CancellationRate(rentals []models.Rental) float64 {
	if len(rentals) == 0 {
		return 0
	}
	return round2(float64(countState(rentals, models.StateCanceled)) * 100 / float64(len(rentals)))
}

func countState(rentals []models.Rental, state string) int {
	n := 0
	for _, r := range rentals {
		if r.State == state {
			n++
		}
	}
	return n
}

// Attribution estimates how many cancellations follow a late previous
// rental. PreviousRentals are the rentals that preceded a canceled booking
// and have a known checkout delay.
type Attribution struct {
	Percent         int             `json:"percent"`
	RepeatedRefs    int             `json:"repeated_refs"`
	PreviousRentals []models.Rental `json:"-"`
}

// LatenessAttribution counts late previous rentals plus previous rentals
// referenced by more than one canceled booking, as an integer percentage of
// the previous rentals found.
func LatenessAttribution(rentals []models.Rental) Attribution {
	total := 0
	refs := make(map[int64]struct{})
	nullRef := false
	for _, r := range rentals {
		if r.State != models.StateCanceled || r.TimeDeltaWithPrevious == nil {
			continue
		}
		total++
		if r.PreviousEndedRentalID == nil {
			nullRef = true
			continue
		}
		refs[*r.PreviousEndedRentalID] = struct{}{}
	}
	unique := len(refs)
	if nullRef {
		unique++
	}

	var previous []models.Rental
	late := 0
	for _, r := range rentals {
		if _, ok := refs[r.RentalID]; !ok || r.DelayAtCheckout == nil {
			continue
		}
		previous = append(previous, r)
		if r.IsLate() {
			late++
		}
	}

	a := Attribution{RepeatedRefs: total - unique, PreviousRentals: previous}
	if len(previous) > 0 {
		a.Percent = (late + a.RepeatedRefs) * 100 / len(previous)
	}
	return a
}

type ImpactPoint struct {
	Threshold int `json:"threshold"`
	Mobile    int `json:"mobile"`
	Connect   int `json:"connect"`
}

// Thresholds are the delay thresholds, in minutes, of the impact curves.
func Thresholds() []int {
	var out []int
	for t := 10; t < 240; t += 20 {
		out = append(out, t)
	}
	return out
}

// ImpactCurve counts, per threshold, the late checkouts of at most that
// many minutes by check-in channel.
func ImpactCurve(rentals []models.Rental) []ImpactPoint {
	thresholds := Thresholds()
	out := make([]ImpactPoint, len(thresholds))
	for i, t := range thresholds {
		out[i].Threshold = t
		for _, r := range rentals {
			if !r.IsLate() || *r.DelayAtCheckout > float64(t) {
				continue
			}
			switch r.CheckinType {
			case models.CheckinMobile:
				out[i].Mobile++
			case models.CheckinConnect:
				out[i].Connect++
			}
		}
	}
	return out
}

type LateFrequency struct {
	Percent     int     `json:"percent"`
	MeanMinutes float64 `json:"mean_minutes"`
}

// LateCheckouts measures how often ended rentals are returned late and by
// how much on average.
func LateCheckouts(rentals []models.Rental) LateFrequency {
	ended := 0
	var delays []float64
	for _, r := range rentals {
		if r.State != models.StateEnded {
			continue
		}
		ended++
		if r.IsLate() {
			delays = append(delays, *r.DelayAtCheckout)
		}
	}
	var out LateFrequency
	if ended > 0 {
		out.Percent = len(delays) * 100 / ended
	}
	if len(delays) > 0 {
		out.MeanMinutes = round2(stat.Mean(delays, nil))
	}
	return out
}

func DistinctCars(rentals []models.Rental) int {
	seen := make(map[int64]struct{})
	for _, r := range rentals {
		seen[r.CarID] = struct{}{}
	}
	return len(seen)
}

type CarLateness struct {
	CarID     int64    `json:"car_id"`
	MeanDelay *float64 `json:"mean_delay"`
	Late      int      `json:"is_late"`
	Count     int      `json:"count"`
	LateRate  float64  `json:"late_rate"`
}

// TopLateCars takes the topN most used cars among those rented more than
// once and reports their lateness, highest late rate first.
func TopLateCars(rentals []models.Rental, topN int) []CarLateness {
	usage := make(map[int64]int)
	var order []int64
	for _, r := range rentals {
		if _, ok := usage[r.CarID]; !ok {
			order = append(order, r.CarID)
		}
		usage[r.CarID]++
	}
	sort.SliceStable(order, func(i, j int) bool { return usage[order[i]] > usage[order[j]] })

	var cars []int64
	for _, id := range order {
		if usage[id] > 1 {
			cars = append(cars, id)
		}
	}
	if len(cars) > topN {
		cars = cars[:topN]
	}

	lateDelays := make(map[int64][]float64, len(cars))
	for _, r := range rentals {
		if r.IsLate() {
			lateDelays[r.CarID] = append(lateDelays[r.CarID], *r.DelayAtCheckout)
		}
	}

	out := make([]CarLateness, len(cars))
	for i, id := range cars {
		delays := lateDelays[id]
		c := CarLateness{
			CarID:    id,
			Late:     len(delays),
			Count:    usage[id],
			LateRate: float64(len(delays)) * 100 / float64(usage[id]),
		}
		if len(delays) > 0 {
			mean := stat.Mean(delays, nil)
			c.MeanDelay = &mean
		}
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LateRate > out[j].LateRate })
	return out
}

// AveragePrice is the mean of a numeric column, ignoring empty cells.
func AveragePrice(f *dataset.Frame, column string) (float64, bool) {
	values, ok := f.Column(column)
	if !ok {
		return 0, false
	}
	prices := make([]float64, 0, len(values))
	for _, v := range values {
		if p, ok := dataset.Float(v); ok {
			prices = append(prices, p)
		}
	}
	if len(prices) == 0 {
		return 0, false
	}
	return stat.Mean(prices, nil), true
}

// RevenueLoss estimates the revenue lost to cancellations caused by late
// returns.
func RevenueLoss(latenessPercent, canceled int, averagePrice float64) float64 {
	return round2(float64(latenessPercent) / 100 * float64(canceled) * averagePrice)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
