package analytics

import (
	"testing"

	"rental-pricing-api/dataset"
	"rental-pricing-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutes(v float64) *float64 { return &v }
func rentalRef(v int64) *int64   { return &v }

func sampleRentals() []models.Rental {
	return []models.Rental{
		{RentalID: 1, CarID: 10, CheckinType: "mobile", State: "ended", DelayAtCheckout: minutes(30)},
		{RentalID: 2, CarID: 10, CheckinType: "connect", State: "ended", DelayAtCheckout: minutes(-20)},
		{RentalID: 3, CarID: 11, CheckinType: "mobile", State: "ended", DelayAtCheckout: minutes(5000)},
		{RentalID: 4, CarID: 11, CheckinType: "mobile", State: "canceled", PreviousEndedRentalID: rentalRef(1), TimeDeltaWithPrevious: minutes(60)},
		{RentalID: 5, CarID: 12, CheckinType: "connect", State: "canceled", PreviousEndedRentalID: rentalRef(2), TimeDeltaWithPrevious: minutes(30)},
		{RentalID: 6, CarID: 12, CheckinType: "mobile", State: "canceled", DelayAtCheckout: minutes(10)},
		{RentalID: 7, CarID: 10, CheckinType: "mobile", State: "ended"},
		{RentalID: 8, CarID: 13, CheckinType: "connect", State: "ended", DelayAtCheckout: minutes(200)},
		{RentalID: 9, CarID: 12, CheckinType: "mobile", State: "canceled", PreviousEndedRentalID: rentalRef(1), TimeDeltaWithPrevious: minutes(90)},
		{RentalID: 10, CarID: 14, CheckinType: "mobile", State: "canceled"},
	}
}

func rentalIDs(rentals []models.Rental) []int64 {
	out := make([]int64, len(rentals))
	for i, r := range rentals {
		out[i] = r.RentalID
	}
	return out
}

func TestClean(t *testing.T) {
	clean := Clean(sampleRentals())
	assert.Equal(t, []int64{1, 2, 8, 4, 5, 9, 10}, rentalIDs(clean))

	for _, r := range clean {
		switch r.State {
		case models.StateCanceled:
			assert.Nil(t, r.DelayAtCheckout)
		case models.StateEnded:
			require.NotNil(t, r.DelayAtCheckout)
			assert.LessOrEqual(t, *r.DelayAtCheckout, 4320.0)
			assert.GreaterOrEqual(t, *r.DelayAtCheckout, -4320.0)
		default:
			t.Fatalf("unexpected state %q", r.State)
		}
	}
}

func TestCleanKeepsBoundaries(t *testing.T) {
	clean := Clean([]models.Rental{
		{RentalID: 1, State: "ended", DelayAtCheckout: minutes(4320)},
		{RentalID: 2, State: "ended", DelayAtCheckout: minutes(-4320)},
		{RentalID: 3, State: "ended", DelayAtCheckout: minutes(4320.5)},
	})
	assert.Equal(t, []int64{1, 2}, rentalIDs(clean))
}

func TestStateDistributionAndCancellationRate(t *testing.T) {
	clean := Clean(sampleRentals())

	states := StateDistribution(clean)
	require.Len(t, states, 2)
	assert.Equal(t, "canceled", states[0].State)
	assert.Equal(t, 4, states[0].Count)
	assert.InDelta(t, 4.0/7.0, states[0].Proportion, 1e-9)
	assert.Equal(t, "ended", states[1].State)

	assert.Equal(t, 57.14, CancellationRate(clean))
	assert.Equal(t, 0.0, CancellationRate(nil))
}

func TestLatenessAttribution(t *testing.T) {
	a := LatenessAttribution(Clean(sampleRentals()))
	assert.Equal(t, 1, a.RepeatedRefs)
	assert.Equal(t, []int64{1, 2}, rentalIDs(a.PreviousRentals))
	assert.Equal(t, 100, a.Percent)
}

func TestLatenessAttributionWithoutPreviousRentals(t *testing.T) {
	a := LatenessAttribution([]models.Rental{
		{RentalID: 1, State: "canceled"},
	})
	assert.Equal(t, 0, a.Percent)
	assert.Empty(t, a.PreviousRentals)
}

func TestImpactCurve(t *testing.T) {
	curve := ImpactCurve(Clean(sampleRentals()))
	require.Len(t, curve, 12)
	assert.Equal(t, ImpactPoint{Threshold: 10}, curve[0])
	assert.Equal(t, ImpactPoint{Threshold: 30, Mobile: 1}, curve[1])
	assert.Equal(t, ImpactPoint{Threshold: 190, Mobile: 1}, curve[9])
	assert.Equal(t, ImpactPoint{Threshold: 210, Mobile: 1, Connect: 1}, curve[10])
	assert.Equal(t, 230, curve[11].Threshold)
}

func TestLateCheckouts(t *testing.T) {
	freq := LateCheckouts(Clean(sampleRentals()))
	assert.Equal(t, 66, freq.Percent)
	assert.Equal(t, 115.0, freq.MeanMinutes)

	assert.Equal(t, LateFrequency{}, LateCheckouts(nil))
}

func TestDistinctCars(t *testing.T) {
	assert.Equal(t, 5, DistinctCars(Clean(sampleRentals())))
}

func TestTopLateCars(t *testing.T) {
	cars := TopLateCars(Clean(sampleRentals()), 15)
	require.Len(t, cars, 2)

	assert.Equal(t, int64(10), cars[0].CarID)
	assert.Equal(t, 1, cars[0].Late)
	assert.Equal(t, 2, cars[0].Count)
	assert.Equal(t, 50.0, cars[0].LateRate)
	require.NotNil(t, cars[0].MeanDelay)
	assert.Equal(t, 30.0, *cars[0].MeanDelay)

	assert.Equal(t, int64(12), cars[1].CarID)
	assert.Equal(t, 0.0, cars[1].LateRate)
	assert.Nil(t, cars[1].MeanDelay)

	assert.Len(t, TopLateCars(Clean(sampleRentals()), 1), 1)
}

func TestTopNChoices(t *testing.T) {
	assert.Equal(t, []int{15, 20, 25, 30, 35, 40, 45, 50}, TopNChoices())
	assert.True(t, ValidTopN(15))
	assert.True(t, ValidTopN(50))
	assert.False(t, ValidTopN(17))
	assert.False(t, ValidTopN(55))
	assert.False(t, ValidTopN(10))
}

func TestRevenueLoss(t *testing.T) {
	assert.Equal(t, 200.0, RevenueLoss(100, 4, 50))
	assert.Equal(t, 0.0, RevenueLoss(0, 4, 50))
}

func delayFrame() *dataset.Frame {
	header := []string{"rental_id", "car_id", "checkin_type", "state", "delay_at_checkout_in_minutes", "previous_ended_rental_id", "time_delta_with_previous_rental_in_minutes"}
	raw := [][]string{
		{"1", "10", "mobile", "ended", "30", "", ""},
		{"2", "10", "connect", "ended", "-20", "", ""},
		{"3", "11", "mobile", "ended", "5000", "", ""},
		{"4", "11", "mobile", "canceled", "", "1", "60"},
		{"5", "12", "connect", "canceled", "", "2", "30"},
		{"6", "12", "mobile", "canceled", "10", "", ""},
		{"7", "10", "mobile", "ended", "", "", ""},
		{"8", "13", "connect", "ended", "200", "", ""},
		{"9", "12", "mobile", "canceled", "", "1", "90"},
		{"10", "14", "mobile", "canceled", "", "", ""},
	}
	return dataset.NewFrame(header, raw)
}

func TestRentalsFromFrame(t *testing.T) {
	rentals, err := RentalsFromFrame(delayFrame())
	require.NoError(t, err)
	assert.Equal(t, sampleRentals(), rentals)
}

func TestRentalsFromFrameMissingColumn(t *testing.T) {
	_, err := RentalsFromFrame(dataset.NewFrame([]string{"rental_id"}, [][]string{{"1"}}))
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	pricing := dataset.NewFrame(
		[]string{"model_key", "rental_price_per_day"},
		[][]string{{"Audi", "40"}, {"BMW", "60"}},
	)

	report, err := Build(delayFrame(), pricing, 15)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Rows)
	assert.Len(t, report.Preview, 5)
	assert.Equal(t, 57.14, report.CancellationRate)
	assert.Equal(t, 100, report.Lateness.Percent)
	assert.Equal(t, 5, report.DistinctCars)
	assert.Equal(t, 50.0, report.AveragePrice)
	assert.Equal(t, 4, report.CanceledCount)
	assert.Equal(t, 200.0, report.RevenueLoss)
	assert.Equal(t, ImpactPoint{Threshold: 30, Mobile: 1}, report.Resolved[1])

	_, err = Build(delayFrame(), pricing, 12)
	assert.Error(t, err)
}
