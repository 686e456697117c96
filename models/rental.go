package models

const (
	StateEnded    = "ended"
	StateCanceled = "canceled"

	CheckinMobile  = "mobile"
	CheckinConnect = "connect"
)

// Rental is one row of the delay analysis dataset.
type Rental struct {
	RentalID              int64
	CarID                 int64
	CheckinType           string
	State                 string
	DelayAtCheckout       *float64
	PreviousEndedRentalID *int64
	TimeDeltaWithPrevious *float64
}

func (r Rental) IsLate() bool {
	return r.DelayAtCheckout != nil && *r.DelayAtCheckout > 0
}
