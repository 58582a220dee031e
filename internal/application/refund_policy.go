package application

import "time"

// RefundPolicy computes the refund owed when a paid booking is cancelled.
type RefundPolicy struct {
	// FullRefundCutoff is how long before check-in a cancellation still
	// refunds everything.
	FullRefundCutoff time.Duration

	// PartialRefundPercent applies to cancellations inside the cutoff.
	PartialRefundPercent int
}

// RefundFor returns the refund in cents for a cancellation happening at now.
// Unpaid bookings refund nothing.
func (p RefundPolicy) RefundFor(paidCents int64, checkIn, now time.Time) int64 {
	if paidCents <= 0 {
		return 0
	}
	if checkIn.Sub(now) >= p.FullRefundCutoff {
		return paidCents
	}
	return paidCents * int64(p.PartialRefundPercent) / 100
}

// SweepPolicy holds the time windows the status sweeper applies.
type SweepPolicy struct {
	// CheckInGrace is how long after the check-in date an arrival is still
	// auto-checked-in; past it the booking becomes a no-show.
	CheckInGrace time.Duration

	// CheckOutCutoff is how long after the check-out date a stay is
	// considered fully elapsed and auto-checked-out.
	CheckOutCutoff time.Duration
}
