package promotion

import "github.com/google/uuid"

// Component is one of the correlated identifiers used to detect repeated
// redemption of a promotion across bookings.
type Component string

const (
	ComponentPhone   Component = "phone"
	ComponentCard    Component = "card"
	ComponentDevice  Component = "device"
	ComponentAccount Component = "account"
)

// LimitedComponents are the components a per-component usage limit can apply
// to. The IP address is recorded on bookings for offline analysis but has no
// redemption limit of its own.
var LimitedComponents = []Component{ComponentPhone, ComponentCard, ComponentDevice, ComponentAccount}

// RejectionReason tags why a promotion was refused for a booking attempt.
type RejectionReason string

const (
	ReasonNotFound            RejectionReason = "not_found"
	ReasonInactive            RejectionReason = "inactive"
	ReasonExpired             RejectionReason = "expired"
	ReasonMinimumNightsNotMet RejectionReason = "minimum_nights_not_met"
	ReasonMinimumAmountNotMet RejectionReason = "minimum_amount_not_met"
	ReasonGlobalLimitReached  RejectionReason = "global_limit_reached"
	ReasonPhoneLimitReached   RejectionReason = "phone_limit_reached"
	ReasonCardLimitReached    RejectionReason = "card_limit_reached"
	ReasonDeviceLimitReached  RejectionReason = "device_limit_reached"
	ReasonAccountLimitReached RejectionReason = "account_limit_reached"
)

// LimitReason maps a fingerprint component to its rejection reason.
func LimitReason(c Component) RejectionReason {
	switch c {
	case ComponentPhone:
		return ReasonPhoneLimitReached
	case ComponentCard:
		return ReasonCardLimitReached
	case ComponentDevice:
		return ReasonDeviceLimitReached
	default:
		return ReasonAccountLimitReached
	}
}

// Rejection is an expected, user-facing validation failure. It is a value,
// not an error: rejected attempts are a normal outcome.
type Rejection struct {
	Reason  RejectionReason `json:"reason"`
	Message string          `json:"message"`
}

// Candidate describes the prospective booking a code is validated against.
type Candidate struct {
	Nights        int
	SubtotalCents int64
}

// DiscountOutcome is the result of a successful validation. The invariant
// DiscountCents + FinalPriceCents == subtotal holds exactly.
type DiscountOutcome struct {
	PromotionID     uuid.UUID `json:"promotion_id"`
	Code            string    `json:"code"`
	DiscountCents   int64     `json:"discount_cents"`
	FinalPriceCents int64     `json:"final_price_cents"`
}
