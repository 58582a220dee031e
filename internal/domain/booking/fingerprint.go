package booking

import "github.com/stayhub/service-booking/internal/domain/promotion"

// Fingerprint is the set of correlated identifiers captured with a booking
// attempt. Every component is optional; an absent component simply cannot
// participate in abuse matching.
type Fingerprint struct {
	PhoneHash         string
	CardHash          string
	DeviceFingerprint string
	IPAddress         string
}

// Component returns the fingerprint value for a limited component, or ""
// when the attempt did not supply it. The account component is the user ID
// and lives on the booking itself, not in the fingerprint.
func (f Fingerprint) Component(c promotion.Component) string {
	switch c {
	case promotion.ComponentPhone:
		return f.PhoneHash
	case promotion.ComponentCard:
		return f.CardHash
	case promotion.ComponentDevice:
		return f.DeviceFingerprint
	default:
		return ""
	}
}

// Empty reports whether no component was captured at all.
func (f Fingerprint) Empty() bool {
	return f.PhoneHash == "" && f.CardHash == "" && f.DeviceFingerprint == "" && f.IPAddress == ""
}
