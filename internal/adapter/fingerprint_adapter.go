package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"

	"github.com/stayhub/service-booking/internal/domain/booking"
)

// RawAttempt carries the raw identifiers available for a booking attempt.
// Any field may be empty: a bank-transfer booking has no card number, an
// API client may send no device fingerprint.
type RawAttempt struct {
	Phone             string
	CardNumber        string
	DeviceFingerprint string
	IPAddress         string
}

// FingerprintExtractor is the Anti-Corruption Layer interface for deriving a
// usage fingerprint from a booking attempt. The production hashing service
// is an external collaborator; this interface keeps the domain decoupled
// from it.
type FingerprintExtractor interface {
	Extract(attempt RawAttempt) booking.Fingerprint
}

// SHA256Extractor is the default extractor. It hashes the phone number and
// the card number (last-ten digits only, so the full PAN never reaches the
// hash) and passes the device fingerprint and IP through untouched.
type SHA256Extractor struct {
	logger *zap.Logger
}

// NewSHA256Extractor creates the default fingerprint extractor.
func NewSHA256Extractor(logger *zap.Logger) *SHA256Extractor {
	return &SHA256Extractor{logger: logger}
}

// Extract derives the fingerprint components that were supplied; absent
// inputs stay absent rather than hashing to a constant.
func (e *SHA256Extractor) Extract(attempt RawAttempt) booking.Fingerprint {
	fp := booking.Fingerprint{
		DeviceFingerprint: strings.TrimSpace(attempt.DeviceFingerprint),
		IPAddress:         strings.TrimSpace(attempt.IPAddress),
	}
	if phone := normalizeDigits(attempt.Phone); phone != "" {
		fp.PhoneHash = hash(phone)
	}
	if card := normalizeDigits(attempt.CardNumber); card != "" {
		if len(card) > 10 {
			card = card[len(card)-10:]
		}
		fp.CardHash = hash(card)
	}

	if fp.Empty() {
		e.logger.Debug("booking attempt carried no fingerprint components")
	}
	return fp
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// normalizeDigits strips everything but digits so formatting differences
// cannot defeat matching.
func normalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
