package promotion

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stayhub/service-booking/pkg/domain"
)

// DiscountType represents the type of discount.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Promotion is the aggregate root for promotion codes. Usage counts are
// always derived by counting bookings that reference the promotion, never
// stored, so concurrent redemptions cannot corrupt a counter.
type Promotion struct {
	id                uuid.UUID
	code              string
	discountType      DiscountType
	discountValue     int64 // percent (1-100) or fixed amount in cents
	minNights         int
	minAmountCents    int64
	maxTotalUses      int // 0 = unlimited
	maxUsesPerPhone   int
	maxUsesPerCard    int
	maxUsesPerDevice  int
	maxUsesPerAccount int
	maxUsesPerLimit   int       // fallback per-component limit when a specific one is unset
	validFrom         time.Time // zero = unbounded
	validUntil        time.Time // zero = unbounded
	active            bool
	createdBy         uuid.UUID
	createdAt         time.Time
	updatedAt         time.Time
}

// Config carries the tunable rule set for a promotion.
type Config struct {
	DiscountType      DiscountType
	DiscountValue     int64
	MinNights         int
	MinAmountCents    int64
	MaxTotalUses      int
	MaxUsesPerPhone   int
	MaxUsesPerCard    int
	MaxUsesPerDevice  int
	MaxUsesPerAccount int
	MaxUsesPerLimit   int
	ValidFrom         time.Time
	ValidUntil        time.Time
}

// NewPromotion creates a promotion, enforcing the rule invariants.
func NewPromotion(code string, cfg Config, createdBy uuid.UUID) (*Promotion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.NewValidationError("promotion code is required")
	}
	if cfg.DiscountType != DiscountTypePercentage && cfg.DiscountType != DiscountTypeFixed {
		return nil, domain.NewValidationError("invalid discount type: " + string(cfg.DiscountType))
	}
	if cfg.DiscountValue <= 0 {
		return nil, domain.NewValidationError("discount value must be positive")
	}
	if cfg.DiscountType == DiscountTypePercentage && cfg.DiscountValue > 100 {
		return nil, domain.NewValidationError("percentage discount cannot exceed 100")
	}
	if !cfg.ValidUntil.IsZero() && !cfg.ValidFrom.IsZero() && cfg.ValidUntil.Before(cfg.ValidFrom) {
		return nil, domain.NewValidationError("valid_until must not be before valid_from")
	}

	now := time.Now().UTC()
	return &Promotion{
		id:                uuid.New(),
		code:              code,
		discountType:      cfg.DiscountType,
		discountValue:     cfg.DiscountValue,
		minNights:         cfg.MinNights,
		minAmountCents:    cfg.MinAmountCents,
		maxTotalUses:      cfg.MaxTotalUses,
		maxUsesPerPhone:   cfg.MaxUsesPerPhone,
		maxUsesPerCard:    cfg.MaxUsesPerCard,
		maxUsesPerDevice:  cfg.MaxUsesPerDevice,
		maxUsesPerAccount: cfg.MaxUsesPerAccount,
		maxUsesPerLimit:   cfg.MaxUsesPerLimit,
		validFrom:         cfg.ValidFrom,
		validUntil:        cfg.ValidUntil,
		active:            true,
		createdBy:         createdBy,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// Reconstitute rebuilds a Promotion from persistence.
func Reconstitute(id uuid.UUID, code string, cfg Config, active bool, createdBy uuid.UUID, createdAt, updatedAt time.Time) *Promotion {
	return &Promotion{
		id: id, code: code,
		discountType: cfg.DiscountType, discountValue: cfg.DiscountValue,
		minNights: cfg.MinNights, minAmountCents: cfg.MinAmountCents,
		maxTotalUses:    cfg.MaxTotalUses,
		maxUsesPerPhone: cfg.MaxUsesPerPhone, maxUsesPerCard: cfg.MaxUsesPerCard,
		maxUsesPerDevice: cfg.MaxUsesPerDevice, maxUsesPerAccount: cfg.MaxUsesPerAccount,
		maxUsesPerLimit: cfg.MaxUsesPerLimit,
		validFrom:       cfg.ValidFrom, validUntil: cfg.ValidUntil,
		active: active, createdBy: createdBy, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// WindowContains reports whether now falls inside the validity window.
// A zero bound is unbounded on that side.
func (p *Promotion) WindowContains(now time.Time) bool {
	if !p.validFrom.IsZero() && now.Before(p.validFrom) {
		return false
	}
	if !p.validUntil.IsZero() && now.After(p.validUntil) {
		return false
	}
	return true
}

// Expired reports whether the window has closed.
func (p *Promotion) Expired(now time.Time) bool {
	return !p.validUntil.IsZero() && now.After(p.validUntil)
}

// Discount computes the discount in cents for a subtotal, capped at the
// subtotal. Percentage discounts round half-up to whole cents.
func (p *Promotion) Discount(subtotalCents int64) int64 {
	var discount int64
	switch p.discountType {
	case DiscountTypePercentage:
		discount = (subtotalCents*p.discountValue + 50) / 100
	case DiscountTypeFixed:
		discount = p.discountValue
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	return discount
}

// LimitFor returns the effective per-component usage limit; 0 means the
// component is unconstrained.
func (p *Promotion) LimitFor(c Component) int {
	var limit int
	switch c {
	case ComponentPhone:
		limit = p.maxUsesPerPhone
	case ComponentCard:
		limit = p.maxUsesPerCard
	case ComponentDevice:
		limit = p.maxUsesPerDevice
	case ComponentAccount:
		limit = p.maxUsesPerAccount
	}
	if limit == 0 {
		limit = p.maxUsesPerLimit
	}
	return limit
}

// UpdateRules replaces the rule configuration, re-checking the invariants.
func (p *Promotion) UpdateRules(cfg Config) error {
	updated, err := NewPromotion(p.code, cfg, p.createdBy)
	if err != nil {
		return err
	}
	updated.id = p.id
	updated.active = p.active
	updated.createdAt = p.createdAt
	*p = *updated
	return nil
}

// Deactivate turns the promotion off. Soft delete is handled at the
// persistence layer.
func (p *Promotion) Deactivate() {
	p.active = false
	p.updatedAt = time.Now().UTC()
}

// Activate turns the promotion back on.
func (p *Promotion) Activate() {
	p.active = true
	p.updatedAt = time.Now().UTC()
}

// Getters.
func (p *Promotion) ID() uuid.UUID              { return p.id }
func (p *Promotion) Code() string               { return p.code }
func (p *Promotion) DiscountType() DiscountType { return p.discountType }
func (p *Promotion) DiscountValue() int64       { return p.discountValue }
func (p *Promotion) MinNights() int             { return p.minNights }
func (p *Promotion) MinAmountCents() int64      { return p.minAmountCents }
func (p *Promotion) MaxTotalUses() int          { return p.maxTotalUses }
func (p *Promotion) MaxUsesPerLimit() int       { return p.maxUsesPerLimit }
func (p *Promotion) ValidFrom() time.Time       { return p.validFrom }
func (p *Promotion) ValidUntil() time.Time      { return p.validUntil }
func (p *Promotion) Active() bool               { return p.active }
func (p *Promotion) CreatedBy() uuid.UUID       { return p.createdBy }
func (p *Promotion) CreatedAt() time.Time       { return p.createdAt }
func (p *Promotion) UpdatedAt() time.Time       { return p.updatedAt }

// RuleConfig returns the current rule set, mainly for persistence mapping.
func (p *Promotion) RuleConfig() Config {
	return Config{
		DiscountType:      p.discountType,
		DiscountValue:     p.discountValue,
		MinNights:         p.minNights,
		MinAmountCents:    p.minAmountCents,
		MaxTotalUses:      p.maxTotalUses,
		MaxUsesPerPhone:   p.maxUsesPerPhone,
		MaxUsesPerCard:    p.maxUsesPerCard,
		MaxUsesPerDevice:  p.maxUsesPerDevice,
		MaxUsesPerAccount: p.maxUsesPerAccount,
		MaxUsesPerLimit:   p.maxUsesPerLimit,
		ValidFrom:         p.validFrom,
		ValidUntil:        p.validUntil,
	}
}
