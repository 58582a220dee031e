package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	promoDomain "github.com/stayhub/service-booking/internal/domain/promotion"
	"github.com/stayhub/service-booking/pkg/domain"
)

// CreatePromotionRequest holds data to create a promotion.
type CreatePromotionRequest struct {
	Code              string `json:"code" binding:"required"`
	DiscountType      string `json:"discount_type" binding:"required"`
	DiscountValue     int64  `json:"discount_value" binding:"required"`
	MinNights         int    `json:"min_nights"`
	MinAmountCents    int64  `json:"min_amount_cents"`
	MaxTotalUses      int    `json:"max_total_uses"`
	MaxUsesPerPhone   int    `json:"max_uses_per_phone"`
	MaxUsesPerCard    int    `json:"max_uses_per_card"`
	MaxUsesPerDevice  int    `json:"max_uses_per_device"`
	MaxUsesPerAccount int    `json:"max_uses_per_account"`
	MaxUsesPerLimit   int    `json:"max_uses_per_limit"`
	ValidFrom         string `json:"valid_from"`
	ValidUntil        string `json:"valid_until"`
}

// PromotionDTO is the API response representation of a promotion.
type PromotionDTO struct {
	ID                uuid.UUID  `json:"id"`
	Code              string     `json:"code"`
	DiscountType      string     `json:"discount_type"`
	DiscountValue     int64      `json:"discount_value"`
	MinNights         int        `json:"min_nights"`
	MinAmountCents    int64      `json:"min_amount_cents"`
	MaxTotalUses      int        `json:"max_total_uses"`
	MaxUsesPerPhone   int        `json:"max_uses_per_phone"`
	MaxUsesPerCard    int        `json:"max_uses_per_card"`
	MaxUsesPerDevice  int        `json:"max_uses_per_device"`
	MaxUsesPerAccount int        `json:"max_uses_per_account"`
	MaxUsesPerLimit   int        `json:"max_uses_per_limit"`
	ValidFrom         *time.Time `json:"valid_from,omitempty"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
}

// PromotionUsageDTO is the admin usage report for one promotion.
type PromotionUsageDTO struct {
	PromotionID  uuid.UUID `json:"promotion_id"`
	Code         string    `json:"code"`
	TotalUses    int64     `json:"total_uses"`
	MaxTotalUses int       `json:"max_total_uses"`
}

// PromotionService hosts the promotion validation engine and the admin
// promotion use cases.
type PromotionService struct {
	promos   promoDomain.Repository
	bookings bookingDomain.Repository
	logger   *zap.Logger
	now      func() time.Time
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(promos promoDomain.Repository, bookings bookingDomain.Repository, logger *zap.Logger) *PromotionService {
	return &PromotionService{
		promos:   promos,
		bookings: bookings,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Validate runs the full validation sequence for a code against a
// prospective booking. It short-circuits at the first failing rule and
// returns a tagged rejection; it never mutates state, so a rejected attempt
// leaves no trace. The error return is reserved for storage failures.
func (s *PromotionService) Validate(
	ctx context.Context,
	code string,
	userID uuid.UUID,
	candidate promoDomain.Candidate,
	fp bookingDomain.Fingerprint,
) (*promoDomain.DiscountOutcome, *promoDomain.Rejection, error) {
	promo, err := s.promos.FindByCode(ctx, code)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &promoDomain.Rejection{
				Reason:  promoDomain.ReasonNotFound,
				Message: "promotion code not found",
			}, nil
		}
		return nil, nil, err
	}

	now := s.now()
	if !promo.Active() {
		return nil, &promoDomain.Rejection{
			Reason:  promoDomain.ReasonInactive,
			Message: "promotion is not active",
		}, nil
	}
	if promo.Expired(now) {
		return nil, &promoDomain.Rejection{
			Reason:  promoDomain.ReasonExpired,
			Message: "promotion has expired",
		}, nil
	}
	if !promo.WindowContains(now) {
		return nil, &promoDomain.Rejection{
			Reason:  promoDomain.ReasonInactive,
			Message: "promotion is not active yet",
		}, nil
	}

	if candidate.Nights < promo.MinNights() {
		return nil, &promoDomain.Rejection{
			Reason:  promoDomain.ReasonMinimumNightsNotMet,
			Message: fmt.Sprintf("promotion requires a stay of at least %d nights", promo.MinNights()),
		}, nil
	}

	if candidate.SubtotalCents < promo.MinAmountCents() {
		return nil, &promoDomain.Rejection{
			Reason:  promoDomain.ReasonMinimumAmountNotMet,
			Message: fmt.Sprintf("promotion requires a minimum amount of %d cents", promo.MinAmountCents()),
		}, nil
	}

	// Usage counts are derived from committed bookings only; two attempts
	// racing for the last permitted use can both pass. Accepted trade-off.
	if promo.MaxTotalUses() > 0 {
		uses, err := s.bookings.CountPromotionUses(ctx, promo.ID())
		if err != nil {
			return nil, nil, err
		}
		if uses >= int64(promo.MaxTotalUses()) {
			return nil, &promoDomain.Rejection{
				Reason:  promoDomain.ReasonGlobalLimitReached,
				Message: "promotion has reached its total usage limit",
			}, nil
		}
	}

	for _, component := range promoDomain.LimitedComponents {
		limit := promo.LimitFor(component)
		if limit == 0 {
			continue
		}
		value := fp.Component(component)
		if component == promoDomain.ComponentAccount {
			value = userID.String()
		}
		// A component the attempt did not supply cannot be checked and
		// cannot be violated; it is skipped.
		if value == "" {
			continue
		}
		uses, err := s.bookings.CountPromotionUsesByComponent(ctx, promo.ID(), component, value)
		if err != nil {
			return nil, nil, err
		}
		if uses >= int64(limit) {
			return nil, &promoDomain.Rejection{
				Reason:  promoDomain.LimitReason(component),
				Message: fmt.Sprintf("promotion usage limit reached for this %s", component),
			}, nil
		}
	}

	discount := promo.Discount(candidate.SubtotalCents)
	return &promoDomain.DiscountOutcome{
		PromotionID:     promo.ID(),
		Code:            promo.Code(),
		DiscountCents:   discount,
		FinalPriceCents: candidate.SubtotalCents - discount,
	}, nil, nil
}

// CreatePromotion creates a new promotion (admin/manager).
func (s *PromotionService) CreatePromotion(ctx context.Context, createdBy uuid.UUID, req CreatePromotionRequest) (*PromotionDTO, error) {
	cfg, err := configFromRequest(req)
	if err != nil {
		return nil, err
	}

	promo, err := promoDomain.NewPromotion(req.Code, cfg, createdBy)
	if err != nil {
		return nil, err
	}

	if err := s.promos.Save(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to save promotion: %w", err)
	}

	s.logger.Info("promotion created", zap.String("code", promo.Code()))
	return toPromotionDTO(promo), nil
}

// UpdatePromotion replaces a promotion's rule set (admin/manager).
func (s *PromotionService) UpdatePromotion(ctx context.Context, id uuid.UUID, req CreatePromotionRequest) (*PromotionDTO, error) {
	promo, err := s.promos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, err := configFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := promo.UpdateRules(cfg); err != nil {
		return nil, err
	}

	if err := s.promos.Update(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}

	s.logger.Info("promotion updated", zap.String("code", promo.Code()))
	return toPromotionDTO(promo), nil
}

// DeactivatePromotion switches a promotion off without deleting it.
func (s *PromotionService) DeactivatePromotion(ctx context.Context, id uuid.UUID) (*PromotionDTO, error) {
	promo, err := s.promos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	promo.Deactivate()
	if err := s.promos.Update(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to deactivate promotion: %w", err)
	}
	return toPromotionDTO(promo), nil
}

// DeletePromotion soft-deletes a promotion.
func (s *PromotionService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	if err := s.promos.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("promotion deleted", zap.String("promotion_id", id.String()))
	return nil
}

// GetActivePromotions returns all currently active promotions.
func (s *PromotionService) GetActivePromotions(ctx context.Context) ([]*PromotionDTO, error) {
	promos, err := s.promos.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*PromotionDTO, len(promos))
	for i, p := range promos {
		dtos[i] = toPromotionDTO(p)
	}
	return dtos, nil
}

// ListPromotions returns promotions with pagination (admin).
func (s *PromotionService) ListPromotions(ctx context.Context, page, limit int) ([]*PromotionDTO, int64, error) {
	promos, total, err := s.promos.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*PromotionDTO, len(promos))
	for i, p := range promos {
		dtos[i] = toPromotionDTO(p)
	}
	return dtos, total, nil
}

// GetUsage returns the derived usage count for a promotion (admin).
func (s *PromotionService) GetUsage(ctx context.Context, id uuid.UUID) (*PromotionUsageDTO, error) {
	promo, err := s.promos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uses, err := s.bookings.CountPromotionUses(ctx, promo.ID())
	if err != nil {
		return nil, err
	}

	return &PromotionUsageDTO{
		PromotionID:  promo.ID(),
		Code:         promo.Code(),
		TotalUses:    uses,
		MaxTotalUses: promo.MaxTotalUses(),
	}, nil
}

func configFromRequest(req CreatePromotionRequest) (promoDomain.Config, error) {
	cfg := promoDomain.Config{
		DiscountType:      promoDomain.DiscountType(req.DiscountType),
		DiscountValue:     req.DiscountValue,
		MinNights:         req.MinNights,
		MinAmountCents:    req.MinAmountCents,
		MaxTotalUses:      req.MaxTotalUses,
		MaxUsesPerPhone:   req.MaxUsesPerPhone,
		MaxUsesPerCard:    req.MaxUsesPerCard,
		MaxUsesPerDevice:  req.MaxUsesPerDevice,
		MaxUsesPerAccount: req.MaxUsesPerAccount,
		MaxUsesPerLimit:   req.MaxUsesPerLimit,
	}
	if req.ValidFrom != "" {
		t, err := time.Parse(time.RFC3339, req.ValidFrom)
		if err != nil {
			return cfg, domain.NewValidationError("invalid valid_from format (use RFC3339)")
		}
		cfg.ValidFrom = t
	}
	if req.ValidUntil != "" {
		t, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			return cfg, domain.NewValidationError("invalid valid_until format (use RFC3339)")
		}
		cfg.ValidUntil = t
	}
	return cfg, nil
}

func toPromotionDTO(p *promoDomain.Promotion) *PromotionDTO {
	cfg := p.RuleConfig()
	dto := &PromotionDTO{
		ID:                p.ID(),
		Code:              p.Code(),
		DiscountType:      string(cfg.DiscountType),
		DiscountValue:     cfg.DiscountValue,
		MinNights:         cfg.MinNights,
		MinAmountCents:    cfg.MinAmountCents,
		MaxTotalUses:      cfg.MaxTotalUses,
		MaxUsesPerPhone:   cfg.MaxUsesPerPhone,
		MaxUsesPerCard:    cfg.MaxUsesPerCard,
		MaxUsesPerDevice:  cfg.MaxUsesPerDevice,
		MaxUsesPerAccount: cfg.MaxUsesPerAccount,
		MaxUsesPerLimit:   cfg.MaxUsesPerLimit,
		Active:            p.Active(),
		CreatedAt:         p.CreatedAt(),
	}
	if !cfg.ValidFrom.IsZero() {
		t := cfg.ValidFrom
		dto.ValidFrom = &t
	}
	if !cfg.ValidUntil.IsZero() {
		t := cfg.ValidUntil
		dto.ValidUntil = &t
	}
	return dto
}
