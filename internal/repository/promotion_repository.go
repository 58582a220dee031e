package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	promoDomain "github.com/stayhub/service-booking/internal/domain/promotion"
	"github.com/stayhub/service-booking/pkg/domain"
)

// PromotionModel is the GORM model for the promotions table.
type PromotionModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code              string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountType      string     `gorm:"type:varchar(20);not null"`
	DiscountValue     int64      `gorm:"not null"`
	MinNights         int        `gorm:"not null;default:0"`
	MinAmountCents    int64      `gorm:"not null;default:0"`
	MaxTotalUses      int        `gorm:"not null;default:0"`
	MaxUsesPerPhone   int        `gorm:"not null;default:0"`
	MaxUsesPerCard    int        `gorm:"not null;default:0"`
	MaxUsesPerDevice  int        `gorm:"not null;default:0"`
	MaxUsesPerAccount int        `gorm:"not null;default:0"`
	MaxUsesPerLimit   int        `gorm:"not null;default:0"`
	ValidFrom         *time.Time `gorm:"type:timestamptz"`
	ValidUntil        *time.Time `gorm:"type:timestamptz"`
	Active            bool       `gorm:"not null;default:true"`
	CreatedBy         uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt         time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt         time.Time  `gorm:"type:timestamptz;not null"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// TableName sets the table name.
func (PromotionModel) TableName() string { return "promotions" }

// GormPromotionRepository implements the promotion repository using GORM.
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository.
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// Save persists a new promotion.
func (r *GormPromotionRepository) Save(ctx context.Context, p *promoDomain.Promotion) error {
	model := toPromotionModel(p)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update updates a promotion.
func (r *GormPromotionRepository) Update(ctx context.Context, p *promoDomain.Promotion) error {
	model := toPromotionModel(p)
	return r.db.WithContext(ctx).Select("*").Omit("created_at", "deleted_at").
		Where("id = ?", model.ID).Updates(&model).Error
}

// FindByCode returns a promotion by its code, matched case-insensitively.
func (r *GormPromotionRepository) FindByCode(ctx context.Context, code string) (*promoDomain.Promotion, error) {
	var model PromotionModel
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := r.db.WithContext(ctx).Where("UPPER(code) = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Promotion", code)
		}
		return nil, err
	}
	return toPromotionDomain(&model), nil
}

// FindByID returns a promotion by ID.
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*promoDomain.Promotion, error) {
	var model PromotionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Promotion", id.String())
		}
		return nil, err
	}
	return toPromotionDomain(&model), nil
}

// FindActive returns all promotions that are switched on and inside their
// validity window.
func (r *GormPromotionRepository) FindActive(ctx context.Context) ([]*promoDomain.Promotion, error) {
	var models []PromotionModel
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Where("active = true").
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Find(&models).Error; err != nil {
		return nil, err
	}

	promos := make([]*promoDomain.Promotion, len(models))
	for i := range models {
		promos[i] = toPromotionDomain(&models[i])
	}
	return promos, nil
}

// List returns promotions with pagination.
func (r *GormPromotionRepository) List(ctx context.Context, page, limit int) ([]*promoDomain.Promotion, int64, error) {
	var total int64
	r.db.WithContext(ctx).Model(&PromotionModel{}).Count(&total)

	var models []PromotionModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	promos := make([]*promoDomain.Promotion, len(models))
	for i := range models {
		promos[i] = toPromotionDomain(&models[i])
	}
	return promos, total, nil
}

// Delete soft-deletes the promotion.
func (r *GormPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&PromotionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Promotion", id.String())
	}
	return nil
}

func toPromotionModel(p *promoDomain.Promotion) PromotionModel {
	cfg := p.RuleConfig()
	return PromotionModel{
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
		ValidFrom:         timeOrNil(cfg.ValidFrom),
		ValidUntil:        timeOrNil(cfg.ValidUntil),
		Active:            p.Active(),
		CreatedBy:         p.CreatedBy(),
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}

func toPromotionDomain(m *PromotionModel) *promoDomain.Promotion {
	cfg := promoDomain.Config{
		DiscountType:      promoDomain.DiscountType(m.DiscountType),
		DiscountValue:     m.DiscountValue,
		MinNights:         m.MinNights,
		MinAmountCents:    m.MinAmountCents,
		MaxTotalUses:      m.MaxTotalUses,
		MaxUsesPerPhone:   m.MaxUsesPerPhone,
		MaxUsesPerCard:    m.MaxUsesPerCard,
		MaxUsesPerDevice:  m.MaxUsesPerDevice,
		MaxUsesPerAccount: m.MaxUsesPerAccount,
		MaxUsesPerLimit:   m.MaxUsesPerLimit,
		ValidFrom:         timeOrZero(m.ValidFrom),
		ValidUntil:        timeOrZero(m.ValidUntil),
	}
	return promoDomain.Reconstitute(m.ID, m.Code, cfg, m.Active, m.CreatedBy, m.CreatedAt, m.UpdatedAt)
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
