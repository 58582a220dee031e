package promotion

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for promotions. All lookups
// exclude soft-deleted records.
type Repository interface {
	Save(ctx context.Context, p *Promotion) error
	Update(ctx context.Context, p *Promotion) error

	// FindByCode matches case-insensitively.
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	FindActive(ctx context.Context) ([]*Promotion, error)
	List(ctx context.Context, page, limit int) ([]*Promotion, int64, error)

	// Delete soft-deletes the promotion; it is never physically removed.
	Delete(ctx context.Context, id uuid.UUID) error
}
