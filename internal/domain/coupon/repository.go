// internal/domain/coupon/repository.go
package coupon

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository provides read access to stored coupons for validation.
// Redemption happens through Redeem inside the order transaction.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// GormRepository implements Repository on top of GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a GORM-backed coupon repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// FindByCode looks up a coupon by its code
func (r *GormRepository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponInvalid
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	return &c, nil
}
