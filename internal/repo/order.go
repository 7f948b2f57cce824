package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldserve/orders-api/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

// ListFilter holds the optional equality filters and the pagination window
// for ListOrders. Blank text filters are treated as absent.
type ListFilter struct {
	Area       string
	Technician string
	Status     models.OrderStatus
	Offset     int
	Limit      int
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.ServiceOrder) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	if err := r.DB.WithContext(ctx).Preload("Parts").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ReplaceOrder persists updated scalar fields and swaps the whole part set:
// existing parts are deleted and the order's current in-memory parts are
// inserted, all in one transaction.
func (r *GormRepo) ReplaceOrder(ctx context.Context, order *models.ServiceOrder) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_order_id = ?", order.ID).Delete(&models.ServicePart{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Parts").Save(order).Error; err != nil {
			return err
		}
		if len(order.Parts) == 0 {
			return nil
		}
		return tx.Create(&order.Parts).Error
	})
}

// DeleteOrder removes the order and its parts. Children go first so the
// cascade is explicit rather than left to the store.
func (r *GormRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_order_id = ?", id).Delete(&models.ServicePart{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.ServiceOrder{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListOrders applies the filters, counts the full match set, then returns the
// requested window ordered by creation time descending.
func (r *GormRepo) ListOrders(ctx context.Context, f ListFilter) (int64, []models.ServiceOrder, error) {
	q := r.DB.WithContext(ctx).Model(&models.ServiceOrder{})

	if area := strings.TrimSpace(f.Area); area != "" {
		q = q.Where("area = ?", f.Area)
	}
	if tech := strings.TrimSpace(f.Technician); tech != "" {
		q = q.Where("technician_name = ?", f.Technician)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.ServiceOrder
	if err := q.Preload("Parts").
		Order("created_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}

	return total, orders, nil
}
