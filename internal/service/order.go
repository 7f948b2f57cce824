package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldserve/orders-api/internal/logging"
	"github.com/fieldserve/orders-api/internal/models"
	"github.com/fieldserve/orders-api/internal/repo"
	"github.com/fieldserve/orders-api/internal/search"
	"github.com/fieldserve/orders-api/internal/transport"
	"github.com/fieldserve/orders-api/internal/util"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
)

const (
	maxServiceNameLen = 120
	maxAreaLen        = 80
	maxTechnicianLen  = 120
	maxPartNameLen    = 120
)

// EventPublisher is the optional export side channel for order events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event map[string]any) error
}

type OrderService struct {
	Repo     *repo.GormRepo
	Producer EventPublisher // nil disables event export
	Search   *search.Index  // nil disables the search index
}

// ListQuery carries the raw list parameters. Page and PageSize are clamped,
// blank text filters are ignored.
type ListQuery struct {
	Page       int
	PageSize   int
	Area       string
	Technician string
	Status     models.OrderStatus
}

func validateOrderInput(serviceName, area, technician string, parts []transport.PartInput) error {
	if serviceName == "" || utf8.RuneCountInString(serviceName) > maxServiceNameLen {
		return fmt.Errorf("%w: service_name is required, at most %d chars", ErrValidation, maxServiceNameLen)
	}
	if area == "" || utf8.RuneCountInString(area) > maxAreaLen {
		return fmt.Errorf("%w: area is required, at most %d chars", ErrValidation, maxAreaLen)
	}
	if technician == "" || utf8.RuneCountInString(technician) > maxTechnicianLen {
		return fmt.Errorf("%w: technician_name is required, at most %d chars", ErrValidation, maxTechnicianLen)
	}
	for i, p := range parts {
		if p.PartName == "" || utf8.RuneCountInString(p.PartName) > maxPartNameLen {
			return fmt.Errorf("%w: parts[%d].part_name is required, at most %d chars", ErrValidation, i, maxPartNameLen)
		}
		if p.Quantity < 1 {
			return fmt.Errorf("%w: parts[%d].quantity must be >= 1", ErrValidation, i)
		}
	}
	return nil
}

func buildParts(orderID uuid.UUID, inputs []transport.PartInput) []models.ServicePart {
	parts := make([]models.ServicePart, len(inputs))
	for i, in := range inputs {
		parts[i] = models.ServicePart{
			ID:             uuid.New(),
			ServiceOrderID: orderID,
			PartName:       in.PartName,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
		}
	}
	return parts
}

func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.ServiceOrder, error) {
	if err := validateOrderInput(req.ServiceName, req.Area, req.TechnicianName, req.Parts); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusOpen
	}

	order := &models.ServiceOrder{
		ID:             uuid.New(),
		ServiceName:    req.ServiceName,
		Area:           req.Area,
		TechnicianName: req.TechnicianName,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}
	order.Parts = buildParts(order.ID, req.Parts)
	order.RecalcTotal()

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order.ID, map[string]any{
		"type":       "order_created",
		"order_id":   order.ID.String(),
		"total_cost": order.TotalCost.String(),
	})
	s.index(ctx, order)

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

// UpdateOrder overwrites the order's scalar fields and replaces the whole
// part set with the submitted one. No merging is attempted.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req transport.UpdateOrderRequest) error {
	if err := validateOrderInput(req.ServiceName, req.Area, req.TechnicianName, req.Parts); err != nil {
		return err
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return err
	}

	status := req.Status
	if status == "" {
		status = models.StatusOpen
	}

	order.ServiceName = req.ServiceName
	order.Area = req.Area
	order.TechnicianName = req.TechnicianName
	order.Status = status
	order.Parts = buildParts(order.ID, req.Parts)
	order.RecalcTotal()

	if err := s.Repo.ReplaceOrder(ctx, order); err != nil {
		return err
	}

	s.publish(ctx, order.ID, map[string]any{
		"type":       "order_updated",
		"order_id":   order.ID.String(),
		"total_cost": order.TotalCost.String(),
	})
	s.index(ctx, order)

	return nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return err
	}

	s.publish(ctx, id, map[string]any{
		"type":     "order_deleted",
		"order_id": id.String(),
	})
	if err := s.Search.DeleteOrder(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_delete_failed", "order_id", id, "error", err)
	}

	return nil
}

func (s *OrderService) ListOrders(ctx context.Context, q ListQuery) (transport.PagedResult, error) {
	offset, limit := util.Calculate(q.Page, q.PageSize)
	page := q.Page
	if page < 1 {
		page = 1
	}

	total, orders, err := s.Repo.ListOrders(ctx, repo.ListFilter{
		Area:       q.Area,
		Technician: q.Technician,
		Status:     q.Status,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return transport.PagedResult{}, err
	}

	return transport.PagedResult{
		Items:      transport.ToOrderResponses(orders),
		Page:       page,
		PageSize:   limit,
		TotalCount: total,
	}, nil
}

// SearchOrders queries the full-text index; it fails when search is disabled.
func (s *OrderService) SearchOrders(ctx context.Context, query string, page, size int) (int64, []search.OrderDoc, error) {
	if s.Search == nil {
		return 0, nil, fmt.Errorf("%w: search is not enabled", ErrNotFound)
	}
	from, limit := util.Calculate(page, size)
	return s.Search.Search(ctx, query, from, limit)
}

func (s *OrderService) publish(ctx context.Context, id uuid.UUID, event map[string]any) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, id.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "order_id", id, "error", err)
	}
}

func (s *OrderService) index(ctx context.Context, order *models.ServiceOrder) {
	if err := s.Search.IndexOrder(ctx, order); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "order_id", order.ID, "error", err)
	}
}
