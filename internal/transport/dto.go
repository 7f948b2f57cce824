package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldserve/orders-api/internal/models"
)

type PartInput struct {
	PartName  string          `json:"part_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateOrderRequest struct {
	ServiceName    string             `json:"service_name"`
	Area           string             `json:"area"`
	TechnicianName string             `json:"technician_name"`
	Status         models.OrderStatus `json:"status"`
	Parts          []PartInput        `json:"parts"`
}

// UpdateOrderRequest replaces the whole order: scalar fields are overwritten
// and the part set is swapped for the one submitted.
type UpdateOrderRequest struct {
	ServiceName    string             `json:"service_name"`
	Area           string             `json:"area"`
	TechnicianName string             `json:"technician_name"`
	Status         models.OrderStatus `json:"status"`
	Parts          []PartInput        `json:"parts"`
}

type PartResponse struct {
	ID        uuid.UUID       `json:"id"`
	PartName  string          `json:"part_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderResponse struct {
	ID             uuid.UUID          `json:"id"`
	ServiceName    string             `json:"service_name"`
	Area           string             `json:"area"`
	TechnicianName string             `json:"technician_name"`
	Status         models.OrderStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	TotalCost      decimal.Decimal    `json:"total_cost"`
	Parts          []PartResponse     `json:"parts"`
}

type PagedResult struct {
	Items      []OrderResponse `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int64           `json:"total_count"`
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

func ToOrderResponse(o *models.ServiceOrder) OrderResponse {
	parts := make([]PartResponse, len(o.Parts))
	for i, p := range o.Parts {
		parts[i] = PartResponse{
			ID:        p.ID,
			PartName:  p.PartName,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			LineTotal: p.LineTotal(),
		}
	}
	return OrderResponse{
		ID:             o.ID,
		ServiceName:    o.ServiceName,
		Area:           o.Area,
		TechnicianName: o.TechnicianName,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		TotalCost:      o.TotalCost,
		Parts:          parts,
	}
}

func ToOrderResponses(orders []models.ServiceOrder) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
