package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusOpen       OrderStatus = "Open"
	StatusInProgress OrderStatus = "InProgress"
	StatusDone       OrderStatus = "Done"
	StatusCanceled   OrderStatus = "Canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusCanceled:
		return true
	}
	return false
}

type ServiceOrder struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	ServiceName    string          `gorm:"size:120;not null"                 json:"service_name"`
	Area           string          `gorm:"size:80;not null;index"            json:"area"`
	TechnicianName string          `gorm:"size:120;not null;index"           json:"technician_name"`
	Status         OrderStatus     `gorm:"type:text;not null;index"          json:"status"`
	CreatedAt      time.Time       `gorm:"not null;index"                    json:"created_at"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(18,2);not null"       json:"total_cost"`

	Parts []ServicePart `gorm:"foreignKey:ServiceOrderID;constraint:OnDelete:CASCADE" json:"parts"`
}

func (ServiceOrder) TableName() string { return "service_orders" }

type ServicePart struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	ServiceOrderID uuid.UUID       `gorm:"type:uuid;not null;index"    json:"service_order_id"`
	PartName       string          `gorm:"size:120;not null"           json:"part_name"`
	Quantity       int             `gorm:"not null;check:quantity>=1"  json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
}

func (ServicePart) TableName() string { return "service_parts" }

// LineTotal is derived, never stored.
func (p ServicePart) LineTotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// RecalcTotal recomputes TotalCost from the current in-memory part set.
// Callers must invoke it before every persist of a new or modified order;
// an empty part set sums to zero.
func (o *ServiceOrder) RecalcTotal() {
	total := decimal.Zero
	for _, p := range o.Parts {
		total = total.Add(p.LineTotal())
	}
	o.TotalCost = total
}
