package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/costing"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostHeaderModel is the persistence model for the CostHeader entity.
type CostHeaderModel struct {
	VersionedModel
	DocumentID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Description string               `gorm:"type:varchar(500);not null"`
	DueDate     time.Time            `gorm:"not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	Amount      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CostHeaderModel) TableName() string {
	return "cost_headers"
}

// ToDomain converts the persistence model to a domain CostHeader entity.
// Lines are loaded separately by the repository.
func (m *CostHeaderModel) ToDomain() *costing.CostHeader {
	return &costing.CostHeader{
		VersionedBase: m.ToDomainVersioned(),
		DocumentID:    m.DocumentID,
		Description:   m.Description,
		DueDate:       m.DueDate,
		Currency:      m.Currency,
		Amount:        m.Amount,
	}
}

// CostHeaderModelFromDomain converts a domain CostHeader to a persistence model.
func CostHeaderModelFromDomain(header *costing.CostHeader) *CostHeaderModel {
	m := &CostHeaderModel{
		DocumentID:  header.DocumentID,
		Description: header.Description,
		DueDate:     header.DueDate,
		Currency:    header.Currency,
		Amount:      header.Amount,
	}
	m.FromDomainVersioned(header.VersionedBase)
	return m
}

// CostLineModel is the persistence model for the CostLine entity.
type CostLineModel struct {
	VersionedModel
	CostHeaderID uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Description  string                     `gorm:"type:varchar(500);not null"`
	Quantity     decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	VATRate      decimal.Decimal            `gorm:"type:decimal(8,4);not null"`
	Amount       decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	Method       costing.DistributionMethod `gorm:"type:smallint;not null;default:0"`
}

// TableName returns the table name for GORM
func (CostLineModel) TableName() string {
	return "cost_lines"
}

// ToDomain converts the persistence model to a domain CostLine entity.
func (m *CostLineModel) ToDomain() *costing.CostLine {
	return &costing.CostLine{
		VersionedBase: m.ToDomainVersioned(),
		CostHeaderID:  m.CostHeaderID,
		Description:   m.Description,
		Quantity:      m.Quantity,
		VATRate:       m.VATRate,
		Amount:        m.Amount,
		Method:        m.Method,
	}
}

// CostLineModelFromDomain converts a domain CostLine to a persistence model.
func CostLineModelFromDomain(line *costing.CostLine) *CostLineModel {
	m := &CostLineModel{
		CostHeaderID: line.CostHeaderID,
		Description:  line.Description,
		Quantity:     line.Quantity,
		VATRate:      line.VATRate,
		Amount:       line.Amount,
		Method:       line.Method,
	}
	m.FromDomainVersioned(line.VersionedBase)
	return m
}
