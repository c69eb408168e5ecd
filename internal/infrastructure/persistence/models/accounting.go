package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/accounting"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document entity.
type DocumentModel struct {
	VersionedModel
	Number      string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type        accounting.DocumentType   `gorm:"type:varchar(20);not null;index"`
	PartnerName string                    `gorm:"type:varchar(200);not null"`
	IssueDate   time.Time                 `gorm:"not null;index"`
	Currency    valueobject.Currency      `gorm:"type:varchar(3);not null"`
	Status      accounting.DocumentStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Note        string                    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document entity.
func (m *DocumentModel) ToDomain() *accounting.Document {
	return &accounting.Document{
		VersionedBase: m.ToDomainVersioned(),
		Number:        m.Number,
		Type:          m.Type,
		PartnerName:   m.PartnerName,
		IssueDate:     m.IssueDate,
		Currency:      m.Currency,
		Status:        m.Status,
		Note:          m.Note,
	}
}

// DocumentModelFromDomain converts a domain Document to a persistence model.
func DocumentModelFromDomain(doc *accounting.Document) *DocumentModel {
	m := &DocumentModel{
		Number:      doc.Number,
		Type:        doc.Type,
		PartnerName: doc.PartnerName,
		IssueDate:   doc.IssueDate,
		Currency:    doc.Currency,
		Status:      doc.Status,
		Note:        doc.Note,
	}
	m.FromDomainVersioned(doc.VersionedBase)
	return m
}

// DocumentLineModel is the persistence model for the DocumentLine entity.
type DocumentLineModel struct {
	VersionedModel
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber  int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VATRate     decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the persistence model to a domain DocumentLine entity.
func (m *DocumentLineModel) ToDomain() *accounting.DocumentLine {
	return &accounting.DocumentLine{
		VersionedBase: m.ToDomainVersioned(),
		DocumentID:    m.DocumentID,
		LineNumber:    m.LineNumber,
		Description:   m.Description,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		VATRate:       m.VATRate,
		Amount:        m.Amount,
	}
}

// DocumentLineModelFromDomain converts a domain DocumentLine to a persistence model.
func DocumentLineModelFromDomain(line *accounting.DocumentLine) *DocumentLineModel {
	m := &DocumentLineModel{
		DocumentID:  line.DocumentID,
		LineNumber:  line.LineNumber,
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		VATRate:     line.VATRate,
		Amount:      line.Amount,
	}
	m.FromDomainVersioned(line.VersionedBase)
	return m
}
