package models

import (
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// VersionedModel extends BaseModel with the row-version token and the
// logical-delete flag. The token column participates in every update
// predicate so the store performs the compare-and-swap itself.
type VersionedModel struct {
	BaseModel
	RowVersion []byte `gorm:"type:bytea;not null"`
	Deleted    bool   `gorm:"not null;default:false;index"`
}

// FromDomainVersioned populates the model from a domain VersionedBase
func (m *VersionedModel) FromDomainVersioned(v shared.VersionedBase) {
	m.ID = v.ID
	m.CreatedAt = v.CreatedAt
	m.UpdatedAt = v.UpdatedAt
	m.RowVersion = []byte(v.RowVersion)
	m.Deleted = v.Deleted
}

// ToDomainVersioned converts the model fields to a domain VersionedBase
func (m *VersionedModel) ToDomainVersioned() shared.VersionedBase {
	return shared.VersionedBase{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		RowVersion: shared.RowVersion(m.RowVersion),
		Deleted:    m.Deleted,
	}
}
