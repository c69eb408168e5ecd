package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VersionedEntity is the interface for entities guarded by a row-version token
type VersionedEntity interface {
	Entity
	GetRowVersion() RowVersion
	IsDeleted() bool
}

// VersionedBase provides common fields for entities under optimistic
// concurrency control. Every successful write replaces RowVersion; delete
// is logical and advances the token like any other write.
type VersionedBase struct {
	BaseEntity
	RowVersion RowVersion
	Deleted    bool
}

// GetRowVersion returns the current row-version token
func (v *VersionedBase) GetRowVersion() RowVersion {
	return v.RowVersion
}

// IsDeleted reports whether the entity has been logically deleted
func (v *VersionedBase) IsDeleted() bool {
	return v.Deleted
}

// Touch stamps the update time and issues a fresh row-version token.
// It must be called on every mutation of the owning entity.
func (v *VersionedBase) Touch() {
	v.UpdatedAt = time.Now()
	v.RowVersion = NewRowVersion()
}

// NewVersionedBase creates a versioned base with generated ID and initial token
func NewVersionedBase() VersionedBase {
	return VersionedBase{
		BaseEntity: NewBaseEntity(),
		RowVersion: NewRowVersion(),
	}
}
