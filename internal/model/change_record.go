package model

import (
	"time"

	"github.com/google/uuid"
)

// Change types recorded in the audit trail.
const (
	ChangeAdd    = "add"    // stock received
	ChangeRemove = "remove" // stock dispatched
	ChangeUpdate = "update" // direct correction from the catalog view
)

// ChangeRecord is one entry of the append-only stock audit trail.
// Rows are created exactly once per successful mutation and never
// updated or deleted. Invariant: NewQuantity = PreviousQuantity ± Quantity
// depending on Type.
type ChangeRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName string    `gorm:"not null"` // denormalized so history survives product edits
	Type        string    `gorm:"not null"` // "add" | "remove" | "update"
	// Quantity is the unsigned magnitude of the change; the sign lives in Type.
	Quantity         int       `gorm:"not null"`
	PreviousQuantity int       `gorm:"not null"`
	NewQuantity      int       `gorm:"not null"`
	Operator         string    `gorm:"not null;default:'operator'"`
	CreatedAt        time.Time `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (ChangeRecord) TableName() string { return "change_records" }
