package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry in the warehouse inventory.
// Barcode uniqueness is enforced at the DB layer; Quantity never goes negative
// (guarded by the stock service plus a CHECK constraint).
type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode  string    `gorm:"uniqueIndex;not null"`
	Name     string    `gorm:"index;not null"`
	Category string    `gorm:"not null;default:'general'"`
	Unit     string    `gorm:"not null;default:'unidad'"`
	Quantity int       `gorm:"not null;default:0"`
	MinStock int       `gorm:"not null;default:5"`
	// Version is bumped on every stock write; conditional updates compare it to
	// detect concurrent edits from two operators on the same product.
	Version     int  `gorm:"not null;default:0"`
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	LastUpdated time.Time `gorm:"autoUpdateTime"`
}

// LowStock reports whether the product is at or below its restock threshold.
func (p *Product) LowStock() bool { return p.Quantity <= p.MinStock }
