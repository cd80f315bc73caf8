package models

import "time"

// WaterEntry is one logged drink. Percentage is derived from amount and norm
// at write time and never accepted from the client; see services.Percentage.
type WaterEntry struct {
	Base
	OwnerID uint `gorm:"index;not null" json:"-"`

	// Amount drunk in millilitres.
	Amount float64 `gorm:"not null" json:"amount"`
	// Date the water was drunk.
	Date time.Time `gorm:"index;not null" json:"date"`
	// Norm is the daily goal in litres that applied to this entry.
	Norm float64 `gorm:"not null" json:"norm"`
	// Percentage of the norm this entry covers, formatted with two decimals.
	Percentage string `gorm:"size:16;not null" json:"percentage"`
}
