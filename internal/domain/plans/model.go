package plans

import "time"

type Plan struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	PriceBRL    float64 `gorm:"column:price_brl;not null"`
	Period      string  // "monthly" | "yearly" | "once"

	// DurationDays is ignored when IsLifetime is set.
	DurationDays int
	IsLifetime   bool
	Popular      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
