package domain

import "time"

// Steak Model, one recorded steak owned by a user
type Steak struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                      // Primary key, assigned by the store
	User      string    `gorm:"column:user_id;not null;index" json:"user"` // Owning username
	Type      string    `gorm:"not null" json:"type"`                      // Cut, e.g. ribeye
	Cook      string    `gorm:"not null" json:"cook"`                      // Doneness, e.g. medium
	Cost      float64   `gorm:"not null" json:"cost"`                      // Price paid
	Weight    float64   `gorm:"not null" json:"weight"`                    // Weight in grams
	Photo     *string   `json:"photo"`                                     // Optional upload reference
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`           // Creation time in UTC
}

// TableName keeps the table name stable regardless of gorm naming strategy
func (Steak) TableName() string {
	return "steaks"
}
