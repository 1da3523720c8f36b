package models

import "time"

// Student represents a learner enrolled at the memorization center. Identity
// management lives outside the engine; this is the read model the engine
// joins against.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Phone         string    `gorm:"size:32" json:"phone"`
	GuardianPhone string    `gorm:"size:32" json:"guardian_phone"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
