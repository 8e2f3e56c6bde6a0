package models

import (
	"time"

	"gorm.io/gorm"
)

// Hospital represents a hospital in the roster directory
type Hospital struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"size:255;not null;index" json:"name"`
	Location  string         `gorm:"size:255" json:"location,omitempty"`
	Address   string         `gorm:"type:text" json:"address,omitempty"`
	City      string         `gorm:"size:100" json:"city,omitempty"`
	State     string         `gorm:"size:2;index" json:"state,omitempty"`
	ZipCode   string         `gorm:"size:20" json:"zipCode,omitempty"`
	Phone     string         `gorm:"size:50" json:"phone,omitempty"`
	Email     string         `gorm:"size:255" json:"email,omitempty"`
	Website   string         `gorm:"size:255" json:"website,omitempty"`
	Type      string         `gorm:"size:20;not null;default:general" json:"type"`
	Status    string         `gorm:"size:20;not null;default:active;index" json:"status"`
	Beds      int            `gorm:"not null;default:0" json:"beds"`
	Doctors   int            `gorm:"not null;default:0" json:"doctors"`
	Rating    float64        `gorm:"not null;default:0" json:"rating"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Admins []HospitalAdmin `gorm:"foreignKey:HospitalID" json:"admins,omitempty"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}
