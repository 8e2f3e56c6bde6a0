package models

import "time"

// HospitalAdmin is an administrator assigned to one hospital.
// At most one row per hospital has IsPrimary set; the service keeps it that way.
type HospitalAdmin struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	HospitalID   string    `gorm:"size:36;not null;index" json:"hospital_id"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	Email        string    `gorm:"size:255;not null;index" json:"email"`
	Phone        string    `gorm:"size:50" json:"phone,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsPrimary    bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for HospitalAdmin model
func (HospitalAdmin) TableName() string {
	return "hospital_admins"
}
