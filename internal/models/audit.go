package models

import "time"

// AuditLog records every roster mutation and who made it
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    string    `gorm:"size:64;index" json:"actor_id"`
	HospitalID string    `gorm:"size:36;index" json:"hospital_id,omitempty"`
	Action     string    `gorm:"size:100;not null" json:"action"`
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
