package repository

import (
	"context"

	"hospital-roster/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(ctx context.Context, actorID, hospitalID, action, details string) error {
	log := &models.AuditLog{
		ActorID:    actorID,
		HospitalID: hospitalID,
		Action:     action,
		Details:    details,
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// GetHospitalAuditLogs lists audit entries for a hospital, newest first
func (r *AuditRepository) GetHospitalAuditLogs(ctx context.Context, hospitalID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("id DESC").
		Find(&logs).Error
	return logs, err
}
