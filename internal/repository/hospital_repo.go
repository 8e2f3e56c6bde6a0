package repository

import (
	"context"
	"errors"

	"hospital-roster/internal/models"

	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// DB exposes the handle so services can run multi-repository transactions
func (r *HospitalRepository) DB() *gorm.DB {
	return r.db
}

// WithTx returns a repository bound to tx
func (r *HospitalRepository) WithTx(tx *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: tx}
}

// GetAllHospitals retrieves all hospitals with their admins, ordered by name
func (r *HospitalRepository) GetAllHospitals(ctx context.Context) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.WithContext(ctx).
		Preload("Admins", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC, id ASC")
		}).
		Order("name ASC").
		Find(&hospitals).Error
	return hospitals, err
}

// GetHospitalsByAdminID retrieves the hospitals a given admin is assigned to
func (r *HospitalRepository) GetHospitalsByAdminID(ctx context.Context, adminID string) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN hospital_admins ON hospital_admins.hospital_id = hospitals.id").
		Where("hospital_admins.id = ?", adminID).
		Preload("Admins", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC, id ASC")
		}).
		Order("hospitals.name ASC").
		Find(&hospitals).Error
	return hospitals, err
}

// GetHospitalByID retrieves a hospital by ID with its admins
func (r *HospitalRepository) GetHospitalByID(ctx context.Context, id string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).
		Preload("Admins", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}
	return &hospital, nil
}

// CreateHospital creates a new hospital without its admins
func (r *HospitalRepository) CreateHospital(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Omit("Admins").Create(hospital).Error
}

// UpdateFields applies a partial update keyed by column name
func (r *HospitalRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Hospital{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrHospitalNotFound
	}
	return nil
}

// UpdateStatus sets the status column
func (r *HospitalRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.UpdateFields(ctx, id, map[string]any{"status": status})
}

// SoftDeleteHospital marks a hospital deleted; it disappears from every query
func (r *HospitalRepository) SoftDeleteHospital(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Hospital{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrHospitalNotFound
	}
	return nil
}
