package repository

import (
	"context"
	"errors"

	"hospital-roster/internal/models"

	"gorm.io/gorm"
)

// AdminRepository manages the hospital_admins table
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *AdminRepository) WithTx(tx *gorm.DB) *AdminRepository {
	return &AdminRepository{db: tx}
}

// GetHospitalAdmins lists a hospital's admins, primary first
func (r *AdminRepository) GetHospitalAdmins(ctx context.Context, hospitalID string) ([]models.HospitalAdmin, error) {
	var admins []models.HospitalAdmin
	err := r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("is_primary DESC, created_at ASC, id ASC").
		Find(&admins).Error
	return admins, err
}

// GetAdmin retrieves one admin of a hospital
func (r *AdminRepository) GetAdmin(ctx context.Context, hospitalID, adminID string) (*models.HospitalAdmin, error) {
	var admin models.HospitalAdmin
	err := r.db.WithContext(ctx).
		Where("id = ? AND hospital_id = ?", adminID, hospitalID).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// GetPrimaryAdmin returns the hospital's primary admin
func (r *AdminRepository) GetPrimaryAdmin(ctx context.Context, hospitalID string) (*models.HospitalAdmin, error) {
	var admin models.HospitalAdmin
	err := r.db.WithContext(ctx).
		Where("hospital_id = ? AND is_primary = ?", hospitalID, true).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// CreateAdmin inserts an admin, rejecting an email already used in the same hospital.
// A new primary admin demotes the previous one.
func (r *AdminRepository) CreateAdmin(ctx context.Context, admin *models.HospitalAdmin) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.HospitalAdmin{}).
			Where("hospital_id = ? AND LOWER(email) = LOWER(?)", admin.HospitalID, admin.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if admin.IsPrimary {
			if err := tx.Model(&models.HospitalAdmin{}).
				Where("hospital_id = ? AND is_primary = ?", admin.HospitalID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(admin).Error
	})
}

// UpdateAdminFields applies a partial update to one admin of a hospital
func (r *AdminRepository) UpdateAdminFields(ctx context.Context, hospitalID, adminID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if email, ok := fields["email"].(string); ok {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.HospitalAdmin{}).
			Where("hospital_id = ? AND id <> ? AND LOWER(email) = LOWER(?)", hospitalID, adminID, email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
	}

	res := r.db.WithContext(ctx).Model(&models.HospitalAdmin{}).
		Where("id = ? AND hospital_id = ?", adminID, hospitalID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// RemoveAdmins deletes the given admins of a hospital and returns how many went away.
// Unknown ids are ignored.
func (r *AdminRepository) RemoveAdmins(ctx context.Context, hospitalID string, adminIDs []string) (int64, error) {
	if len(adminIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("hospital_id = ? AND id IN ?", hospitalID, adminIDs).
		Delete(&models.HospitalAdmin{})
	return res.RowsAffected, res.Error
}

// RemoveHospitalAdmins deletes every admin of a hospital
func (r *AdminRepository) RemoveHospitalAdmins(ctx context.Context, hospitalID string) error {
	return r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Delete(&models.HospitalAdmin{}).Error
}

// IsAdminOfHospital checks whether an admin is assigned to a hospital
func (r *AdminRepository) IsAdminOfHospital(ctx context.Context, adminID, hospitalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HospitalAdmin{}).
		Where("id = ? AND hospital_id = ?", adminID, hospitalID).
		Count(&count).Error
	return count > 0, err
}

// DemotePrimaryExcept clears the primary flag on every admin of the hospital but keepID
func (r *AdminRepository) DemotePrimaryExcept(ctx context.Context, hospitalID, keepID string) error {
	return r.db.WithContext(ctx).Model(&models.HospitalAdmin{}).
		Where("hospital_id = ? AND id <> ? AND is_primary = ?", hospitalID, keepID, true).
		Update("is_primary", false).Error
}
