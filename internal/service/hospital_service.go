package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"hospital-roster/internal/cache"
	"hospital-roster/internal/metrics"
	"hospital-roster/internal/models"
	"hospital-roster/internal/repository"
	"hospital-roster/internal/roster"
	"hospital-roster/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrAccessDenied   = errors.New("access denied: you don't have permission to access this hospital")
	ErrSuperAdminOnly = errors.New("only super admins can perform this operation")
	ErrInvalidStatus  = errors.New("invalid hospital status")
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	ID   string
	Role string
}

// IsSuperAdmin reports whether the actor may see and change every hospital
func (a Actor) IsSuperAdmin() bool {
	return a.Role == utils.RoleSuperAdmin
}

type HospitalService struct {
	hospitalRepo *repository.HospitalRepository
	adminRepo    *repository.AdminRepository
	auditRepo    *repository.AuditRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	hashPassword func(string) (string, error)

	// snapshotGen is bumped by every invalidation
	snapshotGen atomic.Uint64
}

func NewHospitalService(
	hospitalRepo *repository.HospitalRepository,
	adminRepo *repository.AdminRepository,
	auditRepo *repository.AuditRepository,
	snapshotCache cache.Cache,
	cacheTTL time.Duration,
) *HospitalService {
	return &HospitalService{
		hospitalRepo: hospitalRepo,
		adminRepo:    adminRepo,
		auditRepo:    auditRepo,
		cache:        snapshotCache,
		cacheTTL:     cacheTTL,
		hashPassword: utils.HashPassword,
	}
}

var snapshotKey = cache.Key("hospitals")

// Snapshot returns the whole roster, from cache when possible
func (s *HospitalService) Snapshot(ctx context.Context) ([]roster.Hospital, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, snapshotKey)
		if err == nil {
			var hospitals []roster.Hospital
			if err := json.Unmarshal(data, &hospitals); err == nil {
				metrics.SnapshotLookups.WithLabelValues("hit").Inc()
				return hospitals, nil
			}
			log.Warn().Msg("Discarding undecodable roster snapshot")
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Msg("Roster snapshot cache unavailable")
		}
		metrics.SnapshotLookups.WithLabelValues("miss").Inc()
	}
	return s.RefreshSnapshot(ctx)
}

// RefreshSnapshot rebuilds the roster from the database and stores it in the cache.
// A snapshot read before a concurrent mutation is never left in the cache.
func (s *HospitalService) RefreshSnapshot(ctx context.Context) ([]roster.Hospital, error) {
	gen := s.snapshotGen.Load()
	rows, err := s.hospitalRepo.GetAllHospitals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hospitals: %w", err)
	}

	hospitals := make([]roster.Hospital, 0, len(rows))
	for _, row := range rows {
		hospitals = append(hospitals, toRosterHospital(row))
	}

	if s.cache != nil {
		s.storeSnapshot(ctx, gen, hospitals)
	}
	return hospitals, nil
}

func (s *HospitalService) storeSnapshot(ctx context.Context, gen uint64, hospitals []roster.Hospital) {
	if s.snapshotGen.Load() != gen {
		log.Debug().Msg("Roster changed while loading, snapshot not cached")
		return
	}
	data, err := json.Marshal(hospitals)
	if err == nil {
		err = s.cache.Set(ctx, snapshotKey, data, s.cacheTTL)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to cache roster snapshot")
		return
	}
	// a mutation that invalidated between the check and the write
	if s.snapshotGen.Load() != gen {
		s.deleteSnapshot(ctx)
	}
}

// invalidateSnapshot runs after a mutation has committed
func (s *HospitalService) invalidateSnapshot(ctx context.Context) {
	s.snapshotGen.Add(1)
	if s.cache != nil {
		s.deleteSnapshot(ctx)
	}
}

func (s *HospitalService) deleteSnapshot(ctx context.Context) {
	if err := s.cache.Delete(ctx, snapshotKey); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate roster snapshot")
	}
}

// PurgeSnapshots drops every cached roster entry, including ones written by an
// earlier process that this one cannot invalidate
func (s *HospitalService) PurgeSnapshots(ctx context.Context) error {
	s.snapshotGen.Add(1)
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx, cache.Key("*")); err != nil {
		return fmt.Errorf("failed to purge roster snapshots: %w", err)
	}
	return nil
}

// ListHospitals returns the hospitals visible to the actor that match the criteria.
// Super admins see every hospital, hospital admins only the ones they administer.
func (s *HospitalService) ListHospitals(ctx context.Context, actor Actor, criteria roster.Criteria, sortKey string, desc bool) ([]roster.Hospital, error) {
	hospitals, err := s.visibleHospitals(ctx, actor)
	if err != nil {
		return nil, err
	}

	result := roster.Apply(hospitals, criteria)
	if sortKey != "" {
		result = roster.Sort(result, sortKey, desc)
	}
	return result, nil
}

// Stats summarizes the hospitals visible to the actor
func (s *HospitalService) Stats(ctx context.Context, actor Actor) (roster.Stats, error) {
	hospitals, err := s.visibleHospitals(ctx, actor)
	if err != nil {
		return roster.Stats{}, err
	}
	return roster.Summarize(hospitals), nil
}

func (s *HospitalService) visibleHospitals(ctx context.Context, actor Actor) ([]roster.Hospital, error) {
	if actor.IsSuperAdmin() {
		return s.Snapshot(ctx)
	}

	rows, err := s.hospitalRepo.GetHospitalsByAdminID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hospitals: %w", err)
	}
	hospitals := make([]roster.Hospital, 0, len(rows))
	for _, row := range rows {
		hospitals = append(hospitals, toRosterHospital(row))
	}
	return hospitals, nil
}

// CheckHospitalAccess returns ErrAccessDenied unless the actor may act on the hospital
func (s *HospitalService) CheckHospitalAccess(ctx context.Context, actor Actor, hospitalID string) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	ok, err := s.adminRepo.IsAdminOfHospital(ctx, actor.ID, hospitalID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// GetHospital retrieves a hospital by ID with access control
func (s *HospitalService) GetHospital(ctx context.Context, actor Actor, id string) (*roster.Hospital, error) {
	row, err := s.hospitalRepo.GetHospitalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.CheckHospitalAccess(ctx, actor, id); err != nil {
		return nil, err
	}
	h := toRosterHospital(*row)
	return &h, nil
}

// ListAdmins returns a hospital's admins, the primary one first and flagged
func (s *HospitalService) ListAdmins(ctx context.Context, actor Actor, hospitalID string) ([]roster.Admin, error) {
	if _, err := s.hospitalRepo.GetHospitalByID(ctx, hospitalID); err != nil {
		return nil, err
	}
	if err := s.CheckHospitalAccess(ctx, actor, hospitalID); err != nil {
		return nil, err
	}

	rows, err := s.adminRepo.GetHospitalAdmins(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	admins := make([]roster.Admin, 0, len(rows))
	for _, row := range rows {
		admins = append(admins, toRosterAdmin(row))
	}
	return admins, nil
}

// CreateHospital creates a hospital with an optional primary admin and additional admins.
// Every admin is validated up front; nothing is written when any of them is invalid.
func (s *HospitalService) CreateHospital(ctx context.Context, actor Actor, req CreateHospitalRequest) (*CreateResult, error) {
	if !actor.IsSuperAdmin() {
		return nil, ErrSuperAdminOnly
	}

	hospital, errs := req.toModel()
	primary, primaryErrs := req.primaryDraft()
	for k, v := range primaryErrs {
		errs[k] = v
	}
	var existing []roster.Admin
	if primary != nil {
		existing = append(existing, roster.Admin{Email: primary.Email})
	}
	for k, v := range roster.ValidateDrafts(req.AdditionalAdmins, existing) {
		errs[k] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hospital.ID = uuid.NewString()
	result := &CreateResult{}

	err := s.hospitalRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hospitals := s.hospitalRepo.WithTx(tx)
		admins := s.adminRepo.WithTx(tx)

		if err := hospitals.CreateHospital(ctx, hospital); err != nil {
			return fmt.Errorf("failed to create hospital: %w", err)
		}

		if primary != nil {
			added, err := s.createAdmin(ctx, admins, hospital.ID, *primary, true)
			if err != nil {
				return fmt.Errorf("failed to create primary admin: %w", err)
			}
			result.PrimaryAdmin = &added
		}
		for _, draft := range req.AdditionalAdmins {
			added, err := s.createAdmin(ctx, admins, hospital.ID, draft, false)
			if err != nil {
				return fmt.Errorf("failed to create admin %s: %w", draft.Email, err)
			}
			result.AddedAdmins = append(result.AddedAdmins, added)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx)
	metrics.HospitalMutations.WithLabelValues("create").Inc()
	s.audit(ctx, actor, hospital.ID, "hospital_create",
		fmt.Sprintf("Created hospital: %s with %d admins", hospital.Name, len(result.AddedAdmins)+boolToInt(primary != nil)))
	s.notifyCredentials(ctx, actor, hospital.ID, result.allAdmins())

	row, err := s.hospitalRepo.GetHospitalByID(ctx, hospital.ID)
	if err != nil {
		return nil, err
	}
	result.Hospital = toRosterHospital(*row)
	result.AddedAdminsCount = countAdded(result.AddedAdmins)
	return result, nil
}

// resolvePrimaryTarget fills an empty primary update id with the current primary admin's id.
// The id stays empty when the hospital has no primary admin.
func (s *HospitalService) resolvePrimaryTarget(ctx context.Context, hospitalID string, update *roster.PrimaryAdminUpdate) (*roster.PrimaryAdminUpdate, error) {
	if update == nil || update.ID != "" {
		return update, nil
	}
	current, err := s.adminRepo.GetPrimaryAdmin(ctx, hospitalID)
	if errors.Is(err, repository.ErrAdminNotFound) {
		return update, nil
	}
	if err != nil {
		return nil, err
	}
	targeted := *update
	targeted.ID = current.ID
	return &targeted, nil
}

// UpdateHospital applies changed fields and an admin reconciliation payload.
// Field changes, removals and the primary admin update are applied atomically.
// Additional admins are then created one by one; each failure is reported on its
// entry rather than failing the whole update.
func (s *HospitalService) UpdateHospital(ctx context.Context, actor Actor, id string, req UpdateHospitalRequest) (*UpdateResult, error) {
	if _, err := s.hospitalRepo.GetHospitalByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.CheckHospitalAccess(ctx, actor, id); err != nil {
		return nil, err
	}

	removing := make(map[string]bool, len(req.AdminsToRemove))
	for _, adminID := range req.AdminsToRemove {
		removing[adminID] = true
	}

	// an edit aimed at an admin being removed is dropped before validation
	update, err := s.resolvePrimaryTarget(ctx, id, req.PrimaryAdminUpdate)
	if err != nil {
		return nil, err
	}
	if update != nil && update.ID != "" && removing[update.ID] {
		update = nil
	}

	fields, errs := req.changedFields()
	if update != nil && update.Email != nil && !roster.ValidEmail(*update.Email) {
		errs["primaryAdmin_email"] = "Invalid email format"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	result := &UpdateResult{AddedAdmins: []AddedAdmin{}}

	err = s.hospitalRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hospitals := s.hospitalRepo.WithTx(tx)
		admins := s.adminRepo.WithTx(tx)

		if err := hospitals.UpdateFields(ctx, id, fields); err != nil {
			return err
		}

		removed, err := admins.RemoveAdmins(ctx, id, req.AdminsToRemove)
		if err != nil {
			return fmt.Errorf("failed to remove admins: %w", err)
		}
		result.RemovedAdmins = removed

		if update != nil {
			if err := s.applyPrimaryUpdate(ctx, admins, id, *update); err != nil {
				return err
			}
			result.PrimaryAdminUpdated = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.RemovedAdmins > 0 {
		metrics.AdminChanges.WithLabelValues("remove", "success").Add(float64(result.RemovedAdmins))
	}

	current, err := s.adminRepo.GetHospitalAdmins(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	existing := make([]roster.Admin, 0, len(current))
	for _, a := range current {
		existing = append(existing, toRosterAdmin(a))
	}

	for _, draft := range req.AdditionalAdmins {
		entry := AddedAdmin{TempID: draft.ID, FirstName: draft.FirstName, LastName: draft.LastName, Email: draft.Email}

		if verrs := roster.ValidateDrafts([]roster.DraftAdmin{draft}, existing); len(verrs) > 0 {
			entry.Error = firstMessage(verrs)
		} else if added, err := s.createAdmin(ctx, s.adminRepo, id, draft, false); err != nil {
			entry.Error = err.Error()
		} else {
			entry = added
			existing = append(existing, roster.Admin{ID: added.ID, Email: added.Email})
		}

		if entry.Error != "" {
			metrics.AdminChanges.WithLabelValues("add", "failure").Inc()
			log.Warn().Str("hospital_id", id).Str("email", draft.Email).Str("reason", entry.Error).Msg("Admin not added")
		} else {
			metrics.AdminChanges.WithLabelValues("add", "success").Inc()
		}
		result.AddedAdmins = append(result.AddedAdmins, entry)
	}
	result.AddedAdminsCount = countAdded(result.AddedAdmins)

	s.invalidateSnapshot(ctx)
	metrics.HospitalMutations.WithLabelValues("update").Inc()
	s.audit(ctx, actor, id, "hospital_update", fmt.Sprintf(
		"Updated hospital %s: %d fields, %d admins removed, %d/%d admins added, primary updated: %t",
		id, len(fields), result.RemovedAdmins, result.AddedAdminsCount.Successful, result.AddedAdminsCount.Total, result.PrimaryAdminUpdated))
	s.notifyCredentials(ctx, actor, id, result.AddedAdmins)

	row, err := s.hospitalRepo.GetHospitalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Hospital = toRosterHospital(*row)
	return result, nil
}

// applyPrimaryUpdate edits the targeted admin and makes it the only primary.
// Without a target id the current primary is edited, or a new primary is created
// when the hospital has none and the update carries a full name and email.
func (s *HospitalService) applyPrimaryUpdate(ctx context.Context, admins *repository.AdminRepository, hospitalID string, u roster.PrimaryAdminUpdate) error {
	targetID := u.ID
	if targetID == "" {
		current, err := admins.GetPrimaryAdmin(ctx, hospitalID)
		switch {
		case err == nil:
			targetID = current.ID
		case errors.Is(err, repository.ErrAdminNotFound):
			if u.FirstName == nil || u.LastName == nil || u.Email == nil {
				return fmt.Errorf("hospital has no primary admin: %w", repository.ErrAdminNotFound)
			}
			draft := roster.DraftAdmin{FirstName: *u.FirstName, LastName: *u.LastName, Email: *u.Email, Password: u.Password}
			if u.Phone != nil {
				draft.Phone = *u.Phone
			}
			_, err := s.createAdmin(ctx, admins, hospitalID, draft, true)
			return err
		default:
			return err
		}
	}

	if _, err := admins.GetAdmin(ctx, hospitalID, targetID); err != nil {
		return err
	}

	fields := map[string]any{}
	if u.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*u.LastName)
	}
	if u.Email != nil {
		fields["email"] = strings.TrimSpace(*u.Email)
	}
	if u.Phone != nil {
		fields["phone"] = strings.TrimSpace(*u.Phone)
	}
	if u.Password != "" {
		hash, err := s.hashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password_hash"] = hash
	}

	if err := admins.DemotePrimaryExcept(ctx, hospitalID, targetID); err != nil {
		return err
	}
	fields["is_primary"] = true
	return admins.UpdateAdminFields(ctx, hospitalID, targetID, fields)
}

func (s *HospitalService) createAdmin(ctx context.Context, admins *repository.AdminRepository, hospitalID string, d roster.DraftAdmin, primary bool) (AddedAdmin, error) {
	password := d.Password
	generated := false
	if password == "" {
		password = utils.GenerateTemporaryPassword()
		generated = true
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return AddedAdmin{}, fmt.Errorf("failed to hash password: %w", err)
	}

	row := &models.HospitalAdmin{
		ID:           uuid.NewString(),
		HospitalID:   hospitalID,
		FirstName:    strings.TrimSpace(d.FirstName),
		LastName:     strings.TrimSpace(d.LastName),
		Email:        strings.TrimSpace(d.Email),
		Phone:        strings.TrimSpace(d.Phone),
		PasswordHash: hash,
		IsPrimary:    primary,
	}
	if err := admins.CreateAdmin(ctx, row); err != nil {
		return AddedAdmin{}, err
	}

	return AddedAdmin{
		TempID:            d.ID,
		ID:                row.ID,
		FirstName:         row.FirstName,
		LastName:          row.LastName,
		Email:             row.Email,
		IsPrimary:         primary,
		PasswordGenerated: generated,
		SendCredentials:   d.SendCredentials || generated,
	}, nil
}

// ChangeStatus moves a hospital to a new status; every transition between known statuses is allowed
func (s *HospitalService) ChangeStatus(ctx context.Context, actor Actor, id, status string) (*roster.Hospital, error) {
	row, err := s.hospitalRepo.GetHospitalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.CheckHospitalAccess(ctx, actor, id); err != nil {
		return nil, err
	}

	next, ok := roster.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := roster.CanTransition(roster.Status(row.Status), next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	if err := s.hospitalRepo.UpdateStatus(ctx, id, string(next)); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.invalidateSnapshot(ctx)
	metrics.HospitalMutations.WithLabelValues("status").Inc()
	s.audit(ctx, actor, id, "hospital_status", fmt.Sprintf("Status of %s changed from %s to %s", row.Name, row.Status, next))

	row.Status = string(next)
	h := toRosterHospital(*row)
	return &h, nil
}

// DeleteHospital soft deletes a hospital and removes its admins (super admin only)
func (s *HospitalService) DeleteHospital(ctx context.Context, actor Actor, id string) error {
	if !actor.IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	hospital, err := s.hospitalRepo.GetHospitalByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.hospitalRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.adminRepo.WithTx(tx).RemoveHospitalAdmins(ctx, id); err != nil {
			return fmt.Errorf("failed to remove admins: %w", err)
		}
		return s.hospitalRepo.WithTx(tx).SoftDeleteHospital(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateSnapshot(ctx)
	metrics.HospitalMutations.WithLabelValues("delete").Inc()
	s.audit(ctx, actor, id, "hospital_delete", fmt.Sprintf("Deleted hospital: %s (ID: %s)", hospital.Name, id))
	return nil
}

// AuditTrail lists the audit entries of a hospital, newest first
func (s *HospitalService) AuditTrail(ctx context.Context, actor Actor, id string) ([]models.AuditLog, error) {
	if err := s.CheckHospitalAccess(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.auditRepo.GetHospitalAuditLogs(ctx, id)
}

func (s *HospitalService) audit(ctx context.Context, actor Actor, hospitalID, action, details string) {
	if err := s.auditRepo.CreateAuditLog(ctx, actor.ID, hospitalID, action, details); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("Failed to write audit log")
	}
}

// notifyCredentials records a credential dispatch for every admin that asked for one.
// Delivery is handled by the notification service reading the audit trail.
func (s *HospitalService) notifyCredentials(ctx context.Context, actor Actor, hospitalID string, admins []AddedAdmin) {
	for _, a := range admins {
		if a.Error != "" || !a.SendCredentials {
			continue
		}
		log.Info().Str("hospital_id", hospitalID).Str("admin_id", a.ID).Msg("Credentials dispatch requested")
		s.audit(ctx, actor, hospitalID, "admin_credentials_sent", fmt.Sprintf("Credentials requested for admin %s (%s)", a.ID, a.Email))
	}
}

func firstMessage(errs roster.ValidationErrors) string {
	for _, field := range []string{"firstName", "lastName", "email"} {
		if msg, ok := errs["admin_0_"+field]; ok {
			return msg
		}
	}
	return errs.Error()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
