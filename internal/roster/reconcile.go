package roster

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DraftAdmin is a new admin typed into a form and not yet persisted.
// ID is the temporary numeric id the form assigns.
type DraftAdmin struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,basic_email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password,omitempty"`
	SendCredentials bool   `json:"sendCredentials"`
}

// PrimaryAdminEdit holds the edits made to the primary admin fields.
// Nil pointers are untouched fields. Password is only honored when ResetPassword is set.
type PrimaryAdminEdit struct {
	ID            string  `json:"id,omitempty"`
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	ResetPassword bool    `json:"resetPassword,omitempty"`
	Password      string  `json:"password,omitempty"`
}

// PrimaryAdminUpdate is the sanitized primary admin change sent to the server
type PrimaryAdminUpdate struct {
	ID        string  `json:"id,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Password  string  `json:"password,omitempty"`
}

// ReconciliationPayload is the admin part of a hospital update
type ReconciliationPayload struct {
	AdditionalAdmins   []DraftAdmin        `json:"additionalAdmins"`
	AdminsToRemove     []string            `json:"adminsToRemove"`
	PrimaryAdminUpdate *PrimaryAdminUpdate `json:"primaryAdminUpdate"`
}

// IsEmpty reports whether the payload changes nothing
func (p ReconciliationPayload) IsEmpty() bool {
	return len(p.AdditionalAdmins) == 0 && len(p.AdminsToRemove) == 0 && p.PrimaryAdminUpdate == nil
}

// ValidationErrors maps a form field key (admin_<index>_<field>) to its message
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MinPasswordLength applies to primary admin password resets
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail checks the basic local@domain.tld shape
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func draftValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
			return ValidEmail(fl.Field().String())
		})
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

var fieldMessages = map[string]string{
	"firstName.required": "First name is required",
	"lastName.required":  "Last name is required",
	"email.required":     "Email is required",
	"email.basic_email":  "Invalid email format",
	"email.duplicate":    "Email is already used by another admin",
	"password.required":  "Password is required",
	"password.min":       fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
}

// ValidateDrafts checks every draft admin. existing admins are used to reject
// duplicate emails. The result is empty when all drafts are valid.
func ValidateDrafts(drafts []DraftAdmin, existing []Admin) ValidationErrors {
	errs := ValidationErrors{}
	seen := make(map[string]bool, len(existing)+len(drafts))
	for _, a := range existing {
		if a.Email != "" {
			seen[strings.ToLower(a.Email)] = true
		}
	}

	v := draftValidator()
	for i, d := range drafts {
		d.FirstName = strings.TrimSpace(d.FirstName)
		d.LastName = strings.TrimSpace(d.LastName)
		d.Email = strings.TrimSpace(d.Email)

		if err := v.Struct(d); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				for _, fe := range fieldErrs {
					errs[draftKey(i, fe.Field())] = fieldMessages[fe.Field()+"."+fe.Tag()]
				}
			}
			continue
		}

		email := strings.ToLower(d.Email)
		if seen[email] {
			errs[draftKey(i, "email")] = fieldMessages["email.duplicate"]
			continue
		}
		seen[email] = true
	}
	return errs
}

func draftKey(index int, field string) string {
	return fmt.Sprintf("admin_%d_%s", index, field)
}

// Reconcile computes what a save must send for the admin roster of one hospital.
// It returns ValidationErrors and no payload when any draft or the primary edit is invalid.
// An admin that is both edited and marked for removal is removed, and its edits
// are neither validated nor sent.
func Reconcile(existing []Admin, drafts []DraftAdmin, removalIDs []string, primary *PrimaryAdminEdit) (*ReconciliationPayload, error) {
	current, _ := SplitPrimary(existing)
	if target := primaryTarget(current, primary); target != "" && contains(removalIDs, target) {
		primary = nil
	}

	errs := ValidateDrafts(drafts, existing)
	for k, msg := range validatePrimary(primary) {
		errs[k] = msg
	}
	if len(errs) > 0 {
		return nil, errs
	}

	payload := &ReconciliationPayload{
		AdditionalAdmins: make([]DraftAdmin, 0, len(drafts)),
		AdminsToRemove:   make([]string, 0, len(removalIDs)),
	}
	for _, d := range drafts {
		payload.AdditionalAdmins = append(payload.AdditionalAdmins, sanitizeDraft(d))
	}
	payload.AdminsToRemove = append(payload.AdminsToRemove, removalIDs...)

	payload.PrimaryAdminUpdate = primaryUpdate(current, primary)
	return payload, nil
}

// primaryTarget is the id a primary edit applies to: its own id, else the current primary's
func primaryTarget(current *Admin, p *PrimaryAdminEdit) string {
	if p == nil {
		return ""
	}
	if p.ID != "" {
		return p.ID
	}
	if current != nil {
		return current.ID
	}
	return ""
}

func sanitizeDraft(d DraftAdmin) DraftAdmin {
	return DraftAdmin{
		ID:              d.ID,
		FirstName:       strings.TrimSpace(d.FirstName),
		LastName:        strings.TrimSpace(d.LastName),
		Email:           strings.TrimSpace(d.Email),
		Phone:           strings.TrimSpace(d.Phone),
		Password:        d.Password,
		SendCredentials: d.SendCredentials,
	}
}

func validatePrimary(p *PrimaryAdminEdit) ValidationErrors {
	errs := ValidationErrors{}
	if p == nil {
		return errs
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if email == "" {
			errs["primaryAdmin_email"] = fieldMessages["email.required"]
		} else if !ValidEmail(email) {
			errs["primaryAdmin_email"] = fieldMessages["email.basic_email"]
		}
	}
	if p.ResetPassword {
		if p.Password == "" {
			errs["primaryAdmin_password"] = fieldMessages["password.required"]
		} else if len(p.Password) < MinPasswordLength {
			errs["primaryAdmin_password"] = fieldMessages["password.min"]
		}
	}
	return errs
}

// primaryUpdate keeps only the fields that differ from the current primary admin
func primaryUpdate(current *Admin, p *PrimaryAdminEdit) *PrimaryAdminUpdate {
	if p == nil {
		return nil
	}

	u := &PrimaryAdminUpdate{ID: p.ID}
	if u.ID == "" && current != nil {
		u.ID = current.ID
	}

	var cur Admin
	if current != nil {
		cur = *current
	}
	u.FirstName = changed(p.FirstName, cur.FirstName)
	u.LastName = changed(p.LastName, cur.LastName)
	u.Email = changed(p.Email, cur.Email)
	u.Phone = changed(p.Phone, cur.Phone)
	if p.ResetPassword {
		u.Password = p.Password
	}

	if u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Phone == nil && u.Password == "" {
		return nil
	}
	return u
}

func changed(edit *string, current string) *string {
	if edit == nil {
		return nil
	}
	v := strings.TrimSpace(*edit)
	if v == current {
		return nil
	}
	return &v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
