package roster

import (
	"fmt"
	"strings"
)

// HospitalType classifies a facility
type HospitalType string

const (
	TypeGeneral        HospitalType = "general"
	TypeSpecialty      HospitalType = "specialty"
	TypeTeaching       HospitalType = "teaching"
	TypeClinic         HospitalType = "clinic"
	TypeRehabilitation HospitalType = "rehabilitation"
	TypePsychiatric    HospitalType = "psychiatric"
)

var hospitalTypes = []HospitalType{
	TypeGeneral, TypeSpecialty, TypeTeaching, TypeClinic, TypeRehabilitation, TypePsychiatric,
}

// Status is the operational state of a hospital
type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusPending     Status = "pending"
	StatusMaintenance Status = "maintenance"
)

var statuses = []Status{StatusActive, StatusInactive, StatusPending, StatusMaintenance}

// ParseHospitalType returns the type matching s, case-insensitively
func ParseHospitalType(s string) (HospitalType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range hospitalTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ParseStatus returns the status matching s, case-insensitively
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransition reports whether a hospital may move from one status to another.
// Every known status may move to every other one; only unknown statuses are rejected.
func CanTransition(from, to Status) error {
	if _, ok := ParseStatus(string(from)); !ok {
		return fmt.Errorf("unknown status %q", from)
	}
	if _, ok := ParseStatus(string(to)); !ok {
		return fmt.Errorf("unknown status %q", to)
	}
	return nil
}

// Hospital is the canonical roster record shared by the service and its callers
type Hospital struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Location         string       `json:"location,omitempty"`
	Address          string       `json:"address,omitempty"`
	City             string       `json:"city,omitempty"`
	State            string       `json:"state,omitempty"`
	ZipCode          string       `json:"zipCode,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	Email            string       `json:"email,omitempty"`
	Website          string       `json:"website,omitempty"`
	Type             HospitalType `json:"type"`
	Status           Status       `json:"status"`
	Beds             int          `json:"beds"`
	Doctors          int          `json:"doctors"`
	Rating           float64      `json:"rating"`
	PrimaryAdmin     *Admin       `json:"primaryAdmin,omitempty"`
	AdditionalAdmins []Admin      `json:"additionalAdmins"`
}

// AdminName is the display name of the primary admin, empty when none is assigned
func (h Hospital) AdminName() string {
	if h.PrimaryAdmin == nil {
		return ""
	}
	return h.PrimaryAdmin.DisplayName()
}

// AdminEmail is the primary admin's email, empty when none is assigned
func (h Hospital) AdminEmail() string {
	if h.PrimaryAdmin == nil {
		return ""
	}
	return h.PrimaryAdmin.Email
}

// AdminPhone is the primary admin's phone, empty when none is assigned
func (h Hospital) AdminPhone() string {
	if h.PrimaryAdmin == nil {
		return ""
	}
	return h.PrimaryAdmin.Phone
}

// Admins returns the primary admin (if any) followed by the additional admins
func (h Hospital) Admins() []Admin {
	out := make([]Admin, 0, len(h.AdditionalAdmins)+1)
	if h.PrimaryAdmin != nil {
		out = append(out, *h.PrimaryAdmin)
	}
	return append(out, h.AdditionalAdmins...)
}
