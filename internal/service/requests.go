package service

import (
	"strings"

	"hospital-roster/internal/models"
	"hospital-roster/internal/roster"
)

// CreateHospitalRequest is the body of POST /api/hospitals
type CreateHospitalRequest struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	ZipCode  string  `json:"zipCode"`
	Phone    string  `json:"phone"`
	Email    string  `json:"email"`
	Website  string  `json:"website"`
	Type     string  `json:"type"`
	Status   string  `json:"status"`
	Beds     int     `json:"beds"`
	Doctors  int     `json:"doctors"`
	Rating   float64 `json:"rating"`

	AdminFirstName  string `json:"adminFirstName"`
	AdminLastName   string `json:"adminLastName"`
	AdminEmail      string `json:"adminEmail"`
	AdminPhone      string `json:"adminPhone"`
	AdminPassword   string `json:"adminPassword"`
	SendCredentials bool   `json:"sendCredentials"`

	AdditionalAdmins []roster.DraftAdmin `json:"additionalAdmins"`
}

func (r CreateHospitalRequest) toModel() (*models.Hospital, roster.ValidationErrors) {
	errs := roster.ValidationErrors{}
	h := &models.Hospital{
		Name:     strings.TrimSpace(r.Name),
		Location: strings.TrimSpace(r.Location),
		Address:  strings.TrimSpace(r.Address),
		City:     strings.TrimSpace(r.City),
		State:    strings.ToLower(strings.TrimSpace(r.State)),
		ZipCode:  strings.TrimSpace(r.ZipCode),
		Phone:    strings.TrimSpace(r.Phone),
		Email:    strings.TrimSpace(r.Email),
		Website:  strings.TrimSpace(r.Website),
		Type:     string(roster.TypeGeneral),
		Status:   string(roster.StatusActive),
		Beds:     r.Beds,
		Doctors:  r.Doctors,
		Rating:   r.Rating,
	}

	if h.Name == "" {
		errs["name"] = "Name is required"
	}
	if r.Type != "" {
		if t, ok := roster.ParseHospitalType(r.Type); ok {
			h.Type = string(t)
		} else {
			errs["type"] = "Unknown hospital type"
		}
	}
	if r.Status != "" {
		if st, ok := roster.ParseStatus(r.Status); ok {
			h.Status = string(st)
		} else {
			errs["status"] = "Unknown status"
		}
	}
	checkCounts(errs, &r.Beds, &r.Doctors, &r.Rating)
	if !validState(h.State) {
		errs["state"] = stateMessage
	}
	if h.Email != "" && !roster.ValidEmail(h.Email) {
		errs["email"] = "Invalid email format"
	}
	return h, errs
}

const stateMessage = "State must be a two-letter code"

// validState accepts an empty state or a two-letter code, the width of the state column
func validState(state string) bool {
	if state == "" {
		return true
	}
	if len(state) != 2 {
		return false
	}
	for _, c := range state {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// primaryDraft returns nil when no admin field was filled in
func (r CreateHospitalRequest) primaryDraft() (*roster.DraftAdmin, roster.ValidationErrors) {
	errs := roster.ValidationErrors{}
	d := roster.DraftAdmin{
		FirstName:       strings.TrimSpace(r.AdminFirstName),
		LastName:        strings.TrimSpace(r.AdminLastName),
		Email:           strings.TrimSpace(r.AdminEmail),
		Phone:           strings.TrimSpace(r.AdminPhone),
		Password:        r.AdminPassword,
		SendCredentials: r.SendCredentials,
	}
	if d.FirstName == "" && d.LastName == "" && d.Email == "" && d.Phone == "" && d.Password == "" {
		return nil, errs
	}

	if d.FirstName == "" {
		errs["adminFirstName"] = "First name is required"
	}
	if d.LastName == "" {
		errs["adminLastName"] = "Last name is required"
	}
	if d.Email == "" {
		errs["adminEmail"] = "Email is required"
	} else if !roster.ValidEmail(d.Email) {
		errs["adminEmail"] = "Invalid email format"
	}
	if d.Password != "" && len(d.Password) < roster.MinPasswordLength {
		errs["adminPassword"] = "Password is too short"
	}
	return &d, errs
}

// UpdateHospitalRequest is the body of PUT /api/hospitals/{id}: the changed hospital
// fields plus the admin reconciliation payload
type UpdateHospitalRequest struct {
	Name     *string  `json:"name,omitempty"`
	Location *string  `json:"location,omitempty"`
	Address  *string  `json:"address,omitempty"`
	City     *string  `json:"city,omitempty"`
	State    *string  `json:"state,omitempty"`
	ZipCode  *string  `json:"zipCode,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Website  *string  `json:"website,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Beds     *int     `json:"beds,omitempty"`
	Doctors  *int     `json:"doctors,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`

	roster.ReconciliationPayload
}

func (r UpdateHospitalRequest) changedFields() (map[string]any, roster.ValidationErrors) {
	errs := roster.ValidationErrors{}
	fields := map[string]any{}

	text := map[string]*string{
		"location": r.Location, "address": r.Address, "city": r.City,
		"zip_code": r.ZipCode, "phone": r.Phone, "website": r.Website,
	}
	for column, v := range text {
		if v != nil {
			fields[column] = strings.TrimSpace(*v)
		}
	}

	if r.Name != nil {
		if name := strings.TrimSpace(*r.Name); name == "" {
			errs["name"] = "Name is required"
		} else {
			fields["name"] = name
		}
	}
	if r.State != nil {
		if state := strings.ToLower(strings.TrimSpace(*r.State)); validState(state) {
			fields["state"] = state
		} else {
			errs["state"] = stateMessage
		}
	}
	if r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		if email != "" && !roster.ValidEmail(email) {
			errs["email"] = "Invalid email format"
		} else {
			fields["email"] = email
		}
	}
	if r.Type != nil {
		if t, ok := roster.ParseHospitalType(*r.Type); ok {
			fields["type"] = string(t)
		} else {
			errs["type"] = "Unknown hospital type"
		}
	}
	if r.Status != nil {
		if st, ok := roster.ParseStatus(*r.Status); ok {
			fields["status"] = string(st)
		} else {
			errs["status"] = "Unknown status"
		}
	}

	checkCounts(errs, r.Beds, r.Doctors, r.Rating)
	if r.Beds != nil {
		fields["beds"] = *r.Beds
	}
	if r.Doctors != nil {
		fields["doctors"] = *r.Doctors
	}
	if r.Rating != nil {
		fields["rating"] = *r.Rating
	}
	return fields, errs
}

func checkCounts(errs roster.ValidationErrors, beds, doctors *int, rating *float64) {
	if beds != nil && *beds < 0 {
		errs["beds"] = "Beds cannot be negative"
	}
	if doctors != nil && *doctors < 0 {
		errs["doctors"] = "Doctors cannot be negative"
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		errs["rating"] = "Rating must be between 0 and 5"
	}
}

// AddedAdmin reports the outcome of adding one admin; Error is set when it was rejected
type AddedAdmin struct {
	TempID            int64  `json:"tempId,omitempty"`
	ID                string `json:"id,omitempty"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	IsPrimary         bool   `json:"isPrimary,omitempty"`
	PasswordGenerated bool   `json:"passwordGenerated,omitempty"`
	SendCredentials   bool   `json:"sendCredentials,omitempty"`
	Error             string `json:"error,omitempty"`
}

// AddedAdminsCount splits the added admins into successes and failures
type AddedAdminsCount struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

func countAdded(admins []AddedAdmin) AddedAdminsCount {
	c := AddedAdminsCount{Total: len(admins)}
	for _, a := range admins {
		if a.Error != "" {
			c.Failed++
		} else {
			c.Successful++
		}
	}
	return c
}

// CreateResult is returned by CreateHospital
type CreateResult struct {
	Hospital         roster.Hospital  `json:"hospital"`
	PrimaryAdmin     *AddedAdmin      `json:"primaryAdmin,omitempty"`
	AddedAdmins      []AddedAdmin     `json:"addedAdmins"`
	AddedAdminsCount AddedAdminsCount `json:"addedAdminsCount"`
}

func (r *CreateResult) allAdmins() []AddedAdmin {
	out := make([]AddedAdmin, 0, len(r.AddedAdmins)+1)
	if r.PrimaryAdmin != nil {
		out = append(out, *r.PrimaryAdmin)
	}
	return append(out, r.AddedAdmins...)
}

// UpdateResult is returned by UpdateHospital
type UpdateResult struct {
	Hospital            roster.Hospital  `json:"hospital"`
	AddedAdmins         []AddedAdmin     `json:"addedAdmins"`
	AddedAdminsCount    AddedAdminsCount `json:"addedAdminsCount"`
	RemovedAdmins       int64            `json:"removedAdmins"`
	PrimaryAdminUpdated bool             `json:"primaryAdminUpdated"`
}

func toRosterAdmin(a models.HospitalAdmin) roster.Admin {
	return roster.Admin{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Name:      strings.TrimSpace(a.FirstName + " " + a.LastName),
		Email:     a.Email,
		Phone:     a.Phone,
		IsPrimary: a.IsPrimary,
	}
}

func toRosterHospital(h models.Hospital) roster.Hospital {
	admins := make([]roster.Admin, 0, len(h.Admins))
	for _, a := range h.Admins {
		admins = append(admins, toRosterAdmin(a))
	}
	primary, rest := roster.SplitPrimary(admins)

	return roster.Hospital{
		ID:               h.ID,
		Name:             h.Name,
		Location:         h.Location,
		Address:          h.Address,
		City:             h.City,
		State:            h.State,
		ZipCode:          h.ZipCode,
		Phone:            h.Phone,
		Email:            h.Email,
		Website:          h.Website,
		Type:             roster.HospitalType(h.Type),
		Status:           roster.Status(h.Status),
		Beds:             h.Beds,
		Doctors:          h.Doctors,
		Rating:           h.Rating,
		PrimaryAdmin:     primary,
		AdditionalAdmins: rest,
	}
}
