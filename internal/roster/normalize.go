package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Result is one normalized hospital with the defaults that had to be applied.
// A result without warnings corresponds to a record that was complete.
type Result struct {
	Hospital Hospital `json:"hospital"`
	Warnings []string `json:"warnings,omitempty"`
}

// Defaulted reports whether any field fell back to a default
func (r Result) Defaulted() bool {
	return len(r.Warnings) > 0
}

// Hospitals extracts the hospitals from a batch of results
func Hospitals(results []Result) []Hospital {
	out := make([]Hospital, 0, len(results))
	for _, r := range results {
		out = append(out, r.Hospital)
	}
	return out
}

// Normalize turns raw hospital objects into canonical hospitals. It never fails;
// missing or invalid fields fall back to defaults and are reported as warnings.
func Normalize(raw []map[string]any) []Result {
	out := make([]Result, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeOne(m))
	}
	return out
}

// NormalizeJSON decodes a hospital list and normalizes it. Accepted shapes are
// a bare array, {"data": [...]}, {"hospitals": [...]} and {"data": {"hospitals": [...]}}.
// Elements that are not objects are skipped.
func NormalizeJSON(data []byte) ([]Result, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode hospital list: %w", err)
	}

	list, ok := unwrapList(root)
	if !ok {
		return nil, errors.New("decode hospital list: payload is not a list")
	}

	raw := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			raw = append(raw, m)
		}
	}
	return Normalize(raw), nil
}

func unwrapList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		for _, key := range []string{"data", "hospitals"} {
			if inner, ok := t[key]; ok {
				return unwrapList(inner)
			}
		}
	}
	return nil, false
}

func normalizeOne(m map[string]any) Result {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	h := Hospital{
		ID:       firstString(m, "id", "_id"),
		Name:     firstString(m, "name"),
		Location: firstString(m, "location"),
		Address:  firstString(m, "address"),
		City:     firstString(m, "city"),
		State:    firstString(m, "state"),
		ZipCode:  firstString(m, "zipCode", "zip_code", "zip"),
		Phone:    firstString(m, "phone"),
		Email:    firstString(m, "email"),
		Website:  firstString(m, "website"),
	}
	if h.Name == "" {
		warn("name is missing")
	}

	if t, ok := ParseHospitalType(firstString(m, "type")); ok {
		h.Type = t
	} else {
		h.Type = TypeGeneral
		warn("type defaulted to %s", TypeGeneral)
	}

	if s, ok := ParseStatus(firstString(m, "status")); ok {
		h.Status = s
	} else {
		h.Status = StatusActive
		warn("status defaulted to %s", StatusActive)
	}

	h.Beds = nonNegativeInt(m, "beds", warn)
	h.Doctors = nonNegativeInt(m, "doctors", warn)
	h.Rating = rating(m, warn)

	admins := AdminsFromList(m["admins"])
	primary, rest := SplitPrimary(admins)
	if p, ok := AdminFromMap(m["primaryAdmin"]); ok {
		p.IsPrimary = true
		primary = &p
	}
	if primary == nil {
		primary = flatPrimaryAdmin(m)
	}
	h.PrimaryAdmin = primary

	if v, present := m["additionalAdmins"]; present {
		if _, isList := v.([]any); !isList && v != nil {
			warn("additionalAdmins is malformed, using empty list")
		}
		for _, a := range AdminsFromList(v) {
			a.IsPrimary = false
			rest = append(rest, a)
		}
	} else if len(admins) == 0 {
		warn("additionalAdmins defaulted to empty list")
	}
	h.AdditionalAdmins = dedupeAdmins(rest, primary)

	return Result{Hospital: h, Warnings: warnings}
}

func flatPrimaryAdmin(m map[string]any) *Admin {
	name := firstString(m, "adminName")
	email := firstString(m, "adminEmail")
	phone := firstString(m, "adminPhone")
	if name == "" && email == "" && phone == "" {
		return nil
	}
	a, _ := AdminFromMap(map[string]any{
		"id":    firstString(m, "adminId"),
		"name":  name,
		"email": email,
		"phone": phone,
	})
	a.IsPrimary = true
	return &a
}

// dedupeAdmins keeps the first admin per id and drops any copy of the primary
func dedupeAdmins(admins []Admin, primary *Admin) []Admin {
	seen := make(map[string]bool, len(admins)+1)
	if primary != nil && primary.ID != "" {
		seen[primary.ID] = true
	}
	out := make([]Admin, 0, len(admins))
	for _, a := range admins {
		if a.ID != "" {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
		}
		out = append(out, a)
	}
	return out
}

func nonNegativeInt(m map[string]any, key string, warn func(string, ...any)) int {
	v, present := m[key]
	if !present || v == nil {
		warn("%s defaulted to 0", key)
		return 0
	}
	n, err := toDecimalInt(v)
	if err != nil || n < 0 {
		warn("%s value %v is invalid, defaulted to 0", key, v)
		return 0
	}
	return n
}

// toDecimalInt reads strings in base 10 only, so "0150" is 150 and "0x10" is invalid
func toDecimalInt(v any) (int, error) {
	if s, ok := v.(string); ok {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	return cast.ToIntE(v)
}

func rating(m map[string]any, warn func(string, ...any)) float64 {
	v, present := m["rating"]
	if !present || v == nil {
		warn("rating defaulted to 0")
		return 0
	}
	r, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		warn("rating value %v is invalid, defaulted to 0", v)
		return 0
	}
	if r > 5 {
		warn("rating %v clamped to 5", v)
		return 5
	}
	return r
}
