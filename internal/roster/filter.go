package roster

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Admin presence filter values
const (
	AdminFilterAny  = ""
	AdminFilterHas  = "has_admin"
	AdminFilterNone = "no_admin"
)

// CapacityRange is an inclusive bed-count range. A nil Max leaves the upper end open.
type CapacityRange struct {
	Min int  `json:"min"`
	Max *int `json:"max,omitempty"`
}

// AtMost returns an upper bound for CapacityRange.Max
func AtMost(beds int) *int {
	return &beds
}

// Contains reports whether beds lies inside the range
func (r CapacityRange) Contains(beds int) bool {
	if beds < r.Min {
		return false
	}
	return r.Max == nil || beds <= *r.Max
}

// Criteria describes one derived view of the roster. Zero values mean no constraint.
type Criteria struct {
	SearchTerm  string         `json:"searchTerm,omitempty"`
	Type        string         `json:"type,omitempty"`
	Region      string         `json:"region,omitempty"`
	Status      string         `json:"status,omitempty"`
	AdminFilter string         `json:"adminFilter,omitempty"`
	Capacity    *CapacityRange `json:"capacity,omitempty"`
}

// IsZero reports whether the criteria constrain nothing
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.SearchTerm) == "" &&
		c.Type == "" && c.Region == "" && c.Status == "" &&
		c.AdminFilter == "" && c.Capacity == nil
}

var stateRegions = map[string]string{
	"ny": "northeast", "ma": "northeast", "ct": "northeast", "ri": "northeast", "nh": "northeast",
	"vt": "northeast", "me": "northeast", "pa": "northeast", "nj": "northeast",

	"fl": "southeast", "ga": "southeast", "sc": "southeast", "nc": "southeast", "va": "southeast",
	"wv": "southeast", "ky": "southeast", "tn": "southeast", "al": "southeast", "ms": "southeast",
	"ar": "southeast", "la": "southeast", "md": "southeast", "de": "southeast", "dc": "southeast",

	"oh": "midwest", "in": "midwest", "il": "midwest", "mi": "midwest", "wi": "midwest",
	"mn": "midwest", "ia": "midwest", "mo": "midwest", "nd": "midwest", "sd": "midwest",
	"ne": "midwest", "ks": "midwest",

	"tx": "southwest", "ok": "southwest", "nm": "southwest", "az": "southwest",

	"ca": "west", "or": "west", "wa": "west", "nv": "west", "id": "west", "ut": "west",
	"co": "west", "wy": "west", "mt": "west", "ak": "west", "hi": "west",
}

// RegionOf resolves a state code to its region bucket
func RegionOf(state string) (string, bool) {
	r, ok := stateRegions[strings.ToLower(strings.TrimSpace(state))]
	return r, ok
}

var adminPlaceholders = map[string]struct{}{
	"n/a": {}, "na": {}, "none": {}, "-": {}, "not assigned": {}, "unassigned": {}, "tbd": {},
}

// HasAdmin reports whether the hospital has a real primary admin name
func HasAdmin(h Hospital) bool {
	name := strings.ToLower(strings.TrimSpace(h.AdminName()))
	if name == "" {
		return false
	}
	_, placeholder := adminPlaceholders[name]
	return !placeholder
}

// Apply returns the hospitals satisfying every non-empty criterion, in input order.
// The input slice is never modified.
func Apply(hospitals []Hospital, c Criteria) []Hospital {
	out := make([]Hospital, 0, len(hospitals))
	for _, h := range hospitals {
		if Matches(h, c) {
			out = append(out, h)
		}
	}
	return out
}

// Matches evaluates the criteria against a single hospital
func Matches(h Hospital, c Criteria) bool {
	if t := strings.TrimSpace(c.Type); t != "" && !strings.EqualFold(string(h.Type), t) {
		return false
	}
	if s := strings.TrimSpace(c.Status); s != "" && !strings.EqualFold(string(h.Status), s) {
		return false
	}
	if r := strings.TrimSpace(c.Region); r != "" {
		region, ok := RegionOf(h.State)
		if !ok || !strings.EqualFold(region, r) {
			return false
		}
	}
	if c.Capacity != nil && !c.Capacity.Contains(h.Beds) {
		return false
	}
	switch c.AdminFilter {
	case AdminFilterHas:
		if !HasAdmin(h) {
			return false
		}
	case AdminFilterNone:
		if HasAdmin(h) {
			return false
		}
	}
	return matchesSearch(h, c.SearchTerm)
}

func matchesSearch(h Hospital, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	fields := []string{
		h.Name, h.Location, h.ID,
		h.AdminName(), h.AdminEmail(), h.AdminPhone(),
		h.Email, h.Phone,
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ParseCriteria reads criteria from query parameters. Unparseable bed bounds are ignored.
func ParseCriteria(q url.Values) Criteria {
	c := Criteria{
		SearchTerm:  q.Get("search"),
		Type:        q.Get("type"),
		Region:      q.Get("region"),
		Status:      q.Get("status"),
		AdminFilter: q.Get("admin"),
	}

	minBeds, minErr := strconv.Atoi(strings.TrimSpace(q.Get("minBeds")))
	maxBeds, maxErr := strconv.Atoi(strings.TrimSpace(q.Get("maxBeds")))
	if minErr == nil || maxErr == nil {
		r := &CapacityRange{}
		if minErr == nil {
			r.Min = minBeds
		}
		if maxErr == nil {
			r.Max = AtMost(maxBeds)
		}
		c.Capacity = r
	}
	return c
}

// Sort keys
const (
	SortByName   = "name"
	SortByBeds   = "beds"
	SortByRating = "rating"
	SortByStatus = "status"
)

// Sort returns a stably sorted copy. Unknown keys fall back to name.
func Sort(hospitals []Hospital, key string, desc bool) []Hospital {
	out := make([]Hospital, len(hospitals))
	copy(out, hospitals)

	less := func(a, b Hospital) bool {
		switch key {
		case SortByBeds:
			return a.Beds < b.Beds
		case SortByRating:
			return a.Rating < b.Rating
		case SortByStatus:
			return a.Status < b.Status
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
