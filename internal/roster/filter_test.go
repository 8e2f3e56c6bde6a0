package roster

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(hs []Hospital) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out
}

func sampleRoster() []Hospital {
	return []Hospital{
		{
			ID: "h-1", Name: "Mercy General", State: "ny", Type: TypeGeneral, Status: StatusActive, Beds: 50,
			Email: "info@mercy.org", Phone: "555-0100",
			PrimaryAdmin:     &Admin{ID: "a-1", Name: "Dr. Ann Park", Email: "ann@mercy.org", Phone: "555-0101", IsPrimary: true},
			AdditionalAdmins: []Admin{},
		},
		{
			ID: "h-2", Name: "St. Luke Heart", State: "TX", Type: TypeSpecialty, Status: StatusPending, Beds: 150,
			Location:         "Austin",
			PrimaryAdmin:     &Admin{ID: "a-2", Name: "Sam Ortiz", Email: "sam.cardio@stluke.org", IsPrimary: true},
			AdditionalAdmins: []Admin{},
		},
		{
			ID: "h-3", Name: "Riverside Teaching", State: "ma", Type: TypeTeaching, Status: StatusActive, Beds: 450,
			PrimaryAdmin:     &Admin{Name: "N/A", IsPrimary: true},
			AdditionalAdmins: []Admin{},
		},
		{
			ID: "h-4", Name: "Desert Clinic", State: "zz", Type: TypeClinic, Status: StatusMaintenance, Beds: 0,
			AdditionalAdmins: []Admin{},
		},
	}
}

func TestApply_SearchAdminEmail(t *testing.T) {
	hs := sampleRoster()[:3]
	got := Apply(hs, Criteria{SearchTerm: "CARDIO"})
	assert.Equal(t, []string{"h-2"}, ids(got))
}

func TestApply_SearchFields(t *testing.T) {
	hs := sampleRoster()
	cases := map[string][]string{
		"mercy":    {"h-1"},
		"austin":   {"h-2"},
		"h-3":      {"h-3"},
		"ann park": {"h-1"},
		"0101":     {"h-1"},
		"0100":     {"h-1"},
		"   ":      {"h-1", "h-2", "h-3", "h-4"},
		"nomatch":  {},
	}
	for term, want := range cases {
		t.Run(term, func(t *testing.T) {
			assert.Equal(t, want, ids(Apply(hs, Criteria{SearchTerm: term})))
		})
	}
}

func TestApply_Capacity(t *testing.T) {
	hs := sampleRoster()[:3]
	got := Apply(hs, Criteria{Capacity: &CapacityRange{Min: 100, Max: AtMost(300)}})
	assert.Equal(t, []string{"h-2"}, ids(got))

	// bounds are inclusive
	got = Apply(hs, Criteria{Capacity: &CapacityRange{Min: 150, Max: AtMost(150)}})
	assert.Equal(t, []string{"h-2"}, ids(got))

	// open upper bound
	got = Apply(hs, Criteria{Capacity: &CapacityRange{Min: 100}})
	assert.Equal(t, []string{"h-2", "h-3"}, ids(got))
}

func TestApply_CapacityZeroBeds(t *testing.T) {
	hs := []Hospital{{ID: "empty", Beds: 0}, {ID: "big", Beds: 500}}
	got := Apply(hs, Criteria{Capacity: &CapacityRange{Min: 0, Max: AtMost(0)}})
	assert.Equal(t, []string{"empty"}, ids(got))
}

func TestApply_AdminFilter(t *testing.T) {
	hs := []Hospital{
		{ID: "first"},
		{ID: "second", PrimaryAdmin: &Admin{Name: "Dr. X", IsPrimary: true}},
	}
	assert.Equal(t, []string{"first"}, ids(Apply(hs, Criteria{AdminFilter: AdminFilterNone})))
	assert.Equal(t, []string{"second"}, ids(Apply(hs, Criteria{AdminFilter: AdminFilterHas})))

	// placeholder names count as no admin
	all := sampleRoster()
	assert.Equal(t, []string{"h-3", "h-4"}, ids(Apply(all, Criteria{AdminFilter: AdminFilterNone})))
}

func TestApply_Region(t *testing.T) {
	hs := []Hospital{{ID: "ny", State: "ny"}, {ID: "tx", State: "tx"}}
	assert.Equal(t, []string{"ny"}, ids(Apply(hs, Criteria{Region: "northeast"})))

	// unknown states never match a region
	assert.Empty(t, Apply([]Hospital{{ID: "x", State: "zz"}}, Criteria{Region: "west"}))
	assert.Empty(t, Apply([]Hospital{{ID: "x"}}, Criteria{Region: "northeast"}))
}

func TestApply_TypeAndStatusCaseInsensitive(t *testing.T) {
	hs := sampleRoster()
	assert.Equal(t, []string{"h-2"}, ids(Apply(hs, Criteria{Type: "Specialty"})))
	assert.Equal(t, []string{"h-1", "h-3"}, ids(Apply(hs, Criteria{Status: "ACTIVE"})))
}

func TestApply_EmptyCriteriaIsIdentity(t *testing.T) {
	hs := sampleRoster()
	assert.Equal(t, ids(hs), ids(Apply(hs, Criteria{})))
	assert.True(t, Criteria{}.IsZero())
}

func TestApply_SubsetAndNoMutation(t *testing.T) {
	hs := sampleRoster()
	before := ids(hs)

	criteria := []Criteria{
		{SearchTerm: "e"},
		{Status: "active"},
		{Region: "northeast", AdminFilter: AdminFilterHas},
		{Capacity: &CapacityRange{Min: 10, Max: AtMost(200)}, Type: "general"},
	}
	all := map[string]bool{}
	for _, id := range before {
		all[id] = true
	}
	for _, c := range criteria {
		for _, h := range Apply(hs, c) {
			assert.True(t, all[h.ID], "result %s not in input", h.ID)
		}
	}
	assert.Equal(t, before, ids(hs))
}

func TestApply_Conjunctive(t *testing.T) {
	hs := sampleRoster()
	c1 := Criteria{Status: "active"}
	c2 := Criteria{Capacity: &CapacityRange{Min: 100, Max: AtMost(1000)}}
	both := Criteria{Status: "active", Capacity: &CapacityRange{Min: 100, Max: AtMost(1000)}}

	left := Apply(hs, c1)
	right := map[string]bool{}
	for _, h := range Apply(hs, c2) {
		right[h.ID] = true
	}
	var intersection []string
	for _, h := range left {
		if right[h.ID] {
			intersection = append(intersection, h.ID)
		}
	}
	assert.Equal(t, intersection, ids(Apply(hs, both)))
	assert.Equal(t, []string{"h-3"}, intersection)
}

func TestParseCriteria(t *testing.T) {
	q := url.Values{}
	q.Set("search", "mercy")
	q.Set("region", "northeast")
	q.Set("admin", "has_admin")
	q.Set("minBeds", "100")
	q.Set("maxBeds", "300")

	c := ParseCriteria(q)
	assert.Equal(t, "mercy", c.SearchTerm)
	assert.Equal(t, "northeast", c.Region)
	assert.Equal(t, AdminFilterHas, c.AdminFilter)
	require.NotNil(t, c.Capacity)
	assert.Equal(t, CapacityRange{Min: 100, Max: AtMost(300)}, *c.Capacity)

	assert.Nil(t, ParseCriteria(url.Values{"minBeds": {"lots"}}).Capacity)

	// leading zeros are decimal, other bases are rejected
	c = ParseCriteria(url.Values{"minBeds": {"0100"}, "maxBeds": {"0300"}})
	require.NotNil(t, c.Capacity)
	assert.Equal(t, CapacityRange{Min: 100, Max: AtMost(300)}, *c.Capacity)
	assert.Nil(t, ParseCriteria(url.Values{"minBeds": {"0x10"}}).Capacity)

	c = ParseCriteria(url.Values{"maxBeds": {"0"}})
	require.NotNil(t, c.Capacity)
	assert.Equal(t, CapacityRange{Min: 0, Max: AtMost(0)}, *c.Capacity)
	assert.True(t, ParseCriteria(url.Values{}).IsZero())
}

func TestSort(t *testing.T) {
	hs := sampleRoster()

	byBeds := Sort(hs, SortByBeds, true)
	assert.Equal(t, []string{"h-3", "h-2", "h-1", "h-4"}, ids(byBeds))

	byName := Sort(hs, "unknown", false)
	assert.Equal(t, []string{"h-4", "h-1", "h-3", "h-2"}, ids(byName))

	// input order untouched
	assert.Equal(t, []string{"h-1", "h-2", "h-3", "h-4"}, ids(hs))
}
