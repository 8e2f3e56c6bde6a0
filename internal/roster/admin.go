package roster

import (
	"strings"

	"github.com/spf13/cast"
)

// Admin is the one shape an administrator takes anywhere in the roster.
// Server responses that use name instead of firstName/lastName, or _id
// instead of id, are folded into it by AdminFromMap.
type Admin struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

// DisplayName prefers the explicit name and falls back to "first last"
func (a Admin) DisplayName() string {
	if n := strings.TrimSpace(a.Name); n != "" {
		return n
	}
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// AdminFromMap adapts a loosely shaped admin object. The second return
// value is false when the value is not an object at all.
func AdminFromMap(v any) (Admin, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Admin{}, false
	}

	a := Admin{
		ID:        firstString(m, "id", "_id", "adminId"),
		FirstName: firstString(m, "firstName", "first_name"),
		LastName:  firstString(m, "lastName", "last_name"),
		Name:      firstString(m, "name", "fullName"),
		Email:     firstString(m, "email"),
		Phone:     firstString(m, "phone", "phoneNumber"),
		IsPrimary: cast.ToBool(m["isPrimary"]) || cast.ToBool(m["is_primary"]),
	}

	// Split a single name so every admin carries both shapes
	if a.Name != "" && a.FirstName == "" && a.LastName == "" {
		parts := strings.Fields(a.Name)
		a.FirstName = parts[0]
		if len(parts) > 1 {
			a.LastName = strings.Join(parts[1:], " ")
		}
	}
	if a.Name == "" {
		a.Name = a.DisplayName()
	}
	return a, true
}

// AdminsFromList adapts a list of admin objects, skipping entries that are not objects
func AdminsFromList(v any) []Admin {
	list, ok := v.([]any)
	if !ok {
		return []Admin{}
	}
	out := make([]Admin, 0, len(list))
	for _, item := range list {
		if a, ok := AdminFromMap(item); ok {
			out = append(out, a)
		}
	}
	return out
}

// SplitPrimary separates the primary admin from the rest. When more than one
// admin claims to be primary only the first keeps the flag.
func SplitPrimary(admins []Admin) (*Admin, []Admin) {
	var primary *Admin
	rest := make([]Admin, 0, len(admins))
	for _, a := range admins {
		if a.IsPrimary && primary == nil {
			p := a
			primary = &p
			continue
		}
		a.IsPrimary = false
		rest = append(rest, a)
	}
	return primary, rest
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
