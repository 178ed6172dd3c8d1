// Package profile defines the personal-data model formfill writes into forms
// and the persistence layer that stores it. The fill pipeline only reads
// through this package; it never writes back.
package profile

import "strings"

// Built-in attribute keys. The matcher's keyword tables are indexed by these.
const (
	KeyFullName    = "full_name"
	KeyFirstName   = "first_name"
	KeyLastName    = "last_name"
	KeyEmail       = "email"
	KeyPhone       = "phone"
	KeyIDNumber    = "id_number"
	KeyDateOfBirth = "date_of_birth"
	KeyGender      = "gender"
	KeyDegree      = "degree"
	KeyCampus      = "campus"
	KeyAddress     = "address"
	KeyCity        = "city"
	KeyPostalCode  = "postal_code"
	KeyCountry     = "country"
	KeyCompany     = "company"
	KeyJobTitle    = "job_title"
)

// Keys lists every built-in attribute in a stable order.
var Keys = []string{
	KeyFullName, KeyFirstName, KeyLastName, KeyEmail, KeyPhone,
	KeyIDNumber, KeyDateOfBirth, KeyGender, KeyDegree, KeyCampus,
	KeyAddress, KeyCity, KeyPostalCode, KeyCountry, KeyCompany, KeyJobTitle,
}

// Profile is one person's fill data: built-in attributes plus user-defined
// custom fields. Immutable for the duration of a fill invocation.
type Profile struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Custom     map[string]string `json:"custom,omitempty"`
}

// Get returns the value of a built-in attribute, or "" if unset.
func (p *Profile) Get(key string) string {
	if p == nil || p.Attributes == nil {
		return ""
	}
	return p.Attributes[key]
}

// Normalize fills in missing attribute keys with empty values and trims
// whitespace, so consumers can index and assign both maps without nil
// checks.
func (p *Profile) Normalize() {
	if p.Attributes == nil {
		p.Attributes = make(map[string]string, len(Keys))
	}
	if p.Custom == nil {
		p.Custom = make(map[string]string)
	}
	for _, k := range Keys {
		p.Attributes[k] = strings.TrimSpace(p.Attributes[k])
	}
	for k, v := range p.Custom {
		p.Custom[k] = strings.TrimSpace(v)
	}
}

// Empty reports whether the profile carries no usable values at all.
func (p *Profile) Empty() bool {
	for _, v := range p.Attributes {
		if v != "" {
			return false
		}
	}
	for _, v := range p.Custom {
		if v != "" {
			return false
		}
	}
	return true
}

// Settings holds user preferences consulted before a fill runs.
type Settings struct {
	ActiveProfileID string   `json:"active_profile_id"`
	AutoFill        bool     `json:"auto_fill"`
	Blacklist       []string `json:"blacklist,omitempty"`
}

// Blacklisted reports whether host (or any of its parent domains) is on the
// domain blacklist.
func (s *Settings) Blacklisted(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	for _, d := range s.Blacklist {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
