package atz

import "encoding/json"

// Candidate is a person record owned by the CRM. Only its identity and phone
// are interpreted here; the rest of the document is kept verbatim so the
// custom-field readers can probe whatever shape the deployment uses.
type Candidate struct {
	raw map[string]json.RawMessage
}

// UnmarshalJSON keeps the whole document for later field probing.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.raw)
}

// MarshalJSON round-trips the original document.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw)
}

// Ref returns the identifier used to address the candidate: the first
// present of id, slug, uuid.
func (c Candidate) Ref() string {
	for _, key := range []string{"id", "slug", "uuid"} {
		if v, ok := c.stringField(key); ok && v != "" {
			return v
		}
	}
	return ""
}

// Phone returns the candidate's phone field, unnormalized.
func (c Candidate) Phone() string {
	v, _ := c.stringField("phone")
	return v
}

// stringField decodes a top-level field as a string, stringifying numeric
// ids along the way.
func (c Candidate) stringField(key string) (string, bool) {
	raw, ok := c.raw[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// CustomField returns the current value of a custom field, trying the three
// known storage shapes in order: a flat top-level string field, a keyed map
// under custom_fields, an array of {key|name, value} under custom_fields.
// The first shape that yields a string wins.
func (c Candidate) CustomField(key string) (string, bool) {
	if v, ok := decodeFlatField(c.raw, key); ok {
		return v, true
	}
	container, ok := c.raw["custom_fields"]
	if !ok {
		return "", false
	}
	if v, ok := decodeKeyedMap(container, key); ok {
		return v, true
	}
	if v, ok := decodeKeyValueArray(container, key); ok {
		return v, true
	}
	return "", false
}

func decodeFlatField(doc map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := doc[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeKeyedMap(container json.RawMessage, key string) (string, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(container, &m); err != nil {
		return "", false
	}
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeKeyValueArray(container json.RawMessage, key string) (string, bool) {
	var entries []struct {
		Key   string          `json:"key"`
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(container, &entries); err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.Key != key && e.Name != key {
			continue
		}
		var s string
		if err := json.Unmarshal(e.Value, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

// User is one CRM user, listed at boot to help operators configure the
// extension→owner mapping.
type User struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
}

// DisplayName picks the most human label available.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.FullName != "":
		return u.FullName
	case u.Email != "":
		return u.Email
	}
	return "(no name)"
}
