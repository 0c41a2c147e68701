// Package owner maps PBX extensions to CRM user ids.
package owner

import "strconv"

// Resolver holds the static extension→owner mapping loaded at startup plus a
// global default. It is read-only for the lifetime of the process.
type Resolver struct {
	byExtension map[string]string
	defaultID   int
}

// NewResolver builds a Resolver. defaultID <= 0 means no default owner.
func NewResolver(byExtension map[string]string, defaultID int) *Resolver {
	if byExtension == nil {
		byExtension = map[string]string{}
	}
	return &Resolver{byExtension: byExtension, defaultID: defaultID}
}

// Resolve picks the owner id for an internal extension. A mapped value that
// parses as an integer wins; otherwise the default applies. ok is false when
// no owner can be assigned, which is a legal outcome: candidates are then
// created without an owner.
func (r *Resolver) Resolve(extension string) (id int, ok bool) {
	if extension != "" {
		if mapped, found := r.byExtension[extension]; found {
			if n, err := strconv.Atoi(mapped); err == nil {
				return n, true
			}
		}
	}
	if r.defaultID > 0 {
		return r.defaultID, true
	}
	return 0, false
}
