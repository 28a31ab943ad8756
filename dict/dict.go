// Package dict holds the AVP dictionary: static metadata keyed by
// (vendor-id, code) that names each attribute, declares its data
// format and sets the default mandatory bit. Registries are built once
// and never mutated; components that need one receive it explicitly.
package dict

import (
	"fmt"

	"github.com/telcoflow/diampeer/models_base"
)

// Entry describes one AVP.
type Entry struct {
	Code      uint32
	VendorID  uint32
	Name      string
	Kind      models_base.TypeID
	Mandatory bool
}

type dictKey struct {
	vendorID uint32
	code     uint32
}

// DuplicateEntryError reports two table rows claiming the same
// (vendor-id, code) pair.
type DuplicateEntryError struct {
	Code     uint32
	VendorID uint32
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("dict: duplicate entry for code %d vendor %d", e.Code, e.VendorID)
}

// Registry is an immutable AVP dictionary. Lookups are safe for
// concurrent use without locking because nothing writes after
// construction.
type Registry struct {
	byKey  map[dictKey]*Entry
	byName map[string]*Entry
}

// NewRegistry builds a registry from a table of entries. Duplicate
// (vendor-id, code) pairs are authoring bugs and fail construction.
func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		byKey:  make(map[dictKey]*Entry, len(entries)),
		byName: make(map[string]*Entry, len(entries)),
	}
	for i := range entries {
		e := entries[i]
		k := dictKey{vendorID: e.VendorID, code: e.Code}
		if _, dup := r.byKey[k]; dup {
			return nil, &DuplicateEntryError{Code: e.Code, VendorID: e.VendorID}
		}
		r.byKey[k] = &e
		r.byName[e.Name] = &e
	}
	return r, nil
}

// Extend returns a new registry holding this registry's entries plus
// extra. The receiver is left untouched.
func (r *Registry) Extend(extra []Entry) (*Registry, error) {
	merged := make([]Entry, 0, len(r.byKey)+len(extra))
	for _, e := range r.byKey {
		merged = append(merged, *e)
	}
	merged = append(merged, extra...)
	return NewRegistry(merged)
}

// Lookup finds the entry for (code, vendorID).
func (r *Registry) Lookup(code, vendorID uint32) (*Entry, bool) {
	e, ok := r.byKey[dictKey{vendorID: vendorID, code: code}]
	return e, ok
}

// LookupName finds an entry by its dictionary name.
func (r *Registry) LookupName(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Len reports the number of entries.
func (r *Registry) Len() int {
	return len(r.byKey)
}

func mustNewRegistry(entries []Entry) *Registry {
	r, err := NewRegistry(entries)
	if err != nil {
		panic(err)
	}
	return r
}
