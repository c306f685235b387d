package manager

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"mercator-hq/formgate/pkg/form/ast"
)

// FormRegistry is a thread-safe in-memory index of loaded forms by id.
// Replace swaps the whole set at once, so readers never observe a partial reload.
type FormRegistry struct {
	mu       sync.RWMutex
	forms    map[string]*LoadedForm
	version  string
	loadTime time.Time
}

// NewFormRegistry creates an empty registry.
func NewFormRegistry() *FormRegistry {
	return &FormRegistry{
		forms: make(map[string]*LoadedForm),
	}
}

// Replace validates loaded and atomically replaces the registry contents.
// Duplicate form ids are rejected and leave the registry unchanged.
func (r *FormRegistry) Replace(loaded []*LoadedForm) error {
	next := make(map[string]*LoadedForm, len(loaded))

	for _, lf := range loaded {
		if lf == nil || lf.Form == nil {
			return &RegistryError{Operation: "replace", Message: "form cannot be nil"}
		}
		id := lf.Form.ID
		if id == "" {
			return &RegistryError{
				Operation: "replace",
				Message:   "form id cannot be empty (source " + lf.SourceFile + ")",
			}
		}
		if prev, ok := next[id]; ok {
			return &RegistryError{
				FormID:    id,
				Operation: "replace",
				Message:   "declared by both " + prev.SourceFile + " and " + lf.SourceFile,
			}
		}
		next[id] = lf
	}

	version := computeVersion(next)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.forms = next
	r.version = version
	r.loadTime = time.Now()
	return nil
}

// Get returns the form registered under id.
func (r *FormRegistry) Get(id string) (*ast.Form, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lf, ok := r.forms[id]
	if !ok {
		return nil, false
	}
	return lf.Form, true
}

// Forms returns every registered form sorted by id.
func (r *FormRegistry) Forms() []*ast.Form {
	r.mu.RLock()
	defer r.mu.RUnlock()

	forms := make([]*ast.Form, 0, len(r.forms))
	for _, id := range r.sortedIDs() {
		forms = append(forms, r.forms[id].Form)
	}
	return forms
}

// Metadata returns a summary of every registered form sorted by id.
func (r *FormRegistry) Metadata() []FormMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FormMetadata, 0, len(r.forms))
	for _, id := range r.sortedIDs() {
		lf := r.forms[id]
		out = append(out, FormMetadata{
			ID:         id,
			Name:       lf.Form.Name,
			Version:    lf.Form.Version,
			SourceFile: lf.SourceFile,
			FieldCount: len(lf.Form.Fields),
			Checksum:   lf.Checksum,
		})
	}
	return out
}

// Count returns the number of registered forms.
func (r *FormRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// Version returns a 16 character content hash of the registered set, or "" when
// nothing has been registered. It changes whenever any document changes.
func (r *FormRegistry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the current set was registered.
func (r *FormRegistry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

// Stats returns registry statistics.
func (r *FormRegistry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		FormCount: len(r.forms),
		Version:   r.version,
		LoadTime:  r.loadTime,
	}
	for _, lf := range r.forms {
		stats.FieldCount += len(lf.Form.Fields)
	}
	return stats
}

// sortedIDs must be called with r.mu held.
func (r *FormRegistry) sortedIDs() []string {
	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func computeVersion(forms map[string]*LoadedForm) string {
	if len(forms) == 0 {
		return ""
	}

	ids := make([]string, 0, len(forms))
	for id := range forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
		h.Write([]byte(forms[id].Checksum))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
