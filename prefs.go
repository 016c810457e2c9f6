package notebook

import (
	"math"
	"sort"
)

// Preferences is a tree of named sections holding client settings.
//
// Values are strings, numbers and booleans. A section is a nested
// Preferences. All sections of one tree share the same dirty state.
type Preferences struct {
	values map[string]interface{}
	dirty  *bool
	// parent and name are set for a section that does not exist yet.
	parent *Preferences
	name   string
}

func newPreferences(m map[string]interface{}) *Preferences {
	if m == nil {
		m = make(map[string]interface{})
	}
	dirty := false
	return &Preferences{values: m, dirty: &dirty}
}

// Section returns the named subsection.
//
// A missing section reads as empty and is only created when a value is
// written to it. The write replaces an existing value with the same name.
func (p *Preferences) Section(name string) *Preferences {
	if m, ok := p.values[name].(map[string]interface{}); ok {
		return &Preferences{values: m, dirty: p.dirty}
	}
	return &Preferences{dirty: p.dirty, parent: p, name: name}
}

// attach makes sure a section exists in its parent before it is written.
func (p *Preferences) attach() {
	if p.parent == nil {
		return
	}
	p.parent.attach()
	m, ok := p.parent.values[p.name].(map[string]interface{})
	if !ok {
		m = make(map[string]interface{})
		p.parent.values[p.name] = m
	}
	p.values = m
	p.parent = nil
}

// HasSection tells if a subsection with the given name exists.
func (p *Preferences) HasSection(name string) bool {
	_, ok := p.values[name].(map[string]interface{})
	return ok
}

// Sections lists the names of all subsections in sorted order.
func (p *Preferences) Sections() []string {
	names := make([]string, 0)
	for k, v := range p.values {
		if _, ok := v.(map[string]interface{}); ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Keys lists the keys of all values (not sections) in sorted order.
func (p *Preferences) Keys() []string {
	keys := make([]string, 0)
	for k, v := range p.values {
		if _, ok := v.(map[string]interface{}); !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Has tells if a value is set for the given key.
func (p *Preferences) Has(key string) bool {
	v, ok := p.values[key]
	if !ok {
		return false
	}
	_, isMap := v.(map[string]interface{})
	return !isMap
}

// Get returns the raw value for a key.
func (p *Preferences) Get(key string) (interface{}, bool) {
	if !p.Has(key) {
		return nil, false
	}
	return p.values[key], true
}

// GetString returns the value for key or def if it is absent or not a string.
func (p *Preferences) GetString(key, def string) string {
	if s, ok := p.values[key].(string); ok {
		return s
	}
	return def
}

// GetInt returns the value for key or def if it is absent or not an integer.
func (p *Preferences) GetInt(key string, def int) int {
	switch v := p.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	}
	return def
}

// GetBool returns the value for key or def if it is absent or not a boolean.
func (p *Preferences) GetBool(key string, def bool) bool {
	if b, ok := p.values[key].(bool); ok {
		return b
	}
	return def
}

// GetFloat returns the value for key or def if it is absent or not a number.
func (p *Preferences) GetFloat(key string, def float64) float64 {
	switch v := p.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Define sets a value only if the key is not present.
// Returns true if the value was set.
func (p *Preferences) Define(key string, value interface{}) bool {
	if _, ok := p.values[key]; ok {
		return false
	}
	p.Set(key, value)
	return true
}

// Set sets the value for a key.
func (p *Preferences) Set(key string, value interface{}) {
	if old, ok := p.values[key]; ok && sameScalar(old, value) {
		return
	}
	p.attach()
	p.values[key] = value
	*p.dirty = true
}

// Delete removes a value or section.
func (p *Preferences) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	*p.dirty = true
}

// IsDirty tells if the preferences were changed since they were last saved.
func (p *Preferences) IsDirty() bool {
	return *p.dirty
}

func (p *Preferences) markClean() {
	*p.dirty = false
}

func sameScalar(a, b interface{}) bool {
	switch a.(type) {
	case string, bool, int, int64, float64:
		return a == b
	}
	return false
}

func (p *Preferences) toMap() map[string]interface{} {
	return copyValues(p.values)
}

func copyValues(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]interface{}); ok {
			dst[k] = copyValues(m)
		} else {
			dst[k] = v
		}
	}
	return dst
}
