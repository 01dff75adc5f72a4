package catalog

import (
	"fmt"
	"strings"
)

// DefaultKey is the service used when a request names no service or an
// unknown one.
const DefaultKey = "lawn-mowing-weed-wacking"

// ServiceDescriptor describes one offered service and the optional field
// groups its order form needs. Descriptors are shared between canonical keys
// and their aliases and must not be mutated after the catalog is built.
type ServiceDescriptor struct {
	Key                       string `json:"key" yaml:"key"`
	Name                      string `json:"name" yaml:"name"`
	Description               string `json:"description" yaml:"description"`
	NeedsHouseType            bool   `json:"needsHouseType,omitempty" yaml:"needsHouseType"`
	NeedsWindowCount          bool   `json:"needsWindowCount,omitempty" yaml:"needsWindowCount"`
	NeedsPetSetup             bool   `json:"needsPetSetup,omitempty" yaml:"needsPetSetup"`
	NeedsBabysittingSetup     bool   `json:"needsBabysittingSetup,omitempty" yaml:"needsBabysittingSetup"`
	SupportsMultiDayDateRange bool   `json:"supportsMultiDayDateRange,omitempty" yaml:"supportsMultiDayDateRange"`
}

// NeedsAddress reports whether the service happens at the customer's
// property.
func (d *ServiceDescriptor) NeedsAddress() bool {
	if d == nil {
		return false
	}
	return d.NeedsHouseType || d.NeedsWindowCount
}

// Entry is the input shape accepted by New: a descriptor plus the legacy keys
// that should resolve to it.
type Entry struct {
	Descriptor ServiceDescriptor
	Aliases    []string
}

// Catalog is an immutable key to descriptor mapping. Aliases resolve to the
// same *ServiceDescriptor as their canonical key.
type Catalog struct {
	byKey      map[string]*ServiceDescriptor
	keys       []string
	aliases    map[string]string
	defaultKey string
}

// New builds a catalog from entries. The default key must name one of the
// canonical entries; keys and aliases must be unique across the catalog.
func New(defaultKey string, entries ...Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog: at least one service is required")
	}

	c := &Catalog{
		byKey:   make(map[string]*ServiceDescriptor, len(entries)*2),
		keys:    make([]string, 0, len(entries)),
		aliases: make(map[string]string),
	}

	for _, entry := range entries {
		desc := entry.Descriptor
		key := strings.TrimSpace(desc.Key)
		if key == "" {
			return nil, fmt.Errorf("catalog: service %q has an empty key", desc.Name)
		}
		if strings.TrimSpace(desc.Name) == "" {
			return nil, fmt.Errorf("catalog: service %q has an empty name", key)
		}
		if _, exists := c.byKey[key]; exists {
			return nil, fmt.Errorf("catalog: duplicate service key %q", key)
		}
		desc.Key = key
		shared := &desc
		c.byKey[key] = shared
		c.keys = append(c.keys, key)

		for _, alias := range entry.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			if _, exists := c.byKey[alias]; exists {
				return nil, fmt.Errorf("catalog: alias %q collides with an existing key", alias)
			}
			c.byKey[alias] = shared
			c.aliases[alias] = key
		}
	}

	defaultKey = strings.TrimSpace(defaultKey)
	if defaultKey == "" {
		defaultKey = c.keys[0]
	}
	if _, ok := c.byKey[defaultKey]; !ok {
		return nil, fmt.Errorf("catalog: default key %q is not defined", defaultKey)
	}
	c.defaultKey = c.canonical(defaultKey)

	return c, nil
}

// Resolve returns the descriptor registered under key. Matching is exact and
// case-sensitive; empty or unknown keys yield the default descriptor.
func (c *Catalog) Resolve(key string) *ServiceDescriptor {
	if desc, ok := c.Lookup(key); ok {
		return desc
	}
	return c.byKey[c.defaultKey]
}

// Lookup returns the descriptor for key and whether it was found.
func (c *Catalog) Lookup(key string) (*ServiceDescriptor, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	desc, ok := c.byKey[key]
	return desc, ok
}

// Default returns the fallback descriptor.
func (c *Catalog) Default() *ServiceDescriptor {
	return c.byKey[c.defaultKey]
}

// DefaultKey returns the canonical key of the fallback descriptor.
func (c *Catalog) DefaultKey() string {
	return c.defaultKey
}

// Keys lists canonical keys in catalog order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Aliases returns a copy of the alias to canonical key mapping.
func (c *Catalog) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for alias, key := range c.aliases {
		out[alias] = key
	}
	return out
}

// Descriptors lists canonical descriptors in catalog order.
func (c *Catalog) Descriptors() []ServiceDescriptor {
	out := make([]ServiceDescriptor, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, *c.byKey[key])
	}
	return out
}

func (c *Catalog) canonical(key string) string {
	if canonical, ok := c.aliases[key]; ok {
		return canonical
	}
	return key
}
