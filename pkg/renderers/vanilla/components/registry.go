package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-orderform/pkg/model"
	rendertemplate "github.com/goliatone/go-orderform/pkg/render/template"
)

// Renderer writes the control markup for field into buf. The surrounding
// chrome (label, description, errors) is added by the vanilla renderer unless
// the component handles it itself.
type Renderer func(buf *bytes.Buffer, field model.Field, data ComponentData) error

// ComponentData carries helpers for component renderers.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// RenderChild renders a nested field with its chrome. Groups and rosters
	// use it for their children.
	RenderChild func(field model.Field) (string, error)
	// Partials are theme template overrides keyed by PartialKey.
	Partials map[string]string
	// Invalid is set when the field carries errors.
	Invalid bool
}

// Descriptor is a named component renderer plus the stylesheets a page needs
// once any field uses it.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
}

// Registry maps widget component names to descriptors. Names are matched
// case-insensitively. Themes register over the defaults to restyle a widget.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// Register stores descriptor under name, replacing any earlier entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	name = normalize(name)
	switch {
	case name == "":
		return fmt.Errorf("components: component name is required")
	case descriptor.Renderer == nil:
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	descriptor.Name = name
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)

	r.mu.Lock()
	r.components[name] = descriptor
	r.mu.Unlock()
	return nil
}

// MustRegister is Register for the built-in set, where a failure is a bug.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor returns a copy of the descriptor registered under name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.components[normalize(name)]
	r.mu.RUnlock()
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	return descriptor, ok
}

// Names lists the registered components in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stylesheets collects the stylesheets of the named components, first
// occurrence wins. Unknown names are skipped.
func (r *Registry) Stylesheets(names []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, name := range names {
		for _, href := range r.components[normalize(name)].Stylesheets {
			if href != "" && !slices.Contains(out, href) {
				out = append(out, href)
			}
		}
	}
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
