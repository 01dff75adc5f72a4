package vanilla

import (
	"sort"
	"strings"

	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla/components"
)

func resolveComponentName(field model.Field) string {
	if widget := strings.TrimSpace(field.Widget); widget != "" {
		return widget
	}
	switch field.Type {
	case model.FieldTypeBoolean:
		return components.NameToggle
	case model.FieldTypeObject:
		return components.NameGroup
	default:
		return components.NameInput
	}
}

// componentHandlesChrome reports whether a component renders its own
// wrapper, so no label or error list is added around it.
func componentHandlesChrome(name string) bool {
	switch strings.TrimSpace(name) {
	case components.NameHidden, components.NameGroup, components.NameRoster:
		return true
	default:
		return false
	}
}

func labelTarget(field model.Field, componentName string) string {
	if componentName == components.NameSlider {
		if input := field.Metadata[model.MetadataInputName]; input != "" {
			return components.ControlID(input)
		}
	}
	return components.ControlID(field.Name)
}

// cssVarsStyle renders vars as a deterministic inline style.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key]+";")
	}
	return strings.Join(parts, " ")
}
