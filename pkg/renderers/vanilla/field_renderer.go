package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/render/template"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla/components"
)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
	errors    map[string][]string

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string, errs map[string][]string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		partials:       partials,
		errors:         errs,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(field model.Field) (string, error) {
	componentName := resolveComponentName(field)
	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, field.Name)
	}

	messages := r.errors[field.Name]
	data := components.ComponentData{
		Template:    r.templates,
		RenderChild: r.render,
		Partials:    r.partials,
		Invalid:     len(messages) > 0,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, field.Name, err)
	}
	r.usedComponents[componentName] = struct{}{}

	if componentHandlesChrome(componentName) {
		return control.String() + "\n", nil
	}
	return buildFieldMarkup(field, componentName, control.String(), messages), nil
}

// stylesheets lists what the components used in this render ask for.
func (r *componentRenderer) stylesheets() []string {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Stylesheets(names)
}

func buildFieldMarkup(field model.Field, componentName, control string, messages []string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="`)
	builder.WriteString(string(ClassField))
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`"`)
	if rule := strings.TrimSpace(field.VisibleWhen); rule != "" {
		builder.WriteString(` data-visible-when="`)
		builder.WriteString(html.EscapeString(rule))
		builder.WriteString(`"`)
	}
	if field.Hidden {
		builder.WriteString(` hidden`)
	}
	builder.WriteString(">\n")

	if label := strings.TrimSpace(field.Label); label != "" {
		builder.WriteString(`    <label for="`)
		builder.WriteString(html.EscapeString(labelTarget(field, componentName)))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(label))
		if field.Required {
			builder.WriteString(` *`)
		}
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if desc := strings.TrimSpace(field.Description); desc != "" {
		builder.WriteString(`    <small class="`)
		builder.WriteString(string(ClassDescription))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(desc))
		builder.WriteString("</small>\n")
	}

	if len(messages) > 0 {
		builder.WriteString(`    <ul class="`)
		builder.WriteString(string(ClassErrors))
		builder.WriteString(`" id="`)
		builder.WriteString(html.EscapeString(components.ControlID(field.Name)))
		builder.WriteString(`-errors" role="alert">` + "\n")
		for _, message := range messages {
			builder.WriteString(`        <li>`)
			builder.WriteString(html.EscapeString(message))
			builder.WriteString("</li>\n")
		}
		builder.WriteString("    </ul>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}
