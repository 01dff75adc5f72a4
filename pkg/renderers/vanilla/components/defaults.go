package components

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-orderform/pkg/model"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer. Every built-in can be replaced by
// a theme partial registered under PartialKey(name).
func NewDefaultRegistry() *Registry {
	registry := New()

	builtins := map[string]Renderer{
		NameInput:    textInput("text"),
		NameEmail:    textInput("email"),
		NameTel:      textInput("tel"),
		NameTextarea: textareaRenderer,
		NameHidden:   hiddenRenderer,
		NameSelect:   selectRenderer,
		NameSlider:   sliderRenderer,
		NameToggle:   toggleRenderer,
		NameDate:     dateRenderer,
		NameGroup:    groupRenderer,
		NameRoster:   rosterRenderer,
	}
	for name, renderer := range builtins {
		registry.MustRegister(name, Descriptor{Renderer: withPartial(name, renderer)})
	}
	return registry
}

// ControlID is the DOM id of the control rendered for an input name.
func ControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "of-" + trimmed
}

func withPartial(name string, fallback Renderer) Renderer {
	key := PartialKey(name)
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		partial := strings.TrimSpace(data.Partials[key])
		if partial == "" || data.Template == nil {
			return fallback(buf, field, data)
		}
		rendered, err := data.Template.RenderTemplate(partial, map[string]any{
			"field":   field,
			"id":      ControlID(field.Name),
			"invalid": data.Invalid,
		})
		if err != nil {
			return fmt.Errorf("components: render partial %q: %w", partial, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func textInput(kind string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		buf.WriteString(`<input`)
		writeAttr(buf, "type", kind)
		writeControlAttrs(buf, field, data)
		writeAttr(buf, "value", field.Value)
		if field.Placeholder != "" {
			writeAttr(buf, "placeholder", field.Placeholder)
		}
		buf.WriteString(`>`)
		return nil
	}
}

func textareaRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<textarea`)
	writeControlAttrs(buf, field, data)
	writeAttr(buf, "rows", "4")
	if field.Placeholder != "" {
		writeAttr(buf, "placeholder", field.Placeholder)
	}
	buf.WriteString(`>`)
	buf.WriteString(html.EscapeString(field.Value))
	buf.WriteString(`</textarea>`)
	return nil
}

func hiddenRenderer(buf *bytes.Buffer, field model.Field, _ ComponentData) error {
	buf.WriteString(`<input type="hidden"`)
	writeAttr(buf, "name", field.Name)
	writeAttr(buf, "value", field.Value)
	buf.WriteString(`>`)
	return nil
}

func selectRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<select`)
	writeControlAttrs(buf, field, data)
	buf.WriteString(">\n")

	if field.Placeholder != "" {
		buf.WriteString(`    <option value="" disabled`)
		writeFlag(buf, "selected", field.Value == "")
		buf.WriteString(`>`)
		buf.WriteString(html.EscapeString(field.Placeholder))
		buf.WriteString("</option>\n")
	}
	for _, option := range field.Options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		buf.WriteString(`    <option`)
		writeAttr(buf, "value", option.Value)
		writeFlag(buf, "selected", option.Value == field.Value)
		buf.WriteString(`>`)
		buf.WriteString(html.EscapeString(label))
		buf.WriteString("</option>\n")
	}
	buf.WriteString(`</select>`)
	return nil
}

// sliderRenderer emits the paired number box and range control. The hidden
// committed value lets the server tell which of the two the user edited.
func sliderRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	inputName := field.Metadata[model.MetadataInputName]
	if inputName == "" {
		inputName = field.Name + "_input"
	}
	committed := field.Metadata[model.MetadataCommitted]
	if committed == "" {
		committed = field.Name + "_committed"
	}
	number := field.Metadata[model.MetadataNumberValue]
	if number == "" {
		number = field.Value
	}
	rangeValue := field.Metadata[model.MetadataRangeValue]
	if rangeValue == "" {
		rangeValue = field.Value
	}

	buf.WriteString(`<div class="of-slider">` + "\n")

	buf.WriteString(`    <input type="number"`)
	writeAttr(buf, "id", ControlID(inputName))
	writeAttr(buf, "name", inputName)
	writeBounds(buf, field)
	writeAttr(buf, "value", number)
	writeAttr(buf, "inputmode", "numeric")
	if field.Label != "" {
		writeAttr(buf, "aria-label", field.Label)
	}
	writeFlag(buf, "required", field.Required && !field.Hidden)
	if data.Invalid {
		writeAttr(buf, "aria-invalid", "true")
	}
	buf.WriteString(">\n")

	buf.WriteString(`    <input type="range"`)
	writeAttr(buf, "id", ControlID(field.Name))
	writeAttr(buf, "name", field.Name)
	writeBounds(buf, field)
	writeAttr(buf, "value", rangeValue)
	buf.WriteString(">\n")

	buf.WriteString(`    <input type="hidden"`)
	writeAttr(buf, "name", committed)
	writeAttr(buf, "value", rangeValue)
	buf.WriteString(">\n")

	buf.WriteString(`</div>`)
	return nil
}

func toggleRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<input type="checkbox"`)
	writeAttr(buf, "id", ControlID(field.Name))
	writeAttr(buf, "name", field.Name)
	writeAttr(buf, "value", "true")
	writeFlag(buf, "checked", isOn(field.Value))
	if data.Invalid {
		writeAttr(buf, "aria-invalid", "true")
	}
	buf.WriteString(`>`)
	return nil
}

func dateRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<input type="date"`)
	writeControlAttrs(buf, field, data)
	writeAttr(buf, "value", field.Value)
	if earliest, ok := field.Rule(model.ValidationRuleMinDate); ok && earliest != "" {
		writeAttr(buf, "min", earliest)
	}
	buf.WriteString(`>`)
	return nil
}

func groupRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<fieldset`)
	writeAttr(buf, "id", ControlID(field.Name))
	writeAttr(buf, "class", "of-group")
	if group := field.Metadata[model.MetadataGroup]; group != "" {
		writeAttr(buf, "data-group", group)
	}
	writeFlag(buf, "hidden", field.Hidden)
	buf.WriteString(">\n")

	if field.Label != "" {
		buf.WriteString(`<legend>`)
		buf.WriteString(html.EscapeString(field.Label))
		buf.WriteString("</legend>\n")
	}
	if desc := strings.TrimSpace(field.Description); desc != "" {
		buf.WriteString(`<p class="of-group-description">`)
		buf.WriteString(html.EscapeString(desc))
		buf.WriteString("</p>\n")
	}
	if err := renderChildren(buf, field, data); err != nil {
		return err
	}
	buf.WriteString(`</fieldset>`)
	return nil
}

func rosterRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<div`)
	writeAttr(buf, "id", ControlID(field.Name))
	writeAttr(buf, "class", "of-roster")
	writeAttr(buf, "data-rows", strconv.Itoa(len(field.Nested)))
	buf.WriteString(">\n")
	if err := renderChildren(buf, field, data); err != nil {
		return err
	}
	buf.WriteString(`</div>`)
	return nil
}

func renderChildren(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if len(field.Nested) == 0 {
		return nil
	}
	if data.RenderChild == nil {
		return fmt.Errorf("components: %q has children but no child renderer", field.Name)
	}
	for _, child := range field.Nested {
		rendered, err := data.RenderChild(child)
		if err != nil {
			return err
		}
		buf.WriteString(rendered)
		if !strings.HasSuffix(rendered, "\n") {
			buf.WriteByte('\n')
		}
	}
	return nil
}

func writeControlAttrs(buf *bytes.Buffer, field model.Field, data ComponentData) {
	writeAttr(buf, "id", ControlID(field.Name))
	writeAttr(buf, "name", field.Name)
	// A hidden conditional input must not block native validation.
	writeFlag(buf, "required", field.Required && !field.Hidden)
	if data.Invalid {
		writeAttr(buf, "aria-invalid", "true")
		writeAttr(buf, "aria-describedby", ControlID(field.Name)+"-errors")
	}
}

func writeBounds(buf *bytes.Buffer, field model.Field) {
	for _, kind := range []string{model.ValidationRuleMin, model.ValidationRuleMax, model.ValidationRuleStep} {
		if value, ok := field.Rule(kind); ok {
			writeAttr(buf, kind, value)
		}
	}
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteString(`="`)
	buf.WriteString(html.EscapeString(value))
	buf.WriteByte('"')
}

func writeFlag(buf *bytes.Buffer, name string, on bool) {
	if !on {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(name)
}

func isOn(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}
