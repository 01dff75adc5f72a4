package model

import "strings"

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeObject  FieldType = "object"
)

const (
	ValidationRuleMin     = "min"
	ValidationRuleMax     = "max"
	ValidationRuleStep    = "step"
	ValidationRuleMinDate = "minDate"
)

// Widget names tell renderers which control to build for a field.
const (
	WidgetInput    = "input"
	WidgetEmail    = "email"
	WidgetTel      = "tel"
	WidgetTextarea = "textarea"
	WidgetHidden   = "hidden"
	WidgetSelect   = "select"
	WidgetSlider   = "slider"
	WidgetToggle   = "toggle"
	WidgetDate     = "date"
	WidgetGroup    = "group"
	WidgetRoster   = "roster"
)

// Metadata keys shared by the engine and the renderers.
const (
	MetadataServiceKey  = "service.key"
	MetadataServiceName = "service.name"
	MetadataFormKind    = "form.kind"
	MetadataGroup       = "group"
	MetadataInputName   = "slider.inputName"
	MetadataRangeValue  = "slider.rangeValue"
	MetadataNumberValue = "slider.numberValue"
	MetadataCommitted   = "slider.committedName"
)

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds encode their threshold in Params["value"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field models an individual input inside a generated form. Groups and roster
// rows are object fields whose children live in Nested.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Widget      string            `json:"widget"`
	Required    bool              `json:"required"`
	Hidden      bool              `json:"hidden,omitempty"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Value       string            `json:"value,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	VisibleWhen string            `json:"visibleWhen,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Rule returns the parameter value of the first rule of kind.
func (f Field) Rule(kind string) (string, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			value, ok := rule.Params["value"]
			return value, ok
		}
	}
	return "", false
}

// IsContainer reports whether the field only groups other fields.
func (f Field) IsContainer() bool {
	return f.Type == FieldTypeObject
}

// Walk visits every field depth first. Returning false from fn skips the
// field's children.
func (m FormModel) Walk(fn func(path string, field Field) bool) {
	walkFields(m.Fields, "", fn)
}

// Find returns the first input field (containers excluded) named name.
func (m FormModel) Find(name string) (Field, bool) {
	var (
		found Field
		ok    bool
	)
	m.Walk(func(_ string, field Field) bool {
		if ok {
			return false
		}
		if !field.IsContainer() && field.Name == name {
			found, ok = field, true
			return false
		}
		return true
	})
	return found, ok
}

// InputNames lists input field names in render order.
func (m FormModel) InputNames() []string {
	var names []string
	m.Walk(func(_ string, field Field) bool {
		if !field.IsContainer() {
			names = append(names, field.Name)
		}
		return true
	})
	return names
}

func walkFields(fields []Field, prefix string, fn func(string, Field) bool) {
	for _, field := range fields {
		path := joinPath(prefix, field.Name)
		if !fn(path, field) {
			continue
		}
		if len(field.Nested) > 0 {
			walkFields(field.Nested, path, fn)
		}
	}
}

func joinPath(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// FieldError is a validation failure attached to an input by name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// GroupErrors folds a list of field errors into the per-field map renderers
// expect.
func GroupErrors(errs []FieldError) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string][]string, len(errs))
	for _, fe := range errs {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}
