package render

import (
	"strings"

	"github.com/goliatone/go-orderform/pkg/model"
)

// ErrorMapping splits submission errors into messages shown next to an input
// and messages shown for the form as a whole.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors appends extras to existing, trimming whitespace and
// dropping blanks and repeats. Order of first appearance is kept.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapFieldErrors attaches each error to the input of form it names. Backends
// sometimes scope a name ("pets.petType2", "/customerEmail"); the last
// segment is tried when the full key matches nothing. Errors naming a
// hidden, unknown or container field become form-level messages, so nothing
// the user needs to read is dropped.
func MapFieldErrors(form model.FormModel, errs []model.FieldError) ErrorMapping {
	var mapping ErrorMapping
	if len(errs) == 0 {
		return mapping
	}

	inputs := make(map[string]struct{})
	form.Walk(func(_ string, field model.Field) bool {
		if field.Hidden {
			return false
		}
		if !field.IsContainer() && field.Widget != model.WidgetHidden {
			inputs[field.Name] = struct{}{}
		}
		return true
	})

	fields := make(map[string][]string)
	for _, fe := range errs {
		message := strings.TrimSpace(fe.Message)
		if message == "" {
			continue
		}
		name, ok := resolveInput(fe.Field, inputs)
		if !ok {
			mapping.Form = append(mapping.Form, message)
			continue
		}
		fields[name] = MergeFormErrors(fields[name], message)
	}

	if len(fields) > 0 {
		mapping.Fields = fields
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolveInput(key string, inputs map[string]struct{}) (string, bool) {
	key = strings.TrimSpace(key)
	if _, ok := inputs[key]; ok {
		return key, true
	}
	if i := strings.LastIndexAny(key, "./"); i >= 0 {
		leaf := key[i+1:]
		if _, ok := inputs[leaf]; ok {
			return leaf, true
		}
	}
	return "", false
}

func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
