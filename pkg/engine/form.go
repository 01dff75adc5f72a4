package engine

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/slider"
	"github.com/goliatone/go-orderform/pkg/visibility"
)

// Form is the behaviour the submitter and the renderers need from an order or
// contact form.
type Form interface {
	Kind() string
	Token() string
	SetToken(string)
	Apply(url.Values)
	Validate() []model.FieldError
	Payload() url.Values
	SuccessMessage() string
	Reset()
	Model() model.FormModel
}

// ContactRequirer is implemented by forms that need at least one way to reach
// the customer.
type ContactRequirer interface {
	ContactMethods() (email, phone string)
}

// Trap is implemented by forms that carry a honeypot field.
type Trap interface {
	Trapped() bool
}

// ApplySlider restores a slider from posted values. The number box wins when
// it differs from the last committed value; otherwise the range control does.
func ApplySlider(c *slider.Control, values url.Values) {
	if c == nil || values == nil {
		return
	}
	number, hasNumber := lookup(values, c.InputName())
	committed, hasCommitted := lookup(values, c.CommittedName())
	rangeText, hasRange := lookup(values, c.Name())

	if hasNumber && (!hasCommitted || number != committed) && (!hasRange || number != rangeText) {
		c.SetNumber(number)
		return
	}
	if hasRange {
		if n, ok := slider.ParseInt(rangeText); ok {
			c.SetRange(n)
			return
		}
	}
	if hasNumber {
		c.SetNumber(number)
	}
}

// SliderField projects a slider into a model field.
func SliderField(c *slider.Control) model.Field {
	return model.Field{
		Name:     c.Name(),
		Type:     model.FieldTypeInteger,
		Widget:   model.WidgetSlider,
		Required: c.Required(),
		Label:    c.Label(),
		Value:    c.Range(),
		Validations: []model.ValidationRule{
			intRule(model.ValidationRuleMin, c.Min()),
			intRule(model.ValidationRuleMax, c.Max()),
			intRule(model.ValidationRuleStep, c.Step()),
		},
		Metadata: map[string]string{
			model.MetadataInputName:   c.InputName(),
			model.MetadataRangeValue:  c.Range(),
			model.MetadataNumberValue: c.Number(),
			model.MetadataCommitted:   c.CommittedName(),
		},
	}
}

// ChoiceFields projects a choice and its "Other" companion.
func ChoiceFields(c Choice, name, label, placeholder, otherName, otherPlaceholder string) []model.Field {
	options := make([]model.Option, 0, len(c.Options()))
	for _, option := range c.Options() {
		options = append(options, model.Option{Value: option, Label: option})
	}
	return []model.Field{
		{
			Name:        name,
			Type:        model.FieldTypeString,
			Widget:      model.WidgetSelect,
			Required:    true,
			Label:       label,
			Placeholder: placeholder,
			Value:       c.Value(),
			Options:     options,
		},
		{
			Name:        otherName,
			Type:        model.FieldTypeString,
			Widget:      model.WidgetInput,
			Required:    true,
			Placeholder: otherPlaceholder,
			Value:       c.Other(),
			VisibleWhen: visibility.Equals(name, OptionOther),
		},
	}
}

// resolveVisibility sets Hidden on every field carrying a VisibleWhen rule.
// A rule that fails to parse hides its field.
func resolveVisibility(fields []model.Field, values visibility.Values) {
	for i := range fields {
		if rule := fields[i].VisibleWhen; rule != "" {
			visible, err := visibility.Eval(rule, values)
			fields[i].Hidden = err != nil || !visible
		}
		if len(fields[i].Nested) > 0 {
			resolveVisibility(fields[i].Nested, values)
		}
	}
}

func intRule(kind string, value int) model.ValidationRule {
	return model.ValidationRule{
		Kind:   kind,
		Params: map[string]string{"value": strconv.Itoa(value)},
	}
}

func lookup(values url.Values, name string) (string, bool) {
	raw, ok := values[name]
	if !ok || len(raw) == 0 {
		return "", false
	}
	return raw[0], true
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

// validEmail accepts a bare address only. Display names and angle brackets
// are rejected so the relayed value is exactly the address.
func validEmail(raw string) bool {
	addr, err := mail.ParseAddress(raw)
	return err == nil && addr.Address == raw
}
