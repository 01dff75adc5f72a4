package components

import "github.com/goliatone/go-orderform/pkg/model"

// Canonical component names used by the vanilla renderer and default registry.
// They match the widget names the engine assigns to fields.
const (
	NameInput    = model.WidgetInput
	NameEmail    = model.WidgetEmail
	NameTel      = model.WidgetTel
	NameTextarea = model.WidgetTextarea
	NameHidden   = model.WidgetHidden
	NameSelect   = model.WidgetSelect
	NameSlider   = model.WidgetSlider
	NameToggle   = model.WidgetToggle
	NameDate     = model.WidgetDate
	NameGroup    = model.WidgetGroup
	NameRoster   = model.WidgetRoster
)

// PartialKey is the theme partial that, when set, replaces the built-in
// markup of the named component.
func PartialKey(name string) string {
	return "orderform." + normalize(name)
}
