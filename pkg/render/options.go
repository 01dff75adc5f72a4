package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-orderform/pkg/banner"
)

// StatusKind colours the inline status line.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// RenderOptions carry per-request data renderers use without mutating the
// form model.
type RenderOptions struct {
	// Action is the URL the form posts back to. Empty means the current URL.
	Action string
	// Errors are field messages keyed by input name.
	Errors map[string][]string
	// FormErrors are messages that belong to no single field.
	FormErrors []string
	// Status is the inline status line under the submit button.
	Status     string
	StatusKind StatusKind
	// Overlay is the success panel text. The panel stays open until the user
	// dismisses it.
	Overlay string
	// Sending disables the submit control.
	Sending bool
	// Hidden fields are emitted in addition to the model's hidden inputs.
	Hidden []HiddenField
	// Theme supplies tokens, CSS variables and partial overrides.
	Theme *theme.RendererConfig
	// Banner is the header state the page is rendered with.
	Banner     *banner.State
	BannerMode banner.Mode
	// Services lists the catalog entries for the service switcher.
	Services []ServiceLink
}

// ServiceLink is one entry of the service switcher.
type ServiceLink struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// WithErrors returns a copy of opts with mapping applied on top of the
// existing errors.
func (opts RenderOptions) WithErrors(mapping ErrorMapping) RenderOptions {
	if len(mapping.Fields) > 0 {
		merged := make(map[string][]string, len(opts.Errors)+len(mapping.Fields))
		for name, messages := range opts.Errors {
			merged[name] = append([]string(nil), messages...)
		}
		for name, messages := range mapping.Fields {
			merged[name] = normalizeMessages(append(merged[name], messages...))
		}
		opts.Errors = merged
	}
	opts.FormErrors = MergeFormErrors(opts.FormErrors, mapping.Form...)
	return opts
}
