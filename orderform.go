// Package orderform is the quick-start entry point of the module. It builds
// forms for services of the built-in catalog and renders them with the HTML
// or terminal renderer without wiring the individual packages by hand.
package orderform

import (
	"context"
	"fmt"

	"github.com/goliatone/go-orderform/pkg/banner"
	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/tui"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
)

// RenderOptions carries per-request page data: errors, status line, overlay,
// banner state and theme.
type RenderOptions = render.RenderOptions

// ServiceDescriptor describes one orderable service.
type ServiceDescriptor = catalog.ServiceDescriptor

// Renderer names accepted by Render.
const (
	RendererHTML     = vanilla.Name
	RendererTerminal = tui.Name
)

// NewRegistry returns a registry holding the HTML renderer and a terminal
// renderer configured with tuiOptions.
func NewRegistry(tuiOptions ...tui.Option) (*render.Registry, error) {
	html, err := vanilla.New(vanilla.WithNavPath("/order"))
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.New(tuiOptions...)); err != nil {
		return nil, err
	}
	return registry, nil
}

// NewOrder builds a fresh order form for key. Aliases resolve to their
// service; empty or unknown keys yield the default service.
func NewOrder(key string) *engine.Order {
	return engine.NewOrder(catalog.Builtin().Resolve(key))
}

// NewContact builds an empty contact form.
func NewContact() *engine.Contact {
	return engine.NewContact()
}

// Render renders form with the renderer registered under name.
func Render(ctx context.Context, registry *render.Registry, name string, form engine.Form, opts RenderOptions) ([]byte, error) {
	if registry == nil {
		return nil, fmt.Errorf("orderform: registry is nil")
	}
	if form == nil {
		return nil, fmt.Errorf("orderform: form is nil")
	}
	renderer, err := registry.Get(name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, form.Model(), opts)
}

// GenerateHTML renders the order page of the service registered under key
// with the default theme and an unscrolled dynamic banner.
func GenerateHTML(ctx context.Context, key string) ([]byte, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	themes, err := vanilla.NewThemes()
	if err != nil {
		return nil, err
	}
	sel, err := themes.Select(vanilla.DefaultThemeName, "")
	if err != nil {
		return nil, err
	}

	order := NewOrder(key)
	state := banner.Compute(banner.DefaultConfig(), 0)
	return Render(ctx, registry, RendererHTML, order, RenderOptions{
		Action:     "/order?service=" + order.Service().Key,
		Banner:     &state,
		BannerMode: banner.ModeDynamic,
		Theme:      vanilla.ThemeConfig(sel, &state),
	})
}
