// Package vanilla renders order and contact forms as server-side HTML pages.
// Controls are produced by a component registry; the page layout is a pongo2
// template that themes can replace.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-orderform/pkg/banner"
	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/render"
	rendertemplate "github.com/goliatone/go-orderform/pkg/render/template"
	"github.com/goliatone/go-orderform/pkg/render/template/pongo"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla/components"
)

// Name is the registry name of the renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	stylesheets      []string
	navPath          string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk, falling back to
// the embedded bundle for files the directory does not carry.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err == nil {
			cfg.templateDir = path
		}
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithStylesheet adds a stylesheet link to every page.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithNavPath sets the path service switcher links point at.
func WithNavPath(path string) Option {
	return func(cfg *config) {
		cfg.navPath = strings.TrimSpace(path)
	}
}

type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	registry    *components.Registry
	stylesheets []string
	navPath     string
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := []pongo.Option{
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		}
		if cfg.templateDir != "" {
			engineOpts = append(engineOpts, pongo.WithBaseDir(cfg.templateDir))
		}
		engine, err := pongo.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		registry:    cfg.registry,
		stylesheets: cfg.stylesheets,
		navPath:     cfg.navPath,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces a complete HTML page for form.
func (r *Renderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	partials := themePartials(opts.Theme)
	fields := newComponentRenderer(r.templates, r.registry, partials, opts.Errors)

	var markup strings.Builder
	for _, field := range form.Fields {
		rendered, err := fields.render(field)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		markup.WriteString(rendered)
	}

	mode := opts.BannerMode
	if mode == "" {
		mode = banner.ModeDynamic
	}
	state := banner.ForMode(banner.DefaultConfig(), mode, 0)
	if opts.Banner != nil {
		state = *opts.Banner
	}

	kind := form.Metadata[model.MetadataFormKind]
	data := map[string]any{
		"form": map[string]any{
			"title":       form.Summary,
			"description": form.Description,
			"kind":        kind,
			"operation":   form.OperationID,
			"service":     form.Metadata[model.MetadataServiceKey],
		},
		"action":       opts.Action,
		"fields_html":  markup.String(),
		"hidden":       render.SortedHiddenFields(render.MergeHiddenFields(nil, opts.Hidden...)),
		"form_errors":  opts.FormErrors,
		"status":       opts.Status,
		"status_kind":  string(opts.StatusKind),
		"overlay":      opts.Overlay,
		"sending":      opts.Sending,
		"refreshable":  kind == "order",
		"submit_label": submitLabel(kind),
		"services":     opts.Services,
		"nav_path":     r.navPath,
		"stylesheets":  r.stylesheetsFor(fields, opts.Theme),
		"banner":       bannerContext(state, mode),
		"theme":        themeContext(opts.Theme),
		"page_style":   pageStyle(opts.Theme, state),
		"classes": map[string]string{
			"form":        string(ClassForm),
			"form_errors": string(ClassFormErrors),
			"actions":     string(ClassActions),
			"status":      string(ClassStatus),
			"overlay":     string(ClassOverlay),
		},
	}

	page := PageTemplate
	if override := strings.TrimSpace(partials[PartialPage]); override != "" {
		page = override
	}
	result, err := r.templates.RenderTemplate(page, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) stylesheetsFor(fields *componentRenderer, cfg *theme.RendererConfig) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(href string) {
		if href == "" {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		out = append(out, href)
	}

	primary := "/assets/" + StylesheetName
	if cfg != nil && cfg.AssetURL != nil {
		if href := cfg.AssetURL(AssetStylesheet); href != "" {
			primary = href
		}
	}
	add(primary)
	for _, href := range fields.stylesheets() {
		add(href)
	}
	for _, href := range r.stylesheets {
		add(href)
	}
	return out
}

func submitLabel(kind string) string {
	if kind == "contact" {
		return "Send Message"
	}
	return "Send Request"
}

func themePartials(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil {
		return nil
	}
	return cfg.Partials
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
	}
}

func bannerContext(state banner.State, mode banner.Mode) map[string]any {
	classes := append([]string{}, state.Classes()...)
	return map[string]any{
		"classes": classes,
		"height":  state.CurrentHeight,
		"mode":    string(mode),
	}
}

// pageStyle merges theme variables with the banner variables. Banner values
// win so the header always reflects the current state.
func pageStyle(cfg *theme.RendererConfig, state banner.State) string {
	vars := map[string]string{}
	if cfg != nil {
		mergeInto(vars, cfg.CSSVars)
	}
	mergeInto(vars, state.CSSVars())
	return cssVarsStyle(vars)
}
