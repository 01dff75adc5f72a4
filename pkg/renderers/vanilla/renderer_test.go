package vanilla_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-orderform/pkg/banner"
	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
)

func newOrder(t *testing.T, key string) *engine.Order {
	t.Helper()
	desc, ok := catalog.Builtin().Lookup(key)
	if !ok {
		t.Fatalf("service %q not in builtin catalog", key)
	}
	return engine.NewOrder(desc)
}

func renderPage(t *testing.T, r *vanilla.Renderer, form engine.Form, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(context.Background(), form.Model(), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, page string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(page, fragment) {
			t.Errorf("expected page to contain %q", fragment)
		}
	}
}

func assertNotContains(t *testing.T, page string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(page, fragment) {
			t.Errorf("expected page not to contain %q", fragment)
		}
	}
}

func TestRenderer_OrderPage(t *testing.T) {
	renderer, err := vanilla.New(vanilla.WithNavPath("/order"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	order := newOrder(t, "window-cleaning")

	page := renderPage(t, renderer, order, render.RenderOptions{Action: "/order?service=window-cleaning"})

	assertContains(t, page,
		`<title>Window Cleaning Request</title>`,
		`<link rel="stylesheet" href="/assets/orderform.css">`,
		`<header id="banner" class="banner" data-mode="dynamic" data-height="300px">`,
		`<p class="of-intro">Tell me about your home and window count to estimate scope.</p>`,
		`<form id="order-form" class="of-form" method="post" action="/order?service=window-cleaning">`,
		`<input type="hidden" name="form_token" value="`+order.Token()+`">`,
		`<input type="hidden" name="service" value="Window Cleaning">`,
		`<fieldset id="of-windowGroup" class="of-group" data-group="windowGroup">`,
		`name="windowCount_input"`,
		`<input type="hidden" name="windowCount_committed" value="10">`,
		`<label for="of-windowCount_input">`,
		`<button type="submit" name="action" value="refresh" formnovalidate>Update form</button>`,
		`<button type="submit" name="action" value="submit">Send Request</button>`,
		`<p class="of-status" role="status" aria-live="polite"></p>`,
	)
	assertNotContains(t, page, `role="dialog"`, `class="of-services"`, `aria-invalid`, `value="status"`)
}

func TestRenderer_OrderPageState(t *testing.T) {
	renderer, err := vanilla.New(vanilla.WithNavPath("/order"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	order := newOrder(t, "window-cleaning")

	opts := render.RenderOptions{
		Errors:     map[string][]string{engine.FieldCustomerName: {engine.MessageRequired}},
		FormErrors: []string{"Please provide an email or phone number."},
		Status:     "Sending...",
		StatusKind: render.StatusInfo,
		Overlay:    "Thanks! Your request was sent.",
		Sending:    true,
		Hidden:     render.PairFields([][2]string{{"submission_id", "abc-123"}}),
		BannerMode: banner.ModeStaticHalf,
		Services: []render.ServiceLink{
			{Key: "window-cleaning", Name: "Window Cleaning", Selected: true},
			{Key: "pet-sitting", Name: "Pet Sitting"},
		},
	}
	page := renderPage(t, renderer, order, opts)

	assertContains(t, page,
		`<header id="banner" class="banner is-condensed use-half" data-mode="static-half" data-height="150px">`,
		`<input type="hidden" name="submission_id" value="abc-123">`,
		`aria-invalid="true" aria-describedby="of-customerName-errors"`,
		`<ul class="of-errors" id="of-customerName-errors" role="alert">`,
		`<li>Please fill out this field.</li>`,
		`<ul class="of-form-errors" role="alert">`,
		`<li>Please provide an email or phone number.</li>`,
		`<button type="submit" name="action" value="submit" disabled aria-busy="true">Sending...</button>`,
		`<button type="submit" name="action" value="status" formnovalidate>Check status</button>`,
		`<p class="of-status is-info" role="status" aria-live="polite">Sending...</p>`,
		`<p id="of-overlay-message">Thanks! Your request was sent.</p>`,
		`<button type="submit" name="action" value="dismiss" autofocus>Close</button>`,
		`<li><a href="/order?service=window-cleaning" aria-current="page">Window Cleaning</a></li>`,
		`<li><a href="/order?service=pet-sitting">Pet Sitting</a></li>`,
		`--banner-current-height: 150px;`,
	)
}

func TestRenderer_ContactPage(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	contact := engine.NewContact()

	page := renderPage(t, renderer, contact, render.RenderOptions{Action: "/contact"})

	assertContains(t, page,
		`<form id="contact-form" class="of-form" method="post" action="/contact">`,
		`<button type="submit" name="action" value="submit">Send Message</button>`,
		`<textarea id="of-message"`,
	)
	assertNotContains(t, page, `value="refresh"`)
}

func TestRenderer_ThemeAppliesTokensAndVariant(t *testing.T) {
	themes, err := vanilla.NewThemes()
	if err != nil {
		t.Fatalf("new themes: %v", err)
	}
	sel, err := themes.Select(vanilla.DefaultThemeName, "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	renderer, err := vanilla.New(vanilla.WithStylesheet("/static/site.css"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	page := renderPage(t, renderer, engine.NewContact(), render.RenderOptions{
		Theme: vanilla.ThemeConfig(sel, nil),
	})

	assertContains(t, page,
		`data-theme="orderform" data-theme-variant="dark"`,
		`--surface: #101814;`,
		`--brand: #2f6f4e;`,
		`<link rel="stylesheet" href="/assets/orderform.css">`,
		`<link rel="stylesheet" href="/static/site.css">`,
	)
}

func TestRenderer_PagePartialOverride(t *testing.T) {
	files := fstest.MapFS{
		"custom/page.tmpl": {Data: []byte(`<p>{{ form.title }}|{{ submit_label }}</p>`)},
	}
	renderer, err := vanilla.New(vanilla.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	page := renderPage(t, renderer, engine.NewContact(), render.RenderOptions{
		Theme: &theme.RendererConfig{Partials: map[string]string{vanilla.PartialPage: "custom/page.tmpl"}},
	})

	if page != `<p>Get in touch|Send Message</p>` {
		t.Fatalf("unexpected page: %q", page)
	}
}

func TestRenderer_MetadataContract(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != vanilla.Name {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if got := renderer.ContentType(); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}

	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	if _, err := registry.Get(vanilla.Name); err != nil {
		t.Fatalf("registry lookup: %v", err)
	}
}
