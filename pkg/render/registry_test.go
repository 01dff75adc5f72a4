package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/render"
)

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/x-" + s.name }
func (s stubRenderer) Render(context.Context, model.FormModel, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "tui"})
	reg.MustRegister(stubRenderer{name: "html"})

	if err := reg.Register(stubRenderer{name: "html"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatal("expected nil renderer to fail")
	}
	if diff := cmp.Diff([]string{"html", "tui"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if _, err := reg.Get("pdf"); err == nil {
		t.Fatal("expected unknown renderer lookup to fail")
	}
	if got := reg.ContentType("html"); got != "text/x-html" {
		t.Fatalf("content type = %q", got)
	}
	if got := reg.ContentType("pdf"); got != "text/plain; charset=utf-8" {
		t.Fatalf("fallback content type = %q", got)
	}
}
