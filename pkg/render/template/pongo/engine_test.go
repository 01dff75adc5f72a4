package pongo_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-orderform/pkg/banner"
	"github.com/goliatone/go-orderform/pkg/render/template/pongo"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	assertGolden(t, "hello.golden", result, written)
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})
	assertGolden(t, "use-global.golden", result, written)
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected duplicate filter registration to fail")
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})
	assertGolden(t, "use-filter.golden", result, written)
}

func TestEngine_BannerFilters(t *testing.T) {
	engine := newEngine(t)
	state := banner.Static(banner.DefaultConfig())

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("banner.tmpl", map[string]any{
			"state":   state,
			"classes": state.Classes(),
			"title":   "  Window Cleaning Request ",
		}, w)
	})
	assertGolden(t, "banner.golden", result, written)
}

func TestEngine_RenderString(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.Render("{{ count }} windows", struct {
		Count int `json:"count"`
	}{Count: 12})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "12 windows" {
		t.Fatalf("render string = %q", got)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatal("expected an error without a template source")
	}

	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatal("expected an error for a missing template")
	}
	if _, err := engine.RenderString("{{ name", nil); err == nil {
		t.Fatal("expected a parse error")
	}
	if _, err := engine.RenderString("{{ name }}", []string{"not", "an", "object"}); err == nil {
		t.Fatal("expected an error for non-object data")
	}
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := pongo.New(pongo.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func assertGolden(t *testing.T, name, result, written string) {
	t.Helper()

	path := filepath.Join("testdata", name)
	if testsupport.WriteMaybeGolden(t, path, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, path)
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}
