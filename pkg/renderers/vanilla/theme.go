package vanilla

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-orderform/pkg/banner"
)

// Theme keys understood by the vanilla renderer.
const (
	DefaultThemeName = "orderform"
	AssetStylesheet  = "orderform.stylesheet"
	PartialPage      = "orderform.page"
)

// DefaultManifest is the built-in theme. Its tokens become CSS variables on
// the page body; the "dark" variant swaps the surface colours.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#2f6f4e",
			"surface": "#ffffff",
			"text":    "#1d2b24",
			"radius":  "6px",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#101814",
					"text":    "#e8f0eb",
				},
			},
		},
	}
}

// Themes resolves theme selections from registered manifests. Unknown theme
// names fall back to the default theme and unknown variants to the base
// manifest.
type Themes struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*Themes)(nil)

// NewThemes validates and registers manifests. The first manifest is the
// fallback; with none, DefaultManifest is used.
func NewThemes(manifests ...*theme.Manifest) (*Themes, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}

	provider := theme.NewRegistry()
	themes := &Themes{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := provider.Register(manifest); err != nil {
			return nil, fmt.Errorf("vanilla: register theme %q: %w", manifest.Name, err)
		}
		themes.manifests[manifest.Name] = manifest
		if themes.fallback == "" {
			themes.fallback = manifest.Name
		}
	}
	if themes.fallback == "" {
		return nil, fmt.Errorf("vanilla: no usable theme manifest")
	}
	return themes, nil
}

// Select resolves name and variant.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	manifest, ok := t.manifests[strings.TrimSpace(name)]
	if !ok {
		manifest = t.manifests[t.fallback]
	}
	variant = strings.TrimSpace(variant)
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// Names lists the registered theme names.
func (t *Themes) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.manifests))
	for name := range t.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeConfig flattens a selection into renderer configuration. Variant
// tokens, templates and asset files override the base manifest. When state
// is set its banner variables are merged into CSSVars.
func ThemeConfig(sel *theme.Selection, state *banner.State) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
	}
	prefix := ""
	files := map[string]string{}

	if sel != nil && sel.Manifest != nil {
		manifest := sel.Manifest
		cfg.Theme = sel.Theme
		cfg.Variant = sel.Variant
		mergeInto(cfg.Tokens, manifest.Tokens)
		mergeInto(cfg.Partials, manifest.Templates)
		mergeInto(files, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix

		if variant, ok := manifest.Variants[sel.Variant]; ok {
			mergeInto(cfg.Tokens, variant.Tokens)
			mergeInto(cfg.Partials, variant.Templates)
			mergeInto(files, variant.Assets.Files)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}
	if state != nil {
		mergeInto(cfg.CSSVars, state.CSSVars())
	}

	prefix = strings.TrimRight(prefix, "/")
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return prefix + "/" + file
	}
	return cfg
}

func mergeInto(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
