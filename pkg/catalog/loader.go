package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog embed.FS

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Builtin returns the catalog embedded with the module. It is parsed once and
// shared by every caller.
func Builtin() *Catalog {
	builtinOnce.Do(func() {
		builtin, builtinErr = LoadFS(embeddedCatalog, "catalog.yaml")
	})
	if builtinErr != nil {
		// The embedded file is part of the build; failing here is a packaging bug.
		panic(builtinErr)
	}
	return builtin
}

type documentFile struct {
	Default  string        `json:"default" yaml:"default"`
	Services []serviceFile `json:"services" yaml:"services"`
}

type serviceFile struct {
	ServiceDescriptor `yaml:",inline"`
	Aliases           []string `json:"aliases" yaml:"aliases"`
}

// LoadFile reads a JSON or YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("catalog: path is required")
	}
	return LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadFS reads a JSON or YAML catalog named name from fsys.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	if fsys == nil {
		return nil, fmt.Errorf("catalog: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	return Parse(data, name)
}

// Parse decodes a catalog document. JSON is tried first, then YAML.
// Descriptions are passed through the strict sanitiser so catalog files cannot
// smuggle markup into rendered pages.
func Parse(data []byte, source string) (*Catalog, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("catalog: file %s is empty", source)
	}

	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(doc.Services))
	for _, svc := range doc.Services {
		desc := svc.ServiceDescriptor
		desc.Name = SanitizeText(desc.Name)
		desc.Description = SanitizeText(desc.Description)
		entries = append(entries, Entry{Descriptor: desc, Aliases: svc.Aliases})
	}

	c, err := New(doc.Default, entries...)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", source, err)
	}
	return c, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}
