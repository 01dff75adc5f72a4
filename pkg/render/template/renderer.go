package template

import (
	"io"
)

// TemplateRenderer is the seam page renderers rely on. Data is passed as a
// map or any JSON-marshalable value; templates see JSON field names.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
