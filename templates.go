package orderform

import (
	"io/fs"

	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in page and component templates so
// callers can copy or extend them without importing the renderer package.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the page stylesheet.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(orderform.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}
