package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrUnknownOperation is returned when a document has no operation with the
// requested id.
var ErrUnknownOperation = errors.New("openapi: unknown operation")

// Marshal encodes doc as indented JSON.
func Marshal(doc *openapi3.T) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("openapi: document is nil")
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}
	return append(out, '\n'), nil
}

// Load parses a serialized document (JSON or YAML) and validates it.
func Load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := Validate(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks doc against the OpenAPI 3 rules kin-openapi enforces.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if doc == nil {
		return errors.New("openapi: document is nil")
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("openapi: validate: %w", err)
	}
	return nil
}

// ValidatePayload checks a relayed payload against the request schema of
// operationID. Integer properties are parsed from their form encoding first.
func ValidatePayload(doc *openapi3.T, operationID string, values url.Values) error {
	schema, err := requestSchema(doc, operationID)
	if err != nil {
		return err
	}

	obj := make(map[string]any, len(values))
	for name := range values {
		raw := values.Get(name)
		obj[name] = raw
		prop, ok := schema.Properties[name]
		if !ok || prop.Value == nil || prop.Value.Type == nil || !prop.Value.Type.Is(openapi3.TypeInteger) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			obj[name] = float64(n)
		}
	}

	if err := schema.VisitJSON(obj); err != nil {
		return fmt.Errorf("openapi: %s payload: %w", operationID, err)
	}
	return nil
}

func requestSchema(doc *openapi3.T, operationID string) (*openapi3.Schema, error) {
	if doc == nil || doc.Paths == nil {
		return nil, errors.New("openapi: document is nil")
	}
	for _, item := range doc.Paths.Map() {
		if item == nil || item.Post == nil || item.Post.OperationID != operationID {
			continue
		}
		body := item.Post.RequestBody
		if body == nil || body.Value == nil {
			return nil, fmt.Errorf("openapi: %s has no request body", operationID)
		}
		media := body.Value.Content.Get(MediaMultipart)
		if media == nil || media.Schema == nil {
			return nil, fmt.Errorf("openapi: %s has no %s body", operationID, MediaMultipart)
		}
		return resolve(doc, media.Schema)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, operationID)
}

func resolve(doc *openapi3.T, ref *openapi3.SchemaRef) (*openapi3.Schema, error) {
	if ref.Value != nil {
		return ref.Value, nil
	}
	name := strings.TrimPrefix(ref.Ref, schemaRefPrefix)
	if doc.Components != nil {
		if component, ok := doc.Components.Schemas[name]; ok && component.Value != nil {
			return component.Value, nil
		}
	}
	return nil, fmt.Errorf("openapi: unresolved schema %q", ref.Ref)
}
