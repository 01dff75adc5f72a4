package openapi

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/submit"
)

// Media types of the relayed request and of backend answers.
const (
	MediaMultipart = "multipart/form-data"
	MediaJSON      = "application/json"
)

// Paths of the generated operations.
const (
	ContactPath        = "/contact"
	ContactOperationID = "submitContact"
	orderPathPrefix    = "/order/"

	contactSchemaName = "ContactSubmission"
	errorsSchemaName  = "SubmissionErrors"
	schemaRefPrefix   = "#/components/schemas/"
)

type config struct {
	title   string
	version string
	servers []string
}

// Option customises the generated document.
type Option func(*config)

// WithTitle sets info.title.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if title = strings.TrimSpace(title); title != "" {
			cfg.title = title
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(cfg *config) {
		if version = strings.TrimSpace(version); version != "" {
			cfg.version = version
		}
	}
}

// WithServer adds a server URL, usually the form backend endpoint.
func WithServer(url string) Option {
	return func(cfg *config) {
		if url = strings.TrimSpace(url); url != "" {
			cfg.servers = append(cfg.servers, url)
		}
	}
}

// Build describes every service of cat plus the contact form.
func Build(cat *catalog.Catalog, options ...Option) (*openapi3.T, error) {
	if cat == nil {
		return nil, errors.New("openapi: catalog is nil")
	}
	cfg := config{title: "Order form submissions", version: "1.0.0"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	errs := errorSchema()
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   cfg.title,
			Version: cfg.version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				errorsSchemaName: openapi3.NewSchemaRef("", errs),
			},
		},
	}
	for _, server := range cfg.servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: server})
	}

	for _, desc := range cat.Descriptors() {
		name := SchemaName(desc.Key)
		schema := orderSchema(&desc)
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", schema)
		doc.Paths.Set(OrderPath(desc.Key), &openapi3.PathItem{
			Post: operation(OperationID(desc.Key), desc.Name+" request", desc.Description, name, schema, errs),
		})
	}

	contact := contactSchema()
	doc.Components.Schemas[contactSchemaName] = openapi3.NewSchemaRef("", contact)
	doc.Paths.Set(ContactPath, &openapi3.PathItem{
		Post: operation(ContactOperationID, "Contact message", "", contactSchemaName, contact, errs),
	})
	return doc, nil
}

// OrderPath is the path of the operation describing service key.
func OrderPath(key string) string {
	return orderPathPrefix + key
}

// OperationID is the operationId of service key: "submit" followed by the
// key in camel case.
func OperationID(key string) string {
	return "submit" + camel(key)
}

// SchemaName is the component name of the request schema of service key.
func SchemaName(key string) string {
	return camel(key) + "Submission"
}

func camel(key string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' || r == ' ' }) {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// operation references the component schemas by name. The refs keep their
// resolved values so the document validates without a reload.
func operation(id, summary, description, schemaName string, request, errs *openapi3.Schema) *openapi3.Operation {
	ref := openapi3.NewSchemaRef(schemaRefPrefix+schemaName, request)
	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithSchemaRef(ref, []string{MediaMultipart}))

	errorsRef := openapi3.NewSchemaRef(schemaRefPrefix+errorsSchemaName, errs)
	responses := openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Accepted"),
		}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Rejected").
				WithContent(openapi3.NewContentWithJSONSchemaRef(errorsRef)),
		}),
	)

	return &openapi3.Operation{
		OperationID: id,
		Summary:     summary,
		Description: description,
		RequestBody: &openapi3.RequestBodyRef{Value: body},
		Responses:   responses,
	}
}

// orderSchema lists every field the service can send. A field is required
// when the engine requires it and it is sent whatever the user picks; fields
// that depend on a choice, a count or the multi-day toggle stay optional.
func orderSchema(desc *catalog.ServiceDescriptor) *openapi3.Schema {
	base := engine.NewOrder(desc)
	full := engine.NewOrder(desc)
	expand(full)

	basePayload, fullPayload := base.Payload(), full.Payload()
	models := []model.FormModel{full.Model(), base.Model()}

	schema := openapi3.NewObjectSchema()
	schema.Title = desc.Name
	schema.Description = "At least one of customerEmail and customerPhone must be non-empty."

	names := make(map[string]struct{})
	for name := range basePayload {
		names[name] = struct{}{}
	}
	for name := range fullPayload {
		names[name] = struct{}{}
	}

	var required []string
	for _, name := range sortedKeys(names) {
		var prop *openapi3.Schema
		switch name {
		case engine.FieldService:
			prop = openapi3.NewStringSchema().WithEnum(desc.Name)
		case engine.FieldMultiDay:
			prop = openapi3.NewStringSchema().WithEnum("on")
		default:
			field, ok := findField(models, name)
			if !ok {
				prop = openapi3.NewStringSchema()
				break
			}
			prop = fieldSchema(field)
			if !field.Required || !basePayload.Has(name) || !fullPayload.Has(name) {
				break
			}
			required = append(required, name)
		}
		if name == engine.FieldService {
			required = append(required, name)
		}
		schema.WithProperty(name, prop)
	}

	addMetadata(schema)
	schema.Required = append(required, metadataFields()...)
	sort.Strings(schema.Required)
	return schema
}

// expand reveals every optional part of o: the "Other" text boxes, the
// largest rosters, the end date and the details box.
func expand(o *engine.Order) {
	o.Set(engine.FieldHouseType, engine.OptionOther)
	o.Set(engine.FieldPetCount, strconv.Itoa(engine.PetMax))
	for i := 1; i <= o.Pets(); i++ {
		o.Set(engine.PetTypeField(i), engine.OptionOther)
	}
	o.Set(engine.FieldKidCount, strconv.Itoa(engine.KidMax))
	o.Set(engine.FieldMultiDay, "true")
	o.Set(engine.FieldDetails, "details")
}

func contactSchema() *openapi3.Schema {
	contact := engine.NewContact()
	form := contact.Model()

	schema := openapi3.NewObjectSchema()
	schema.Title = "Contact message"
	var required []string
	for name := range contact.Payload() {
		field, ok := form.Find(name)
		if !ok {
			continue
		}
		schema.WithProperty(name, fieldSchema(field))
		if field.Required {
			required = append(required, name)
		}
	}
	addMetadata(schema)
	schema.Required = append(required, metadataFields()...)
	sort.Strings(schema.Required)
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch {
	case field.Type == model.FieldTypeInteger:
		schema = openapi3.NewIntegerSchema()
		if lo, ok := intRule(field, model.ValidationRuleMin); ok {
			schema = schema.WithMin(lo)
		}
		if hi, ok := intRule(field, model.ValidationRuleMax); ok {
			schema = schema.WithMax(hi)
		}
	case field.Widget == model.WidgetSelect:
		values := make([]any, 0, len(field.Options))
		for _, option := range field.Options {
			values = append(values, option.Value)
		}
		schema = openapi3.NewStringSchema().WithEnum(values...)
	case field.Widget == model.WidgetDate:
		schema = openapi3.NewStringSchema().WithFormat("date")
	default:
		schema = openapi3.NewStringSchema()
	}
	if label := strings.TrimSpace(field.Label); label != "" {
		schema.Title = label
	} else if placeholder := strings.TrimSpace(field.Placeholder); placeholder != "" {
		schema.Title = placeholder
	}
	return schema
}

func intRule(field model.Field, kind string) (float64, bool) {
	raw, ok := field.Rule(kind)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func addMetadata(schema *openapi3.Schema) {
	schema.WithProperty(submit.FieldTimestampISO, openapi3.NewStringSchema().WithFormat("date-time"))
	schema.WithProperty(submit.FieldTimestampLocal, openapi3.NewStringSchema())
	schema.WithProperty(submit.FieldSubmissionID, openapi3.NewUUIDSchema())
}

func metadataFields() []string {
	return []string{submit.FieldTimestampISO, submit.FieldTimestampLocal, submit.FieldSubmissionID}
}

func errorSchema() *openapi3.Schema {
	item := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	schema := openapi3.NewObjectSchema().WithProperty("errors", openapi3.NewArraySchema().WithItems(item))
	schema.Required = []string{"errors"}
	return schema
}

func findField(models []model.FormModel, name string) (model.Field, bool) {
	for _, form := range models {
		if field, ok := form.Find(name); ok {
			return field, true
		}
	}
	return model.Field{}, false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Describe is a short human summary of doc, used by the CLI.
func Describe(doc *openapi3.T) string {
	if doc == nil || doc.Paths == nil {
		return ""
	}
	paths := make([]string, 0, doc.Paths.Len())
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	var b strings.Builder
	for _, path := range paths {
		item := doc.Paths.Value(path)
		if item == nil || item.Post == nil {
			continue
		}
		fmt.Fprintf(&b, "POST %s %s\n", path, item.Post.OperationID)
	}
	return b.String()
}
