package engine

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-orderform/pkg/model"
)

// Contact form field names. FieldHoneypot is hidden from people and left
// empty by them; bots that fill every input give themselves away.
const (
	FieldContactName    = "name"
	FieldContactEmail   = "email"
	FieldContactMessage = "message"
	FieldHoneypot       = "_gotcha"
)

// Contact is the general enquiry form.
type Contact struct {
	token   string
	name    string
	email   string
	message string
	gotcha  string
}

var (
	_ Form = (*Contact)(nil)
	_ Trap = (*Contact)(nil)
)

// NewContact builds an empty contact form with a new instance token.
func NewContact() *Contact {
	return &Contact{token: uuid.NewString()}
}

func (c *Contact) Kind() string  { return "contact" }
func (c *Contact) Token() string { return c.token }

// SetToken restores the instance token of a form rebuilt from a post.
func (c *Contact) SetToken(token string) {
	if token = strings.TrimSpace(token); token != "" {
		c.token = token
	}
}

// SuccessMessage is the status shown after the backend accepted the message.
func (c *Contact) SuccessMessage() string {
	return "Thanks. Your message was sent successfully."
}

// Trapped reports whether the honeypot field was filled in.
func (c *Contact) Trapped() bool {
	return strings.TrimSpace(c.gotcha) != ""
}

// Apply restores form state from posted values.
func (c *Contact) Apply(values url.Values) {
	if values == nil {
		return
	}
	c.SetToken(values.Get(FieldToken))
	c.name = values.Get(FieldContactName)
	c.email = values.Get(FieldContactEmail)
	c.message = values.Get(FieldContactMessage)
	c.gotcha = values.Get(FieldHoneypot)
}

// Set edits a single field.
func (c *Contact) Set(name, value string) bool {
	switch name {
	case FieldContactName:
		c.name = value
	case FieldContactEmail:
		c.email = value
	case FieldContactMessage:
		c.message = value
	case FieldHoneypot:
		c.gotcha = value
	default:
		return false
	}
	return true
}

// Validate checks the required fields.
func (c *Contact) Validate() []model.FieldError {
	var errs []model.FieldError
	if strings.TrimSpace(c.name) == "" {
		errs = append(errs, model.FieldError{Field: FieldContactName, Message: MessageRequired})
	}
	email := strings.TrimSpace(c.email)
	if email == "" {
		errs = append(errs, model.FieldError{Field: FieldContactEmail, Message: MessageRequired})
	} else if !validEmail(email) {
		errs = append(errs, model.FieldError{Field: FieldContactEmail, Message: MessageInvalidEmail})
	}
	if strings.TrimSpace(c.message) == "" {
		errs = append(errs, model.FieldError{Field: FieldContactMessage, Message: MessageRequired})
	}
	return errs
}

// Payload composes the submitted values. The honeypot is never relayed.
func (c *Contact) Payload() url.Values {
	values := url.Values{}
	values.Set(FieldContactName, strings.TrimSpace(c.name))
	values.Set(FieldContactEmail, strings.TrimSpace(c.email))
	values.Set(FieldContactMessage, strings.TrimSpace(c.message))
	return values
}

// Reset clears every field and issues a new instance token.
func (c *Contact) Reset() {
	*c = *NewContact()
}

// Model projects the form for renderers.
func (c *Contact) Model() model.FormModel {
	return model.FormModel{
		OperationID: "submitContact",
		Method:      "POST",
		Summary:     "Get in touch",
		Fields: []model.Field{
			hiddenField(FieldToken, c.token),
			{
				Name: FieldContactName, Type: model.FieldTypeString, Widget: model.WidgetInput,
				Required: true, Label: "Name", Value: c.name,
			},
			{
				Name: FieldContactEmail, Type: model.FieldTypeString, Widget: model.WidgetEmail,
				Required: true, Label: "Email", Value: c.email,
			},
			{
				Name: FieldContactMessage, Type: model.FieldTypeString, Widget: model.WidgetTextarea,
				Required: true, Label: "Message", Value: c.message,
			},
			{
				Name: FieldHoneypot, Type: model.FieldTypeString, Widget: model.WidgetInput,
				Hidden: true, Value: c.gotcha,
			},
		},
		Metadata: map[string]string{model.MetadataFormKind: c.Kind()},
	}
}
