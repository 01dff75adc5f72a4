// Package tui renders order and contact forms as interactive terminal
// prompts. The prompt driver defaults to survey; tests script it.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/slider"
)

// Name is the registry name of the renderer.
const Name = "tui"

// Editable is a form the terminal can edit one field at a time.
type Editable interface {
	engine.Form
	Set(name, value string) bool
}

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil, nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every visible input of a static model and serializes
// the answers. Hidden inputs are carried through unchanged. Use Fill to edit
// a live form whose fields change as answers arrive.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if title := strings.TrimSpace(form.Summary); title != "" {
		if err := r.info(ctx, title); err != nil {
			return nil, err
		}
	}

	values := url.Values{}
	var promptErr error
	form.Walk(func(_ string, field model.Field) bool {
		if promptErr != nil || field.IsContainer() {
			return promptErr == nil
		}
		if field.Widget == model.WidgetHidden {
			values.Set(field.Name, field.Value)
			return true
		}
		if field.Hidden {
			return true
		}
		value, err := r.prompt(ctx, field, opts.Errors[field.Name])
		if err != nil {
			promptErr = err
			return false
		}
		values.Set(field.Name, value)
		return true
	})
	if promptErr != nil {
		return nil, promptErr
	}
	for _, hidden := range opts.Hidden {
		values.Set(hidden.Name, hidden.Value)
	}
	return r.serialize(form, values)
}

// Encode serializes values in the configured output format, listing them in
// the order form declares its inputs.
func (r *Renderer) Encode(form model.FormModel, values url.Values) ([]byte, error) {
	return r.serialize(form, values)
}

// Fill walks form field by field, writing every answer back before looking
// for the next field. Fields revealed by an answer (an "Other" text box, a
// new roster row, the end date) are asked in render order. With errs set,
// only the fields carrying errors and the fields they reveal are asked.
func (r *Renderer) Fill(ctx context.Context, form Editable, errs map[string][]string) error {
	if form == nil {
		return errors.New("tui: form is nil")
	}
	asked := make(map[string]struct{})
	if len(errs) > 0 {
		for _, field := range promptable(form.Model()) {
			if _, invalid := errs[field.Name]; !invalid {
				asked[field.Name] = struct{}{}
			}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		field, ok := nextField(form.Model(), asked)
		if !ok {
			return nil
		}
		asked[field.Name] = struct{}{}

		value, err := r.prompt(ctx, field, errs[field.Name])
		if err != nil {
			return err
		}
		if !form.Set(field.Name, value) {
			return fmt.Errorf("%w: %q", ErrFieldRejected, field.Name)
		}
	}
}

func promptable(form model.FormModel) []model.Field {
	var fields []model.Field
	form.Walk(func(_ string, field model.Field) bool {
		if field.IsContainer() {
			return !field.Hidden
		}
		if field.Hidden || field.Widget == model.WidgetHidden {
			return true
		}
		fields = append(fields, field)
		return true
	})
	return fields
}

func nextField(form model.FormModel, asked map[string]struct{}) (model.Field, bool) {
	for _, field := range promptable(form) {
		if _, done := asked[field.Name]; !done {
			return field, true
		}
	}
	return model.Field{}, false
}

func (r *Renderer) prompt(ctx context.Context, field model.Field, messages []string) (string, error) {
	for _, msg := range messages {
		if err := r.fail(ctx, fmt.Sprintf("%s: %s", displayLabel(field), msg)); err != nil {
			return "", err
		}
	}

	switch field.Widget {
	case model.WidgetSelect:
		return r.promptSelect(ctx, field)
	case model.WidgetSlider:
		return r.promptSlider(ctx, field)
	case model.WidgetToggle:
		return r.promptToggle(ctx, field)
	case model.WidgetDate:
		return r.promptDate(ctx, field)
	case model.WidgetTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(field),
			Default: field.Value,
			Help:    field.Description,
		})
	default:
		return r.promptString(ctx, field)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field) (string, error) {
	label := displayLabel(field)
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: field.Value,
			Help:    field.Description,
		})
		if err != nil {
			return "", err
		}
		if field.Required && strings.TrimSpace(response) == "" {
			if err := r.fail(ctx, fmt.Sprintf("%s: %s", label, engine.MessageRequired)); err != nil {
				return "", err
			}
			continue
		}
		return strings.TrimSpace(response), nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field) (string, error) {
	label := displayLabel(field)
	options := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		text := option.Label
		if text == "" {
			text = option.Value
		}
		options = append(options, text)
	}
	defaultIdx := -1
	for i, option := range field.Options {
		if option.Value == field.Value {
			defaultIdx = i
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         field.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			if err := r.fail(ctx, fmt.Sprintf("%s: %s", label, engine.MessageSelect)); err != nil {
				return "", err
			}
			continue
		}
		return field.Options[idx].Value, nil
	}
}

// promptSlider asks for the number box value. Out of range answers are
// accepted and clamped by the form, the way the number box behaves on blur.
func (r *Renderer) promptSlider(ctx context.Context, field model.Field) (string, error) {
	label := displayLabel(field)
	lo, _ := field.Rule(model.ValidationRuleMin)
	hi, _ := field.Rule(model.ValidationRuleMax)
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: field.Value,
			Help:    fmt.Sprintf("A whole number from %s to %s", lo, hi),
		})
		if err != nil {
			return "", err
		}
		if _, ok := slider.ParseInt(response); !ok {
			if err := r.fail(ctx, fmt.Sprintf("%s: enter a whole number", label)); err != nil {
				return "", err
			}
			continue
		}
		return strings.TrimSpace(response), nil
	}
}

func (r *Renderer) promptToggle(ctx context.Context, field model.Field) (string, error) {
	on, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: field.Value == "true",
		Help:    field.Description,
	})
	if err != nil {
		return "", err
	}
	if on {
		return "true", nil
	}
	return "false", nil
}

func (r *Renderer) promptDate(ctx context.Context, field model.Field) (string, error) {
	label := displayLabel(field)
	earliest, _ := field.Rule(model.ValidationRuleMinDate)
	help := "YYYY-MM-DD"
	if earliest != "" {
		help = fmt.Sprintf("YYYY-MM-DD, on or after %s", earliest)
	}
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: field.Value,
			Help:    help,
		})
		if err != nil {
			return "", err
		}
		response = strings.TrimSpace(response)
		switch {
		case response == "" && field.Required:
			err = r.fail(ctx, fmt.Sprintf("%s: %s", label, engine.MessageRequired))
		case response == "":
			return "", nil
		default:
			if _, parseErr := time.Parse(engine.DateLayout, response); parseErr != nil {
				err = r.fail(ctx, fmt.Sprintf("%s: %s", label, engine.MessageInvalidDate))
			} else if earliest != "" && response < earliest {
				err = r.fail(ctx, fmt.Sprintf("%s: %s", label, engine.MessageEndBeforeStart))
			} else {
				return response, nil
			}
		}
		if err != nil {
			return "", err
		}
	}
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) succeed(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.SuccessPrefix+msg)
}

func (r *Renderer) serialize(form model.FormModel, values url.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, name := range form.InputNames() {
			if !values.Has(name) {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", name, values.Get(name))
		}
		for _, hidden := range orderedExtras(form, values) {
			fmt.Fprintf(&b, "%s: %s\n", hidden, values.Get(hidden))
		}
		return []byte(b.String()), nil
	default:
		flat := make(map[string]string, len(values))
		for name := range values {
			flat[name] = values.Get(name)
		}
		out, err := json.MarshalIndent(flat, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return append(out, '\n'), nil
	}
}

// orderedExtras lists submitted names the model does not declare, sorted.
func orderedExtras(form model.FormModel, values url.Values) []string {
	declared := make(map[string]struct{})
	for _, name := range form.InputNames() {
		declared[name] = struct{}{}
	}
	var extras []string
	for name := range values {
		if _, ok := declared[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return extras
}

func displayLabel(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	if placeholder := strings.TrimSpace(field.Placeholder); placeholder != "" {
		return placeholder
	}
	return field.Name
}
