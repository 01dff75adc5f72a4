package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newOrder(t *testing.T, key string) *engine.Order {
	t.Helper()
	desc, ok := catalog.Builtin().Lookup(key)
	if !ok {
		t.Fatalf("service %q not in builtin catalog", key)
	}
	return engine.NewOrder(desc)
}

func TestFill_WindowCleaningRevealsOther(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada Lovelace", "ada@example.com", "", "1 Main St", "Cabin", "12", "2026-11-02"},
		selectIdx: []int{3},
		textAreas: []string{"Side gate"},
	}
	r := New(WithPromptDriver(driver))
	order := newOrder(t, "window-cleaning")

	if err := r.Fill(context.Background(), order, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantPrompts := []string{
		"Full Name", "Email", "Phone", "Service Address",
		"House Type", "Please enter your house type",
		"How many windows?", "Preferred Date", "Additional Details",
	}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}

	payload := order.Payload()
	got := map[string]string{
		engine.FieldCustomerName:   payload.Get(engine.FieldCustomerName),
		engine.FieldHouseType:      payload.Get(engine.FieldHouseType),
		engine.FieldHouseTypeOther: payload.Get(engine.FieldHouseTypeOther),
		engine.FieldWindowCount:    payload.Get(engine.FieldWindowCount),
		engine.FieldPreferredDate:  payload.Get(engine.FieldPreferredDate),
		engine.FieldDetails:        payload.Get(engine.FieldDetails),
	}
	want := map[string]string{
		engine.FieldCustomerName:   "Ada Lovelace",
		engine.FieldHouseType:      engine.OptionOther,
		engine.FieldHouseTypeOther: "Cabin",
		engine.FieldWindowCount:    "12",
		engine.FieldPreferredDate:  "2026-11-02",
		engine.FieldDetails:        "Side gate",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if errs := order.Validate(); len(errs) != 0 {
		t.Fatalf("expected a valid order, got %v", errs)
	}
}

func TestFill_PetSittingRosterAndDateRange(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"Ada", "", "555-0100",
			"2",
			"2026-11-02", "2026-11-01", "2026-11-05",
		},
		selectIdx: []int{0, 1},
		confirm:   []bool{true},
		textAreas: []string{""},
	}
	r := New(WithPromptDriver(driver))
	order := newOrder(t, "pet-sitting")

	if err := r.Fill(context.Background(), order, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}

	if order.Pets() != 2 {
		t.Fatalf("expected 2 pet rows, got %d", order.Pets())
	}
	payload := order.Payload()
	for name, want := range map[string]string{
		engine.PetTypeField(1): "Dog",
		engine.PetTypeField(2): "Cat",
		engine.FieldMultiDay:   "on",
		engine.FieldStartDate:  "2026-11-02",
		engine.FieldEndDate:    "2026-11-05",
	} {
		if got := payload.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if payload.Has(engine.FieldPreferredDate) {
		t.Fatalf("preferred date should be replaced by the start date")
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], engine.MessageEndBeforeStart) {
		t.Fatalf("expected one end-before-start message, got %v", driver.infoMessages)
	}
}

func TestFill_OnlyAsksFieldsWithErrors(t *testing.T) {
	driver := &stubDriver{inputs: []string{"ada@example.com"}}
	r := New(WithPromptDriver(driver))
	contact := engine.NewContact()
	contact.Set(engine.FieldContactName, "Ada")
	contact.Set(engine.FieldContactEmail, "not-an-email")
	contact.Set(engine.FieldContactMessage, "Hello")

	errs := map[string][]string{engine.FieldContactEmail: {engine.MessageInvalidEmail}}
	if err := r.Fill(context.Background(), contact, errs); err != nil {
		t.Fatalf("fill: %v", err)
	}

	if diff := cmp.Diff([]string{"Email"}, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! Email: " + engine.MessageInvalidEmail}, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if errs := contact.Validate(); len(errs) != 0 {
		t.Fatalf("expected a valid contact form, got %v", errs)
	}
}

func TestFill_RequiredInputReprompts(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"  ", "Ada", "ada@example.com"},
		textAreas: []string{"Hi"},
	}
	r := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "error: "}))

	if err := r.Fill(context.Background(), engine.NewContact(), nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := []string{"error: Name: " + engine.MessageRequired}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_PropagatesDriverErrors(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}))
	err := r.Fill(context.Background(), engine.NewContact(), nil)
	if err == nil || !strings.Contains(err.Error(), "no input scripted") {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestRender_SerializesAnswers(t *testing.T) {
	form := model.FormModel{
		Summary: "Quick form",
		Fields: []model.Field{
			{Name: "token", Type: model.FieldTypeString, Widget: model.WidgetHidden, Value: "abc"},
			{Name: "name", Type: model.FieldTypeString, Widget: model.WidgetInput, Label: "Name", Required: true},
			{Name: "secret", Type: model.FieldTypeString, Widget: model.WidgetInput, Hidden: true},
			{Name: "extra", Type: model.FieldTypeBoolean, Widget: model.WidgetToggle, Label: "Extra"},
		},
	}

	tests := []struct {
		format OutputFormat
		want   string
	}{
		{OutputFormatFormURLEncoded, "extra=true&name=Ada&submission_id=42&token=abc"},
		{OutputFormatPrettyText, "token: abc\nname: Ada\nextra: true\nsubmission_id: 42\n"},
		{OutputFormatJSON, "{\n  \"extra\": \"true\",\n  \"name\": \"Ada\",\n  \"submission_id\": \"42\",\n  \"token\": \"abc\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			driver := &stubDriver{inputs: []string{"Ada"}, confirm: []bool{true}}
			r := New(WithPromptDriver(driver), WithOutputFormat(tt.format))

			out, err := r.Render(context.Background(), form, render.RenderOptions{
				Hidden: []render.HiddenField{{Name: "submission_id", Value: "42"}},
			})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(out)); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"Quick form"}, driver.infoMessages); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderer_ContentType(t *testing.T) {
	tests := map[OutputFormat]string{
		OutputFormatJSON:           "application/json",
		OutputFormatFormURLEncoded: "application/x-www-form-urlencoded",
		OutputFormatPrettyText:     "text/plain; charset=utf-8",
	}
	for format, want := range tests {
		r := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(format))
		if got := r.ContentType(); got != want {
			t.Errorf("%s: content type %q, want %q", format, got, want)
		}
	}
}
