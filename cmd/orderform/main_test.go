package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/internal/config"
	"github.com/goliatone/go-orderform/pkg/renderers/tui"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

type scriptedDriver struct {
	inputs    []string
	textAreas []string
	confirms  []bool
	infos     []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := d.confirms[0]
	d.confirms = d.confirms[1:]
	return v, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	if len(d.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	v := d.textAreas[0]
	d.textAreas = d.textAreas[1:]
	return v, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func execute(t *testing.T, driver tui.PromptDriver, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{
		v:      config.New(),
		out:    &out,
		logger: zap.NewNop(),
		driver: func() tui.PromptDriver { return driver },
	}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBannerCommand_JSON(t *testing.T) {
	out, err := execute(t, nil, "banner", "--scroll", "0,280", "--json")
	if err != nil {
		t.Fatalf("banner: %v", err)
	}

	type row struct {
		ScrollY       float64  `json:"scrollY"`
		CurrentHeight int      `json:"currentHeight"`
		Classes       []string `json:"classes"`
	}
	var rows []row
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := []row{
		{ScrollY: 0, CurrentHeight: 300, Classes: []string{}},
		{ScrollY: 280, CurrentHeight: 150, Classes: []string{"is-condensed", "use-half"}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBannerCommand_StaticHalfTable(t *testing.T) {
	out, err := execute(t, nil, "banner", "--mode", "static-half", "--scroll", "0")
	if err != nil {
		t.Fatalf("banner: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	got := strings.Fields(lines[1])
	want := []string{"0", "1.00", "150px", "is-condensed", "use-half"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAPICommand_Describe(t *testing.T) {
	out, err := execute(t, nil, "openapi", "--describe")
	if err != nil {
		t.Fatalf("openapi: %v", err)
	}
	for _, line := range []string{
		"POST /contact submitContact",
		"POST /order/window-cleaning submitWindowCleaning",
		"POST /order/pet-sitting submitPetSitting",
	} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("missing %q in:\n%s", line, out)
		}
	}
}

func TestOpenAPICommand_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")
	if _, err := execute(t, nil, "openapi", "--server", "https://forms.example.com", "-o", path); err != nil {
		t.Fatalf("openapi: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"url": "https://forms.example.com"`)) {
		t.Fatalf("server url missing from document")
	}
}

func TestRenderCommand_Order(t *testing.T) {
	out, err := execute(t, nil, "render", "window-washing", "--banner", "static-half")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{
		`<title>Window Cleaning Request</title>`,
		`action="/order?service=window-cleaning"`,
		`data-mode="static-half"`,
		`aria-current="page">Window Cleaning</a>`,
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("missing %q", fragment)
		}
	}
}

func TestRenderCommand_ContactToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contact.html")
	out, err := execute(t, nil, "render", "--contact", "--output", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Page written to "+path) {
		t.Fatalf("output = %q", out)
	}
	page, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(page, []byte(`<form id="contact-form"`)) {
		t.Fatal("contact form missing from page")
	}
}

func TestOrderCommand_DryRunPrintsAnswers(t *testing.T) {
	driver := &scriptedDriver{
		inputs:    []string{"Ada", "ada@example.com"},
		textAreas: []string{"Hello there"},
	}

	out, err := execute(t, driver, "order", "--contact", "--dry-run")
	if err != nil {
		t.Fatalf("order: %v", err)
	}

	want := "name: Ada\nemail: ada@example.com\nmessage: Hello there\n"
	if out != want {
		t.Fatalf("output mismatch (-want +got):\n%s", cmp.Diff(want, out))
	}
}

func TestOrderCommand_SendsContact(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
	driver := &scriptedDriver{
		inputs:    []string{"Ada", "ada@example.com"},
		textAreas: []string{"Hello there"},
	}

	if _, err := execute(t, driver, "order", "--contact", "--contact-endpoint", backend.URL); err != nil {
		t.Fatalf("order: %v", err)
	}

	requests := backend.Requests()
	if len(requests) != 1 || requests[0].Get("message") != "Hello there" {
		t.Fatalf("backend requests = %v", requests)
	}
	want := []string{"Get in touch", "Sending...", "✓ Thanks. Your message was sent successfully."}
	if diff := cmp.Diff(want, driver.infos); diff != "" {
		t.Fatalf("infos mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderCommand_OrderSuccessWaitsForClose(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
	driver := &scriptedDriver{
		inputs:    []string{"Ada", "", "555-0100", "2026-05-01"},
		textAreas: []string{"Side gate"},
		confirms:  []bool{false, true},
	}

	if _, err := execute(t, driver, "order", "lawn-cleanup", "--submit-endpoint", backend.URL); err != nil {
		t.Fatalf("order: %v", err)
	}

	if n := len(backend.Requests()); n != 1 {
		t.Fatalf("backend requests = %d, want 1", n)
	}
	if len(driver.confirms) != 0 {
		t.Fatalf("success message should stay up until closed, %d confirms left", len(driver.confirms))
	}
	want := []string{"Lawn Cleanup Request", "Sending...", "✓ Thanks! Your Lawn Cleanup request was sent. I'll be in touch soon."}
	if diff := cmp.Diff(want, driver.infos); diff != "" {
		t.Fatalf("infos mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, &scriptedDriver{}, "order", "--dry-run", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), `unknown format "xml"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestRoot_InvalidConfigFails(t *testing.T) {
	_, err := execute(t, nil, "banner", "--env", "staging")
	if err == nil || !strings.Contains(err.Error(), `env "staging"`) {
		t.Fatalf("err = %v", err)
	}
}
