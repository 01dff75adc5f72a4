package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a single-line answer: text fields, slider number
// boxes and dates.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// ConfirmConfig describes a yes/no question: the multi-day toggle and the
// session's retry and close questions.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a choice among labelled options. DefaultIndex is -1
// when nothing is chosen yet.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
}

// TextAreaConfig describes a multi-line answer such as the order details.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver asks the questions the renderer and session need. Tests
// script it; NewSurveyDriver talks to a terminal.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// maxPageSize bounds how many options a select shows at once. The catalog's
// choice lists fit, so "Other" at the end is visible without scrolling.
const maxPageSize = 12

type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns the interactive driver. With nil streams it talks
// to the process terminal.
func NewSurveyDriver(in terminal.FileReader, out terminal.FileWriter) PromptDriver {
	d := &surveyDriver{out: os.Stdout}
	if in != nil && out != nil {
		d.out = out
		d.opts = append(d.opts, survey.WithStdio(in, out, out))
	}
	return d
}

// ask runs one survey prompt. A cancelled context skips the prompt; survey
// itself cannot be interrupted mid-question.
func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, answer any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return promptErr(survey.AskOne(prompt, answer, d.opts...))
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: pageSize(len(cfg.Options)),
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	// survey reports the chosen index when the answer is an int.
	var idx int
	if err := d.ask(ctx, prompt, &idx); err != nil {
		return -1, err
	}
	return idx, nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// promptErr turns Ctrl-C and closed input into ErrAborted so the command
// exits quietly.
func promptErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, terminal.InterruptErr), errors.Is(err, io.EOF):
		return ErrAborted
	default:
		return err
	}
}

func pageSize(options int) int {
	return max(1, min(options, maxPageSize))
}
