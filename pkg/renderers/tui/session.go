package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/submit"
)

// Submitter sends a completed form. *submit.Submitter implements it.
type Submitter interface {
	Submit(ctx context.Context, form engine.Form) (submit.Result, error)
}

// Session drives one form from first prompt to a dismissed result.
type Session struct {
	renderer  *Renderer
	submitter Submitter
}

// NewSession pairs a renderer with the submitter that sends its forms.
func NewSession(renderer *Renderer, submitter Submitter) *Session {
	if renderer == nil {
		renderer = New()
	}
	return &Session{renderer: renderer, submitter: submitter}
}

// Run fills form, submits it and reports the outcome. Invalid answers send
// the user back to the offending fields. After a failed send the user may
// retry. A success overlay stays up until the user closes it.
func (s *Session) Run(ctx context.Context, form Editable) (submit.Result, error) {
	if s.submitter == nil {
		return submit.Result{}, errors.New("tui: submitter is nil")
	}
	r := s.renderer

	if err := r.info(ctx, form.Model().Summary); err != nil {
		return submit.Result{}, err
	}

	var errs map[string][]string
	refill := true
	for {
		if refill {
			if err := r.Fill(ctx, form, errs); err != nil {
				return submit.Result{}, err
			}
		}
		if err := r.info(ctx, "Sending..."); err != nil {
			return submit.Result{}, err
		}

		result, err := s.submitter.Submit(ctx, form)
		switch result.State {
		case submit.StateInvalid:
			errs = model.GroupErrors(result.FieldErrors)
			if !anyPromptable(form.Model(), errs) {
				return result, err
			}
			refill = true
			continue
		case submit.StateSuccess:
			return result, s.acknowledge(ctx, result)
		}

		if status := strings.TrimSpace(result.Status); status != "" {
			if ferr := r.fail(ctx, status); ferr != nil {
				return result, ferr
			}
		}
		retry, perr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if perr != nil {
			return result, perr
		}
		if !retry {
			return result, err
		}
		errs = model.GroupErrors(result.FieldErrors)
		refill = anyPromptable(form.Model(), errs)
	}
}

func anyPromptable(form model.FormModel, errs map[string][]string) bool {
	for _, field := range promptable(form) {
		if _, ok := errs[field.Name]; ok {
			return true
		}
	}
	return false
}

// acknowledge shows the success message. An overlay is only dismissed by an
// explicit confirmation.
func (s *Session) acknowledge(ctx context.Context, result submit.Result) error {
	r := s.renderer
	if result.Overlay == "" {
		if result.Status == "" {
			return nil
		}
		return r.succeed(ctx, result.Status)
	}
	if err := r.succeed(ctx, result.Overlay); err != nil {
		return err
	}
	for {
		closed, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Close?", Default: true})
		if err != nil {
			return err
		}
		if closed {
			return nil
		}
	}
}
