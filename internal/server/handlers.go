package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/banner"
	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/model"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
	"github.com/goliatone/go-orderform/pkg/submit"
)

const (
	pathOrder    = "/order"
	pathContact  = "/contact"
	maxFormBytes = 64 << 10
)

// Values of the posted "action" button.
const (
	actionSubmit  = "submit"
	actionRefresh = "refresh"
	actionDismiss = "dismiss"
	actionStatus  = "status"
)

// Status lines the server adds on top of the submitter's.
const (
	messageRateLimited = "Too many requests. Please try again later."
	messageNoOutcome   = "No earlier submission was found for this form."
)

// Query parameters read by the page handlers.
const (
	queryService = "service"
	queryBanner  = "banner"
	queryVariant = "variant"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+pathOrder, s.handleOrderPage)
	mux.HandleFunc("POST "+pathOrder, s.handleOrderPost)
	mux.HandleFunc("GET "+pathContact, s.handleContactPage)
	mux.HandleFunc("POST "+pathContact, s.handleContactPost)
	mux.HandleFunc("GET /api/banner", s.handleBanner)
	mux.HandleFunc("GET /api/services", s.handleServices)
	mux.HandleFunc("GET /api/openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, pathOrder, http.StatusFound)
	})

	return requestLogger(s.logger, mux)
}

func (s *Server) handleOrderPage(w http.ResponseWriter, r *http.Request) {
	order := engine.NewOrder(s.resolve(r))
	s.renderForm(w, r, order, s.pageOptions(r, order), http.StatusOK)
}

func (s *Server) handleOrderPost(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, engine.NewOrder(s.resolve(r)), s.orders)
}

func (s *Server) handleContactPage(w http.ResponseWriter, r *http.Request) {
	contact := engine.NewContact()
	s.renderForm(w, r, contact, s.pageOptions(r, contact), http.StatusOK)
}

func (s *Server) handleContactPost(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, engine.NewContact(), s.contacts)
}

// handleAction rebuilds form from the post and runs the requested action.
// The engine is stateless between requests; everything it needs travels in
// the posted values.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, form engine.Form, sub Submitter) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.logger.Debug("unreadable form post", zap.Error(err))
		http.Error(w, "unreadable form submission", http.StatusBadRequest)
		return
	}

	switch r.PostForm.Get("action") {
	case actionDismiss:
		s.renderForm(w, r, form, s.pageOptions(r, form), http.StatusOK)
	case actionRefresh:
		form.Apply(r.PostForm)
		s.renderForm(w, r, form, s.pageOptions(r, form), http.StatusOK)
	case actionStatus:
		form.Apply(r.PostForm)
		s.checkStatus(w, r, form, sub)
	default:
		form.Apply(r.PostForm)
		if ip := clientIP(r, s.proxies); !s.limiter.allow(ip) {
			s.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			opts := s.pageOptions(r, form)
			opts.Status = messageRateLimited
			opts.StatusKind = render.StatusError
			s.renderForm(w, r, form, opts, http.StatusTooManyRequests)
			return
		}
		s.submit(w, r, form, sub)
	}
}

// outcomeReporter is implemented by submitters that remember how a
// submission ended.
type outcomeReporter interface {
	InFlight(token string) bool
	Outcome(token string) (submit.Result, bool)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, form engine.Form, sub Submitter) {
	// Errors are mapped against the model as posted; a successful submit
	// resets the form before the page is rendered.
	posted := form.Model()
	res, err := sub.Submit(r.Context(), form)
	s.showResult(w, r, form, posted, res, err)
}

// checkStatus answers the "Check status" button of a page rendered while a
// submission was in flight.
func (s *Server) checkStatus(w http.ResponseWriter, r *http.Request, form engine.Form, sub Submitter) {
	reporter, ok := sub.(outcomeReporter)
	if !ok {
		s.renderForm(w, r, form, s.pageOptions(r, form), http.StatusOK)
		return
	}
	token := form.Token()
	if reporter.InFlight(token) {
		s.showResult(w, r, form, form.Model(), submit.Result{State: submit.StateError, Status: submit.MessageInFlight}, submit.ErrInFlight)
		return
	}

	posted := form.Model()
	res, found := reporter.Outcome(token)
	if !found {
		opts := s.pageOptions(r, form)
		opts.Status = messageNoOutcome
		opts.StatusKind = render.StatusInfo
		s.renderForm(w, r, form, opts, http.StatusOK)
		return
	}
	if res.Succeeded() {
		form.Reset()
	}
	s.showResult(w, r, form, posted, res, nil)
}

func (s *Server) showResult(w http.ResponseWriter, r *http.Request, form engine.Form, posted model.FormModel, res submit.Result, err error) {
	opts := s.pageOptions(r, form)
	opts.Status = res.Status
	opts.Overlay = res.Overlay
	opts.StatusKind = statusKind(res.State)
	if len(res.FieldErrors) > 0 {
		opts = opts.WithErrors(render.MapFieldErrors(posted, res.FieldErrors))
	}
	if res.Metadata.SubmissionID != "" {
		opts.Hidden = append(opts.Hidden, render.PairFields(res.Metadata.Fields())...)
	}
	if errors.Is(err, submit.ErrInFlight) {
		opts.Sending = true
		opts.StatusKind = render.StatusInfo
	}

	status := http.StatusOK
	if res.State == submit.StateInvalid {
		status = http.StatusUnprocessableEntity
	}
	s.renderForm(w, r, form, opts, status)
}

func statusKind(state submit.State) render.StatusKind {
	switch state {
	case submit.StateSuccess:
		return render.StatusSuccess
	case submit.StateError, submit.StateInvalid:
		return render.StatusError
	default:
		return render.StatusNone
	}
}

func (s *Server) resolve(r *http.Request) *catalog.ServiceDescriptor {
	return s.catalog.Resolve(r.URL.Query().Get(queryService))
}

// pageOptions carries the per-request chrome: post-back URL, service links,
// banner state and theme.
func (s *Server) pageOptions(r *http.Request, form engine.Form) render.RenderOptions {
	query := r.URL.Query()
	mode := banner.ParseMode(query.Get(queryBanner))
	state := banner.ForMode(s.cfg.Banner, mode, 0)

	opts := render.RenderOptions{
		Action:     postBackURL(r, form),
		Banner:     &state,
		BannerMode: mode,
		Services:   s.serviceLinks(form),
	}
	if sel, err := s.themes.Select(s.cfg.Theme.Name, query.Get(queryVariant)); err == nil {
		opts.Theme = vanilla.ThemeConfig(sel, &state)
	} else {
		s.logger.Warn("theme selection failed", zap.String("theme", s.cfg.Theme.Name), zap.Error(err))
	}
	return opts
}

// postBackURL keeps the page's query on the form action so a post resolves
// the same service, banner mode and variant as the page it came from.
func postBackURL(r *http.Request, form engine.Form) string {
	path := pathContact
	if form.Kind() == "order" {
		path = pathOrder
	}
	query := url.Values{}
	for _, key := range []string{queryService, queryBanner, queryVariant} {
		if value := r.URL.Query().Get(key); value != "" {
			query.Set(key, value)
		}
	}
	if order, ok := form.(*engine.Order); ok && query.Get(queryService) == "" {
		query.Set(queryService, order.Service().Key)
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func (s *Server) serviceLinks(form engine.Form) []render.ServiceLink {
	selected := ""
	if order, ok := form.(*engine.Order); ok {
		selected = order.Service().Key
	}
	descs := s.catalog.Descriptors()
	links := make([]render.ServiceLink, 0, len(descs))
	for _, desc := range descs {
		links = append(links, render.ServiceLink{
			Key:      desc.Key,
			Name:     desc.Name,
			Selected: desc.Key == selected,
		})
	}
	return links
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, form engine.Form, opts render.RenderOptions, status int) {
	body, err := s.renderer.Render(r.Context(), form.Model(), opts)
	if err != nil {
		s.logger.Error("render failed", zap.String("form", form.Kind()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type bannerResponse struct {
	banner.State
	Mode    banner.Mode       `json:"mode"`
	Classes []string          `json:"classes"`
	CSSVars map[string]string `json:"cssVars"`
	Style   string            `json:"style"`
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	scrollY := 0.0
	if raw := query.Get("scrollY"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "scrollY must be a number"})
			return
		}
		scrollY = parsed
	}

	mode := banner.ParseMode(query.Get("mode"))
	state := banner.ForMode(s.cfg.Banner, mode, scrollY)
	classes := state.Classes()
	if classes == nil {
		classes = []string{}
	}
	writeJSON(w, http.StatusOK, bannerResponse{
		State:   state,
		Mode:    mode,
		Classes: classes,
		CSSVars: state.CSSVars(),
		Style:   state.Style(),
	})
}

type servicesResponse struct {
	Default  string                      `json:"default"`
	Services []catalog.ServiceDescriptor `json:"services"`
	Aliases  map[string]string           `json:"aliases"`
}

func (s *Server) handleServices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, servicesResponse{
		Default:  s.catalog.DefaultKey(),
		Services: s.catalog.Descriptors(),
		Aliases:  s.catalog.Aliases(),
	})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.openapi)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
