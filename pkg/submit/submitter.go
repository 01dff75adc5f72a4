package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/model"
)

// PlaceholderEndpoint is the endpoint shipped in templates before a real
// form backend was set up.
const PlaceholderEndpoint = "https://formspree.io/f/YOUR_FORM_ID"

const placeholderMarker = "YOUR_FORM_ID"

// maxErrorBody bounds how much of a rejection body is read.
const maxErrorBody = 64 << 10

// maxOutcomes bounds the finished results kept for Outcome; the oldest is
// evicted first.
const maxOutcomes = 256

// Option configures a Submitter.
type Option func(*Submitter)

// WithHTTPClient overrides the client used for outbound posts.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Submitter) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger attaches a logger. User-entered values are never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone of the local timestamp.
func WithLocation(loc *time.Location) Option {
	return func(s *Submitter) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithIDGenerator overrides submission id generation.
func WithIDGenerator(next func() string) Option {
	return func(s *Submitter) {
		if next != nil {
			s.newID = next
		}
	}
}

// WithTimeout bounds each outbound request. Zero leaves only the caller's
// context in charge.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Submitter) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithOverlay reports success through Result.Overlay instead of the status
// line.
func WithOverlay(enabled bool) Option {
	return func(s *Submitter) { s.overlay = enabled }
}

// WithFailureMessage sets the status shown when the backend rejects a
// submission without a usable message.
func WithFailureMessage(msg string) Option {
	return func(s *Submitter) {
		if strings.TrimSpace(msg) != "" {
			s.failure = msg
		}
	}
}

// WithObserver registers a callback for state transitions.
func WithObserver(observer Observer) Option {
	return func(s *Submitter) { s.observer = observer }
}

// Submitter validates a form and relays it to the form backend. One
// Submitter serves every request for its endpoint; forms are owned by the
// caller.
type Submitter struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
	now      func() time.Time
	location *time.Location
	newID    func() string
	timeout  time.Duration
	overlay  bool
	failure  string
	observer Observer

	mu       sync.Mutex
	inflight map[string]struct{}
	outcomes map[string]Result
	order    []string
}

// New builds a submitter for endpoint.
func New(endpoint string, opts ...Option) *Submitter {
	s := &Submitter{
		endpoint: strings.TrimSpace(endpoint),
		client:   http.DefaultClient,
		logger:   zap.NewNop(),
		now:      time.Now,
		location: time.Local,
		failure:  MessageOrderFailure,
		inflight: make(map[string]struct{}),
		outcomes: make(map[string]Result),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Endpoint returns the configured endpoint.
func (s *Submitter) Endpoint() string { return s.endpoint }

// Configured reports whether the endpoint can receive submissions.
func (s *Submitter) Configured() bool { return !IsMisconfigured(s.endpoint) }

// IsMisconfigured reports whether endpoint is empty or still the placeholder.
func IsMisconfigured(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	return endpoint == "" || strings.Contains(endpoint, placeholderMarker)
}

// InFlight reports whether a submission for token is outstanding.
func (s *Submitter) InFlight(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[token]
	return busy
}

// Outcome returns and forgets the result of the last attempt that reached
// the network for token. A binding uses it to report how a submission ended
// after a duplicate was turned away while it was in flight.
func (s *Submitter) Outcome(token string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.outcomes[token]
	if ok {
		delete(s.outcomes, token)
	}
	return result, ok
}

// Submit runs one submission attempt. The returned Result is always usable
// for display; the error, when present, is one of *ValidationError,
// *ConfigurationError, *ServerRejection, *TransportFailure or ErrInFlight.
// On success the form is reset.
func (s *Submitter) Submit(ctx context.Context, form engine.Form) (Result, error) {
	if form == nil {
		return Result{State: StateError, Status: s.failure}, fmt.Errorf("submit: form is nil")
	}
	token := form.Token()
	logger := s.logger.With(zap.String("form", form.Kind()))
	if desc := serviceOf(form); desc != nil {
		logger = logger.With(zap.String("service", desc.Key))
	}

	s.notify(token, StateValidating)
	if errs := s.validate(form); len(errs) > 0 {
		s.notify(token, StateInvalid)
		logger.Debug("submission invalid", zap.Int("fields", len(errs)))
		return Result{State: StateInvalid, FieldErrors: errs}, &ValidationError{Fields: errs}
	}

	if trap, ok := form.(engine.Trap); ok && trap.Trapped() {
		form.Reset()
		s.notify(token, StateSuccess)
		logger.Info("submission trapped by honeypot")
		return Result{State: StateSuccess, Status: MessageHoneypot}, nil
	}

	if IsMisconfigured(s.endpoint) {
		s.notify(token, StateError)
		logger.Warn("submission endpoint not configured")
		return Result{State: StateError, Status: MessageMisconfigured}, &ConfigurationError{
			Endpoint: s.endpoint,
			Reason:   "endpoint is empty or still the placeholder",
		}
	}

	if !s.acquire(token) {
		logger.Info("submission rejected while another is in flight")
		return Result{State: StateError, Status: MessageInFlight}, ErrInFlight
	}
	result, err := s.send(ctx, form, logger)
	s.finish(token, result)
	return result, err
}

func (s *Submitter) send(ctx context.Context, form engine.Form, logger *zap.Logger) (Result, error) {
	token := form.Token()

	s.notify(token, StateSending)
	meta := NewMetadata(s.now(), s.location, s.nextID())
	logger = logger.With(zap.String("submission_id", meta.SubmissionID))

	payload := form.Payload()
	meta.Apply(payload)

	status, body, err := s.post(ctx, payload)
	if err != nil {
		s.notify(token, StateError)
		logger.Warn("submission transport failed", zap.Error(err))
		return Result{State: StateError, Status: MessageNetwork, Metadata: meta}, &TransportFailure{Err: err}
	}

	if status >= 200 && status < 300 {
		message := form.SuccessMessage()
		form.Reset()
		s.notify(token, StateSuccess)
		logger.Info("submission accepted", zap.Int("status", status))
		result := Result{State: StateSuccess, Metadata: meta}
		if s.overlay {
			result.Overlay = message
		} else {
			result.Status = message
		}
		return result, nil
	}

	rejection := parseRejection(status, body)
	s.notify(token, StateError)
	logger.Warn("submission rejected", zap.Int("status", status), zap.Int("messages", len(rejection.Messages)))
	msg := rejection.Message()
	if msg == "" {
		msg = s.failure
	}
	return Result{
		State:       StateError,
		Status:      msg,
		FieldErrors: rejection.Fields,
		Metadata:    meta,
	}, rejection
}

func (s *Submitter) validate(form engine.Form) []model.FieldError {
	errs := form.Validate()
	if cr, ok := form.(engine.ContactRequirer); ok {
		email, phone := cr.ContactMethods()
		if strings.TrimSpace(email) == "" && strings.TrimSpace(phone) == "" {
			errs = append(errs,
				model.FieldError{Field: engine.FieldCustomerEmail, Message: MessageContactMethod},
				model.FieldError{Field: engine.FieldCustomerPhone, Message: MessageContactMethod},
			)
		}
	}
	return errs
}

func (s *Submitter) post(ctx context.Context, payload url.Values) (int, []byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, contentType, err := encodeMultipart(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		// The status alone is enough to report a rejection.
		data = nil
	}
	return resp.StatusCode, data, nil
}

func (s *Submitter) acquire(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[token]; busy {
		return false
	}
	s.inflight[token] = struct{}{}
	return true
}

// finish releases token and records result for Outcome in one step, so a
// caller never sees the token idle without its outcome.
func (s *Submitter) finish(token string, result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, token)
	if _, seen := s.outcomes[token]; !seen {
		s.order = append(s.order, token)
	}
	s.outcomes[token] = result
	for len(s.order) > maxOutcomes {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.outcomes, oldest)
	}
}

func (s *Submitter) notify(token string, state State) {
	if s.observer != nil {
		s.observer(token, state)
	}
}

func (s *Submitter) nextID() string {
	if s.newID != nil {
		return s.newID()
	}
	return ""
}

func encodeMultipart(payload url.Values) (io.Reader, string, error) {
	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		for _, value := range payload[name] {
			if err := writer.WriteField(name, value); err != nil {
				return nil, "", fmt.Errorf("encode %s: %w", name, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("encode: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

type errorBody struct {
	Errors []struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

func parseRejection(status int, body []byte) *ServerRejection {
	rejection := &ServerRejection{StatusCode: status}
	if len(bytes.TrimSpace(body)) == 0 {
		return rejection
	}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return rejection
	}
	for _, item := range parsed.Errors {
		msg := strings.TrimSpace(item.Message)
		if msg == "" {
			continue
		}
		rejection.Messages = append(rejection.Messages, msg)
		if field := strings.TrimSpace(item.Field); field != "" {
			rejection.Fields = append(rejection.Fields, model.FieldError{Field: field, Message: msg})
		}
	}
	if len(rejection.Messages) == 0 && strings.TrimSpace(parsed.Error) != "" {
		rejection.Messages = append(rejection.Messages, strings.TrimSpace(parsed.Error))
	}
	return rejection
}

func serviceOf(form engine.Form) *catalog.ServiceDescriptor {
	type servicer interface {
		Service() *catalog.ServiceDescriptor
	}
	if s, ok := form.(servicer); ok {
		return s.Service()
	}
	return nil
}

// Classify maps a Submit error to the state a binding should show.
func Classify(err error) State {
	var validation *ValidationError
	switch {
	case err == nil:
		return StateSuccess
	case errors.As(err, &validation):
		return StateInvalid
	default:
		return StateError
	}
}
