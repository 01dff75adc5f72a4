package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-orderform/internal/config"
	"github.com/goliatone/go-orderform/internal/server"
	"github.com/goliatone/go-orderform/pkg/banner"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/submit"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

func testConfig(orderEndpoint, contactEndpoint string) config.Config {
	return config.Config{
		Addr:   "127.0.0.1:0",
		Env:    config.EnvDevelopment,
		Submit: config.SubmitConfig{Endpoint: orderEndpoint},
		Contact: config.ContactConfig{
			Endpoint: contactEndpoint,
		},
		Banner:    banner.DefaultConfig(),
		Theme:     config.ThemeConfig{Name: "orderform"},
		RateLimit: config.RateLimitConfig{PerMinute: 600, Burst: 50},
		Shutdown:  config.ShutdownConfig{Grace: time.Second},
	}
}

func newServer(t *testing.T, cfg config.Config, opts ...server.Option) http.Handler {
	t.Helper()
	srv, err := server.New(cfg, opts...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertBody(t *testing.T, rec *httptest.ResponseRecorder, fragments ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, fragment := range fragments {
		if !strings.Contains(body, fragment) {
			t.Errorf("expected body to contain %q", fragment)
		}
	}
}

// lawnCleanupPost fills every field Lawn Cleanup requires; the service has no
// house type, so no address is asked for.
func lawnCleanupPost(action string) url.Values {
	return url.Values{
		"action":                  {action},
		engine.FieldToken:         {"token-1"},
		engine.FieldCustomerName:  {"Ada Lovelace"},
		engine.FieldCustomerPhone: {"555-0100"},
		engine.FieldPreferredDate: {"2026-05-01"},
		engine.FieldDetails:       {"Gate code <1234> & mind the dog"},
	}
}

func contactPost() url.Values {
	return url.Values{
		"action":                   {"submit"},
		engine.FieldContactName:    {"Ada"},
		engine.FieldContactEmail:   {"ada@example.com"},
		engine.FieldContactMessage: {"Hello there"},
	}
}

func postFrom(t *testing.T, h http.Handler, target, forwardedFor string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_OrderPage(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/order?service=window-cleaning", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", got)
	}
	assertBody(t, rec,
		`<title>Window Cleaning Request</title>`,
		`action="/order?service=window-cleaning"`,
		`<a href="/order?service=window-cleaning" aria-current="page">Window Cleaning</a>`,
		`name="windowCount_input"`,
		`data-theme="orderform"`,
	)
}

func TestServer_OrderPageFallsBackToDefaultService(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/order?service=unknown", nil)

	assertBody(t, rec, `<title>Lawn Mowing/Weed Wacking Request</title>`)
}

func TestServer_OrderPageStaticHalfBanner(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/order?service=moving-help&banner=static-half", nil)

	assertBody(t, rec,
		`class="banner is-condensed use-half" data-mode="static-half" data-height="150px"`,
		`action="/order?banner=static-half&amp;service=moving-help"`,
	)
}

func TestServer_OrderSubmitSuccess(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
	h := newServer(t, testConfig(backend.URL, ""))

	rec := do(t, h, http.MethodPost, "/order?service=lawn-cleanup", lawnCleanupPost("submit"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertBody(t, rec,
		`<p id="of-overlay-message">Thanks! Your Lawn Cleanup request was sent.`,
		`<p class="of-status is-success" role="status" aria-live="polite"></p>`,
		`name="submission_id"`,
		`value="dismiss"`,
	)

	requests := backend.Requests()
	if len(requests) != 1 {
		t.Fatalf("backend requests = %d, want 1", len(requests))
	}
	for name, want := range map[string]string{
		engine.FieldService:      "Lawn Cleanup",
		engine.FieldCustomerName: "Ada Lovelace",
		engine.FieldDetails:      "Gate code <1234> & mind the dog",
	} {
		if got := requests[0].Get(name); got != want {
			t.Errorf("posted %s = %q, want %q", name, got, want)
		}
	}
	if requests[0].Get(submit.FieldSubmissionID) == "" {
		t.Error("submission id was not posted")
	}
}

func TestServer_OrderSubmitInvalid(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
	h := newServer(t, testConfig(backend.URL, ""))

	form := lawnCleanupPost("submit")
	form.Del(engine.FieldCustomerName)
	rec := do(t, h, http.MethodPost, "/order?service=lawn-cleanup", form)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	assertBody(t, rec,
		`aria-describedby="of-customerName-errors"`,
		engine.MessageRequired,
		`value="555-0100"`,
	)
	if n := len(backend.Requests()); n != 0 {
		t.Fatalf("backend requests = %d, want 0", n)
	}
}

func TestServer_OrderSubmitServerRejection(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusUnprocessableEntity, `{"errors":[{"message":"Bad request"}]}`)
	h := newServer(t, testConfig(backend.URL, ""))

	rec := do(t, h, http.MethodPost, "/order?service=lawn-cleanup", lawnCleanupPost("submit"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertBody(t, rec, `<p class="of-status is-error" role="status" aria-live="polite">Bad request</p>`)
}

func TestServer_MisconfiguredEndpoint(t *testing.T) {
	h := newServer(t, testConfig(submit.PlaceholderEndpoint, ""))

	rec := do(t, h, http.MethodPost, "/order?service=lawn-cleanup", lawnCleanupPost("submit"))

	assertBody(t, rec, submit.MessageMisconfigured, `is-error`)
}

func TestServer_RefreshRebuildsRoster(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
	h := newServer(t, testConfig(backend.URL, ""))

	form := url.Values{
		"action":                        {"refresh"},
		engine.FieldPetCount + "_input": {"3"},
	}
	rec := do(t, h, http.MethodPost, "/order?service=pet-sitting", form)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertBody(t, rec, `name="petType3"`)
	if strings.Contains(rec.Body.String(), `name="petType4"`) {
		t.Error("roster grew past the posted count")
	}
	if n := len(backend.Requests()); n != 0 {
		t.Fatalf("refresh should not submit, got %d requests", n)
	}
}

func TestServer_DismissRendersFreshForm(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodPost, "/order?service=moving-help", url.Values{"action": {"dismiss"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `role="dialog"`) {
		t.Error("overlay should be closed after dismiss")
	}
}

func TestServer_ContactSubmit(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
	h := newServer(t, testConfig("", backend.URL))

	rec := do(t, h, http.MethodPost, "/contact", contactPost())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertBody(t, rec, `<p class="of-status is-success" role="status" aria-live="polite">Thanks. Your message was sent successfully.</p>`)
	if strings.Contains(rec.Body.String(), `role="dialog"`) {
		t.Error("contact success should use the status line")
	}
	requests := backend.Requests()
	if len(requests) != 1 || requests[0].Get(engine.FieldContactMessage) != "Hello there" {
		t.Fatalf("backend requests = %v", requests)
	}
}

type blockingSubmitter struct{}

func (blockingSubmitter) Submit(context.Context, engine.Form) (submit.Result, error) {
	return submit.Result{State: submit.StateError, Status: submit.MessageInFlight}, submit.ErrInFlight
}

func TestServer_InFlightDisablesSubmit(t *testing.T) {
	h := newServer(t, testConfig("", ""), server.WithOrderSubmitter(blockingSubmitter{}))

	rec := do(t, h, http.MethodPost, "/order?service=lawn-cleanup", lawnCleanupPost("submit"))

	assertBody(t, rec,
		`disabled aria-busy="true">Sending...</button>`,
		`<p class="of-status is-info" role="status" aria-live="polite">`+submit.MessageInFlight+`</p>`,
		`<button type="submit" name="action" value="status" formnovalidate>Check status</button>`,
		`value="token-1"`,
	)
}

// reportingSubmitter answers status checks from fixed state.
type reportingSubmitter struct {
	blockingSubmitter
	inFlight bool
	outcome  *submit.Result
}

func (s reportingSubmitter) InFlight(string) bool { return s.inFlight }

func (s reportingSubmitter) Outcome(string) (submit.Result, bool) {
	if s.outcome == nil {
		return submit.Result{}, false
	}
	return *s.outcome, true
}

func TestServer_CheckStatus(t *testing.T) {
	cases := []struct {
		name      string
		sub       reportingSubmitter
		fragments []string
		absent    string
	}{
		{
			name: "still sending",
			sub:  reportingSubmitter{inFlight: true},
			fragments: []string{
				`disabled aria-busy="true">Sending...</button>`,
				`value="status" formnovalidate>Check status</button>`,
				`value="Ada Lovelace"`,
			},
		},
		{
			name: "finished successfully",
			sub: reportingSubmitter{outcome: &submit.Result{
				State:   submit.StateSuccess,
				Overlay: "Thanks! Your Lawn Cleanup request was sent.",
			}},
			fragments: []string{
				`<p id="of-overlay-message">Thanks! Your Lawn Cleanup request was sent.</p>`,
			},
			absent: `value="Ada Lovelace"`,
		},
		{
			name: "finished with a rejection",
			sub: reportingSubmitter{outcome: &submit.Result{
				State:  submit.StateError,
				Status: "Bad request",
			}},
			fragments: []string{
				`<p class="of-status is-error" role="status" aria-live="polite">Bad request</p>`,
				`value="Ada Lovelace"`,
			},
		},
		{
			name: "nothing recorded",
			sub:  reportingSubmitter{},
			fragments: []string{
				`<p class="of-status is-info" role="status" aria-live="polite">No earlier submission was found for this form.</p>`,
			},
			absent: `Check status`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newServer(t, testConfig("", ""), server.WithOrderSubmitter(tc.sub))

			rec := do(t, h, http.MethodPost, "/order?service=lawn-cleanup", lawnCleanupPost("status"))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			assertBody(t, rec, tc.fragments...)
			if tc.absent != "" && strings.Contains(rec.Body.String(), tc.absent) {
				t.Errorf("body should not contain %q", tc.absent)
			}
		})
	}
}

func TestServer_BannerAPI(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	cases := []struct {
		name    string
		query   string
		height  int
		classes []string
	}{
		{name: "top", query: "scrollY=0", height: 300, classes: []string{}},
		{name: "halfway", query: "scrollY=140", height: 225, classes: []string{banner.ClassCondensed}},
		{name: "fully condensed", query: "scrollY=280", height: 150, classes: []string{banner.ClassCondensed, banner.ClassUseHalf}},
		{name: "static half", query: "mode=static-half&scrollY=0", height: 150, classes: []string{banner.ClassCondensed, banner.ClassUseHalf}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/banner?"+tc.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var got struct {
				CurrentHeight int               `json:"currentHeight"`
				Classes       []string          `json:"classes"`
				CSSVars       map[string]string `json:"cssVars"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.CurrentHeight != tc.height {
				t.Errorf("height = %d, want %d", got.CurrentHeight, tc.height)
			}
			if diff := cmp.Diff(tc.classes, got.Classes); diff != "" {
				t.Errorf("classes mismatch (-want +got):\n%s", diff)
			}
			if got.CSSVars[banner.VarMaxHeight] != "300px" {
				t.Errorf("max height var = %q", got.CSSVars[banner.VarMaxHeight])
			}
		})
	}
}

func TestServer_BannerAPIRejectsBadOffset(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/api/banner?scrollY=lots", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestServer_ServicesAPI(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/api/services", nil)

	var got struct {
		Default  string `json:"default"`
		Services []struct {
			Key string `json:"key"`
		} `json:"services"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Default != "lawn-mowing-weed-wacking" {
		t.Errorf("default = %q", got.Default)
	}
	if len(got.Services) != 9 {
		t.Errorf("services = %d, want 9", len(got.Services))
	}
}

func TestServer_OpenAPIDocument(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/api/openapi.json", nil)

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI != "3.0.3" {
		t.Errorf("openapi = %q", doc.OpenAPI)
	}
	for _, path := range []string{"/order/window-cleaning", "/contact"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("missing path %s", path)
		}
	}
}

func TestServer_HealthAndRedirect(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/order" {
		t.Fatalf("root = %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestServer_ServesStylesheet(t *testing.T) {
	h := newServer(t, testConfig("", ""))

	rec := do(t, h, http.MethodGet, "/assets/orderform.css", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestServer_RateLimitsSubmitsOnly(t *testing.T) {
	backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
	cfg := testConfig("", backend.URL)
	cfg.RateLimit = config.RateLimitConfig{PerMinute: 1, Burst: 1}
	h := newServer(t, cfg)

	for i := 0; i < 3; i++ {
		if rec := do(t, h, http.MethodPost, "/contact", url.Values{"action": {"refresh"}}); rec.Code != http.StatusOK {
			t.Fatalf("refresh %d = %d, refreshes are never limited", i, rec.Code)
		}
	}

	first := do(t, h, http.MethodPost, "/contact", contactPost())
	second := do(t, h, http.MethodPost, "/contact", contactPost())
	page := do(t, h, http.MethodGet, "/contact", nil)

	if first.Code != http.StatusOK {
		t.Fatalf("first submit = %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second submit = %d, want 429", second.Code)
	}
	assertBody(t, second,
		`<p class="of-status is-error" role="status" aria-live="polite">Too many requests. Please try again later.</p>`,
		`value="ada@example.com"`,
	)
	if page.Code != http.StatusOK {
		t.Fatalf("page reads should not be limited, got %d", page.Code)
	}
	if n := len(backend.Requests()); n != 1 {
		t.Fatalf("backend requests = %d, want 1", n)
	}
}

func TestServer_RateLimitClientAddress(t *testing.T) {
	cases := []struct {
		name      string
		trusted   []string
		forwarded []string
		want      []int
	}{
		{
			name:      "spoofed header from an untrusted peer",
			forwarded: []string{"198.51.100.1", "198.51.100.2"},
			want:      []int{http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:      "trusted proxy separates clients",
			trusted:   []string{"192.0.2.0/24"},
			forwarded: []string{"198.51.100.1", "198.51.100.2", "198.51.100.1"},
			want:      []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:      "client cannot prepend its own hop",
			trusted:   []string{"192.0.2.0/24"},
			forwarded: []string{"198.51.100.1", "203.0.113.9, 198.51.100.1"},
			want:      []int{http.StatusOK, http.StatusTooManyRequests},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := testsupport.NewBackend(t, http.StatusOK, `{"ok":true}`)
			cfg := testConfig("", backend.URL)
			cfg.RateLimit = config.RateLimitConfig{PerMinute: 1, Burst: 1, TrustedProxies: tc.trusted}
			h := newServer(t, cfg)

			var got []int
			for _, forwarded := range tc.forwarded {
				got = append(got, postFrom(t, h, "/contact", forwarded, contactPost()).Code)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("status codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	srv, err := server.New(testConfig("", ""))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
