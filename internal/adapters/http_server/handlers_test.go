package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	server "booking_bot/internal/adapters/http_server"
	"booking_bot/internal/app"
	"booking_bot/internal/domain"
	"booking_bot/internal/shared"
)

// ---- fakes ----

type stubLLM struct {
	generated, location string
	err                 error
	n                   int
}

func (s *stubLLM) Complete(ctx context.Context, system, user string) (string, error) {
	s.n++
	if s.err != nil {
		return "", s.err
	}
	if s.n%2 == 1 {
		return s.generated, nil
	}
	return s.location, nil
}

type stubPlaces struct {
	features []map[string]any
	calls    int
}

func (s *stubPlaces) Search(ctx context.Context, text string) ([]map[string]any, error) {
	s.calls++
	return s.features, nil
}

func montebello() []map[string]any {
	return []map[string]any{{"properties": map[string]any{
		"name": "Montebello",
		"CompanyMetaData": map[string]any{
			"Phones": []any{map[string]any{"formatted": "+7 (727) 355-00-55"}},
		},
	}}}
}

func newServer(llm domain.Completer, places domain.PlacesClient) http.Handler {
	venues := app.NewVenueService(places, nil, nil, time.Hour, time.Minute)
	p := app.NewPipeline(llm, venues, app.NewNotifier(shared.NotifyLink, nil), app.PipelineOptions{})
	srv := server.New(server.Options{Timeout: 5 * time.Second})
	srv.MountHandlers(&server.Handlers{Pipeline: p, Venues: venues})
	return srv.Mux()
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// ---- tests ----

func TestChat_ReturnsOrderedResponses(t *testing.T) {
	h := newServer(&stubLLM{generated: "Здравствуйте!", location: "Montebello"}, &stubPlaces{features: montebello()})

	rr := post(t, h, `{"message":"Столик на 4, Montebello, завтра в 19:00, Дильназ"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out []domain.ChatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected phone, message and link, got %+v", out)
	}
	if out[0].Response != "Номер телефона Montebello: +7 (727) 355-00-55" || out[1].Response != "Здравствуйте!" {
		t.Fatalf("unexpected responses: %+v", out)
	}
	if out[2].Kind != domain.KindLink || !strings.HasPrefix(out[2].Response, "https://wa.me/77273550055") {
		t.Fatalf("unexpected link entry: %+v", out[2])
	}
}

func TestChat_VenueNotFoundIsSingleApology(t *testing.T) {
	h := newServer(&stubLLM{generated: "x", location: "Nedelka"}, &stubPlaces{})

	rr := post(t, h, `{"message":"Nedelka, сегодня"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []domain.ChatResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if len(out) != 1 || out[0].Kind != domain.KindApology || !strings.Contains(out[0].Response, "Nedelka") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestChat_UpstreamErrorIs502Problem(t *testing.T) {
	places := &stubPlaces{features: montebello()}
	h := newServer(&stubLLM{err: errors.New("connection reset by peer")}, places)

	rr := post(t, h, `{"message":"Montebello"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var p struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &p)
	if p.Code != server.CodeUpstreamError {
		t.Fatalf("unexpected code %q", p.Code)
	}
	if strings.Contains(p.Detail, "connection reset") {
		t.Fatalf("internal error leaked to client: %q", p.Detail)
	}
	if places.calls != 0 {
		t.Fatalf("maps must not be called after step 1 failure")
	}
}

func TestChat_BadRequests(t *testing.T) {
	h := newServer(&stubLLM{}, &stubPlaces{})
	cases := map[string]string{
		`not json`:          server.CodeBadRequest,
		`{"message":"   "}`: server.CodeEmptyMessage,
		`{}`:                server.CodeEmptyMessage,
	}
	for body, code := range cases {
		rr := post(t, h, body)
		if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), code) {
			t.Fatalf("body %q: got %d %s", body, rr.Code, rr.Body.String())
		}
	}
}

func TestGetVenue(t *testing.T) {
	h := newServer(&stubLLM{}, &stubPlaces{features: montebello()})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/venues?q=Montebello", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"phone_number":"+7 (727) 355-00-55"`) {
		t.Fatalf("unexpected: %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/venues", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without q, got %d", rr.Code)
	}
}

func TestListMisses_NotConfigured(t *testing.T) {
	h := newServer(&stubLLM{}, &stubPlaces{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/misses", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/misses?limit=0", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newServer(&stubLLM{}, &stubPlaces{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected: %d %q", rr.Code, rr.Body.String())
	}
}
