// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"booking_bot/internal/app"
	"booking_bot/internal/domain"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	Pipeline *app.Pipeline
	Venues   *app.VenueService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Stable problem codes.
const (
	CodeBadRequest    = "bad_request"
	CodeEmptyMessage  = "empty_message"
	CodeUpstreamError = "upstream_error"
	CodeNotFound      = "not_found"
	CodeInternal      = "internal_error"
)

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/", h.chat)
	s.mux.Get("/v1/venues", h.getVenue)
	s.mux.Get("/v1/misses", h.listMisses)
}

func writeProblem(w http.ResponseWriter, status int, code, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Code: code, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("write JSON response failed")
	}
}

// chat is POST /: one booking request in, an ordered list of responses out.
func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, CodeBadRequest, "Invalid request", `body must be JSON like {"message": "..."}`)
		return
	}

	res, err := h.Pipeline.Handle(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, r, res.Responses)
	case errors.Is(err, domain.ErrEmptyMessage):
		writeProblem(w, http.StatusBadRequest, CodeEmptyMessage, "Invalid request", "message must not be empty")
	case domain.IsUpstream(err):
		writeProblem(w, http.StatusBadGateway, CodeUpstreamError, "Upstream service unavailable",
			"the booking assistant could not complete the request, please try again later")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("booking pipeline failed")
		writeProblem(w, http.StatusInternalServerError, CodeInternal, "Internal error", "")
	}
}

// getVenue is GET /v1/venues?q=<name>.
func (h *Handlers) getVenue(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeProblem(w, http.StatusBadRequest, CodeBadRequest, "Invalid query", "q is required")
		return
	}
	v, found, err := h.Venues.SearchLocation(r.Context(), q)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("q", q).Msg("venue lookup failed")
		writeProblem(w, http.StatusBadGateway, CodeUpstreamError, "Upstream service unavailable", "venue search failed")
		return
	}
	if !found {
		writeProblem(w, http.StatusNotFound, CodeNotFound, "Not Found", "venue not found")
		return
	}
	writeJSON(w, r, v)
}

// listMisses is GET /v1/misses?limit=N.
func (h *Handlers) listMisses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 500 {
			writeProblem(w, http.StatusBadRequest, CodeBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = l
	}

	out, err := h.Venues.TopMisses(r.Context(), limit)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, CodeNotFound, "Not Found", "miss log is not configured")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list misses failed")
		writeProblem(w, http.StatusInternalServerError, CodeInternal, "Internal error", "")
		return
	}
	writeJSON(w, r, out)
}
