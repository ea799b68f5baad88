// internal/httpserver/server.go
//
// HTTP server wiring for the linewords backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request logging).
//   - Public endpoints: "/", "/health", "/grades".
//   - Line game endpoints under /line, card game endpoints under /cards; both
//     gated by per-game tokens (token.go).
//   - In-memory session stores with an idle sweeper.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - Event streams (SSE, WebSocket) are mounted outside the Timeout
//     middleware; everything else is bounded to 10s.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/cards"
	"github.com/robalobadob/linewords/internal/clock"
	"github.com/robalobadob/linewords/internal/config"
	"github.com/robalobadob/linewords/internal/game"
	"github.com/robalobadob/linewords/internal/store"
	"github.com/robalobadob/linewords/internal/words"
)

// WordBank is the vocabulary the server plays with.
type WordBank interface {
	ForGrade(grade int) []words.Word
	Stats() map[int]int
}

// lineGame is a live line session plus its event stream.
type lineGame struct {
	sess *game.Session
	pres *eventPresenter
	mode string
	date string // daily mode only

	featured *words.Word // daily mode only
}

// Server bundles router, session stores and configuration.
type Server struct {
	r      *chi.Mux
	cfg    config.Config
	words  WordBank
	lines  *store.Memory[*lineGame]
	cards  *store.Memory[*cards.Game]
	events *Broadcaster
	tokens *tokenIssuer
	clock  clock.Clock
}

// Option customises a Server.
type Option func(*Server)

// WithClock drives every line session from c (tests use a manual clock).
func WithClock(c clock.Clock) Option { return func(s *Server) { s.clock = c } }

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, wb WordBank, opts ...Option) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		cfg:    cfg,
		words:  wb,
		events: NewBroadcaster(),
		tokens: newTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		clock:  clock.Real{},
	}
	for _, o := range opts {
		o(s)
	}
	s.lines = store.NewMemory(func(id string, g *lineGame) {
		g.sess.Close()
		g.pres.emit("closed", nil)
		log.Info().Str("gameId", id).Msg("line game evicted")
	})
	s.cards = store.NewMemory[*cards.Game](nil)

	// --- middleware ---
	s.r.Use(chimw.RequestID)        // add X-Request-ID
	s.r.Use(chimw.RealIP)           // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)          // one debug line per request
	s.r.Use(chimw.Recoverer)        // recover from panics
	s.r.Use(jsonContentType)        // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin)) // credentials-friendly CORS

	// --- streams (no timeout) ---
	s.r.With(s.requireGame("line")).Get("/line/{id}/events", s.handleLineEvents)
	s.r.With(s.requireGame("line")).Get("/line/{id}/ws", s.handleLineWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"linewords-go","endpoints":["/health","/grades","POST /line/new","POST /cards/new"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/grades", s.handleGrades)

		s.mountLine(r)
		s.mountCards(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// RunSweeper evicts idle sessions until ctx is done.
func (s *Server) RunSweeper(ctx context.Context) {
	idle := s.cfg.SessionIdle
	if idle <= 0 {
		idle = time.Hour
	}
	interval := idle / 4
	go s.cards.RunSweeper(ctx, interval, idle, func(n int) {
		log.Info().Int("evicted", n).Msg("idle card games swept")
	})
	s.lines.RunSweeper(ctx, interval, idle, func(n int) {
		log.Info().Int("evicted", n).Msg("idle line games swept")
	})
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs method, path, status and duration at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- helpers -----------------------------------

// writeErr maps domain errors onto JSON error responses.
func writeErr(w http.ResponseWriter, err error) {
	code, msg := http.StatusInternalServerError, "server_error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		code, msg = http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrBadCell):
		code, msg = http.StatusBadRequest, "bad_cell"
	case errors.Is(err, errBadDrag):
		code, msg = http.StatusBadRequest, "bad_drag"
	case errors.Is(err, cards.ErrBadOption):
		code, msg = http.StatusBadRequest, "bad_option"
	case errors.Is(err, game.ErrPhase):
		code, msg = http.StatusConflict, "wrong_phase"
	case errors.Is(err, cards.ErrAnswered):
		code, msg = http.StatusConflict, "already_answered"
	case errors.Is(err, game.ErrClosed):
		code, msg = http.StatusGone, "closed"
	case errors.Is(err, game.ErrNoWords), errors.Is(err, cards.ErrNoWords):
		code, msg = http.StatusNotFound, "no_words"
	default:
		log.Error().Err(err).Msg("request failed")
	}
	http.Error(w, `{"error":"`+msg+`"}`, code)
}

// handleGrades lists the grades and their word counts.
func (s *Server) handleGrades(w http.ResponseWriter, r *http.Request) {
	type grade struct {
		Grade int `json:"grade"`
		Words int `json:"words"`
	}
	stats := s.words.Stats()
	out := make([]grade, 0, len(stats))
	for g, n := range stats {
		out = append(out, grade{Grade: g, Words: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Grade < out[j].Grade })
	_ = json.NewEncoder(w).Encode(out)
}
