// internal/httpserver/routes_line.go
//
// HTTP routes for the line (draw the path) game.
//   - POST   /line/new              → create a session in the ready phase
//   - GET    /line/{id}             → snapshot (board, phase, status)
//   - GET    /line/{id}/events      → SSE event stream (server.go)
//   - GET    /line/{id}/ws          → WebSocket stream + input (ws.go)
//   - POST   /line/{id}/start       → start (or restart) the game
//   - POST   /line/{id}/select      → one tapped cell
//   - POST   /line/{id}/drag        → drag start / move / end
//   - POST   /line/{id}/{action}    → retry, skip, continue, pause, resume, restart
//   - DELETE /line/{id}             → close the session
//
// Mode "daily" seeds the session from the date, grade and difficulty so every
// player gets the same words and paths that day.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/daily"
	"github.com/robalobadob/linewords/internal/game"
	"github.com/robalobadob/linewords/internal/words"
)

const (
	modeNormal = "normal"
	modeDaily  = "daily"
)

// mountLine registers all /line routes except the streams.
func (s *Server) mountLine(r chi.Router) {
	r.Post("/line/new", s.handleLineNew)
	r.Route("/line/{id}", func(r chi.Router) {
		r.Use(s.requireGame("line"))
		r.Get("/", s.handleLineSnapshot)
		r.Delete("/", s.handleLineClose)
		r.Post("/select", s.handleLineSelect)
		r.Post("/drag", s.handleLineDrag)
		r.Post("/{action}", s.handleLineAction)
	})
}

// newLineReq/Res payloads for POST /line/new.
type newLineReq struct {
	Grade      int    `json:"grade"`
	Difficulty string `json:"difficulty"` // easy | medium | hard (default medium)
	Mode       string `json:"mode"`       // normal | daily
}
type newLineRes struct {
	GameID     string          `json:"gameId"`
	Token      string          `json:"token"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	Mode       string          `json:"mode"`
	Date       string          `json:"date,omitempty"`
	Featured   *words.Word     `json:"featured,omitempty"` // daily word of the day
	Difficulty game.Difficulty `json:"difficulty"`
	Rows       int             `json:"rows"`
	Cols       int             `json:"cols"`
}

// handleLineNew creates a session. It is started by POST /line/{id}/start once
// the client has subscribed to its events.
func (s *Server) handleLineNew(w http.ResponseWriter, r *http.Request) {
	var req newLineReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
			return
		}
	}
	diff, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		http.Error(w, `{"error":"bad_difficulty"}`, http.StatusBadRequest)
		return
	}
	if req.Grade <= 0 {
		req.Grade = 1
	}
	if req.Mode == "" {
		req.Mode = modeNormal
	}

	id := uuid.NewString()
	pres := newEventPresenter(s.events, id)
	opts := game.Options{
		ID:         id,
		Grade:      req.Grade,
		Difficulty: diff,
		Rows:       s.cfg.GridRows,
		Cols:       s.cfg.GridCols,
		TotalWords: s.cfg.TotalWords,
		Clock:      s.clock,
	}
	lg := &lineGame{pres: pres, mode: req.Mode}
	switch req.Mode {
	case modeNormal:
	case modeDaily:
		now := s.clock.Now()
		lg.date = daily.DateKey(now)
		opts.Rand = daily.Rand(now, s.cfg.DailySalt, req.Grade, string(diff))
		if list := s.words.ForGrade(req.Grade); len(list) > 0 {
			w := list[daily.Index(now, s.cfg.DailySalt, len(list))]
			lg.featured = &w
		}
	default:
		http.Error(w, `{"error":"bad_mode"}`, http.StatusBadRequest)
		return
	}

	sess, err := game.New(s.words, pres, opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	lg.sess = sess
	if err := s.lines.Save(r.Context(), id, lg); err != nil {
		log.Error().Err(err).Msg("save line game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	tok, exp, err := s.tokens.Sign(id, "line")
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}

	log.Info().Str("gameId", id).Str("mode", lg.mode).Str("date", lg.date).Msg("line game created")
	g := sess.Grid()
	_ = json.NewEncoder(w).Encode(newLineRes{
		GameID: id, Token: tok, ExpiresAt: exp, Mode: req.Mode, Date: lg.date, Featured: lg.featured,
		Difficulty: diff, Rows: g.Rows, Cols: g.Cols,
	})
}

// lineFromReq loads the session named by {id}.
func (s *Server) lineFromReq(w http.ResponseWriter, r *http.Request) (*lineGame, bool) {
	lg, err := s.lines.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return lg, true
}

func (s *Server) handleLineSnapshot(w http.ResponseWriter, r *http.Request) {
	lg, ok := s.lineFromReq(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(lg.sess.Snapshot())
}

func (s *Server) handleLineClose(w http.ResponseWriter, r *http.Request) {
	if err := s.lines.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleLineEvents streams the session's events; the first event is a full
// snapshot so late subscribers can draw the board.
func (s *Server) handleLineEvents(w http.ResponseWriter, r *http.Request) {
	lg, ok := s.lineFromReq(w, r)
	if !ok {
		return
	}
	s.events.ServeSSE(w, r, lg.sess.ID(), func(c *client) {
		s.events.Send(c, encodeEvent("snapshot", lg.sess.Snapshot()))
	})
}

// ------------------------------- input -------------------------------------

type selectReq struct {
	Index *int `json:"index"`
}
type inputRes struct {
	Outcome game.Outcome `json:"outcome"`
	Phase   game.Phase   `json:"phase"`
}

func (s *Server) handleLineSelect(w http.ResponseWriter, r *http.Request) {
	lg, ok := s.lineFromReq(w, r)
	if !ok {
		return
	}
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	out, err := lg.sess.Select(*req.Index)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(inputRes{Outcome: out, Phase: lg.sess.Phase()})
}

// dragReq carries one drag action. Moves may batch several crossed cells.
type dragReq struct {
	Action  string `json:"action"` // start | move | end
	Indices []int  `json:"indices"`
}
type dragRes struct {
	Outcomes []game.Outcome `json:"outcomes"`
	Phase    game.Phase     `json:"phase"`
}

func (s *Server) handleLineDrag(w http.ResponseWriter, r *http.Request) {
	lg, ok := s.lineFromReq(w, r)
	if !ok {
		return
	}
	var req dragReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	outs, err := applyDrag(lg.sess, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(dragRes{Outcomes: outs, Phase: lg.sess.Phase()})
}

var errBadDrag = errors.New("bad drag action")

// applyDrag feeds a drag action to the session.
func applyDrag(sess *game.Session, req dragReq) ([]game.Outcome, error) {
	outs := []game.Outcome{}
	switch req.Action {
	case "start":
		if len(req.Indices) == 0 {
			return nil, errBadDrag
		}
		out, err := sess.DragStart(req.Indices[0])
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
		req.Indices = req.Indices[1:]
		fallthrough
	case "move":
		for _, i := range req.Indices {
			out, err := sess.DragMove(i)
			if err != nil {
				return nil, err
			}
			outs = append(outs, out)
		}
	case "end":
		sess.DragEnd()
	default:
		return nil, errBadDrag
	}
	return outs, nil
}

// handleLineAction runs one of the button actions.
func (s *Server) handleLineAction(w http.ResponseWriter, r *http.Request) {
	lg, ok := s.lineFromReq(w, r)
	if !ok {
		return
	}
	action := chi.URLParam(r, "action")
	if err := runAction(lg.sess, action); err != nil {
		if errors.Is(err, errUnknownAction) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
			return
		}
		writeErr(w, err)
		return
	}
	log.Debug().Str("gameId", lg.sess.ID()).Str("action", action).
		Int("subscribers", s.events.ClientCount(lg.sess.ID())).Msg("line action")
	_ = json.NewEncoder(w).Encode(lg.sess.Snapshot())
}

var errUnknownAction = errors.New("unknown action")

func runAction(sess *game.Session, action string) error {
	switch action {
	case "start", "restart":
		return sess.Start()
	case "retry":
		return sess.Retry()
	case "skip":
		return sess.Skip()
	case "continue":
		return sess.Continue()
	case "pause":
		return sess.Pause()
	case "resume":
		return sess.Resume()
	}
	return errUnknownAction
}
