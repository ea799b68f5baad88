// internal/httpserver/routes_cards.go
//
// HTTP routes for the multiple-choice card game.
//   - POST /cards/new           → {gameId, token, question}
//   - GET  /cards/{id}          → current question + score
//   - POST /cards/{id}/answer   → {option} → result with nextInMs
//   - POST /cards/{id}/next     → next question
//   - POST /cards/{id}/restart  → score reset, fresh question
//
// The client waits nextInMs after an answer before calling /next.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/cards"
)

func (s *Server) mountCards(r chi.Router) {
	r.Post("/cards/new", s.handleCardsNew)
	r.Route("/cards/{id}", func(r chi.Router) {
		r.Use(s.requireGame("cards"))
		r.Get("/", s.handleCardsState)
		r.Post("/answer", s.handleCardsAnswer)
		r.Post("/next", s.handleCardsNext)
		r.Post("/restart", s.handleCardsRestart)
	})
}

type newCardsReq struct {
	Grade int `json:"grade"`
}
type newCardsRes struct {
	GameID    string         `json:"gameId"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Question  cards.Question `json:"question"`
}

func (s *Server) handleCardsNew(w http.ResponseWriter, r *http.Request) {
	var req newCardsReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
			return
		}
	}
	if req.Grade <= 0 {
		req.Grade = 1
	}
	g, err := cards.New(s.words, req.Grade, nil)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.cards.Save(r.Context(), g.ID(), g); err != nil {
		log.Error().Err(err).Msg("save card game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	tok, exp, err := s.tokens.Sign(g.ID(), "cards")
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(newCardsRes{GameID: g.ID(), Token: tok, ExpiresAt: exp, Question: g.Question()})
}

func (s *Server) cardsFromReq(w http.ResponseWriter, r *http.Request) (*cards.Game, bool) {
	g, err := s.cards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return g, true
}

type cardsStateRes struct {
	Question cards.Question `json:"question"`
	Stats    cards.Stats    `json:"stats"`
}

func (s *Server) handleCardsState(w http.ResponseWriter, r *http.Request) {
	g, ok := s.cardsFromReq(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(cardsStateRes{Question: g.Question(), Stats: g.Stats()})
}

type answerReq struct {
	Option *int `json:"option"`
}

func (s *Server) handleCardsAnswer(w http.ResponseWriter, r *http.Request) {
	g, ok := s.cardsFromReq(w, r)
	if !ok {
		return
	}
	var req answerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	res, err := g.Answer(*req.Option)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleCardsNext(w http.ResponseWriter, r *http.Request) {
	g, ok := s.cardsFromReq(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(cardsStateRes{Question: g.Next(), Stats: g.Stats()})
}

func (s *Server) handleCardsRestart(w http.ResponseWriter, r *http.Request) {
	g, ok := s.cardsFromReq(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(cardsStateRes{Question: g.Restart(), Stats: g.Stats()})
}
