// internal/httpserver/events.go
//
// Event fan-out for live line games.
// The Broadcaster keeps one buffered channel per connected client (SSE or
// WebSocket), grouped by game ID. eventPresenter is the game.Presenter the
// server hands to every session: each render call becomes a JSON event
// broadcast to the game's clients.
//
// Notes:
//   - Broadcast never blocks; a client whose buffer is full misses events and
//     can resynchronise from a snapshot.
//   - Presenter calls run under the session lock, hence the non-blocking send.

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/game"
	"github.com/robalobadob/linewords/internal/words"
)

const (
	clientBuffer = 64
	heartbeat    = 30 * time.Second
)

// client is a single event stream connection.
type client struct {
	ch     chan string
	gameID string
}

// Broadcaster manages stream clients grouped by game session.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*client]struct{})}
}

// Register adds a client for a game session and returns it.
func (b *Broadcaster) Register(gameID string) *client {
	c := &client{ch: make(chan string, clientBuffer), gameID: gameID}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a client and closes its channel.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.ch)
	}
	b.mu.Unlock()
}

// Broadcast sends a message to all clients of a game session.
func (b *Broadcaster) Broadcast(gameID, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.clients {
		if c.gameID == gameID {
			select {
			case c.ch <- data:
			default:
				// slow client
			}
		}
	}
}

// Send delivers a message to one registered client.
func (b *Broadcaster) Send(c *client, data string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.clients[c]; !ok {
		return false
	}
	select {
	case c.ch <- data:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of connected clients for a game.
func (b *Broadcaster) ClientCount(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for c := range b.clients {
		if c.gameID == gameID {
			n++
		}
	}
	return n
}

// ServeSSE streams a game's events until the request ends.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, gameID string, onConnect func(c *client)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming_unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	c := b.Register(gameID)
	defer b.Unregister(c)
	if onConnect != nil {
		onConnect(c)
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// ------------------------------- events ------------------------------------

// Event is the wire form of every message on a game stream.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type cellEvent struct {
	Index  int            `json:"index"`
	Letter string         `json:"letter"`
	State  game.CellState `json:"state"`
}

type lineEvent struct {
	From      int  `json:"from"`
	To        int  `json:"to"`
	Completed bool `json:"completed"`
}

type textEvent struct {
	Text string `json:"text"`
}

func encodeEvent(typ string, data any) string {
	b, err := json.Marshal(Event{Type: typ, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", typ).Msg("encode event")
		return `{"type":"error"}`
	}
	return string(b)
}

// eventPresenter renders a session as events on its game stream.
type eventPresenter struct {
	b      *Broadcaster
	gameID string
}

func newEventPresenter(b *Broadcaster, gameID string) *eventPresenter {
	return &eventPresenter{b: b, gameID: gameID}
}

func (p *eventPresenter) emit(typ string, data any) {
	p.b.Broadcast(p.gameID, encodeEvent(typ, data))
}

func (p *eventPresenter) Cell(i int, letter string, st game.CellState) {
	p.emit("cell", cellEvent{Index: i, Letter: letter, State: st})
}

func (p *eventPresenter) Line(from, to int, completed bool) {
	p.emit("line", lineEvent{From: from, To: to, Completed: completed})
}

func (p *eventPresenter) ClearLines(keepCompleted bool) {
	p.emit("clearLines", map[string]bool{"keepCompleted": keepCompleted})
}

func (p *eventPresenter) Status(st game.Status) { p.emit("status", st) }
func (p *eventPresenter) Hint(text string) { p.emit("hint", textEvent{Text: text}) }
func (p *eventPresenter) Prompt(kind game.Prompt) { p.emit("prompt", map[string]game.Prompt{"kind": kind}) }
func (p *eventPresenter) LearningCard(ws []words.Word) { p.emit("learningCard", ws) }
func (p *eventPresenter) Cue(c game.Cue) { p.emit("cue", map[string]game.Cue{"name": c}) }
func (p *eventPresenter) Speak(text string) { p.emit("speak", textEvent{Text: text}) }
func (p *eventPresenter) GameOver(sum game.Summary) { p.emit("gameOver", sum) }
