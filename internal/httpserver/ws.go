// internal/httpserver/ws.go
//
// WebSocket transport for the line game.
// Outbound: the same JSON events as the SSE stream, starting with a snapshot.
// Inbound: input messages, one JSON object per frame:
//
//	{"type":"select","index":12}
//	{"type":"dragStart","index":12} {"type":"dragMove","index":13} {"type":"dragEnd"}
//	{"type":"retry"} {"type":"skip"} {"type":"continue"} ...
//
// Each input is answered on the same socket with an "outcome" or "error"
// event. Writes happen on a single goroutine that drains the client channel.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/game"
)

const (
	wsWriteWait = 10 * time.Second
	wsMaxFrame  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Access is controlled by the game token, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsInput is one inbound message.
type wsInput struct {
	Type  string `json:"type"`
	Index *int   `json:"index,omitempty"`
}

type wsOutcome struct {
	Input   string       `json:"input"`
	Outcome game.Outcome `json:"outcome,omitempty"`
	Phase   game.Phase   `json:"phase"`
}

func (s *Server) handleLineWS(w http.ResponseWriter, r *http.Request) {
	lg, ok := s.lineFromReq(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", lg.sess.ID()).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	c := s.events.Register(lg.sess.ID())
	done := make(chan struct{})
	go wsWriter(conn, c, done)
	defer func() {
		s.events.Unregister(c)
		<-done
	}()

	s.events.Send(c, encodeEvent("snapshot", lg.sess.Snapshot()))
	conn.SetReadLimit(wsMaxFrame)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("gameId", lg.sess.ID()).Msg("websocket read")
			}
			return
		}
		if !s.lines.Touch(lg.sess.ID()) {
			// evicted or closed while connected
			return
		}
		var in wsInput
		if err := json.Unmarshal(data, &in); err != nil {
			s.events.Send(c, encodeEvent("error", map[string]string{"error": "bad_json"}))
			continue
		}
		out, err := handleWSInput(lg.sess, in)
		if err != nil {
			s.events.Send(c, encodeEvent("error", map[string]string{"input": in.Type, "error": wsErrCode(err)}))
			continue
		}
		s.events.Send(c, encodeEvent("outcome", wsOutcome{Input: in.Type, Outcome: out, Phase: lg.sess.Phase()}))
	}
}

// wsWriter drains the client channel onto the socket and pings on idle.
func wsWriter(conn *websocket.Conn, c *client, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				// unblock the reader so the handler can unregister
				_ = conn.Close()
				drain(c.ch)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				_ = conn.Close()
				drain(c.ch)
				return
			}
		}
	}
}

// drain consumes ch until it is closed.
func drain(ch <-chan string) {
	for range ch {
	}
}

var errNeedIndex = errors.New("index required")

func handleWSInput(sess *game.Session, in wsInput) (game.Outcome, error) {
	idx := func() (int, error) {
		if in.Index == nil {
			return 0, errNeedIndex
		}
		return *in.Index, nil
	}
	switch in.Type {
	case "select", "dragStart", "dragMove":
		i, err := idx()
		if err != nil {
			return "", err
		}
		switch in.Type {
		case "select":
			return sess.Select(i)
		case "dragStart":
			return sess.DragStart(i)
		default:
			return sess.DragMove(i)
		}
	case "dragEnd":
		sess.DragEnd()
		return "", nil
	}
	return "", runAction(sess, in.Type)
}

func wsErrCode(err error) string {
	switch {
	case errors.Is(err, errNeedIndex):
		return "index_required"
	case errors.Is(err, errUnknownAction):
		return "unknown_input"
	case errors.Is(err, game.ErrBadCell):
		return "bad_cell"
	case errors.Is(err, game.ErrPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrClosed):
		return "closed"
	}
	return "server_error"
}
