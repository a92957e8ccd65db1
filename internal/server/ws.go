package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Client message types.
const (
	msgFlip  = "flip"
	msgReset = "reset"
)

// Server message types.
const (
	msgSnapshot = "snapshot"
	msgRejected = "rejected"
	msgError    = "error"
)

type clientMessage struct {
	Type       string `json:"type"`
	CardID     string `json:"card_id,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type serverMessage struct {
	Type     string         `json:"type"`
	Event    *game.Event    `json:"event,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	CardID   string         `json:"card_id,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func snapshotMessage(e *game.Engine, ev *game.Event) serverMessage {
	snap := e.Snapshot().Masked()
	return serverMessage{Type: msgSnapshot, Event: ev, Snapshot: &snap}
}

// handleWS streams masked snapshots for a session after every engine event
// and applies flip and reset messages from the client.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log := zerolog.Ctx(r.Context()).With().Str("session", sess.ID).Logger()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	detach := sess.attach()
	defer detach()

	out := make(chan serverMessage, sendBuffer)
	done := make(chan struct{})

	send := func(m serverMessage) {
		select {
		case out <- m:
		case <-done:
		default:
			log.Warn().Str("type", m.Type).Msg("websocket client too slow, message dropped")
		}
	}

	unsubscribe := sess.Engine.Subscribe(func(ev game.Event) {
		send(snapshotMessage(sess.Engine, &ev))
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump(conn, out, done, sess.Ended(), log)
	}()

	send(snapshotMessage(sess.Engine, nil))
	log.Debug().Msg("websocket connected")

	s.readPump(conn, sess, send, log)

	unsubscribe()
	close(done)
	<-writerDone
	log.Debug().Msg("websocket closed")
}

func (s *Server) readPump(conn *websocket.Conn, sess *Session, send func(serverMessage), log zerolog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		sess.touch(time.Now())
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
		sess.touch(time.Now())

		switch msg.Type {
		case msgFlip:
			if !sess.Engine.Flip(msg.CardID) {
				send(serverMessage{Type: msgRejected, CardID: msg.CardID})
			}
		case msgReset:
			d := sess.Engine.Difficulty()
			if msg.Difficulty != "" {
				parsed, err := deck.ParseDifficulty(msg.Difficulty)
				if err != nil {
					send(serverMessage{Type: msgError, Error: err.Error()})
					continue
				}
				d = parsed
			}
			sess.Engine.Reset(d)
		default:
			send(serverMessage{Type: msgError, Error: "unknown message type " + msg.Type})
		}
	}
}

// writePump owns writes to conn. It stops when the reader finishes, when a
// write fails or when the session ends; the last two close conn so the
// reader returns too.
func (s *Server) writePump(conn *websocket.Conn, out <-chan serverMessage, done, ended <-chan struct{}, log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case m := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				// Unblocks the reader.
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		case <-ended:
			log.Debug().Msg("session ended, closing websocket")
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"), time.Now().Add(writeWait))
			_ = conn.Close()
			return
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
