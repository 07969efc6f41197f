package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"mechmania/server/internal/game"
)

const writeWait = 5 * time.Second

// session is one open websocket for one player. Writes are serialised; the
// read loop owns everything else.
type session struct {
	player  game.PlayerID
	conn    *websocket.Conn
	limiter *rate.Limiter

	writeMu sync.Mutex
	lastSeq uint64
	closed  bool
}

func newSession(player game.PlayerID, conn *websocket.Conn, limiter *rate.Limiter) *session {
	return &session{player: player, conn: conn, limiter: limiter}
}

func (s *session) WriteMessage(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// allow consumes one token from the session's command budget. A nil limiter
// never throttles.
func (s *session) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

// duplicate reports whether seq was already handled on this session.
func (s *session) duplicate(seq uint64) bool {
	return seq > 0 && seq <= s.lastSeq
}

func (s *session) storeSeq(seq uint64) {
	if seq > s.lastSeq {
		s.lastSeq = seq
	}
}

func (s *session) close(code int, text string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	message := websocket.FormatCloseMessage(code, text)
	s.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
	s.conn.Close()
}
