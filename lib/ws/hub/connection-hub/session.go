package connectionhub

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

const sendBufferSize = 16

// wsConn the part of *websocket.Conn the session writes to
type wsConn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

type clientSession struct {
	conn   wsConn
	orgID  string
	role   string
	sendCh chan any
	stop   func()
}

func newSession(orgID, role string, conn wsConn) clientSession {
	ctx, cancelFn := context.WithCancel(context.Background())
	sess := clientSession{
		stop:   cancelFn,
		conn:   conn,
		orgID:  orgID,
		role:   role,
		sendCh: make(chan any, sendBufferSize),
	}
	go sess.startSend(ctx)
	return sess
}

func (s clientSession) startSend(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.close()
			return
		case msg, opened := <-s.sendCh:
			if !opened {
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				log.WithError(err).Error("error sending ws message")
			}
		}
	}
}

// enqueue never blocks, a full buffer drops the message
func (s clientSession) enqueue(msg any) bool {
	select {
	case s.sendCh <- msg:
		return true
	default:
		log.WithField("org_id", s.orgID).Warn("ws send buffer full, message dropped")
		return false
	}
}

func (s clientSession) close() {
	err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	if err != nil {
		log.WithError(err).Debug("cant close ws session")
	}
}
