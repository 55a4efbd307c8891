package wsclient

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Conn subset of *websocket.Conn used by the client
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

type Settings struct {
	PingInterval time.Duration
	PongWait     time.Duration
}

func NewClient(userID string, conn Conn, settings Settings) *WsClient {
	if settings.PongWait <= settings.PingInterval {
		settings.PongWait = settings.PingInterval * 2
	}
	return &WsClient{
		conn:     conn,
		userID:   userID,
		settings: settings,
	}
}

// WsClient keeps a push-only session alive, inbound frames are dropped
type WsClient struct {
	conn     Conn
	userID   string
	settings Settings
}

var closeCodes []int

func init() {
	for i := websocket.CloseNormalClosure; i <= websocket.CloseTLSHandshake; i++ {
		closeCodes = append(closeCodes, i)
	}
}

// Dispatch blocks until the peer goes away or stops answering pings
func (c *WsClient) Dispatch() {
	logger := log.WithField("user_id", c.userID)
	if c.conn == nil {
		return
	}
	done := make(chan struct{})
	defer close(done)
	if c.settings.PingInterval > 0 {
		c.extendDeadline()
		c.conn.SetPongHandler(func(string) error {
			c.extendDeadline()
			return nil
		})
		go c.keepAlive(done)
	}
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, closeCodes...) {
				logger.WithError(err).Info("ws session ended")
			}
			return
		}
		c.extendDeadline()
		logger.WithField("size", len(data)).Debug("inbound ws message ignored")
	}
}

func (c *WsClient) extendDeadline() {
	if c.settings.PongWait <= 0 {
		return
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.settings.PongWait)); err != nil {
		log.WithField("user_id", c.userID).WithError(err).Debug("error setting ws read deadline")
	}
}

func (c *WsClient) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(c.settings.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if err != nil {
				// the read loop fails on the deadline and ends the session
				log.WithField("user_id", c.userID).WithError(err).Debug("ws ping failed")
				return
			}
		}
	}
}
