package connectionhub

import (
	"grc-backend/db"
	notificationstore "grc-backend/lib/notification/store"
	"grc-backend/models"
	wsmodels "grc-backend/models/ws"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	AddClient(orgID, userID string, role models.UserRole, conn *websocket.Conn)
	// DeleteClient removes the session only while conn still owns it, a reconnect replaces it
	DeleteClient(userID string, conn *websocket.Conn)
	// SendMessage returns the number of sessions the message was queued for
	SendMessage(msg wsmodels.ServerMessage) int
	CloseAll()
	IsConnected(userID string) bool
}

var Instance Provider

func Init() {
	Instance = NewInstance(notificationstore.NewInstance(db.DB))
}

func NewInstance(store notificationstore.Provider) Provider {
	return &impl{
		clients: map[string]clientSession{},
		store:   store,
	}
}

type impl struct {
	mu      sync.RWMutex
	clients map[string]clientSession // map[userID]
	store   notificationstore.Provider
}

func (i *impl) DeleteClient(userID string, conn *websocket.Conn) {
	i.deleteSession(userID, conn)
}

func (i *impl) deleteSession(userID string, conn wsConn) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[userID]
	if !ok || sess.conn != conn {
		return
	}
	delete(i.clients, userID)
	sess.stop()
	close(sess.sendCh)
}

func (i *impl) AddClient(orgID, userID string, role models.UserRole, conn *websocket.Conn) {
	i.addSession(orgID, userID, role, conn)
}

func (i *impl) addSession(orgID, userID string, role models.UserRole, conn wsConn) {
	i.mu.Lock()
	if oldSess, ok := i.clients[userID]; ok {
		oldSess.stop()
	}
	i.clients[userID] = newSession(orgID, string(role), conn)
	i.mu.Unlock()
	go i.sendDelayedMessages(orgID, userID)
}

func (i *impl) SendMessage(msg wsmodels.ServerMessage) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if msg.ToUserID != "" {
		sess, ok := i.clients[msg.ToUserID]
		if ok && sess.orgID == msg.ToOrgID && sess.enqueue(msg) {
			return 1
		}
		return 0
	}
	sent := 0
	for _, sess := range i.clients {
		if sess.orgID != msg.ToOrgID || sess.role != msg.ToRole {
			continue
		}
		if sess.enqueue(msg) {
			sent++
		}
	}
	return sent
}

// CloseAll sends a close frame to every session, used on shutdown
func (i *impl) CloseAll() {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, sess := range i.clients {
		sess.stop()
	}
}

func (i *impl) IsConnected(userID string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.clients[userID]
	return ok
}

// sendDelayedMessages pushes direct notifications stored while the user was offline
func (i *impl) sendDelayedMessages(orgID, userID string) {
	if i.store == nil {
		return
	}
	logger := log.
		WithField("org_id", orgID).
		WithField("user_id", userID)
	list, err := i.store.ListUndelivered(orgID, userID)
	if err != nil {
		logger.WithError(err).Error("error getting undelivered notifications")
		return
	}
	sentIDs := []string{}
	for _, item := range list {
		msg := wsmodels.ServerMessage{
			ToOrgID:  orgID,
			ToUserID: userID,
			ID:       item.ID,
			Time:     item.CreatedAt.UTC().Format(time.RFC3339),
			Code:     string(item.Code),
			Msg:      item.Msg,
		}
		if i.SendMessage(msg) > 0 {
			sentIDs = append(sentIDs, item.ID)
		}
	}
	if err = i.store.MarkDelivered(sentIDs); err != nil {
		logger.WithError(err).Error("error marking notifications delivered")
	}
}
