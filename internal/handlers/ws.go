package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

var (
	projectClients   = make(map[uint]map[*feedClient]bool)
	projectClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// feedWriter is the write half of a websocket connection.
type feedWriter interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// feedClient serializes writes to one subscriber. The websocket
// protocol allows only a single concurrent writer per connection, and
// both the broadcast path and the per-connection ping goroutine write.
type feedClient struct {
	mu   sync.Mutex
	conn feedWriter
}

func (c *feedClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *feedClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *feedClient) close() {
	c.conn.Close()
}

func removeClient(projectID uint, client *feedClient) {
	projectClientsMu.Lock()
	defer projectClientsMu.Unlock()

	if clients, exists := projectClients[projectID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(projectClients, projectID)
		}
	}
}

// BroadcastActivity pushes an activity event to every client watching
// the project feed. Called after a mutation commits, never inside the
// transaction.
func BroadcastActivity(projectID uint, event string) {
	projectClientsMu.RLock()
	clients, exists := projectClients[projectID]
	if !exists || len(clients) == 0 {
		projectClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*feedClient, 0, len(clients))
	for client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	projectClientsMu.RUnlock()

	for _, client := range clientsCopy {
		err := client.writeJSON(map[string]string{
			"type":       "activity",
			"event":      event,
			"project_id": strconv.FormatUint(uint64(projectID), 10),
		})

		if err != nil {
			logger.Warn().Err(err).Uint("project_id", projectID).Msg("dropping activity feed client")
			removeClient(projectID, client)
			client.close()
		}
	}
}

// announceActivity fans a committed mutation out to feed subscribers
// and, when the project opted in, its configured webhook. Delivery runs
// off the request goroutine so a slow endpoint cannot stall the
// response.
func announceActivity(ctx context.Context, projectID uint, event string) {
	BroadcastActivity(projectID, event)

	target, err := st.ActivityTarget(ctx, projectID)
	if err != nil {
		logger.Warn().Err(err).Uint("project_id", projectID).Msg("activity webhook lookup failed")
		return
	}
	if !target.ShouldNotify() {
		return
	}

	go func() {
		payload := services.BuildActivityPayload(event, target.Name)
		if err := services.SendWebhook(target.WebhookURL, payload); err != nil {
			logger.Warn().Err(err).Uint("project_id", projectID).Msg("activity webhook delivery failed")
		}
	}()
}

// ActivityFeed upgrades the connection and streams activity events for
// one project. The caller must hold at least read on the project.
func ActivityFeed(c *gin.Context) {
	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}

	if _, err := st.GetProject(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	client := &feedClient{conn: conn}

	projectClientsMu.Lock()
	if projectClients[projectID] == nil {
		projectClients[projectID] = make(map[*feedClient]bool)
	}
	projectClients[projectID][client] = true
	projectClientsMu.Unlock()

	defer func() {
		removeClient(projectID, client)
		client.close()

		logger.Debug().Uint("project_id", projectID).Msg("activity feed connection closed")
	}()

	err = client.writeJSON(map[string]string{
		"type":       "connected",
		"project_id": strconv.FormatUint(uint64(projectID), 10),
	})

	if err != nil {
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Uint("project_id", projectID).Msg("activity feed read error")
			}
			break
		}
	}
}
