package notification

import (
	"innovation-portal/internal/errors"
	"innovation-portal/internal/middleware"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the route sits behind the bearer token check and CORS
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream upgrades to a websocket and forwards the user's redis channel.
// Clients only receive; anything they send is discarded.
func (h *Handler) Stream(c *gin.Context) {
	if !h.publisher.Enabled() {
		c.Error(errors.New(http.StatusServiceUnavailable, "Live notifications are unavailable", nil))
		return
	}
	userID := middleware.CurrentUserID(c)
	ctx := c.Request.Context()

	sub := h.publisher.Subscribe(ctx, userID)
	defer sub.Close()
	// wait for the subscription so nothing published after the upgrade is lost
	if _, err := sub.Receive(ctx); err != nil {
		c.Error(errors.New(http.StatusServiceUnavailable, "Live notifications are unavailable", err))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, sub.Channel(), done)
	log.Debug().Uint64("user_id", userID).Msg("notification stream closed")
}

// readPump keeps the read deadline fresh and signals when the peer leaves.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("notification stream read error")
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, messages <-chan *redis.Message, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-messages:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
