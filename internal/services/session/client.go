package session

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 300 * time.Second
	pingPeriod     = 60 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 512
)

// Client はWebSocket接続を持つ単一のクライアントを表します。
type Client struct {
	UserID string          // このクライアントに紐づくユーザーのID
	GameID string          // 接続先のゲームID
	Conn   *websocket.Conn // クライアントとの実際のWebSocketコネクション
	Send   chan []byte     // クライアントへメッセージを送信するためのバッファ付きチャネル
	closed bool
	mu     sync.Mutex
}

func newClient(gameID, userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		GameID: gameID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// SafeSend は安全にチャネルにメッセージを送信します（closedチェック付き）。
// チャネルがフルの場合はメッセージを捨てて false を返します。
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// SafeClose は安全にチャネルを閉じます。
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// writePump は Send チャネルのメッセージをWebSocketコネクションに書き込みます。
// クライアントごとにこのゴルーチンが動作します。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if r := recover(); r != nil {
			log.Printf("[Client] Panic in writePump for user %s: %v", c.UserID, r)
		}
		c.Conn.Close()
	}()

	consecutiveErrors := 0
	const maxConsecutiveErrors = 3

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// セッションがチャネルを閉じた
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				consecutiveErrors++
				log.Printf("[Client] Error writing message for user %s (attempt %d/%d): %v", c.UserID, consecutiveErrors, maxConsecutiveErrors, err)
				if consecutiveErrors >= maxConsecutiveErrors {
					return
				}
				continue
			}
			consecutiveErrors = 0

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[Client] Error sending ping for user %s: %v", c.UserID, err)
				return
			}
		}
	}
}
