package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

// ErrSessionNotFound は指定されたゲームが存在しない場合に返されます。
var ErrSessionNotFound = errors.New("game session not found")

// SessionManager はゲームセッションとWebSocketクライアント接続の全体を管理します。
// アプリケーション内でシングルトンとして動作することが想定されます。
type SessionManager struct {
	cfg       game.Config
	recorder  ResultRecorder
	newSource func() game.PieceSource

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerOption は SessionManager のオプションです。
type ManagerOption func(*SessionManager)

// WithPieceSourceFactory はセッションごとのピース選択方法を差し替えます（テスト用）。
func WithPieceSourceFactory(fn func() game.PieceSource) ManagerOption {
	return func(sm *SessionManager) { sm.newSource = fn }
}

// NewSessionManager は新しい SessionManager を作成します。
//
// Parameters:
//
//	cfg      : 全セッション共通のエンジン設定
//	recorder : ゲームオーバー時の結果の保存先 (nil の場合は保存しない)
func NewSessionManager(cfg game.Config, recorder ResultRecorder, opts ...ManagerOption) *SessionManager {
	sm := &SessionManager{
		cfg:      cfg,
		recorder: recorder,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// CreateSession は新しいゲームセッションを作成します。ゲームは READY 状態で、new_game で開始します。
func (sm *SessionManager) CreateSession(ownerID string) (*Session, error) {
	id := uuid.New().String()

	var source game.PieceSource
	if sm.newSource != nil {
		source = sm.newSource()
	}
	s, err := newSession(id, ownerID, sm.cfg, source, sm.recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	sm.mu.Lock()
	sm.sessions[id] = s
	sm.mu.Unlock()

	log.Printf("[SessionManager] Created new game session: %s for user %s", id, ownerID)
	return s, nil
}

// GetSession は指定されたIDのゲームセッションを取得します。
func (sm *SessionManager) GetSession(gameID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[gameID]
	return s, ok
}

// Snapshot はゲームの現在の状態を返します。
func (sm *SessionManager) Snapshot(ctx context.Context, gameID string) (game.Snapshot, error) {
	s, ok := sm.GetSession(gameID)
	if !ok {
		return game.Snapshot{}, ErrSessionNotFound
	}
	return s.Snapshot(ctx)
}

// HandleIntent は userID からの操作をゲームに送ります。所有者以外の操作は無視されます。
func (sm *SessionManager) HandleIntent(gameID, userID string, intent game.Intent) error {
	s, ok := sm.GetSession(gameID)
	if !ok {
		return ErrSessionNotFound
	}
	if userID != s.OwnerID {
		return nil
	}
	if !s.Handle(intent) {
		return ErrSessionNotFound
	}
	return nil
}

// RegisterClient はWebSocket接続をゲームに登録し、読み書きのゴルーチンを開始します。
//
// Parameters:
//
//	gameID : 接続先のゲームID
//	userID : クライアントのユーザーID
//	conn   : WebSocketコネクション
func (sm *SessionManager) RegisterClient(ctx context.Context, gameID, userID string, conn *websocket.Conn) error {
	s, ok := sm.GetSession(gameID)
	if !ok {
		return ErrSessionNotFound
	}

	client := newClient(gameID, userID, conn)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	if err := s.addClient(ctx, client); err != nil {
		return fmt.Errorf("failed to register client: %w", err)
	}
	go client.writePump()
	go sm.readPump(s, client)

	log.Printf("[SessionManager] Client %s registered for game %s (owner: %t)", userID, gameID, userID == s.OwnerID)
	return nil
}

// readPump はクライアントからのメッセージを読み込み、操作としてループに送ります。
func (sm *SessionManager) readPump(s *Session, client *Client) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SessionManager] Panic in readPump for user %s: %v", client.UserID, r)
		}
		log.Printf("[SessionManager] Client %s disconnecting from game %s", client.UserID, client.GameID)
		s.removeClient(client)
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[SessionManager] WebSocket unexpected close error for user %s: %v", client.UserID, err)
			}
			return
		}
		if len(message) == 0 {
			continue
		}

		var input InputMessage
		if err := json.Unmarshal(message, &input); err != nil {
			log.Printf("[SessionManager] Failed to unmarshal input message from %s: %v", client.UserID, err)
			sm.reject(client, "invalid message")
			continue
		}
		intent, ok := game.ParseIntent(input.Action)
		if !ok {
			sm.reject(client, fmt.Sprintf("unknown action %q", input.Action))
			continue
		}
		if client.UserID != s.OwnerID {
			// 観戦者の操作は無視する
			continue
		}
		if !s.Handle(intent) {
			return
		}
	}
}

func (sm *SessionManager) reject(client *Client, message string) {
	msg, err := json.Marshal(Event{Type: EventError, Message: message})
	if err == nil {
		client.SafeSend(msg)
	}
}

// EndSession はゲームセッションを終了し、クライアントを切断してマップから削除します。
func (sm *SessionManager) EndSession(gameID string) error {
	sm.mu.Lock()
	s, ok := sm.sessions[gameID]
	delete(sm.sessions, gameID)
	sm.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.close()
	log.Printf("[SessionManager] Game session %s ended.", gameID)
	return nil
}

// Len は管理中のセッション数を返します。
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupIdle はクライアントが居ない状態が idle 以上続いたセッションを終了し、終了した数を返します。
func (sm *SessionManager) CleanupIdle(idle time.Duration) int {
	now := time.Now()
	var expired []string
	sm.mu.RLock()
	for id, s := range sm.sessions {
		if since, ok := s.idleSince(); ok && now.Sub(since) >= idle {
			expired = append(expired, id)
		}
	}
	sm.mu.RUnlock()

	for _, id := range expired {
		sm.EndSession(id)
	}
	return len(expired)
}

// StartCleanup は interval ごとに放置されたセッションを片付けます。ctx がキャンセルされると停止します。
func (sm *SessionManager) StartCleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := sm.CleanupIdle(idle); n > 0 {
					log.Printf("[SessionManager] Cleaned up %d idle session(s)", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	log.Printf("[SessionManager] Idle session cleanup started (every %v, idle %v)", interval, idle)
}

// Shutdown は全セッションを終了します。
func (sm *SessionManager) Shutdown() {
	log.Printf("[SessionManager] シャットダウン開始...")
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*Session)
	sm.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	log.Printf("[SessionManager] シャットダウン完了")
}
