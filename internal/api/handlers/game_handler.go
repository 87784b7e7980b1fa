package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/session"
	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

const (
	authTimeout = 10 * time.Second
	tokenTTL    = 24 * time.Hour
)

// GameHandler はゲーム関連のHTTPリクエスト（作成、状態取得、終了、WebSocket接続）を処理します。
type GameHandler struct {
	sessionManager *session.SessionManager
	auth           *middleware.Authenticator
	upgrader       websocket.Upgrader
}

// NewGameHandler は新しい GameHandler インスタンスを作成します。
//
// Parameters:
//
//	sm             : セッションマネージャー
//	auth           : WebSocketの認証メッセージの検証とゲスト用トークンの発行に使用
//	allowedOrigins : WebSocket接続を許可するOrigin ("*" で全て許可)
func NewGameHandler(sm *session.SessionManager, auth *middleware.Authenticator, allowedOrigins []string) *GameHandler {
	return &GameHandler{
		sessionManager: sm,
		auth:           auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		log.Printf("[GameHandler] Rejected websocket origin %q", origin)
		return false
	}
}

type createGameRequest struct {
	Start bool `json:"start"`
}

type createGameResponse struct {
	GameID string `json:"game_id"`
	UserID string `json:"user_id"`
	Token  string `json:"token,omitempty"`
}

// CreateGame は新しいゲームセッションを作成します。
// POST /api/games  body: {"start": true} (省略可)
// ゲストの場合は WebSocket の認証に使うトークンを返します。
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createGameRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディのパースに失敗しました")
			return
		}
	}

	s, err := h.sessionManager.CreateSession(userID)
	if err != nil {
		log.Printf("[GameHandler] Failed to create game for user %s: %v", userID, err)
		WriteErrorResponse(w, http.StatusInternalServerError, "ゲームの作成に失敗しました")
		return
	}
	if req.Start {
		s.Handle(game.IntentNewGame)
	}

	resp := createGameResponse{GameID: s.ID, UserID: userID}
	if token, err := h.auth.IssueToken(userID, tokenTTL); err == nil {
		resp.Token = token
	}
	WriteJSONResponse(w, http.StatusCreated, resp)
}

// GetGame はゲームの現在の状態を返します。
// GET /api/games/{gameID}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	snap, err := h.sessionManager.Snapshot(r.Context(), gameID)
	if errors.Is(err, session.ErrSessionNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたゲームは見つかりませんでした")
		return
	}
	if err != nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	WriteJSONResponse(w, http.StatusOK, snap)
}

// EndGame はゲームを終了します。所有者のみ実行できます。
// DELETE /api/games/{gameID}
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	userID, _ := ExtractUserIDFromContext(r)

	s, ok := h.sessionManager.GetSession(gameID)
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたゲームは見つかりませんでした")
		return
	}
	if s.OwnerID != userID {
		WriteErrorResponse(w, http.StatusForbidden, "ゲームの所有者ではありません")
		return
	}
	h.sessionManager.EndSession(gameID)
	w.WriteHeader(http.StatusNoContent)
}

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleWebSocketConnection はHTTP接続をWebSocketにアップグレードし、最初の認証メッセージ
// {"type":"auth","token":"..."} を検証した後、接続をセッションマネージャーに引き渡します。
// GET /api/games/{gameID}/ws
func (h *GameHandler) HandleWebSocketConnection(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	if _, ok := h.sessionManager.GetSession(gameID); !ok {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたゲームは見つかりませんでした")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GameHandler] Failed to upgrade to websocket for game %s: %v", gameID, err)
		return
	}

	userID, err := h.authenticate(conn)
	if err != nil {
		log.Printf("[GameHandler] WebSocket auth failed for game %s: %v", gameID, err)
		conn.WriteJSON(session.Event{Type: session.EventError, Message: err.Error()})
		conn.Close()
		return
	}
	conn.WriteJSON(map[string]string{"type": "auth_success", "user_id": userID})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.sessionManager.RegisterClient(ctx, gameID, userID, conn); err != nil {
		log.Printf("[GameHandler] Failed to register client %s to game %s: %v", userID, gameID, err)
		conn.Close()
	}
}

func (h *GameHandler) authenticate(conn *websocket.Conn) (string, error) {
	conn.SetReadDeadline(time.Now().Add(authTimeout))
	defer conn.SetReadDeadline(time.Time{})

	var msg authMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return "", err
	}
	if msg.Type != "auth" {
		return "", errors.New("expected auth message")
	}
	return h.auth.ParseToken(msg.Token)
}
