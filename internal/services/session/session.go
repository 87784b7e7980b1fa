package session

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

// ResultRecorder は終了したゲームの結果を保存します。
type ResultRecorder interface {
	RecordResult(ctx context.Context, userID string, score, level, lines int) error
}

// Session は1人のプレイヤーのゲームです。
// エンジンは専用の Loop 上で動作し、描画面とパネルの変化は接続中の全クライアントに送られます。
// 所有者以外のクライアントは観戦者として扱われ、操作は無視されます。
type Session struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time

	loop    *game.Loop
	engine  *game.Engine
	board   *remoteSurface
	preview *remoteSurface
	cancel  context.CancelFunc

	mu         sync.RWMutex
	clients    map[*Client]struct{}
	lastActive time.Time
	ended      bool
}

func newSession(id, ownerID string, cfg game.Config, source game.PieceSource, recorder ResultRecorder) (*Session, error) {
	s := &Session{
		ID:         id,
		OwnerID:    ownerID,
		CreatedAt:  time.Now(),
		loop:       game.NewLoop(256),
		clients:    make(map[*Client]struct{}),
		lastActive: time.Now(),
	}
	s.board = newRemoteSurface(SurfaceBoard, s.broadcast)
	s.preview = newRemoteSurface(SurfacePreview, s.broadcast)

	opts := []game.Option{
		game.WithPanel(s),
		game.WithGameOverHook(func(score, level, lines int) {
			log.Printf("[Session] Game %s over for user %s: score=%d level=%d lines=%d", s.ID, s.OwnerID, score, level, lines)
			if recorder != nil {
				go s.record(recorder, score, level, lines)
			}
		}),
	}
	if source != nil {
		opts = append(opts, game.WithPieceSource(source))
	}
	engine, err := game.NewEngine(cfg, s.board, s.preview, s.loop, opts...)
	if err != nil {
		return nil, err
	}
	s.engine = engine

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.loop.Run(ctx)
	return s, nil
}

func (s *Session) record(recorder ResultRecorder, score, level, lines int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := recorder.RecordResult(ctx, s.OwnerID, score, level, lines); err != nil {
		log.Printf("[Session] Failed to record result for game %s: %v", s.ID, err)
	}
}

// OnScoreChanged はスコアの変化をクライアントに通知します。
func (s *Session) OnScoreChanged(score int) {
	s.broadcast(Event{Type: EventScore, Value: score})
}

// OnLevelChanged はレベルの変化をクライアントに通知します。
func (s *Session) OnLevelChanged(level int) {
	s.broadcast(Event{Type: EventLevel, Value: level})
}

// OnStateChanged は状態の変化をクライアントに通知します。
func (s *Session) OnStateChanged(state game.GameState) {
	s.broadcast(Event{Type: EventState, Value: state})
}

// broadcast はイベントを全クライアントに送ります。ループ上から呼ばれます。
func (s *Session) broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) == 0 {
		return
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Session] Failed to marshal %s event: %v", ev.Type, err)
		return
	}
	for c := range s.clients {
		if !c.SafeSend(msg) {
			log.Printf("[Session] Dropped %s event for user %s (channel closed or full)", ev.Type, c.UserID)
		}
	}
}

// Handle は操作をループに送ります。セッションが終了している場合は false を返します。
func (s *Session) Handle(intent game.Intent) bool {
	s.touch()
	return s.loop.Post(func() { s.engine.Handle(intent) })
}

// Snapshot はループ上でエンジンの状態を読み取ります。
func (s *Session) Snapshot(ctx context.Context) (game.Snapshot, error) {
	var snap game.Snapshot
	err := s.loop.Call(ctx, func() { snap = s.engine.Snapshot() })
	return snap, err
}

// syncEvent は現在の描画面の内容をまとめた再同期イベントを作ります。ループ上から呼びます。
func (s *Session) syncEvent() Event {
	snap := s.engine.Snapshot()
	return Event{Type: EventSync, Snapshot: &snap, Board: s.board.canvas.Blocks(), Preview: s.preview.canvas.Blocks()}
}

// addClient はクライアントを登録し、最初に現在の状態を送ります。
// 登録と再同期は同じループ呼び出しの中で行うため、イベントの取りこぼしはありません。
func (s *Session) addClient(ctx context.Context, c *Client) error {
	return s.loop.Call(ctx, func() {
		msg, err := json.Marshal(s.syncEvent())
		if err == nil {
			c.SafeSend(msg)
		}
		s.mu.Lock()
		s.clients[c] = struct{}{}
		s.lastActive = time.Now()
		s.mu.Unlock()
	})
}

// removeClient はクライアントの登録を解除します。
// 所有者が切断した場合、プレイ中のゲームは一時停止します。
func (s *Session) removeClient(c *Client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.lastActive = time.Now()
	s.mu.Unlock()
	if !ok {
		return
	}
	c.SafeClose()

	if c.UserID == s.OwnerID && !s.hasOwner() {
		s.loop.Post(func() {
			if s.engine.State() == game.StatePlaying {
				log.Printf("[Session] Owner %s left game %s during play. Pausing.", c.UserID, s.ID)
				s.engine.Pause()
			}
		})
	}
}

func (s *Session) hasOwner() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if c.UserID == s.OwnerID {
			return true
		}
	}
	return false
}

// ClientCount は接続中のクライアント数を返します。
func (s *Session) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// idleSince はクライアントが居ない場合に最後に活動した時刻を返します。
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) > 0 {
		return time.Time{}, false
	}
	return s.lastActive, true
}

// close はゲームを破棄してループを止め、全クライアントを切断します。何度呼んでも安全です。
func (s *Session) close() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// 最後の状態変化 (READY) をクライアントに届けてから切断する
	if err := s.loop.Call(ctx, func() { s.engine.Quit() }); err != nil {
		log.Printf("[Session] Failed to quit game %s cleanly: %v", s.ID, err)
	}
	s.loop.Stop()
	s.cancel()

	s.mu.Lock()
	for c := range s.clients {
		c.SafeClose()
		delete(s.clients, c)
	}
	s.mu.Unlock()
}
