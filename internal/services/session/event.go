package session

import (
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/render"
	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

// 描画面の名前です。
const (
	SurfaceBoard   = "board"
	SurfacePreview = "preview"
)

// イベントの種類です。
const (
	EventPlace  = "place"
	EventMove   = "move"
	EventRemove = "remove"
	EventScore  = "score"
	EventLevel  = "level"
	EventState  = "state"
	EventSync   = "sync"
	EventError  = "error"
)

// Event はサーバーからクライアントへ送るメッセージです。
type Event struct {
	Type     string             `json:"type"`
	Surface  string             `json:"surface,omitempty"`
	Handle   tetris.BlockHandle `json:"handle,omitempty"`
	Block    *render.Block      `json:"block,omitempty"`
	Delta    *tetris.Coord      `json:"delta,omitempty"`
	Value    any                `json:"value,omitempty"`
	Snapshot *game.Snapshot     `json:"snapshot,omitempty"`
	Board    []render.Block     `json:"board,omitempty"`
	Preview  []render.Block     `json:"preview,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// InputMessage はクライアントから送られる操作です。例: {"action":"move_left"}
type InputMessage struct {
	Action string `json:"action"`
}

// remoteSurface は Canvas に描画しつつ、変更をイベントとして送出する描画面です。
type remoteSurface struct {
	name   string
	canvas *render.Canvas
	emit   func(Event)
}

func newRemoteSurface(name string, emit func(Event)) *remoteSurface {
	return &remoteSurface{name: name, canvas: render.NewCanvas(), emit: emit}
}

func (s *remoteSurface) Place(c tetris.Coord, color tetris.Color) tetris.BlockHandle {
	h := s.canvas.Place(c, color)
	block, _ := s.canvas.Block(h)
	s.emit(Event{Type: EventPlace, Surface: s.name, Handle: h, Block: &block})
	return h
}

func (s *remoteSurface) Move(h tetris.BlockHandle, delta tetris.Coord) {
	s.canvas.Move(h, delta)
	s.emit(Event{Type: EventMove, Surface: s.name, Handle: h, Delta: &delta})
}

func (s *remoteSurface) Remove(h tetris.BlockHandle) {
	s.canvas.Remove(h)
	s.emit(Event{Type: EventRemove, Surface: s.name, Handle: h})
}
