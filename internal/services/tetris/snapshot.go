package tetris

import "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"

// Cell はスナップショット中の1マスです。
type Cell struct {
	X     int          `json:"x"`
	Y     int          `json:"y"`
	Color tetris.Color `json:"color,omitempty"`
}

// Snapshot はエンジンの状態をJSONで返すための読み取り専用のコピーです。
type Snapshot struct {
	State   GameState `json:"state"`
	Score   int       `json:"score"`
	Level   int       `json:"level"`
	Lines   int       `json:"lines"`
	DelayMs int64     `json:"delay_ms"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Board   []Cell    `json:"board"`
	Active  []Cell    `json:"active,omitempty"`
	Piece   string    `json:"piece,omitempty"`
	Next    string    `json:"next,omitempty"`
}

// Snapshot は現在の状態のコピーを返します。着地済みブロックの色は保持していないため空です。
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		State:   e.state,
		Score:   e.score,
		Level:   e.level,
		Lines:   e.lines,
		DelayMs: e.delay.Milliseconds(),
		Width:   e.cfg.Width,
		Height:  e.cfg.Height,
		Board:   []Cell{},
	}
	for _, b := range e.grid.Cells() {
		s.Board = append(s.Board, Cell{X: b.Coord.X, Y: b.Coord.Y})
	}
	if e.active != nil {
		color := e.active.Kind().Shape().Color
		for _, c := range e.active.Coords() {
			s.Active = append(s.Active, Cell{X: c.X, Y: c.Y, Color: color})
		}
		s.Piece = e.active.Kind().String()
	}
	if e.previewPiece != nil {
		s.Next = e.nextKind.String()
	}
	return s
}
