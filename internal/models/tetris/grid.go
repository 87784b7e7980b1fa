package tetris

import (
	"errors"
	"strings"

	"github.com/kamstrup/intmap"
)

// ErrInvalidShift は ShiftRowDown に直下以外の行が指定された場合に返されます。
var ErrInvalidShift = errors.New("shift target must be the row directly below the source row")

// Grid は着地済み（ロック済み）ブロックの占有状況を表す疎なマップです。
// キーは y*width+x で、ボード内 (0 <= x < width, 0 <= y < height) のセルのみを保持します。
// ボードより上の行（スポーン時のはみ出し部分）は決して格納されません。
type Grid struct {
	width  int
	height int
	landed *intmap.Map[int, BlockHandle]
}

// NewGrid は width x height の空のグリッドを作成します。
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		landed: intmap.New[int, BlockHandle](width * height),
	}
}

// Width はボードの幅（セル数）を返します。
func (g *Grid) Width() int { return g.width }

// Height はボードの高さ（セル数）を返します。
func (g *Grid) Height() int { return g.height }

func (g *Grid) inBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

func (g *Grid) key(c Coord) int {
	return c.Y*g.width + c.X
}

// Occupied はセル c がボード内にあり、着地済みブロックで埋まっていれば true を返します。
func (g *Grid) Occupied(c Coord) bool {
	return g.inBounds(c) && g.landed.Has(g.key(c))
}

// IsLegal はセル c にブロックを置けるかどうかを判定します。
// 左右の壁の外、床より下、または着地済みブロックがある場合は false です。
// 上方向の境界は無く、ボードより上のセルは常に合法です。
func (g *Grid) IsLegal(c Coord) bool {
	if c.X < 0 || c.X >= g.width || c.Y >= g.height {
		return false
	}
	return !g.Occupied(c)
}

// Handle はセル c に格納されているハンドルを返します。
func (g *Grid) Handle(c Coord) (BlockHandle, bool) {
	if !g.inBounds(c) {
		return 0, false
	}
	return g.landed.Get(g.key(c))
}

// Merge はブロックをグリッドに格納します。合法性の再検証は行いません（呼び出し側で検証済みであること）。
// ボード外のセル（スポーン時のはみ出しなど）は格納されず、そのハンドルが戻り値として返されます。
// 呼び出し側はそれらを描画面から削除する責任を持ちます。
func (g *Grid) Merge(blocks []Block) (overflow []BlockHandle) {
	for _, b := range blocks {
		if !g.inBounds(b.Coord) {
			overflow = append(overflow, b.Handle)
			continue
		}
		g.landed.Put(g.key(b.Coord), b.Handle)
	}
	return overflow
}

// RemoveRow は行 y の全ブロックを取り除き、そのハンドルを左から順に返します。
func (g *Grid) RemoveRow(y int) []BlockHandle {
	var handles []BlockHandle
	for x := 0; x < g.width; x++ {
		c := Coord{X: x, Y: y}
		if h, ok := g.Handle(c); ok {
			g.landed.Del(g.key(c))
			handles = append(handles, h)
		}
	}
	return handles
}

// ShiftRowDown は行 from の全ブロックを行 to へ移します。to は from+1 でなければなりません。
// 移動したブロックのハンドルを返します。
func (g *Grid) ShiftRowDown(from, to int) ([]BlockHandle, error) {
	if to != from+1 || to >= g.height || from < 0 {
		return nil, ErrInvalidShift
	}
	return g.shiftDown(from), nil
}

func (g *Grid) shiftDown(from int) []BlockHandle {
	var moved []BlockHandle
	for x := 0; x < g.width; x++ {
		src := Coord{X: x, Y: from}
		h, ok := g.Handle(src)
		if !ok {
			continue
		}
		g.landed.Del(g.key(src))
		g.landed.Put(g.key(src.Add(Down.Vector())), h)
		moved = append(moved, h)
	}
	return moved
}

// RowFull は行 y が全ての列で埋まっていれば true を返します。
func (g *Grid) RowFull(y int) bool {
	for x := 0; x < g.width; x++ {
		if !g.Occupied(Coord{X: x, Y: y}) {
			return false
		}
	}
	return true
}

// RowEmpty は行 y にブロックが1つも無ければ true を返します。
func (g *Grid) RowEmpty(y int) bool {
	for x := 0; x < g.width; x++ {
		if g.Occupied(Coord{X: x, Y: y}) {
			return false
		}
	}
	return true
}

// Len は着地済みブロックの数を返します。
func (g *Grid) Len() int {
	return g.landed.Len()
}

// Cells は着地済みブロックを上の行から順に（行内は左から）返します。
func (g *Grid) Cells() []Block {
	cells := make([]Block, 0, g.landed.Len())
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Coord{X: x, Y: y}
			if h, ok := g.Handle(c); ok {
				cells = append(cells, Block{Handle: h, Coord: c})
			}
		}
	}
	return cells
}

// Clear は全ブロックを取り除き、そのハンドルを返します。
func (g *Grid) Clear() []BlockHandle {
	cells := g.Cells()
	handles := make([]BlockHandle, 0, len(cells))
	for _, b := range cells {
		handles = append(handles, b.Handle)
	}
	g.landed.Clear()
	return handles
}

// String はボードを 'X'（埋まっている）と '.'（空き）で表したダンプを返します。デバッグ用です。
func (g *Grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.Occupied(Coord{X: x, Y: y}) {
				sb.WriteByte('X')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
