// Package render はエンジンの描画面 (Surface) をメモリ上に保持する Canvas を提供します。
// デスクトップ版の描画や WebSocket の再同期は Canvas の内容を元に行います。
package render

import (
	"sort"

	"github.com/kamstrup/intmap"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"
)

// Block は Canvas 上に置かれた1つのブロックです。
type Block struct {
	Handle tetris.BlockHandle `json:"handle"`
	X      int                `json:"x"`
	Y      int                `json:"y"`
	Color  tetris.Color       `json:"color"`
}

// Canvas はハンドルからブロックへの対応表として描画面を実装します。
// ハンドルは1から順に払い出され、0は使われません。
type Canvas struct {
	next   tetris.BlockHandle
	blocks *intmap.Map[tetris.BlockHandle, Block]
}

// NewCanvas は空の Canvas を作成します。
func NewCanvas() *Canvas {
	return &Canvas{blocks: intmap.New[tetris.BlockHandle, Block](64)}
}

// Place はブロックを置き、新しいハンドルを返します。
func (c *Canvas) Place(at tetris.Coord, color tetris.Color) tetris.BlockHandle {
	c.next++
	c.blocks.Put(c.next, Block{Handle: c.next, X: at.X, Y: at.Y, Color: color})
	return c.next
}

// Move はハンドル h のブロックを delta だけ動かします。未知のハンドルは無視します。
func (c *Canvas) Move(h tetris.BlockHandle, delta tetris.Coord) {
	b, ok := c.blocks.Get(h)
	if !ok {
		return
	}
	b.X += delta.X
	b.Y += delta.Y
	c.blocks.Put(h, b)
}

// Remove はハンドル h のブロックを取り除きます。
func (c *Canvas) Remove(h tetris.BlockHandle) {
	c.blocks.Del(h)
}

// Block はハンドル h のブロックを返します。
func (c *Canvas) Block(h tetris.BlockHandle) (Block, bool) {
	return c.blocks.Get(h)
}

// Len は置かれているブロック数を返します。
func (c *Canvas) Len() int {
	return c.blocks.Len()
}

// Blocks は全ブロックをハンドル順（置かれた順）で返します。
func (c *Canvas) Blocks() []Block {
	out := make([]Block, 0, c.blocks.Len())
	c.blocks.ForEach(func(_ tetris.BlockHandle, b Block) bool {
		out = append(out, b)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
