package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"
)

func TestCanvasPlaceMoveRemove(t *testing.T) {
	c := NewCanvas()
	a := c.Place(tetris.Coord{X: 1, Y: 2}, "red")
	b := c.Place(tetris.Coord{X: 3, Y: 4}, "blue")
	assert.NotEqual(t, a, b)
	assert.NotZero(t, a)
	assert.Equal(t, 2, c.Len())

	c.Move(a, tetris.Coord{X: 0, Y: 1})
	got, ok := c.Block(a)
	require.True(t, ok)
	assert.Equal(t, Block{Handle: a, X: 1, Y: 3, Color: "red"}, got)

	c.Remove(b)
	_, ok = c.Block(b)
	assert.False(t, ok)
	assert.Equal(t, []Block{{Handle: a, X: 1, Y: 3, Color: "red"}}, c.Blocks())

	// 解放済みのハンドルへの操作は無視される
	c.Move(b, tetris.Coord{X: 1})
	c.Remove(b)
	assert.Equal(t, 1, c.Len())
}

func TestCanvasFollowsActivePiece(t *testing.T) {
	c := NewCanvas()
	g := tetris.NewGrid(10, 20)
	p := tetris.NewActivePiece(tetris.KindT, c, tetris.Coord{X: 4, Y: 0})

	require.True(t, p.Move(g, tetris.Down))
	require.True(t, p.Rotate(g, true))

	blocks := c.Blocks()
	require.Len(t, blocks, 4)
	for i, coord := range p.Coords() {
		assert.Equal(t, coord, tetris.Coord{X: blocks[i].X, Y: blocks[i].Y})
		assert.Equal(t, tetris.Color("yellow"), blocks[i].Color)
	}

	p.Release()
	assert.Zero(t, c.Len())
}
