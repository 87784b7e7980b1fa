package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineScore(t *testing.T) {
	assert.Equal(t, 0, LineScore(0))
	assert.Equal(t, 100, LineScore(1))
	assert.Equal(t, 400, LineScore(2))
	assert.Equal(t, 900, LineScore(3))
	assert.Equal(t, 1600, LineScore(4))
}

func TestClearLinesScoresQuadratically(t *testing.T) {
	for n := 1; n <= 4; n++ {
		g := NewGrid(10, 20)
		s := newFakeSurface()
		var merged []Block
		for i := 0; i < n; i++ {
			merged = append(merged, fillRow(g, s, 19-i)...)
		}

		score, rows := ClearLines(g, s, merged)
		assert.Equal(t, n, rows)
		assert.Equal(t, 100*n*n, score)
		assert.Equal(t, 0, g.Len())
		assert.Empty(t, s.blocks)
	}
}

func TestClearLinesShiftsRowsAbove(t *testing.T) {
	g := NewGrid(5, 6)
	s := newFakeSurface()
	fillRow(g, s, 2, 0, 1, 2)    // 行2: x=3,4
	fillRow(g, s, 3, 4)          // 行3: x=0..3
	fillRow(g, s, 4, 1, 2, 3, 4) // 行4: x=0
	merged := fillRow(g, s, 5)   // 行5: 全て埋まる
	before := g.Len()

	score, rows := ClearLines(g, s, merged)
	assert.Equal(t, 1, rows)
	assert.Equal(t, 100, score)
	assert.Equal(t, before-5, g.Len(), "blocks above the cleared row are preserved")

	assert.Equal(t, "....."+"\n"+
		"....."+"\n"+
		"....."+"\n"+
		"...XX"+"\n"+
		"XXXX."+"\n"+
		"X...."+"\n", g.String())

	// 描画面のハンドルもグリッドと一致している
	for _, b := range g.Cells() {
		assert.Equal(t, b.Coord, s.blocks[b.Handle])
	}
	assert.Len(t, s.blocks, g.Len())
}

func TestClearLinesNonContiguousRows(t *testing.T) {
	g := NewGrid(4, 5)
	s := newFakeSurface()
	fillRow(g, s, 1, 0, 1, 2)     // 行1: x=3
	a := fillRow(g, s, 2)         // 行2: 満杯
	fillRow(g, s, 3, 0)           // 行3: x=1..3
	b := fillRow(g, s, 4)         // 行4: 満杯

	score, rows := ClearLines(g, s, append(a, b...))
	assert.Equal(t, 2, rows)
	assert.Equal(t, 400, score)
	assert.Equal(t, "....\n....\n....\n...X\n.XXX\n", g.String())
	for _, c := range g.Cells() {
		assert.Equal(t, c.Coord, s.blocks[c.Handle])
	}
}

func TestClearLinesClearsTopRow(t *testing.T) {
	g := NewGrid(3, 2)
	s := newFakeSurface()
	fillRow(g, s, 0)
	merged := fillRow(g, s, 1, 2)

	_, rows := ClearLines(g, s, merged)
	assert.Equal(t, 0, rows, "row 1 is incomplete")

	merged = fillRow(g, s, 1, 0, 1)
	score, rows := ClearLines(g, s, merged)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 400, score)
	assert.Equal(t, 0, g.Len())
}

func TestClearLinesNoFullRow(t *testing.T) {
	g := NewGrid(10, 20)
	s := newFakeSurface()
	merged := fillRow(g, s, 19, 5)

	score, rows := ClearLines(g, s, merged)
	assert.Zero(t, score)
	assert.Zero(t, rows)
	assert.Equal(t, 9, g.Len())
	assert.Zero(t, s.moves)
}
