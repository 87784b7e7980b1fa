package ui

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"
	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

type fixedSource tetris.PieceKind

func (s fixedSource) Next() tetris.PieceKind { return tetris.PieceKind(s) }

func TestFires(t *testing.T) {
	tests := []struct {
		d      int
		repeat bool
		want   bool
	}{
		{0, true, false},
		{1, false, true},
		{2, false, false},
		{repeatDelay - 1, true, false},
		{repeatDelay, true, true},
		{repeatDelay + 1, true, false},
		{repeatDelay + repeatInterval, true, true},
		{repeatDelay + repeatInterval, false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fires(tt.d, tt.repeat), "d=%d repeat=%v", tt.d, tt.repeat)
	}
}

func TestIntentsFor(t *testing.T) {
	held := map[ebiten.Key]int{
		ebiten.KeyArrowLeft: 1,
		ebiten.KeyArrowDown: repeatDelay,
		ebiten.KeyP:         5,
		ebiten.KeyA:         1,
	}
	intents := intentsFor(func(k ebiten.Key) int { return held[k] })
	assert.Equal(t, []game.Intent{game.IntentMoveLeft, game.IntentSoftDrop, game.IntentRotateCW}, intents)

	assert.Empty(t, intentsFor(func(ebiten.Key) int { return 0 }))
}

func TestPanelLines(t *testing.T) {
	p := &Panel{}
	p.OnScoreChanged(1234)
	p.OnLevelChanged(3)
	p.OnStateChanged(game.StateGameOver)

	assert.Equal(t, []string{"SCORE", "0000001234", "LEVEL", "         3", "", "GAME OVER"}, p.Lines())
}

func TestGameDrivesEngine(t *testing.T) {
	g, err := NewGame(game.DefaultConfig(), 20, game.WithPieceSource(fixedSource(tetris.KindSquare)))
	require.NoError(t, err)

	require.NoError(t, g.apply(game.IntentNewGame))
	assert.Equal(t, game.StatePlaying, g.engine.State())
	assert.Equal(t, "PLAYING", g.panel.Lines()[5])
	assert.Equal(t, 4, g.preview.Len())
	assert.Equal(t, 4, g.board.Len())

	before := lowestY(g)
	g.scheduler.Advance(g.engine.Delay())
	assert.Equal(t, before+1, lowestY(g))

	require.NoError(t, g.apply(game.IntentHardDrop))
	assert.Equal(t, 8, g.board.Len())

	assert.ErrorIs(t, g.apply(game.IntentQuit), ebiten.Termination)
	assert.Equal(t, game.StateReady, g.engine.State())
	assert.Zero(t, g.board.Len())
	assert.Zero(t, g.preview.Len())
}

func TestLayout(t *testing.T) {
	g, err := NewGame(game.DefaultConfig(), 20)
	require.NoError(t, err)
	w, h := g.Layout(1920, 1080)
	assert.Equal(t, margin*3+(10+sidebarCells)*20, w)
	assert.Equal(t, margin*2+22*20, h)

	_, err = NewGame(game.Config{Width: 2, Height: 2, BaseDelay: time.Second}, 20)
	assert.Error(t, err)
}

func lowestY(g *Game) int {
	y := -100
	for _, b := range g.board.Blocks() {
		if b.Y > y {
			y = b.Y
		}
	}
	return y
}
