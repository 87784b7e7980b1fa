// Package ui は ebiten を使ったデスクトップ版のフロントエンドです。
// ボードとプレビューの描画面には render.Canvas を使い、自動落下は
// ebiten の Update ごとに進める TickScheduler で駆動します。
package ui

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/render"
	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

const (
	margin       = 10
	sidebarCells = game.PreviewSize + 2
	textHeight   = 16
)

var (
	backgroundColor = color.RGBA{0x10, 0x10, 0x18, 0xff}
	wellColor       = color.RGBA{0x20, 0x20, 0x2c, 0xff}
	gridLineColor   = color.RGBA{0x2c, 0x2c, 0x3a, 0xff}
)

// palette はブロックの色名から表示色への対応です。
var palette = map[tetris.Color]color.RGBA{
	"red":    {0xe5, 0x39, 0x35, 0xff},
	"yellow": {0xfd, 0xd8, 0x35, 0xff},
	"orange": {0xfb, 0x8c, 0x00, 0xff},
	"green":  {0x43, 0xa0, 0x47, 0xff},
	"purple": {0x8e, 0x24, 0xaa, 0xff},
	"cyan":   {0x00, 0xac, 0xc1, 0xff},
	"blue":   {0x1e, 0x88, 0xe5, 0xff},
}

func colorOf(c tetris.Color) color.Color {
	if rgba, ok := palette[c]; ok {
		return rgba
	}
	return color.White
}

// Game は ebiten.Game の実装です。
type Game struct {
	engine    *game.Engine
	scheduler *game.TickScheduler
	board     *render.Canvas
	preview   *render.Canvas
	panel     *Panel
	scale     int
	width     int
	height    int
}

// NewGame はデスクトップ版のゲームを作成します。scale は1マスのピクセル数です。
func NewGame(cfg game.Config, scale int, opts ...game.Option) (*Game, error) {
	g := &Game{
		scheduler: game.NewTickScheduler(),
		board:     render.NewCanvas(),
		preview:   render.NewCanvas(),
		panel:     &Panel{},
		scale:     scale,
		width:     cfg.Width,
		height:    cfg.Height,
	}
	opts = append([]game.Option{game.WithPanel(g.panel)}, opts...)
	engine, err := game.NewEngine(cfg, g.board, g.preview, g.scheduler, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	g.engine = engine
	return g, nil
}

// Engine はゲームのエンジンを返します。
func (g *Game) Engine() *game.Engine {
	return g.engine
}

// Update は1フレーム分の入力を処理し、時間を進めます。
func (g *Game) Update() error {
	for _, intent := range intentsFor(inpututil.KeyPressDuration) {
		if err := g.apply(intent); err != nil {
			return err
		}
	}
	g.scheduler.Advance(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

// apply は Intent をエンジンに渡します。Quit の場合は ebiten.Termination を返します。
func (g *Game) apply(intent game.Intent) error {
	g.engine.Handle(intent)
	if intent == game.IntentQuit {
		log.Printf("[UI] Quit requested (score %d, level %d)", g.engine.Score(), g.engine.Level())
		return ebiten.Termination
	}
	return nil
}

// Layout は画面の論理サイズを返します。
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenSize()
}

func (g *Game) screenSize() (int, int) {
	w := margin*3 + (g.width+sidebarCells)*g.scale
	h := margin*2 + g.height*g.scale
	return w, h
}

// Draw はボード・プレビュー・情報パネルを描画します。
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	bw := float32(g.width * g.scale)
	bh := float32(g.height * g.scale)
	vector.DrawFilledRect(screen, margin, margin, bw, bh, wellColor, false)
	for x := 1; x < g.width; x++ {
		px := float32(margin + x*g.scale)
		vector.StrokeLine(screen, px, margin, px, margin+bh, 1, gridLineColor, false)
	}
	// 盤面より上にあるブロックは描画しない
	for _, b := range g.board.Blocks() {
		if b.Y < 0 || b.Y >= g.height || b.X < 0 || b.X >= g.width {
			continue
		}
		g.drawCell(screen, margin, margin, b)
	}

	sx := margin*2 + g.width*g.scale
	ebitenutil.DebugPrintAt(screen, "NEXT", sx, margin)
	py := margin + textHeight
	ps := float32(game.PreviewSize * g.scale)
	vector.DrawFilledRect(screen, float32(sx), float32(py), ps, ps, wellColor, false)
	for _, b := range g.preview.Blocks() {
		g.drawCell(screen, sx, py, b)
	}

	ty := py + game.PreviewSize*g.scale + margin
	for i, line := range g.panel.Lines() {
		ebitenutil.DebugPrintAt(screen, line, sx, ty+i*textHeight)
	}
}

func (g *Game) drawCell(screen *ebiten.Image, ox, oy int, b render.Block) {
	x := float32(ox + b.X*g.scale)
	y := float32(oy + b.Y*g.scale)
	s := float32(g.scale)
	vector.DrawFilledRect(screen, x+1, y+1, s-2, s-2, colorOf(b.Color), false)
}
