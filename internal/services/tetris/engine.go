package tetris

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"
)

// Panel はスコア・レベル・状態の変化を受け取る表示パネルです。戻り値は使われません。
type Panel interface {
	OnScoreChanged(score int)
	OnLevelChanged(level int)
	OnStateChanged(state GameState)
}

// PieceSource は次に出現するピースの種類を選びます。
type PieceSource interface {
	Next() tetris.PieceKind
}

// RandomSource は7種類から一様にピースを選ぶ PieceSource です。
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource は現在時刻をシードにした RandomSource を作成します。
func NewRandomSource() *RandomSource {
	seed := uint64(time.Now().UnixNano())
	return &RandomSource{rng: rand.New(rand.NewPCG(seed, seed>>1))}
}

// NewSeededSource は固定シードの RandomSource を作成します（再現用）。
func NewSeededSource(seed uint64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (s *RandomSource) Next() tetris.PieceKind {
	return tetris.PieceKind(s.rng.IntN(tetris.NumKinds))
}

// GameOverFunc はゲームオーバー時に最終結果を受け取るフックです。
type GameOverFunc func(score, level, lines int)

// Option はエンジン生成時のオプションです。
type Option func(*Engine)

// WithPanel は表示パネルを設定します。
func WithPanel(p Panel) Option {
	return func(e *Engine) { e.panel = p }
}

// WithPieceSource はピースの選択方法を差し替えます。
func WithPieceSource(s PieceSource) Option {
	return func(e *Engine) { e.source = s }
}

// WithGameOverHook はゲームオーバー時のフックを設定します。
func WithGameOverHook(fn GameOverFunc) Option {
	return func(e *Engine) { e.onGameOver = fn }
}

type nopPanel struct{}

func (nopPanel) OnScoreChanged(int)       {}
func (nopPanel) OnLevelChanged(int)       {}
func (nopPanel) OnStateChanged(GameState) {}

// Engine はゲームの状態機械です。
// 入力の検証、ピースのスポーンと先読み、自動落下、ロックとライン消去、スコアとレベルの管理を行います。
// Engine はスレッドセーフではありません。全ての呼び出しは単一のゴルーチン（Loop など）から行ってください。
type Engine struct {
	cfg        Config
	thresholds []int

	board     tetris.Surface
	preview   tetris.Surface
	panel     Panel
	scheduler Scheduler
	source    PieceSource

	grid  *tetris.Grid
	state GameState
	score int
	level int
	lines int
	delay time.Duration

	active       *tetris.ActivePiece
	previewPiece *tetris.ActivePiece
	nextKind     tetris.PieceKind

	timer      Timer
	generation uint64

	onGameOver GameOverFunc
}

// NewEngine は READY 状態のエンジンを作成します。
//
// Parameters:
//
//	cfg       : ボードサイズや落下速度などの設定
//	board     : メインボードの描画面
//	preview   : 次のピースを表示するプレビューボックスの描画面 (PreviewSize x PreviewSize)
//	scheduler : 自動落下のタイマー
func NewEngine(cfg Config, board, preview tetris.Surface, scheduler Scheduler, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if board == nil || preview == nil || scheduler == nil {
		return nil, fmt.Errorf("board, preview and scheduler are required")
	}
	e := &Engine{
		cfg:        cfg,
		thresholds: LevelThresholds(cfg.BaseScore, cfg.Levels),
		board:      board,
		preview:    preview,
		panel:      nopPanel{},
		scheduler:  scheduler,
		grid:       tetris.NewGrid(cfg.Width, cfg.Height),
		state:      StateReady,
		delay:      cfg.BaseDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		e.source = NewRandomSource()
	}
	return e, nil
}

// State は現在のゲーム状態を返します。
func (e *Engine) State() GameState { return e.state }

// Score は現在のスコアを返します。
func (e *Engine) Score() int { return e.score }

// Level は現在のレベルを返します。
func (e *Engine) Level() int { return e.level }

// Lines はこのゲームで消去した行数の合計を返します。
func (e *Engine) Lines() int { return e.lines }

// Delay は現在の自動落下間隔を返します。
func (e *Engine) Delay() time.Duration { return e.delay }

// Config はエンジンの設定を返します。
func (e *Engine) Config() Config { return e.cfg }

// Dump は着地済みブロックのダンプを返します。
func (e *Engine) Dump() string { return e.grid.String() }

// Handle は入力ソースからの意図を処理します。現在の状態で無効な意図はエラーにせず無視します。
func (e *Engine) Handle(intent Intent) {
	switch intent {
	case IntentNewGame:
		if e.state != StatePlaying {
			e.StartNewGame()
		}
		return
	case IntentQuit:
		e.Quit()
		return
	case IntentPause:
		switch e.state {
		case StatePlaying:
			e.Pause()
		case StatePaused:
			e.Resume()
		}
		return
	}

	if !intent.movement() || e.state != StatePlaying || e.active == nil {
		return
	}
	switch intent {
	case IntentMoveLeft:
		e.handleMove(tetris.Left)
	case IntentMoveRight:
		e.handleMove(tetris.Right)
	case IntentSoftDrop:
		e.handleMove(tetris.Down)
	case IntentHardDrop:
		e.HardDrop()
	case IntentRotateCW:
		e.active.Rotate(e.grid, true)
	case IntentRotateCCW:
		e.active.Rotate(e.grid, false)
	}
}

// StartNewGame は新しいゲームを開始して PLAYING に遷移します。
// スコアとレベルを0に戻し、前のゲームのブロックを全て片付けてから最初のピースを出します。
func (e *Engine) StartNewGame() {
	e.cancelTick()
	e.releaseAll()

	e.score = 0
	e.level = 0
	e.lines = 0
	e.delay = e.cfg.BaseDelay
	e.setState(StatePlaying)
	e.panel.OnScoreChanged(e.score)
	e.panel.OnLevelChanged(e.level)
	log.Printf("[Engine] New game started (board %dx%d, delay %v)", e.cfg.Width, e.cfg.Height, e.delay)

	e.drawPreview()
	if !e.spawn() {
		e.gameOver()
		return
	}
	e.scheduleTick()
}

// Pause は PLAYING から PAUSED に遷移し、予約済みの自動落下を取り消します。
func (e *Engine) Pause() {
	if e.state != StatePlaying {
		return
	}
	e.cancelTick()
	e.setState(StatePaused)
}

// Resume は PAUSED から PLAYING に戻り、現在の落下間隔で自動落下を再予約します。
func (e *Engine) Resume() {
	if e.state != StatePaused {
		return
	}
	e.setState(StatePlaying)
	e.scheduleTick()
}

// Quit は現在のゲームを破棄します。
// 自動落下を止め、ボードとプレビューの全ハンドルを解放してから READY に戻ります。
func (e *Engine) Quit() {
	e.cancelTick()
	e.releaseAll()
	if e.state != StateReady {
		e.setState(StateReady)
	}
}

// HardDrop はピースが着地するまで下移動を繰り返します。
// 異常なボードでも必ず終了するよう、試行回数はボードの高さ＋スポーン時のはみ出し分に制限します。
func (e *Engine) HardDrop() {
	if e.state != StatePlaying || e.active == nil {
		return
	}
	// スポーン位置は y=-高さ なので、最大で Height+MaxPieceHeight 回の移動とロックの1回が必要
	limit := e.cfg.Height + tetris.MaxPieceHeight + 1
	for i := 0; i < limit; i++ {
		if e.handleMove(tetris.Down) {
			return
		}
	}
}

// Tick は自動落下を1回分実行します。通常はスケジューラから呼ばれます。
func (e *Engine) Tick() {
	if e.state != StatePlaying || e.active == nil {
		return
	}
	e.handleMove(tetris.Down)
}

// handleMove はピースを dir 方向に動かし、着地してロックした場合に true を返します。
func (e *Engine) handleMove(dir tetris.Direction) (locked bool) {
	if e.active == nil {
		return false
	}
	if e.active.Move(e.grid, dir) {
		return false
	}
	if dir != tetris.Down {
		return false
	}
	e.lock()
	return true
}

// lock は着地したピースをグリッドにマージし、ライン消去・スポーン・レベル判定を行います。
func (e *Engine) lock() {
	piece := e.active
	// 二重ロックを防ぐため、マージ前に操作中のピースを外す
	e.active = nil

	blocks := piece.Blocks()
	overflow := e.grid.Merge(blocks)
	for _, h := range overflow {
		// ボードより上に残ったブロックはグリッドに入らないのでここで解放する
		e.board.Remove(h)
	}

	gained, rows := tetris.ClearLines(e.grid, e.board, blocks)
	if rows > 0 {
		e.score += gained
		e.lines += rows
		log.Printf("[Engine] Cleared %d row(s), +%d (score %d)", rows, gained, e.score)
	}
	e.panel.OnScoreChanged(e.score)
	// ゲームオーバー時に通知するレベルもこのロックのスコアを反映させる
	e.levelUp()

	// ピースがボード内に入りきらずに着地した（ロックアウト）
	if len(overflow) > 0 {
		e.gameOver()
		return
	}
	if !e.spawn() {
		e.gameOver()
	}
}

// spawn はプレビュー中のピースをボード上部中央に出し、新しいプレビューを引きます。
// 初期配置が着地済みブロックと衝突する場合は false を返します。
func (e *Engine) spawn() bool {
	kind := e.nextKind
	if e.previewPiece != nil {
		e.previewPiece.Release()
		e.previewPiece = nil
	}
	e.drawPreview()
	return e.spawnAt(kind, tetris.Coord{X: e.cfg.Width/2 - 1, Y: -kind.Shape().Height})
}

func (e *Engine) spawnAt(kind tetris.PieceKind, offset tetris.Coord) bool {
	piece := tetris.NewActivePiece(kind, e.board, offset)
	if !piece.Fits(e.grid) {
		piece.Release()
		return false
	}
	e.active = piece
	return true
}

// drawPreview は次のピースをランダムに選び、プレビューボックスの中央に表示します。
func (e *Engine) drawPreview() {
	e.nextKind = e.source.Next()
	shape := e.nextKind.Shape()
	offset := tetris.Coord{X: PreviewSize/2 - shape.Width/2, Y: PreviewSize/2 - shape.Height/2}
	e.previewPiece = tetris.NewActivePiece(e.nextKind, e.preview, offset)
}

// levelUp はスコアが閾値に達している間レベルを上げ、落下間隔を短くします。
func (e *Engine) levelUp() {
	for e.level < e.cfg.Levels && e.score >= e.thresholds[e.level] {
		e.level++
		e.delay = e.cfg.delayForLevel(e.level)
		log.Printf("[Engine] Level up: %d (delay %v)", e.level, e.delay)
		e.panel.OnLevelChanged(e.level)
	}
}

func (e *Engine) gameOver() {
	e.cancelTick()
	e.setState(StateGameOver)
	log.Printf("[Engine] GAME OVER Score: %7d Level: %d", e.score, e.level)
	e.panel.OnScoreChanged(e.score)
	e.panel.OnLevelChanged(e.level)
	if e.onGameOver != nil {
		e.onGameOver(e.score, e.level, e.lines)
	}
}

func (e *Engine) setState(s GameState) {
	e.state = s
	e.panel.OnStateChanged(s)
}

// releaseAll はボード（着地済みブロックと操作中のピース）とプレビューの全ハンドルを解放します。
func (e *Engine) releaseAll() {
	if e.active != nil {
		e.active.Release()
		e.active = nil
	}
	if e.previewPiece != nil {
		e.previewPiece.Release()
		e.previewPiece = nil
	}
	for _, h := range e.grid.Clear() {
		e.board.Remove(h)
	}
}

// scheduleTick は現在の落下間隔で次の自動落下を予約します。
// 予約は世代番号で識別し、キャンセル後に届いた古いティックは無視されます。
func (e *Engine) scheduleTick() {
	e.cancelTick()
	gen := e.generation
	e.timer = e.scheduler.Schedule(e.delay, func() { e.onTick(gen) })
}

func (e *Engine) cancelTick() {
	e.generation++
	if e.timer != nil {
		e.timer.Cancel()
		e.timer = nil
	}
}

func (e *Engine) onTick(gen uint64) {
	if gen != e.generation || e.state != StatePlaying {
		return
	}
	e.timer = nil
	e.Tick()
	if e.state == StatePlaying {
		e.scheduleTick()
	}
}
