package tetris

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models/tetris"
)

// testSurface はハンドルごとの座標を保持するだけの描画面です。
type testSurface struct {
	next   tetris.BlockHandle
	blocks map[tetris.BlockHandle]tetris.Coord
}

func newTestSurface() *testSurface {
	return &testSurface{blocks: make(map[tetris.BlockHandle]tetris.Coord)}
}

func (s *testSurface) Place(c tetris.Coord, _ tetris.Color) tetris.BlockHandle {
	s.next++
	s.blocks[s.next] = c
	return s.next
}

func (s *testSurface) Move(h tetris.BlockHandle, delta tetris.Coord) {
	s.blocks[h] = s.blocks[h].Add(delta)
}

func (s *testSurface) Remove(h tetris.BlockHandle) {
	delete(s.blocks, h)
}

// recordingPanel はパネルへの通知を記録します。
type recordingPanel struct {
	scores []int
	levels []int
	states []GameState
}

func (p *recordingPanel) OnScoreChanged(score int)       { p.scores = append(p.scores, score) }
func (p *recordingPanel) OnLevelChanged(level int)       { p.levels = append(p.levels, level) }
func (p *recordingPanel) OnStateChanged(state GameState) { p.states = append(p.states, state) }

// sequenceSource は与えられた種類を順番に（繰り返し）返します。
type sequenceSource struct {
	kinds []tetris.PieceKind
	i     int
}

func (s *sequenceSource) Next() tetris.PieceKind {
	k := s.kinds[s.i%len(s.kinds)]
	s.i++
	return k
}

// manualScheduler はキャンセルを無視してコールバックを保持するだけのスケジューラです。
// 古いティックが後から届いた場合の挙動を確認するために使います。
type manualScheduler struct {
	fns []func()
}

type nopTimer struct{}

func (nopTimer) Cancel() {}

func (s *manualScheduler) Schedule(_ time.Duration, fn func()) Timer {
	s.fns = append(s.fns, fn)
	return nopTimer{}
}

type engineFixture struct {
	engine    *Engine
	board     *testSurface
	preview   *testSurface
	panel     *recordingPanel
	scheduler *TickScheduler
}

func newFixture(t *testing.T, cfg Config, kinds ...tetris.PieceKind) *engineFixture {
	t.Helper()
	f := &engineFixture{
		board:     newTestSurface(),
		preview:   newTestSurface(),
		panel:     &recordingPanel{},
		scheduler: NewTickScheduler(),
	}
	e, err := NewEngine(cfg, f.board, f.preview, f.scheduler,
		WithPanel(f.panel),
		WithPieceSource(&sequenceSource{kinds: kinds}),
	)
	require.NoError(t, err)
	f.engine = e
	return f
}

func smallConfig(width, height int) Config {
	cfg := DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	return cfg
}

func activeYs(e *Engine) []int {
	var ys []int
	for _, c := range e.Snapshot().Active {
		ys = append(ys, c.Y)
	}
	return ys
}

func TestNewEngineValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 2
	_, err := NewEngine(cfg, newTestSurface(), newTestSurface(), NewTickScheduler())
	assert.Error(t, err)

	_, err = NewEngine(DefaultConfig(), nil, newTestSurface(), NewTickScheduler())
	assert.Error(t, err)
}

func TestEngineStartsReadyAndIgnoresMovement(t *testing.T) {
	f := newFixture(t, DefaultConfig(), tetris.KindT)
	e := f.engine

	assert.Equal(t, StateReady, e.State())
	for _, intent := range []Intent{IntentMoveLeft, IntentMoveRight, IntentSoftDrop, IntentHardDrop, IntentRotateCW, IntentRotateCCW, IntentPause} {
		e.Handle(intent)
	}
	assert.Equal(t, StateReady, e.State())
	assert.Empty(t, f.board.blocks)
	assert.Zero(t, f.scheduler.Pending())
}

func TestStartNewGameSpawnsAndPreviews(t *testing.T) {
	f := newFixture(t, DefaultConfig(), tetris.KindSquare, tetris.KindI)
	e := f.engine

	e.Handle(IntentNewGame)
	require.Equal(t, StatePlaying, e.State())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 0, e.Level())
	assert.Equal(t, DefaultBaseDelay, e.Delay())
	assert.Equal(t, 1, f.scheduler.Pending())

	snap := e.Snapshot()
	assert.Equal(t, "O", snap.Piece)
	assert.Equal(t, "I", snap.Next)
	// 幅10のボードでは x=4、y=-高さ にスポーンする
	assert.ElementsMatch(t, []Cell{
		{X: 4, Y: -2, Color: "red"}, {X: 4, Y: -1, Color: "red"},
		{X: 5, Y: -2, Color: "red"}, {X: 5, Y: -1, Color: "red"},
	}, snap.Active)
	assert.Len(t, f.board.blocks, 4)

	// Iミノ (1x4) はプレビューボックスの (2,0) を基準に表示される
	var preview []tetris.Coord
	for _, c := range f.preview.blocks {
		preview = append(preview, c)
	}
	assert.ElementsMatch(t, []tetris.Coord{{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3}}, preview)

	assert.Equal(t, []GameState{StatePlaying}, f.panel.states)
}

func TestGravityMovesPieceDown(t *testing.T) {
	f := newFixture(t, DefaultConfig(), tetris.KindSquare)
	e := f.engine
	e.StartNewGame()

	f.scheduler.Advance(DefaultBaseDelay - time.Millisecond)
	assert.Equal(t, []int{-2, -1, -2, -1}, activeYs(e))

	f.scheduler.Advance(time.Millisecond)
	assert.Equal(t, []int{-1, 0, -1, 0}, activeYs(e))

	f.scheduler.Advance(2 * DefaultBaseDelay)
	assert.Equal(t, []int{1, 2, 1, 2}, activeYs(e))
	assert.Equal(t, 1, f.scheduler.Pending())
}

func TestPauseAndResume(t *testing.T) {
	f := newFixture(t, DefaultConfig(), tetris.KindSquare)
	e := f.engine
	e.StartNewGame()

	f.scheduler.Advance(400 * time.Millisecond)
	e.Handle(IntentPause)
	assert.Equal(t, StatePaused, e.State())
	assert.Zero(t, f.scheduler.Pending())

	// 一時停止中は操作も自動落下も無視される
	before := activeYs(e)
	e.Handle(IntentMoveLeft)
	e.Handle(IntentHardDrop)
	f.scheduler.Advance(5 * time.Second)
	assert.Equal(t, before, activeYs(e))
	assert.Equal(t, 4, e.Snapshot().Active[0].X)

	e.Handle(IntentPause)
	assert.Equal(t, StatePlaying, e.State())
	assert.Equal(t, DefaultBaseDelay, e.Delay())
	assert.Equal(t, 1, f.scheduler.Pending())

	// 再開後は落下間隔をまるごと待ってから落ちる
	f.scheduler.Advance(DefaultBaseDelay - time.Millisecond)
	assert.Equal(t, before, activeYs(e))
	f.scheduler.Advance(time.Millisecond)
	assert.Equal(t, []int{-1, 0, -1, 0}, activeYs(e))
}

func TestStaleTickIsInert(t *testing.T) {
	sched := &manualScheduler{}
	e, err := NewEngine(DefaultConfig(), newTestSurface(), newTestSurface(), sched,
		WithPieceSource(&sequenceSource{kinds: []tetris.PieceKind{tetris.KindSquare}}))
	require.NoError(t, err)

	e.StartNewGame()
	require.Len(t, sched.fns, 1)
	stale := sched.fns[0]

	e.Pause()
	e.Resume()
	require.Len(t, sched.fns, 2)

	stale()
	assert.Equal(t, []int{-2, -1, -2, -1}, activeYs(e), "tick from before the pause must not move the piece")
	assert.Len(t, sched.fns, 2, "stale tick must not re-arm the timer")

	sched.fns[1]()
	assert.Equal(t, []int{-1, 0, -1, 0}, activeYs(e))
	assert.Len(t, sched.fns, 3)
}

func TestHardDropLocksAndSpawns(t *testing.T) {
	f := newFixture(t, smallConfig(10, 6), tetris.KindSquare)
	e := f.engine
	e.StartNewGame()

	e.Handle(IntentHardDrop)
	snap := e.Snapshot()
	assert.ElementsMatch(t, []Cell{{X: 4, Y: 4}, {X: 4, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 5}}, snap.Board)
	assert.Equal(t, []int{-2, -1, -2, -1}, activeYs(e), "a new piece is spawned above the board")
	assert.Equal(t, StatePlaying, e.State())
	// 着地済み4 + 操作中4
	assert.Len(t, f.board.blocks, 8)
}

func TestHardDropIPieceFromSpawn(t *testing.T) {
	f := newFixture(t, DefaultConfig(), tetris.KindI, tetris.KindSquare)
	e := f.engine
	e.StartNewGame()

	e.Handle(IntentHardDrop)
	snap := e.Snapshot()
	assert.ElementsMatch(t, []Cell{{X: 4, Y: 18}, {X: 4, Y: 19}, {X: 4, Y: 20}, {X: 4, Y: 21}}, snap.Board)
	assert.Equal(t, "O", snap.Piece)
}

func TestLineClearScoresAndLevelsUp(t *testing.T) {
	cfg := smallConfig(4, 6)
	cfg.BaseScore = 400
	cfg.Levels = 3
	f := newFixture(t, cfg, tetris.KindSquare)
	e := f.engine
	e.StartNewGame()

	// 幅4のボードでは x=1 にスポーンする
	e.Handle(IntentMoveLeft)
	e.Handle(IntentHardDrop)
	assert.Equal(t, 0, e.Score())

	e.Handle(IntentMoveRight)
	e.Handle(IntentHardDrop)

	assert.Equal(t, 400, e.Score())
	assert.Equal(t, 2, e.Lines())
	assert.Empty(t, e.Snapshot().Board)
	assert.Len(t, f.board.blocks, 4, "only the new active piece remains on the board")

	assert.Equal(t, 1, e.Level())
	assert.Equal(t, 900*time.Millisecond, e.Delay())
	assert.Equal(t, []int{0, 1}, f.panel.levels)
	assert.Contains(t, f.panel.scores, 400)
}

func TestLockOutEndsGame(t *testing.T) {
	f := newFixture(t, smallConfig(4, 4), tetris.KindSquare)
	var final []int
	f.engine.onGameOver = func(score, level, lines int) {
		final = []int{score, level, lines}
	}
	e := f.engine
	e.StartNewGame()

	e.Handle(IntentHardDrop)
	e.Handle(IntentHardDrop)
	assert.Equal(t, StatePlaying, e.State())

	// 3つ目のピースはボードに入れない
	e.Handle(IntentHardDrop)
	assert.Equal(t, StateGameOver, e.State())
	assert.Equal(t, []int{0, 0, 0}, final)
	assert.Zero(t, f.scheduler.Pending())
	assert.Len(t, f.board.blocks, 8, "overflowing blocks are released")
	assert.Empty(t, e.Snapshot().Active)

	e.Handle(IntentMoveLeft)
	e.Handle(IntentPause)
	assert.Equal(t, StateGameOver, e.State())

	e.Handle(IntentNewGame)
	assert.Equal(t, StatePlaying, e.State())
	assert.Empty(t, e.Snapshot().Board)
	assert.Len(t, f.board.blocks, 4)
	assert.Len(t, f.preview.blocks, 4)
}

func TestSpawnCollisionIsRejected(t *testing.T) {
	f := newFixture(t, smallConfig(4, 4), tetris.KindSquare)
	e := f.engine
	e.StartNewGame()
	e.active.Release()
	e.active = nil
	e.grid.Merge([]tetris.Block{{Handle: 100, Coord: tetris.Coord{X: 1, Y: 0}}})

	assert.False(t, e.spawnAt(tetris.KindSquare, tetris.Coord{X: 1, Y: -1}))
	assert.Nil(t, e.active)
	assert.Empty(t, f.board.blocks, "the rejected piece is released from the surface")

	assert.True(t, e.spawnAt(tetris.KindSquare, tetris.Coord{X: 1, Y: -2}))
	assert.NotNil(t, e.active)
}

func TestQuitReleasesEverything(t *testing.T) {
	f := newFixture(t, smallConfig(10, 6), tetris.KindSquare)
	e := f.engine
	e.StartNewGame()
	e.HardDrop()
	require.NotEmpty(t, f.board.blocks)

	e.Handle(IntentQuit)
	assert.Equal(t, StateReady, e.State())
	assert.Empty(t, f.board.blocks)
	assert.Empty(t, f.preview.blocks)
	assert.Zero(t, f.scheduler.Pending())
	assert.Empty(t, e.Snapshot().Board)
}

func TestNewGameIgnoredWhilePlaying(t *testing.T) {
	f := newFixture(t, DefaultConfig(), tetris.KindSquare)
	e := f.engine
	e.StartNewGame()
	f.scheduler.Advance(DefaultBaseDelay)
	ys := activeYs(e)

	e.Handle(IntentNewGame)
	assert.Equal(t, ys, activeYs(e))
	assert.Equal(t, []GameState{StatePlaying}, f.panel.states)

	// 一時停止中であれば新しいゲームを開始できる
	e.Handle(IntentPause)
	e.Handle(IntentNewGame)
	assert.Equal(t, StatePlaying, e.State())
	assert.Equal(t, []int{-2, -1, -2, -1}, activeYs(e))
	assert.Equal(t, 1, f.scheduler.Pending())
}

func TestRandomSourceCoversAllKinds(t *testing.T) {
	src := NewSeededSource(42)
	seen := make(map[tetris.PieceKind]bool)
	for i := 0; i < 1000; i++ {
		k := src.Next()
		require.True(t, k.Valid())
		seen[k] = true
	}
	assert.Len(t, seen, tetris.NumKinds)
}

func TestSingleRowFromIPieces(t *testing.T) {
	f := newFixture(t, smallConfig(10, 20), tetris.KindI)
	e := f.engine
	e.StartNewGame()

	repeat := func(intent Intent, n int) {
		for i := 0; i < n; i++ {
			e.Handle(intent)
		}
	}

	// 横向きの I を x=0..3 と x=4..7 に置く
	e.Handle(IntentRotateCW)
	repeat(IntentMoveLeft, 3)
	e.Handle(IntentHardDrop)
	e.Handle(IntentRotateCW)
	e.Handle(IntentMoveRight)
	e.Handle(IntentHardDrop)
	assert.Zero(t, e.Score())

	// 縦向きの I を x=8 と x=9 に置くと最下段だけが揃う
	repeat(IntentMoveRight, 4)
	e.Handle(IntentHardDrop)
	assert.Zero(t, e.Lines())
	repeat(IntentMoveRight, 5)
	e.Handle(IntentHardDrop)

	assert.Equal(t, 1, e.Lines())
	assert.Equal(t, 100, e.Score())
	assert.Equal(t, StatePlaying, e.State())
	assert.Equal(t, strings.Repeat("..........\n", 17)+
		"........XX\n"+
		"........XX\n"+
		"........XX\n", e.Dump())
}

func TestLockOutReportsLevelOfFinalClear(t *testing.T) {
	cfg := smallConfig(4, 4)
	cfg.BaseScore = 100
	cfg.Levels = 3
	f := newFixture(t, cfg, tetris.KindSquare)
	var final []int
	f.engine.onGameOver = func(score, level, lines int) {
		final = []int{score, level, lines}
	}
	e := f.engine
	e.StartNewGame()

	// x=0,1 は全行、x=2,3 は行1〜3を埋めておく
	var blocks []tetris.Block
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if y == 0 && x >= 2 {
				continue
			}
			c := tetris.Coord{X: x, Y: y}
			blocks = append(blocks, tetris.Block{Handle: f.board.Place(c, "red"), Coord: c})
		}
	}
	require.Empty(t, e.grid.Merge(blocks))

	// 正方形は行-1〜0に着地し、行0を埋めつつ上にはみ出す
	e.Handle(IntentMoveRight)
	e.Handle(IntentHardDrop)

	assert.Equal(t, StateGameOver, e.State())
	assert.Equal(t, 4, e.Lines())
	assert.Equal(t, 1600, e.Score())
	assert.Equal(t, 3, e.Level())
	assert.Equal(t, []int{1600, 3, 4}, final)
	assert.Equal(t, []int{0, 1, 2, 3, 3}, f.panel.levels, "game over repeats the final level")
}
