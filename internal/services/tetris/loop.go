package tetris

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopStopped は停止済みの Loop にイベントを送ろうとした場合に返されます。
var ErrLoopStopped = errors.New("event loop stopped")

// Loop は単一ゴルーチンでイベント（クロージャ）を順番に処理するディスパッチャです。
// 入力イベントと自動落下のタイマーは全てこのループ上で実行されるため、
// エンジンの操作が並行に実行されることはありません。
type Loop struct {
	events chan func()
	quit   chan struct{}
	once   sync.Once
}

// NewLoop は buffer 個までイベントをキューイングできる Loop を作成します。
func NewLoop(buffer int) *Loop {
	return &Loop{
		events: make(chan func(), buffer),
		quit:   make(chan struct{}),
	}
}

// Run はメインイベントループです。ctx がキャンセルされるか Stop が呼ばれるまでブロックします。
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case fn := <-l.events:
			l.dispatch(fn)
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.quit:
			return
		}
	}
}

func (l *Loop) dispatch(fn func()) {
	defer func() {
		// 1つのイベントのパニックでループ全体が止まらないようにする
		if r := recover(); r != nil {
			log.Printf("[Loop] Panic while handling event: %v", r)
		}
	}()
	fn()
}

// Post は fn をループに送ります。ループが停止済みの場合は false を返します。
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Call は fn をループ上で実行し、完了するまで待ちます。
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-done:
		return nil
	case <-l.quit:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop はループを停止します。何度呼んでも安全です。
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.quit)
	})
}

// Schedule は delay 後に fn をループ上で実行するよう予約します。
// タイマーは time.AfterFunc で発火し、実行自体はループに投げ込まれます。
func (l *Loop) Schedule(delay time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(delay, func() {
		l.Post(func() {
			// キャンセル後に届いたティックは何もしない
			if t.canceled.Load() {
				return
			}
			fn()
		})
	})
	return t
}

type loopTimer struct {
	timer    *time.Timer
	canceled atomic.Bool
}

func (t *loopTimer) Cancel() {
	t.canceled.Store(true)
	t.timer.Stop()
}
