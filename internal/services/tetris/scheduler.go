package tetris

import (
	"sort"
	"time"
)

// Timer は予約済みの一回限りのコールバックです。Cancel は何度呼んでも安全です。
type Timer interface {
	Cancel()
}

// Scheduler は delay 経過後に fn を一度だけ呼び出すよう予約します。
// fn はエンジンの他の操作と並行に実行されてはいけません（Loop や TickScheduler がこれを保証します）。
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Timer
}

// TickScheduler は呼び出し側が時間を進める Scheduler です。
// ebiten の Update のように単一スレッドで一定間隔に呼ばれるループや、テストで使います。
type TickScheduler struct {
	now    time.Duration
	seq    int
	timers []*tickTimer
}

type tickTimer struct {
	due      time.Duration
	seq      int
	fn       func()
	canceled bool
}

func (t *tickTimer) Cancel() {
	t.canceled = true
}

// NewTickScheduler は時刻0の TickScheduler を作成します。
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{}
}

// Schedule は現在時刻から delay 後に fn を呼ぶよう予約します。
func (s *TickScheduler) Schedule(delay time.Duration, fn func()) Timer {
	s.seq++
	t := &tickTimer{due: s.now + delay, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance は時刻を dt 進め、期限を迎えたタイマーを期限順に実行します。
// 実行中に予約されたタイマーも、期限内であれば同じ呼び出しの中で実行されます。
func (s *TickScheduler) Advance(dt time.Duration) {
	target := s.now + dt
	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		s.now = t.due
		t.fn()
	}
	s.now = target
}

// Pending はキャンセルされていない未実行のタイマー数を返します。
func (s *TickScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Now は TickScheduler 上の現在時刻を返します。
func (s *TickScheduler) Now() time.Duration {
	return s.now
}

func (s *TickScheduler) popDue(target time.Duration) *tickTimer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	s.timers = live
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due != s.timers[j].due {
			return s.timers[i].due < s.timers[j].due
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	t := s.timers[0]
	if t.due > target {
		return nil
	}
	s.timers = s.timers[1:]
	return t
}
