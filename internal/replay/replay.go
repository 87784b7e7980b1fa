// Package replay は入力スクリプトを描画なしでエンジンに流し込みます。
// デバッグや回帰テスト用に、cmd/tetris の -replay から使われます。
//
// スクリプトはシェル風に区切られたトークンの列です。
//
//	new_game move_left "rotate_right" hard_drop tick wait:1500 # コメント
//
// 入力名は ParseIntent が受け付けるもの、"tick" は現在の落下間隔だけ時間を進め、
// "wait:MS" は MS ミリ秒進めます。
package replay

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/render"
	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

// ErrEmptyScript はスクリプトにトークンが無い場合に返されます。
var ErrEmptyScript = errors.New("replay script is empty")

// Step はスクリプトの1手です。Intent か経過時間のどちらかを持ちます。
type Step struct {
	Intent  game.Intent
	Advance time.Duration
	Tick    bool
}

// Parse はスクリプトを Step の列に変換します。
func Parse(script string) ([]Step, error) {
	tokens, err := shlex.Split(script)
	if err != nil {
		return nil, fmt.Errorf("failed to split script: %w", err)
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyScript
	}

	steps := make([]Step, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tok == "tick":
			steps = append(steps, Step{Tick: true})
		case strings.HasPrefix(tok, "wait:"):
			ms, err := strconv.Atoi(strings.TrimPrefix(tok, "wait:"))
			if err != nil || ms < 0 {
				return nil, fmt.Errorf("invalid wait %q", tok)
			}
			steps = append(steps, Step{Advance: time.Duration(ms) * time.Millisecond})
		default:
			intent, ok := game.ParseIntent(tok)
			if !ok {
				return nil, fmt.Errorf("unknown action %q", tok)
			}
			steps = append(steps, Step{Intent: intent})
		}
	}
	return steps, nil
}

// Result はリプレイ終了時の状態です。
type Result struct {
	Snapshot game.Snapshot
	Dump     string
}

// Run はスクリプトを実行し、終了時の状態を返します。
func Run(cfg game.Config, script string, opts ...game.Option) (*Result, error) {
	steps, err := Parse(script)
	if err != nil {
		return nil, err
	}

	scheduler := game.NewTickScheduler()
	engine, err := game.NewEngine(cfg, render.NewCanvas(), render.NewCanvas(), scheduler, opts...)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		switch {
		case step.Tick:
			scheduler.Advance(engine.Delay())
		case step.Advance > 0:
			scheduler.Advance(step.Advance)
		default:
			engine.Handle(step.Intent)
		}
	}
	return &Result{Snapshot: engine.Snapshot(), Dump: engine.Dump()}, nil
}

// Write は Result を人が読める形式で w に書き出します。
func (r *Result) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\nState: %s  Score: %d  Level: %d  Lines: %d\n",
		r.Dump, r.Snapshot.State.Label(), r.Snapshot.Score, r.Snapshot.Level, r.Snapshot.Lines)
	return err
}
