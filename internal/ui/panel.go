package ui

import (
	"fmt"

	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

// Panel はスコア・レベル・状態を表示する情報パネルです。エンジンからの通知を保持します。
type Panel struct {
	score int
	level int
	state game.GameState
}

func (p *Panel) OnScoreChanged(score int)           { p.score = score }
func (p *Panel) OnLevelChanged(level int)           { p.level = level }
func (p *Panel) OnStateChanged(state game.GameState) { p.state = state }

// Lines はパネルに表示する文字列を上から順に返します。
func (p *Panel) Lines() []string {
	return []string{
		"SCORE",
		fmt.Sprintf("%010d", p.score),
		"LEVEL",
		fmt.Sprintf("%10d", p.level),
		"",
		p.state.Label(),
	}
}
