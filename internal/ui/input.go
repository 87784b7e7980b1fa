package ui

import (
	"github.com/hajimehoshi/ebiten/v2"

	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

// キーリピートの設定（フレーム数）
const (
	repeatDelay    = 12
	repeatInterval = 3
)

type binding struct {
	key    ebiten.Key
	intent game.Intent
	repeat bool
}

// bindings はキー割り当てです。
var bindings = []binding{
	{ebiten.KeyArrowLeft, game.IntentMoveLeft, true},
	{ebiten.KeyArrowRight, game.IntentMoveRight, true},
	{ebiten.KeyArrowDown, game.IntentSoftDrop, true},
	{ebiten.KeyArrowUp, game.IntentHardDrop, false},
	{ebiten.KeySpace, game.IntentHardDrop, false},
	{ebiten.KeyA, game.IntentRotateCW, false},
	{ebiten.KeyS, game.IntentRotateCCW, false},
	{ebiten.KeyP, game.IntentPause, false},
	{ebiten.KeyN, game.IntentNewGame, false},
	{ebiten.KeyEscape, game.IntentQuit, false},
	{ebiten.KeyQ, game.IntentQuit, false},
}

// intentsFor は各キーが押され続けているフレーム数から、このフレームで発生する Intent を返します。
// held はキーが押されていなければ0を返す関数です（inpututil.KeyPressDuration）。
func intentsFor(held func(ebiten.Key) int) []game.Intent {
	var intents []game.Intent
	for _, b := range bindings {
		if fires(held(b.key), b.repeat) {
			intents = append(intents, b.intent)
		}
	}
	return intents
}

// fires は押下フレーム数 d のキーがこのフレームで入力を発生させるかを返します。
func fires(d int, repeat bool) bool {
	if d == 1 {
		return true
	}
	if !repeat || d < repeatDelay {
		return false
	}
	return (d-repeatDelay)%repeatInterval == 0
}
