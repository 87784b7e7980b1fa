package tetris

// Intent は入力ソースからエンジンへ渡される操作の意図です。
type Intent int

const (
	IntentMoveLeft Intent = iota
	IntentMoveRight
	IntentSoftDrop
	IntentHardDrop
	IntentRotateCW
	IntentRotateCCW
	IntentPause
	IntentNewGame
	IntentQuit
)

var intentNames = map[Intent]string{
	IntentMoveLeft:  "move_left",
	IntentMoveRight: "move_right",
	IntentSoftDrop:  "soft_drop",
	IntentHardDrop:  "hard_drop",
	IntentRotateCW:  "rotate_right",
	IntentRotateCCW: "rotate_left",
	IntentPause:     "pause",
	IntentNewGame:   "new_game",
	IntentQuit:      "quit",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// ParseIntent はクライアントから送られたアクション名（例: "move_left", "rotate"）を Intent に変換します。
// "rotate" は "rotate_right" の別名です。
func ParseIntent(action string) (Intent, bool) {
	if action == "rotate" {
		return IntentRotateCW, true
	}
	for intent, name := range intentNames {
		if name == action {
			return intent, true
		}
	}
	return 0, false
}

// movement は intent がピース操作（移動・回転・落下）であれば true を返します。
func (i Intent) movement() bool {
	switch i {
	case IntentMoveLeft, IntentMoveRight, IntentSoftDrop, IntentHardDrop, IntentRotateCW, IntentRotateCCW:
		return true
	}
	return false
}
