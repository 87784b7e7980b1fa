package tetris

import "fmt"

// GameState はゲーム全体の状態です。
type GameState int

const (
	StateReady    GameState = iota // 初期状態。新規ゲーム開始のみ受け付ける
	StatePlaying                   // プレイ中
	StatePaused                    // 一時停止中。操作は無視される
	StateGameOver                  // スポーン不能によりセッション終了
)

func (s GameState) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StateGameOver:
		return "GAME_OVER"
	default:
		return fmt.Sprintf("GameState(%d)", int(s))
	}
}

// MarshalText は状態をJSON等で文字列として出力するために実装しています。
func (s GameState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText は MarshalText の出力（"PLAYING" など）を状態に戻します。
func (s *GameState) UnmarshalText(b []byte) error {
	for _, st := range []GameState{StateReady, StatePlaying, StatePaused, StateGameOver} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", string(b))
}

// Label は表示用の文字列です（"GAME OVER" のように空白区切り）。
func (s GameState) Label() string {
	if s == StateGameOver {
		return "GAME OVER"
	}
	return s.String()
}
