package tetris

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		action string
		want   Intent
		ok     bool
	}{
		{"move_left", IntentMoveLeft, true},
		{"move_right", IntentMoveRight, true},
		{"soft_drop", IntentSoftDrop, true},
		{"hard_drop", IntentHardDrop, true},
		{"rotate", IntentRotateCW, true},
		{"rotate_right", IntentRotateCW, true},
		{"rotate_left", IntentRotateCCW, true},
		{"pause", IntentPause, true},
		{"new_game", IntentNewGame, true},
		{"quit", IntentQuit, true},
		{"jump", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got, ok := ParseIntent(tt.action)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.NotEqual(t, "unknown", got.String())
			}
		})
	}
}

func TestGameStateText(t *testing.T) {
	assert.Equal(t, "READY", StateReady.String())
	assert.Equal(t, "GAME_OVER", StateGameOver.String())
	assert.Equal(t, "GAME OVER", StateGameOver.Label())
	assert.Equal(t, "PAUSED", StatePaused.Label())

	b, err := json.Marshal(map[string]GameState{"state": StatePlaying})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"PLAYING"}`, string(b))

	for _, st := range []GameState{StateReady, StatePlaying, StatePaused, StateGameOver} {
		var snap Snapshot
		b, err := json.Marshal(Snapshot{State: st})
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, &snap))
		assert.Equal(t, st, snap.State)
	}

	var st GameState
	assert.Error(t, st.UnmarshalText([]byte("FINISHED")))
	assert.Error(t, json.Unmarshal([]byte(`{"state":"game over"}`), &Snapshot{}))
}

func TestLevelThresholds(t *testing.T) {
	assert.Equal(t, []int{500, 1000, 2000, 4000}, LevelThresholds(500, 4))
	assert.Empty(t, LevelThresholds(500, 0))
}

func TestDelayForLevel(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg.BaseDelay, cfg.delayForLevel(0))
	assert.Equal(t, cfg.BaseDelay-3*cfg.DelayStep, cfg.delayForLevel(3))
	// 下限で止まる
	assert.Equal(t, cfg.MinDelay, cfg.delayForLevel(10))
	assert.Equal(t, cfg.MinDelay, cfg.delayForLevel(25))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Height = 3
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.BaseDelay = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Levels = 31
	assert.Error(t, bad.Validate())
}
