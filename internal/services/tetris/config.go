package tetris

import (
	"errors"
	"fmt"
	"time"
)

// ゲーム全体に影響する既定値です。
const (
	DefaultBoardWidth  = 10
	DefaultBoardHeight = 22
	DefaultBaseDelay   = 1000 * time.Millisecond // 最初の自動落下間隔
	DefaultDelayStep   = 100 * time.Millisecond  // レベルごとの短縮幅
	DefaultMinDelay    = 100 * time.Millisecond  // 落下間隔の下限
	DefaultBaseScore   = 500                     // レベル1に必要なスコア
	DefaultLevels      = 10

	// PreviewSize はプレビューボックスの一辺のセル数です。
	PreviewSize = 4
)

// Config はエンジン生成時に固定される設定値です。生成後に変更することはできません。
type Config struct {
	Width     int
	Height    int
	BaseDelay time.Duration
	DelayStep time.Duration
	MinDelay  time.Duration
	BaseScore int
	Levels    int
}

// DefaultConfig は既定の設定を返します。
func DefaultConfig() Config {
	return Config{
		Width:     DefaultBoardWidth,
		Height:    DefaultBoardHeight,
		BaseDelay: DefaultBaseDelay,
		DelayStep: DefaultDelayStep,
		MinDelay:  DefaultMinDelay,
		BaseScore: DefaultBaseScore,
		Levels:    DefaultLevels,
	}
}

// Validate は設定値の妥当性を検証します。
func (c Config) Validate() error {
	if c.Width < 4 {
		return fmt.Errorf("board width must be at least 4, got %d", c.Width)
	}
	if c.Height < 4 {
		return fmt.Errorf("board height must be at least 4, got %d", c.Height)
	}
	if c.BaseDelay <= 0 {
		return errors.New("base delay must be positive")
	}
	if c.DelayStep < 0 || c.MinDelay < 0 {
		return errors.New("delay step and minimum delay must not be negative")
	}
	if c.BaseScore <= 0 {
		return errors.New("base score must be positive")
	}
	if c.Levels < 0 || c.Levels > 30 {
		return fmt.Errorf("number of levels must be within [0, 30], got %d", c.Levels)
	}
	return nil
}

// delayForLevel はレベル level における自動落下間隔を返します。
func (c Config) delayForLevel(level int) time.Duration {
	d := c.BaseDelay - time.Duration(level)*c.DelayStep
	if d < c.MinDelay {
		d = c.MinDelay
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}
