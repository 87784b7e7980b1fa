package models

import (
	"time"
)

// Result はresultsテーブルのレコードに対応する構造体です。
type Result struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"` // UUID
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Lines     int       `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultResponse はAPI レスポンス用の構造体です。
type ResultResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Lines     int       `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	Rank      int       `json:"rank"` // ランキング順位
}

// LeaderboardEntry はRedisのリーダーボードの1件です。
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank"`
}
