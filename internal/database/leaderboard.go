package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models"
)

// LeaderboardKey はユーザーごとの最高スコアを保持するソート済みセットのキーです。
const LeaderboardKey = "tetris:leaderboard"

// Leaderboard はRedisのソート済みセットで最高スコアのランキングを管理します。
// PostgreSQL の results テーブルが全記録を持つのに対し、こちらはユーザーごとの最高点だけを保持します。
type Leaderboard struct {
	client *redis.Client
	key    string
}

// NewLeaderboard は redisURL に接続し、Pingに成功した場合に Leaderboard を返します。
func NewLeaderboard(ctx context.Context, redisURL string) (*Leaderboard, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL の解析に失敗しました: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redisに接続できません: %w", err)
	}
	log.Println("[Leaderboard] Redisに接続しました")
	return &Leaderboard{client: client, key: LeaderboardKey}, nil
}

// RecordScore はユーザーのスコアを記録します。既存の最高点を上回った場合のみ更新されます。
func (l *Leaderboard) RecordScore(ctx context.Context, userID string, score int) error {
	err := l.client.ZAddArgs(ctx, l.key, redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: float64(score), Member: userID}},
	}).Err()
	if err != nil {
		return fmt.Errorf("リーダーボードの更新に失敗しました: %w", err)
	}
	return nil
}

// Top は上位 limit 件を返します。
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		return []models.LeaderboardEntry{}, nil
	}
	zs, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("リーダーボードの取得に失敗しました: %w", err)
	}
	entries := make([]models.LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, models.LeaderboardEntry{UserID: member, Score: int(z.Score), Rank: i + 1})
	}
	return entries, nil
}

// Rank はユーザーの順位と最高点を返します。記録が無い場合は nil, nil を返します。
func (l *Leaderboard) Rank(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	rank, err := l.client.ZRevRank(ctx, l.key, userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リーダーボード順位の取得に失敗しました: %w", err)
	}
	score, err := l.client.ZScore(ctx, l.key, userID).Result()
	if err != nil {
		return nil, fmt.Errorf("リーダーボードのスコア取得に失敗しました: %w", err)
	}
	return &models.LeaderboardEntry{UserID: userID, Score: int(score), Rank: int(rank) + 1}, nil
}

// Close はRedis接続を閉じます。
func (l *Leaderboard) Close() error {
	return l.client.Close()
}
