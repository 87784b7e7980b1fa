package database

import (
	"context"
	"errors"
	"log"
)

// ResultRecorder は終了したゲームの結果を results テーブルとリーダーボードの両方に記録します。
// どちらも nil を許容し、設定されているものにだけ書き込みます。
type ResultRecorder struct {
	repo        ResultRepository
	leaderboard *Leaderboard
}

// NewResultRecorder は ResultRecorder を作成します。
func NewResultRecorder(repo ResultRepository, leaderboard *Leaderboard) *ResultRecorder {
	return &ResultRecorder{repo: repo, leaderboard: leaderboard}
}

// RecordResult は結果を記録します。片方の書き込みに失敗してももう片方は試みます。
func (r *ResultRecorder) RecordResult(ctx context.Context, userID string, score, level, lines int) error {
	var errs []error
	if r.repo != nil {
		result, err := r.repo.CreateResult(ctx, userID, score, level, lines)
		if err != nil {
			errs = append(errs, err)
		} else {
			log.Printf("[Results] Saved result %d for user %s (score %d)", result.ID, userID, score)
		}
	}
	if r.leaderboard != nil {
		if err := r.leaderboard.RecordScore(ctx, userID, score); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
