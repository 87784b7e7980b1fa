package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models"
)

// ResultRepository はゲーム結果関連のデータベース操作を定義するインターフェースです。
type ResultRepository interface {
	// CreateResult は新しいゲーム結果レコードを作成します
	CreateResult(ctx context.Context, userID string, score, level, lines int) (*models.Result, error)

	// GetTopResults は上位N件の結果を取得します（ランキング用）
	GetTopResults(ctx context.Context, limit int) ([]models.ResultResponse, error)

	// GetUserBestScore は指定したユーザーの最高スコアを取得します
	GetUserBestScore(ctx context.Context, userID string) (*models.Result, error)

	// GetUserRanking は指定したユーザーの現在のランキング順位を取得します
	GetUserRanking(ctx context.Context, userID string) (*models.ResultResponse, error)
}

type resultRepositoryImpl struct {
	db *sql.DB
}

// NewResultRepository はResultRepositoryの新しいインスタンスを作成します。
func NewResultRepository(db *sql.DB) ResultRepository {
	return &resultRepositoryImpl{db: db}
}

func (r *resultRepositoryImpl) CreateResult(ctx context.Context, userID string, score, level, lines int) (*models.Result, error) {
	now := time.Now()
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO results (user_id, score, level, lines, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		userID, score, level, lines, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("ゲーム結果レコードの作成に失敗しました: %w", err)
	}

	return &models.Result{
		ID:        id,
		UserID:    userID,
		Score:     score,
		Level:     level,
		Lines:     lines,
		CreatedAt: now,
	}, nil
}

func (r *resultRepositoryImpl) GetTopResults(ctx context.Context, limit int) ([]models.ResultResponse, error) {
	query := `
		SELECT
			id, user_id, score, level, lines, created_at,
			ROW_NUMBER() OVER (ORDER BY score DESC, created_at ASC) as rank
		FROM results
		ORDER BY score DESC, created_at ASC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ゲーム結果取得に失敗しました: %w", err)
	}
	defer rows.Close()

	results := []models.ResultResponse{}
	for rows.Next() {
		var result models.ResultResponse
		err := rows.Scan(&result.ID, &result.UserID, &result.Score, &result.Level, &result.Lines, &result.CreatedAt, &result.Rank)
		if err != nil {
			return nil, fmt.Errorf("ゲーム結果データのスキャンに失敗しました: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ゲーム結果取得中にエラーが発生しました: %w", err)
	}
	return results, nil
}

// GetUserBestScore は指定したユーザーの最高スコアを取得します。記録が無い場合は nil, nil を返します。
func (r *resultRepositoryImpl) GetUserBestScore(ctx context.Context, userID string) (*models.Result, error) {
	query := `
		SELECT id, user_id, score, level, lines, created_at
		FROM results
		WHERE user_id = $1
		ORDER BY score DESC, created_at ASC
		LIMIT 1
	`

	var result models.Result
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&result.ID, &result.UserID, &result.Score, &result.Level, &result.Lines, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの最高スコア取得に失敗しました: %w", err)
	}
	return &result, nil
}

// GetUserRanking はユーザーの最高スコアとその順位を返します。記録が無い場合は nil, nil を返します。
func (r *resultRepositoryImpl) GetUserRanking(ctx context.Context, userID string) (*models.ResultResponse, error) {
	best, err := r.GetUserBestScore(ctx, userID)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, nil
	}

	query := `
		SELECT COUNT(*) + 1 as rank
		FROM results
		WHERE score > $1 OR (score = $1 AND created_at < $2)
	`
	var rank int
	if err := r.db.QueryRowContext(ctx, query, best.Score, best.CreatedAt).Scan(&rank); err != nil {
		return nil, fmt.Errorf("ユーザーランキング順位の計算に失敗しました: %w", err)
	}

	return &models.ResultResponse{
		ID:        best.ID,
		UserID:    best.UserID,
		Score:     best.Score,
		Level:     best.Level,
		Lines:     best.Lines,
		CreatedAt: best.CreatedAt,
		Rank:      rank,
	}, nil
}
