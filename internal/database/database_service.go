package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq" // PostgreSQLドライバー
)

// schema はアプリケーションが使用するテーブル定義です。既存のテーブルには影響しません。
const schema = `
CREATE TABLE IF NOT EXISTS results (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT        NOT NULL,
	score      INTEGER     NOT NULL,
	level      INTEGER     NOT NULL DEFAULT 0,
	lines      INTEGER     NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS results_score_idx ON results (score DESC, created_at ASC);
CREATE INDEX IF NOT EXISTS results_user_idx ON results (user_id);
`

// DatabaseService はデータベース接続を保持します。
type DatabaseService struct {
	DB *sql.DB
}

// NewDatabaseService はPostgreSQLに接続し、Pingで疎通を確認します。
func NewDatabaseService(ctx context.Context, databaseURL string) (*DatabaseService, error) {
	log.Printf("[Database] 接続を試行中: %s...", redact(databaseURL))
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("データベースへの接続オブジェクト作成に失敗しました: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベースのPingに失敗しました。接続情報やネットワークを確認してください: %w", err)
	}

	log.Println("[Database] データベースに正常に接続しました。")
	return &DatabaseService{DB: db}, nil
}

// EnsureSchema は results テーブルが無ければ作成します。
func (s *DatabaseService) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("スキーマの作成に失敗しました: %w", err)
	}
	return nil
}

// Version はデータベースのバージョン文字列を返します。
func (s *DatabaseService) Version(ctx context.Context) (string, error) {
	var version string
	if err := s.DB.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("SELECT version() の実行に失敗しました: %w", err)
	}
	return version, nil
}

// Close は接続を閉じます。
func (s *DatabaseService) Close() error {
	return s.DB.Close()
}

// redact は接続文字列をログに出せる長さに切り詰めます（パスワードが後半に来ることが多いため）。
func redact(url string) string {
	return url[:min(len(url), 24)]
}
