package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/database"
)

// データベースへの接続を確認し、resultsテーブルを作成します。
func main() {
	config.LoadEnv()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("エラー: DATABASE_URL 環境変数が設定されていません。")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbService, err := database.NewDatabaseService(ctx, databaseURL)
	if err != nil {
		log.Fatalf("エラー: データベースへの接続に失敗しました: %v", err)
	}
	defer dbService.Close()

	if version, err := dbService.Version(ctx); err != nil {
		log.Printf("警告: SELECT version() クエリの実行に失敗しました: %v", err)
	} else {
		fmt.Printf("データベースバージョン: %s\n", version)
	}

	if err := dbService.EnsureSchema(ctx); err != nil {
		log.Fatalf("エラー: スキーマの作成に失敗しました: %v", err)
	}
	fmt.Println("成功: resultsテーブルの準備ができました。")
}
