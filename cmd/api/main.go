package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/api"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/session"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	if cfg.BypassAuth {
		log.Println("warning: BYPASS_AUTH が有効です。トークン無しの接続はゲストとして扱われます。")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Dependencies{
		Auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.BypassAuth),
		AllowedOrigins: cfg.AllowedOrigins,
		AccessLog:      !cfg.IsProduction(),
	}

	// データベースとRedisはどちらも任意。設定されていなければ結果は保存されない
	var resultRepo database.ResultRepository
	if cfg.DatabaseURL != "" {
		dbService, err := database.NewDatabaseService(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("データベースサービスの初期化に失敗しました: %v", err)
		}
		defer dbService.Close()
		if err := dbService.EnsureSchema(ctx); err != nil {
			log.Fatalf("スキーマの作成に失敗しました: %v", err)
		}
		resultRepo = database.NewResultRepository(dbService.DB)
		deps.Results = resultRepo
	} else {
		log.Println("warning: DATABASE_URL が設定されていません。ゲーム結果は保存されません。")
	}

	var leaderboard *database.Leaderboard
	if cfg.RedisURL != "" {
		leaderboard, err = database.NewLeaderboard(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("リーダーボードの初期化に失敗しました: %v", err)
		}
		defer leaderboard.Close()
		deps.Leaderboard = leaderboard
	}

	var recorder session.ResultRecorder
	if resultRepo != nil || leaderboard != nil {
		recorder = database.NewResultRecorder(resultRepo, leaderboard)
	}

	sessionManager := session.NewSessionManager(cfg.Game, recorder)
	sessionManager.StartCleanup(ctx, time.Minute, cfg.SessionIdle)
	deps.Sessions = sessionManager

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("サーバーの起動に失敗しました: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("シャットダウンシグナルを受信しました。")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("サーバーのシャットダウンに失敗しました: %v", err)
	}
	sessionManager.Shutdown()
}
