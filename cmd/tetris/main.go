package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/replay"
	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/ui"
)

func main() {
	script := flag.String("replay", "", "描画せずに入力スクリプトを実行して結果を表示する (例: \"new_game hard_drop tick\")")
	seed := flag.Uint64("seed", 0, "ピース順の乱数シード (0 の場合はランダム)")
	flag.Parse()

	config.LoadEnv()
	// デスクトップ版は認証を使わない
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("BYPASS_AUTH", "true")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	var opts []game.Option
	if *seed != 0 {
		opts = append(opts, game.WithPieceSource(game.NewSeededSource(*seed)))
	}

	if *script != "" {
		res, err := replay.Run(cfg.Game, *script, opts...)
		if err != nil {
			log.Fatalf("リプレイに失敗しました: %v", err)
		}
		if err := res.Write(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	g, err := ui.NewGame(cfg.Game, cfg.BlockScale, opts...)
	if err != nil {
		log.Fatalf("ゲームの作成に失敗しました: %v", err)
	}
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Tetris")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
