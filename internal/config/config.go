// Package config は環境変数からアプリケーションの設定を読み込みます。
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	game "github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/tetris"
)

// Config はサーバーとゲームの設定です。
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string // 空の場合はゲーム結果を保存しない
	RedisURL       string // 空の場合はリーダーボードを使用しない
	JWTSecret      string
	BypassAuth     bool
	AllowedOrigins []string
	BlockScale     int
	SessionIdle    time.Duration
	Game           game.Config
}

// LoadEnv は開発環境であれば .env ファイルを読み込みます。
func LoadEnv() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
		}
	}
}

// Load は環境変数から Config を作成します。
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		Game:           game.DefaultConfig(),
	}

	var err error
	if cfg.BypassAuth, err = getBool("BYPASS_AUTH", false); err != nil {
		return nil, err
	}
	if cfg.BlockScale, err = getInt("BLOCK_SCALE", 30); err != nil {
		return nil, err
	}
	idleMinutes, err := getInt("SESSION_IDLE_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.SessionIdle = time.Duration(idleMinutes) * time.Minute

	if cfg.Game.Width, err = getInt("BOARD_WIDTH", cfg.Game.Width); err != nil {
		return nil, err
	}
	if cfg.Game.Height, err = getInt("BOARD_HEIGHT", cfg.Game.Height); err != nil {
		return nil, err
	}
	if cfg.Game.BaseScore, err = getInt("BASE_SCORE", cfg.Game.BaseScore); err != nil {
		return nil, err
	}
	if cfg.Game.Levels, err = getInt("NO_OF_LEVELS", cfg.Game.Levels); err != nil {
		return nil, err
	}
	if cfg.Game.BaseDelay, err = getMillis("BASE_DELAY_MS", cfg.Game.BaseDelay); err != nil {
		return nil, err
	}
	if cfg.Game.DelayStep, err = getMillis("DELAY_STEP_MS", cfg.Game.DelayStep); err != nil {
		return nil, err
	}
	if cfg.Game.MinDelay, err = getMillis("MIN_DELAY_MS", cfg.Game.MinDelay); err != nil {
		return nil, err
	}

	if err := cfg.Game.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if cfg.BlockScale <= 0 {
		return nil, fmt.Errorf("BLOCK_SCALE must be positive, got %d", cfg.BlockScale)
	}
	if cfg.JWTSecret == "" && !cfg.BypassAuth {
		return nil, fmt.Errorf("JWT_SECRET is required unless BYPASS_AUTH is enabled")
	}
	return cfg, nil
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getMillis(key string, fallback time.Duration) (time.Duration, error) {
	n, err := getInt(key, int(fallback.Milliseconds()))
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
