package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Leaderboard はユーザーごとの最高点ランキングです。
type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	Rank(ctx context.Context, userID string) (*models.LeaderboardEntry, error)
}

// ResultHandler はゲーム結果関連のハンドラーを管理する構造体です。
// resultRepo と leaderboard はどちらも nil を許容し、その場合は 503 を返します。
type ResultHandler struct {
	resultRepo  database.ResultRepository
	leaderboard Leaderboard
}

// NewResultHandler は新しいResultHandlerインスタンスを作成します。
func NewResultHandler(resultRepo database.ResultRepository, leaderboard Leaderboard) *ResultHandler {
	return &ResultHandler{
		resultRepo:  resultRepo,
		leaderboard: leaderboard,
	}
}

func parseLimit(r *http.Request) int {
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= maxLimit {
			limit = n
		}
	}
	return limit
}

// GetTopResults は上位ランキングを取得するハンドラーです。
// GET /api/results?limit=50
func (h *ResultHandler) GetTopResults(w http.ResponseWriter, r *http.Request) {
	if h.resultRepo == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "データベースが設定されていません")
		return
	}
	results, err := h.resultRepo.GetTopResults(r.Context(), parseLimit(r))
	if err != nil {
		log.Printf("ゲーム結果取得エラー: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "ゲーム結果取得に失敗しました")
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// GetUserResult は指定したユーザーの最高スコアと順位を取得するハンドラーです。
// GET /api/results/user/{userID}
func (h *ResultHandler) GetUserResult(w http.ResponseWriter, r *http.Request) {
	h.writeUserResult(w, r, mux.Vars(r)["userID"])
}

// GetMyResult は認証済みユーザー自身の最高スコアと順位を取得するハンドラーです。
// GET /api/results/me
func (h *ResultHandler) GetMyResult(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}
	h.writeUserResult(w, r, userID)
}

func (h *ResultHandler) writeUserResult(w http.ResponseWriter, r *http.Request, userID string) {
	if userID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "user_idが指定されていません")
		return
	}
	if h.resultRepo == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "データベースが設定されていません")
		return
	}

	userResult, err := h.resultRepo.GetUserRanking(r.Context(), userID)
	if err != nil {
		log.Printf("ユーザー結果取得エラー: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "ユーザー結果取得に失敗しました")
		return
	}
	if userResult == nil {
		WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"result":  nil,
			"message": "ユーザーのスコアが見つかりません",
		})
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  userResult,
	})
}

// GetLeaderboard はRedisのリーダーボードから上位を返します。
// GET /api/leaderboard?limit=10
func (h *ResultHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "リーダーボードが設定されていません")
		return
	}
	entries, err := h.leaderboard.Top(r.Context(), parseLimit(r))
	if err != nil {
		log.Printf("リーダーボード取得エラー: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "リーダーボードの取得に失敗しました")
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entries": entries,
	})
}

// GetLeaderboardRank はリーダーボード上のユーザーの順位を返します。
// GET /api/leaderboard/{userID}
func (h *ResultHandler) GetLeaderboardRank(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "リーダーボードが設定されていません")
		return
	}
	entry, err := h.leaderboard.Rank(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		log.Printf("リーダーボード順位取得エラー: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "リーダーボードの取得に失敗しました")
		return
	}
	if entry == nil {
		WriteErrorResponse(w, http.StatusNotFound, "ユーザーのスコアが見つかりません")
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entry":   entry,
	})
}
