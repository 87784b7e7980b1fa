// Package api はHTTP APIのルーティングを組み立てます。
package api

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/api/handlers"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/tetris-engine/internal/services/session"
)

// Dependencies はルーターが使用するサービスです。Results と Leaderboard は nil でも構いません。
type Dependencies struct {
	Sessions       *session.SessionManager
	Auth           *middleware.Authenticator
	Results        database.ResultRepository
	Leaderboard    handlers.Leaderboard
	AllowedOrigins []string
	AccessLog      bool
}

// NewRouter は全てのエンドポイントを登録した http.Handler を返します。
func NewRouter(d Dependencies) http.Handler {
	r := mux.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	if d.AccessLog {
		r.Use(chimw.Logger)
	}

	r.Handle("/healthz", handlers.NewHealthHandler(d.Sessions)).Methods(http.MethodGet)

	gameHandler := handlers.NewGameHandler(d.Sessions, d.Auth, d.AllowedOrigins)
	games := r.PathPrefix("/api/games").Subrouter()
	games.Use(d.Auth.Optional)
	games.HandleFunc("", gameHandler.CreateGame).Methods(http.MethodPost)
	games.HandleFunc("/{gameID}", gameHandler.GetGame).Methods(http.MethodGet)
	games.HandleFunc("/{gameID}", gameHandler.EndGame).Methods(http.MethodDelete)
	games.HandleFunc("/{gameID}/ws", gameHandler.HandleWebSocketConnection).Methods(http.MethodGet)

	resultHandler := handlers.NewResultHandler(d.Results, d.Leaderboard)
	r.HandleFunc("/api/results", resultHandler.GetTopResults).Methods(http.MethodGet)
	r.HandleFunc("/api/results/user/{userID}", resultHandler.GetUserResult).Methods(http.MethodGet)
	r.Handle("/api/results/me", d.Auth.Required(http.HandlerFunc(resultHandler.GetMyResult))).Methods(http.MethodGet)
	r.HandleFunc("/api/leaderboard", resultHandler.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/leaderboard/{userID}", resultHandler.GetLeaderboardRank).Methods(http.MethodGet)

	return middleware.CORSHandler(d.AllowedOrigins)(r)
}
