package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BypassToken は BYPASS_AUTH が有効な場合に任意のユーザーとして扱われるトークンです。
const BypassToken = "BYPASS_AUTH"

var (
	// ErrMissingToken はトークンが空の場合に返されます。
	ErrMissingToken = errors.New("token is required")
	// ErrInvalidToken はトークンの検証に失敗した場合に返されます。
	ErrInvalidToken = errors.New("invalid token")
)

type UserIDKey struct{}

// GetUserIDFromContext retrieves the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey{}).(string)
	return userID, ok && userID != ""
}

// WithUserID はユーザーIDを設定したコンテキストを返します。
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey{}, userID)
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Authenticator はHS256で署名されたJWTを検証・発行します。ユーザーIDは 'sub' クレームに格納されます。
type Authenticator struct {
	secret []byte
	bypass bool
}

// NewAuthenticator は Authenticator を作成します。bypass が true の場合は認証を行いません（テスト用）。
func NewAuthenticator(secret string, bypass bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), bypass: bypass}
}

// ParseToken はトークン（"Bearer " プレフィックス可）を検証し、ユーザーIDを返します。
func (a *Authenticator) ParseToken(tokenString string) (string, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if a.bypass && (tokenString == BypassToken || tokenString == "") {
		return "guest-" + uuid.New().String(), nil
	}
	if tokenString == "" {
		return "", ErrMissingToken
	}
	if len(a.secret) == 0 {
		return "", fmt.Errorf("%w: JWT secret is not configured", ErrInvalidToken)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// アルゴリズムがHMACであることを確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: missing user ID", ErrInvalidToken)
	}
	return userID, nil
}

// IssueToken は userID を 'sub' に持つトークンを発行します。
func (a *Authenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Required は有効なトークンが無いリクエストを 401 で拒否するミドルウェアです。
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" && !a.bypass {
			writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		if authHeader != "" && !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "Invalid Authorization header format. Must be 'Bearer <token>'")
			return
		}

		userID, err := a.ParseToken(authHeader)
		if err != nil {
			log.Printf("AuthMiddleware Error: %v", err)
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// Optional はトークンがあれば検証してユーザーIDを設定し、無ければゲストIDを割り当てるミドルウェアです。
// 不正なトークンは 401 で拒否します。
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			guest := "guest-" + uuid.New().String()
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), guest)))
			return
		}
		userID, err := a.ParseToken(authHeader)
		if err != nil {
			log.Printf("AuthMiddleware Error: %v", err)
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
