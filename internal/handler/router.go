package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nova/internal/middleware"
	"github.com/hitoshi/nova/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface

	// 投稿・いいね
	PostService PostServiceInterface
	LikeService LikeServiceInterface

	// メトリクス。HTTPHandlerがnilの場合は/metricsを公開しない。
	HTTPMetrics    middleware.HTTPMetrics
	AuthMetrics    AuthMetrics
	PostMetrics    PostMetrics
	MetricsHandler http.Handler

	// SPA静的配信。空の場合は配信しない。
	StaticDir string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging
//
// 認証ルート（/api/auth/*）はトークン認証の外、投稿ルート（/api/posts*）は
// Auth → RateLimit(General) の内側に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthMetrics)
	postHandler := NewPostHandler(deps.PostService, deps.LikeService, deps.PostMetrics)

	// --- 運用エンドポイント ---

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 認証不要のルート ---

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/google", authHandler.GoogleLogin)
		r.Post("/register", authHandler.Register)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListFeed)

			// POST /api/posts - 投稿作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.PostCreationMiddleware()).Post("/", postHandler.Create)

			r.Post("/{postID}/like", postHandler.ToggleLike)
		})
	})

	// 未定義の/api以下は404 JSONで返す。それ以外はSPAにフォールバックする。
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if isAPIPath(req.URL.Path) {
			writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
				Code:     "NOT_FOUND",
				Message:  "指定されたエンドポイントは存在しません。",
				Category: "system",
				Action:   "リクエストのURLを確認してください。",
			})
			return
		}

		if deps.StaticDir != "" {
			NewSPAHandler(deps.StaticDir).ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})

	return r
}

// isAPIPath はパスがAPI名前空間に属するか判定する。
func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
