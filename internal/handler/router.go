package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/recipeman/internal/metrics"
	"github.com/hitoshi/recipeman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenResolver     middleware.TokenResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 観測
	Metrics         *metrics.Collector
	MetricsGatherer prometheus.Gatherer
	HealthChecker   HealthChecker

	// サービス
	AuthService   AuthServiceInterface
	RecipeService RecipeServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → CORS → SecurityHeaders
//
// 認証不要ルート（POST /token, POST /users, /healthz, /metrics）は
// トークン認証の外に配置する。レシピの各ルートはGET/POST/PATCH/DELETEのみ
// 登録し、それ以外のメソッドはchiが405で応答する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.AuthService)
	recipeHandler := NewRecipeHandler(deps.RecipeService)

	// --- 認証不要のルート ---

	// トークン発行とユーザー登録は認証前のためIP単位のレート制限を適用
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.TokenIssuanceMiddleware())
		}
		r.Post("/token", authHandler.CreateToken)
		r.Post("/users", authHandler.Register)
	})

	r.Get("/healthz", healthzHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: TokenAuth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewTokenAuthMiddleware(deps.TokenResolver))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 現在のユーザー情報
		r.Get("/user", authHandler.Me)

		// レシピ管理
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)

			// IDは数値のみマッチさせ、数値以外のIDはchiの404に委ねる
			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/", recipeHandler.Get)
				r.Patch("/", recipeHandler.Update)
				r.Delete("/", recipeHandler.Delete)
			})
		})
	})

	return r
}

// healthzHandler はDB接続の死活を確認するヘルスチェックハンドラーを返す。
func healthzHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
