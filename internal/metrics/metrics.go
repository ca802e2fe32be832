// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// HTTPミドルウェアとドメインサービスの両方から利用する。
type Collector struct {
	httpStatus         *prometheus.CounterVec
	httpDuration       prometheus.Histogram
	recipesCreated     prometheus.Counter
	ingredientsCreated prometheus.Counter
	ingredientsDeleted prometheus.Counter
	authFailures       prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipeman_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		recipesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeman_recipes_created_total",
			Help: "作成されたレシピの合計数",
		}),
		ingredientsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeman_ingredients_created_total",
			Help: "差分適用で作成された材料行の合計数",
		}),
		ingredientsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeman_ingredients_deleted_total",
			Help: "差分適用で削除された材料行の合計数",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeman_auth_failure_total",
			Help: "認証失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpDuration,
		c.recipesCreated,
		c.ingredientsCreated,
		c.ingredientsDeleted,
		c.authFailures,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPDuration はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordHTTPDuration(duration time.Duration) {
	c.httpDuration.Observe(duration.Seconds())
}

// RecordRecipeCreated はレシピ作成を記録する。
func (c *Collector) RecordRecipeCreated() {
	c.recipesCreated.Inc()
}

// RecordIngredientsCreated は作成された材料行数を記録する。
func (c *Collector) RecordIngredientsCreated(count int) {
	c.ingredientsCreated.Add(float64(count))
}

// RecordIngredientsDeleted は削除された材料行数を記録する。
func (c *Collector) RecordIngredientsDeleted(count int) {
	c.ingredientsDeleted.Add(float64(count))
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure() {
	c.authFailures.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
