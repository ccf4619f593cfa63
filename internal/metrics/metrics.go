// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーおよびミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordLogin(success bool)
	RecordRegistration()
	RecordPostCreated()
	RecordLikeToggled(state string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	registrations  prometheus.Counter
	postsCreated   prometheus.Counter
	likesToggled   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nova_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nova_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nova_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nova_login_fail_total",
			Help: "ログイン失敗（検証・ポリシー拒否含む）の合計数",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nova_registrations_total",
			Help: "アカウント登録成功の合計数",
		}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nova_posts_created_total",
			Help: "作成された投稿の合計数",
		}),
		likesToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nova_likes_toggled_total",
			Help: "いいねトグル操作の合計数（結果状態別）",
		}, []string{"state"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.loginSuccess,
		c.loginFail,
		c.registrations,
		c.postsCreated,
		c.likesToggled,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	if success {
		c.loginSuccess.Inc()
	} else {
		c.loginFail.Inc()
	}
}

// RecordRegistration はアカウント登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordPostCreated は投稿作成を記録する。
func (c *Collector) RecordPostCreated() {
	c.postsCreated.Inc()
}

// RecordLikeToggled はいいねトグル操作を結果状態別に記録する。
func (c *Collector) RecordLikeToggled(state string) {
	c.likesToggled.WithLabelValues(state).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
