package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_ImplementsInterface(t *testing.T) {
	var _ MetricsCollector = (*Collector)(nil)
}

func TestCollector_RecordsAndExposes(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)
	c.RecordRequestLatency(42 * time.Millisecond)
	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordRegistration()
	c.RecordPostCreated()
	c.RecordLikeToggled("liked")
	c.RecordLikeToggled("unliked")
	c.RecordLikeToggled("liked")

	// スクレイプ出力にメトリクスが現れること
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(registry).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := w.Body.String()
	expects := []string{
		`nova_http_status_total{status_code="200"} 2`,
		`nova_http_status_total{status_code="404"} 1`,
		`nova_login_success_total 1`,
		`nova_login_fail_total 1`,
		`nova_registrations_total 1`,
		`nova_posts_created_total 1`,
		`nova_likes_toggled_total{state="liked"} 2`,
		`nova_likes_toggled_total{state="unliked"} 1`,
	}
	for _, want := range expects {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}

	if !strings.Contains(body, "nova_request_latency_seconds") {
		t.Error("metrics output should contain latency histogram")
	}
}

func TestNewCollector_RegistersWithoutPanic(t *testing.T) {
	// 同一レジストリへの二重登録はpanicするため、生成は1回であること
	registry := prometheus.NewRegistry()
	if c := NewCollector(registry); c == nil {
		t.Fatal("expected non-nil collector")
	}
}
