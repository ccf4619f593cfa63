package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/nova/internal/auth"
	"github.com/hitoshi/nova/internal/middleware"
	"github.com/hitoshi/nova/internal/model"
)

// --- モック定義 ---

type staticTokenVerifier struct {
	userID string
}

func (v *staticTokenVerifier) Verify(token string) (string, error) {
	if token == "valid-token" {
		return v.userID, nil
	}
	return "", errors.New("invalid token")
}

type staticUserFinder struct {
	user *model.User
}

func (f *staticUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, nil
}

// newTestRouter はテスト用の依存関係でルーターを構築する。
func newTestRouter(t *testing.T, mutate func(deps *RouterDeps)) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		PostCreateRate:  rate.Limit(1000),
		PostCreateBurst: 1000,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	deps := &RouterDeps{
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),

		TokenVerifier:     &staticTokenVerifier{userID: "user-1"},
		UserFinder:        &staticUserFinder{user: &model.User{ID: "user-1", Email: "taro@google.com"}},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,

		AuthService: &mockAuthService{},
		PostService: &mockPostService{},
		LikeService: &mockLikeService{},
	}
	if mutate != nil {
		mutate(deps)
	}

	return NewRouter(deps)
}

// --- ルーティング ---

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_AuthRoutes_Public(t *testing.T) {
	// 認証ルートはBearerトークンなしで到達できること
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.AuthService = &mockAuthService{
			loginFn: func(ctx context.Context, assertion string) (*auth.LoginResult, error) {
				return loginResultFixture(), nil
			},
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google",
		strings.NewReader(`{"token":"google-id-token"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestRouter_PostRoutes_RequireAuth(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/posts"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/posts/post-1/like"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRouter_PostRoutes_WithValidToken(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.PostService = &mockPostService{
			listFeedFn: func(ctx context.Context, viewerID string) ([]model.FeedPost, error) {
				if viewerID != "user-1" {
					t.Errorf("viewerID = %q", viewerID)
				}
				return []model.FeedPost{feedPostFixture()}, nil
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRouter_ToggleLike_RoutesPostID(t *testing.T) {
	var gotPostID string
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.LikeService = &mockLikeService{
			toggleFn: func(ctx context.Context, userID, postID string) (model.LikeState, error) {
				gotPostID = postID
				return model.LikeStateLiked, nil
			},
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/api/posts/abc-123/like", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotPostID != "abc-123" {
		t.Errorf("postID = %q, want %q", gotPostID, "abc-123")
	}
}

func TestRouter_UnknownAPIPath_Returns404JSON(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q", w.Body.String())
	}
	if body.Code != "NOT_FOUND" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestRouter_SPAFallback(t *testing.T) {
	// index.htmlを持つ静的ディレクトリを用意する
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.StaticDir = dir
	})

	// 未知の非APIパスはindex.htmlにフォールバックすること
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed/some-client-route", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); body != "<html>app</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
