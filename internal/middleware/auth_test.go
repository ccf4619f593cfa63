package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/nova/internal/model"
)

// --- モック定義 ---

type mockTokenVerifier struct {
	verifyFn func(token string) (string, error)
}

func (m *mockTokenVerifier) Verify(token string) (string, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return "", errors.New("not implemented")
}

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// --- テストヘルパー ---

func authTestHandler(t *testing.T, gotIdentity **Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromContext(r.Context())
		if err != nil {
			t.Errorf("identity missing in authenticated request: %v", err)
		}
		*gotIdentity = identity
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Success(t *testing.T) {
	tokens := &mockTokenVerifier{
		verifyFn: func(token string) (string, error) {
			if token != "valid-token" {
				t.Errorf("token = %q", token)
			}
			return "user-1", nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: "taro@google.com"}, nil
		},
	}

	var gotIdentity *Identity
	handler := NewAuthMiddleware(tokens, users)(authTestHandler(t, &gotIdentity))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotIdentity == nil {
		t.Fatal("expected identity in context")
	}
	if gotIdentity.UserID != "user-1" || gotIdentity.Email != "taro@google.com" {
		t.Errorf("identity = %+v", gotIdentity)
	}
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	handler := NewAuthMiddleware(&mockTokenVerifier{}, &mockUserFinder{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}),
	)

	tests := []struct {
		name   string
		header string
	}{
		{"ヘッダーなし", ""},
		{"Bearerプレフィックスなし", "valid-token"},
		{"Basic認証", "Basic dXNlcjpwYXNz"},
		{"トークン部が空", "Bearer "},
		{"小文字のbearer", "bearer valid-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokens := &mockTokenVerifier{
		verifyFn: func(token string) (string, error) {
			return "", errors.New("expired")
		},
	}
	handler := NewAuthMiddleware(tokens, &mockUserFinder{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	// トークンは有効だがユーザーが削除済みの場合は401
	tokens := &mockTokenVerifier{
		verifyFn: func(token string) (string, error) {
			return "ghost", nil
		},
	}
	handler := NewAuthMiddleware(tokens, &mockUserFinder{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_StorageError(t *testing.T) {
	tokens := &mockTokenVerifier{
		verifyFn: func(token string) (string, error) {
			return "user-1", nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}
	handler := NewAuthMiddleware(tokens, users)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestIdentityFromContext_NotSet(t *testing.T) {
	if _, err := IdentityFromContext(context.Background()); err == nil {
		t.Error("expected error for context without identity")
	}
}
