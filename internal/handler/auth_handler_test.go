package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/nova/internal/auth"
	"github.com/hitoshi/nova/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn    func(ctx context.Context, assertion string) (*auth.LoginResult, error)
	registerFn func(ctx context.Context, in auth.RegisterInput) error
}

func (m *mockAuthService) Login(ctx context.Context, assertion string) (*auth.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, assertion)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil
}

type mockAuthMetrics struct {
	loginSuccess  int
	loginFail     int
	registrations int
}

func (m *mockAuthMetrics) RecordLogin(success bool) {
	if success {
		m.loginSuccess++
	} else {
		m.loginFail++
	}
}

func (m *mockAuthMetrics) RecordRegistration() {
	m.registrations++
}

func loginResultFixture() *auth.LoginResult {
	picture := "https://example.com/p.png"
	title := "Engineer - Backend"
	return &auth.LoginResult{
		User: &model.User{
			ID:         "user-1",
			Email:      "taro@google.com",
			Name:       "Taro",
			PictureURL: &picture,
			Title:      &title,
			CreatedAt:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		Token: "signed-token",
	}
}

// --- GoogleLogin ---

func TestAuthHandler_GoogleLogin_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, assertion string) (*auth.LoginResult, error) {
			if assertion != "google-id-token" {
				t.Errorf("assertion = %q", assertion)
			}
			return loginResultFixture(), nil
		},
	}
	collector := &mockAuthMetrics{}
	h := NewAuthHandler(svc, collector)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google",
		strings.NewReader(`{"token":"google-id-token"}`))
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	// ワイヤフォーマットのキー名を確認
	if body["id"] != "user-1" {
		t.Errorf("id = %v", body["id"])
	}
	if body["pictureUrl"] != "https://example.com/p.png" {
		t.Errorf("pictureUrl = %v", body["pictureUrl"])
	}
	if body["token"] != "signed-token" {
		t.Errorf("token = %v", body["token"])
	}

	if collector.loginSuccess != 1 || collector.loginFail != 0 {
		t.Errorf("metrics = %+v", collector)
	}
}

func TestAuthHandler_GoogleLogin_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"空ボディ", ""},
		{"不正なJSON", "{"},
		{"tokenなし", `{}`},
		{"tokenが空", `{"token":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/google",
				strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.GoogleLogin(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestAuthHandler_GoogleLogin_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"無効なアサーション", model.NewInvalidAssertionError(), http.StatusBadRequest, model.ErrCodeInvalidAssertion},
		{"許可外ドメイン", model.NewDomainNotAllowedError(), http.StatusForbidden, model.ErrCodeDomainNotAllowed},
		{"未登録アカウント", model.NewAccountNotFoundError(), http.StatusForbidden, model.ErrCodeAccountNotFound},
		{"内部エラー", errors.New("db down"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				loginFn: func(ctx context.Context, assertion string) (*auth.LoginResult, error) {
					return nil, tt.err
				},
			}
			collector := &mockAuthMetrics{}
			h := NewAuthHandler(svc, collector)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/google",
				strings.NewReader(`{"token":"x"}`))
			w := httptest.NewRecorder()

			h.GoogleLogin(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var body apiErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}

			if collector.loginFail != 1 {
				t.Errorf("loginFail = %d, want 1", collector.loginFail)
			}
		})
	}
}

// --- Register ---

func TestAuthHandler_Register_Success(t *testing.T) {
	var gotInput auth.RegisterInput
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, in auth.RegisterInput) error {
			gotInput = in
			return nil
		},
	}
	collector := &mockAuthMetrics{}
	h := NewAuthHandler(svc, collector)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Taro","email":"taro@google.com","specialization":"Backend","role":"Engineer","site":"Tokyo"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, http.StatusCreated, w.Body.String())
	}

	if gotInput.Email != "taro@google.com" || gotInput.Role != "Engineer" {
		t.Errorf("input = %+v", gotInput)
	}
	if collector.registrations != 1 {
		t.Errorf("registrations = %d, want 1", collector.registrations)
	}
}

func TestAuthHandler_Register_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"必須フィールド欠落", model.NewValidationError([]string{"name"}), http.StatusBadRequest},
		{"許可外ドメイン", model.NewDomainNotAllowedError(), http.StatusForbidden},
		{"重複アカウント", model.NewDuplicateAccountError(), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				registerFn: func(ctx context.Context, in auth.RegisterInput) error {
					return tt.err
				},
			}
			h := NewAuthHandler(svc, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
				strings.NewReader(`{"name":"Taro"}`))
			w := httptest.NewRecorder()

			h.Register(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader("{"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
