// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/nova/internal/auth"
	"github.com/hitoshi/nova/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, assertion string) (*auth.LoginResult, error)
	Register(ctx context.Context, in auth.RegisterInput) error
}

// AuthMetrics は認証ハンドラーのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。nilの場合は記録しない。
type AuthMetrics interface {
	RecordLogin(success bool)
	RecordRegistration()
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	collector AuthMetrics
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, collector AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service:   service,
		collector: collector,
	}
}

// --- リクエスト/レスポンス型 ---

// googleLoginRequest はGoogleログインリクエストのボディ。
type googleLoginRequest struct {
	Token string `json:"token"`
}

// userResponse はユーザー情報のレスポンス。
// フィールド名はSPAが消費するワイヤフォーマットの一部。
type userResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PictureURL     *string   `json:"pictureUrl"`
	Title          *string   `json:"title"`
	Role           *string   `json:"role"`
	Specialization *string   `json:"specialization"`
	Site           *string   `json:"site"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// loginResponse はログイン成功時のレスポンス。ユーザー情報とトークンを返す。
type loginResponse struct {
	userResponse
	Token string `json:"token"`
}

// registerRequest は登録リクエストのボディ。全フィールド必須。
type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Role           string `json:"role"`
	Site           string `json:"site"`
}

// messageResponse は確認メッセージのみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// newUserResponse はmodel.Userからレスポンスを構築する。
func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		PictureURL:     u.PictureURL,
		Title:          u.Title,
		Role:           u.Role,
		Specialization: u.Specialization,
		Site:           u.Site,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// GoogleLogin はGoogleのIDトークンでログインし、セッショントークンを発行する。
// POST /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeValidation,
			Message:  "tokenフィールドは必須です。",
			Category: "validation",
			Action:   "Googleログインをやり直してください。",
		})
		return
	}

	result, err := h.service.Login(r.Context(), req.Token)
	if err != nil {
		if h.collector != nil {
			h.collector.RecordLogin(false)
		}
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordLogin(true)
	}

	writeJSON(w, http.StatusOK, loginResponse{
		userResponse: newUserResponse(result.User),
		Token:        result.Token,
	})
}

// Register は新規アカウントを登録する。トークンは発行しない。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeValidation,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Specialization: req.Specialization,
		Role:           req.Role,
		Site:           req.Site,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRegistration()
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Message: "登録が完了しました。ログインしてください。",
	})
}
