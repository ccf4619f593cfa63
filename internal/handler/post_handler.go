package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nova/internal/middleware"
	"github.com/hitoshi/nova/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	ListFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error)
	Create(ctx context.Context, authorID, content string) (*model.FeedPost, error)
}

// LikeServiceInterface はいいねハンドラーが必要とするサービスインターフェース。
type LikeServiceInterface interface {
	Toggle(ctx context.Context, userID, postID string) (model.LikeState, error)
}

// PostMetrics は投稿ハンドラーのメトリクス記録インターフェース。nilの場合は記録しない。
type PostMetrics interface {
	RecordPostCreated()
	RecordLikeToggled(state string)
}

// PostHandler は投稿・いいね関連のHTTPハンドラー。
type PostHandler struct {
	posts     PostServiceInterface
	likes     LikeServiceInterface
	collector PostMetrics
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(posts PostServiceInterface, likes LikeServiceInterface, collector PostMetrics) *PostHandler {
	return &PostHandler{
		posts:     posts,
		likes:     likes,
		collector: collector,
	}
}

// --- リクエスト/レスポンス型 ---

// postAuthorResponse は投稿者のサマリー。
type postAuthorResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PictureURL *string `json:"pictureUrl"`
	Title      *string `json:"title"`
}

// likeCountResponse はいいね数の集計。キー名はSPAが消費するワイヤフォーマット。
type likeCountResponse struct {
	Likes int `json:"likes"`
}

// feedPostResponse はフィード上の1投稿のレスポンス。
type feedPostResponse struct {
	ID        string             `json:"id"`
	Content   string             `json:"content"`
	AuthorID  string             `json:"authorId"`
	Approved  bool               `json:"approved"`
	CreatedAt time.Time          `json:"createdAt"`
	Author    postAuthorResponse `json:"author"`
	Count     likeCountResponse  `json:"_count"`
	LikedByMe bool               `json:"likedByMe"`
}

// createPostRequest は投稿作成リクエストのボディ。
type createPostRequest struct {
	Content string `json:"content"`
}

// toggleLikeResponse はいいねトグルのレスポンス。
type toggleLikeResponse struct {
	Message string `json:"message"`
	State   string `json:"state"`
}

// newFeedPostResponse はmodel.FeedPostからレスポンスを構築する。
func newFeedPostResponse(fp *model.FeedPost) feedPostResponse {
	return feedPostResponse{
		ID:        fp.ID,
		Content:   fp.Content,
		AuthorID:  fp.AuthorID,
		Approved:  fp.Approved,
		CreatedAt: fp.CreatedAt,
		Author: postAuthorResponse{
			ID:         fp.Author.ID,
			Name:       fp.Author.Name,
			PictureURL: fp.Author.PictureURL,
			Title:      fp.Author.Title,
		},
		Count:     likeCountResponse{Likes: fp.LikeCount},
		LikedByMe: fp.LikedByMe,
	}
}

// ListFeed は承認済み投稿のフィードを返す。
// GET /api/posts
func (h *PostHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	feed, err := h.posts.ListFeed(r.Context(), identity.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 空フィードでもnullではなく[]を返す
	responses := make([]feedPostResponse, 0, len(feed))
	for i := range feed {
		responses = append(responses, newFeedPostResponse(&feed[i]))
	}

	writeJSON(w, http.StatusOK, responses)
}

// Create は新しい投稿を作成する。作成直後の投稿は未承認でフィードには現れない。
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeValidation,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	created, err := h.posts.Create(r.Context(), identity.UserID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordPostCreated()
	}

	writeJSON(w, http.StatusCreated, newFeedPostResponse(created))
}

// ToggleLike は投稿へのいいね状態を反転する。
// POST /api/posts/{postID}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	postID := chi.URLParam(r, "postID")

	state, err := h.likes.Toggle(r.Context(), identity.UserID, postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordLikeToggled(string(state))
	}

	message := "いいねしました。"
	if state == model.LikeStateUnliked {
		message = "いいねを取り消しました。"
	}

	writeJSON(w, http.StatusOK, toggleLikeResponse{
		Message: message,
		State:   string(state),
	})
}
