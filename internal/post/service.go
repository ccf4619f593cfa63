// Package post は投稿の作成と公開フィードの提供を行う。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/nova/internal/model"
	"github.com/hitoshi/nova/internal/repository"
	"github.com/hitoshi/nova/internal/security"
)

// Service は投稿に関するビジネスロジックを提供する。
type Service struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	posts repository.PostRepository,
	users repository.UserRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		posts:     posts,
		users:     users,
		sanitizer: sanitizer,
	}
}

// ListFeed は公開フィードを返す。
// 承認済み投稿のみを作成日時の降順で返し、各投稿に投稿者情報・いいね数・
// viewerID自身のいいね状態を付与する。未承認の投稿は投稿者本人にも表示されない。
func (s *Service) ListFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error) {
	feed, err := s.posts.ListApprovedFeed(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	return feed, nil
}

// Create は新しい投稿を作成する。
// 本文はサニタイズ後に空であればVALIDATION_ERRORとする。
// Approvedはクライアントの入力にかかわらずfalseで保存する。
// 承認フラグはモデレーターがストレージ上で直接更新するまで変わらず、
// それまで投稿はフィードに表示されない。
func (s *Service) Create(ctx context.Context, authorID, content string) (*model.FeedPost, error) {
	content = s.sanitizer.Sanitize(content)
	if content == "" {
		return nil, model.NewEmptyContentError()
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}
	if author == nil {
		return nil, model.NewUnauthenticatedError()
	}

	p := &model.Post{
		ID:        uuid.New().String(),
		Content:   content,
		AuthorID:  authorID,
		Approved:  false,
		CreatedAt: time.Now(),
	}

	if err := s.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", p.ID),
		slog.String("author_id", authorID),
	)

	return &model.FeedPost{
		Post: *p,
		Author: model.PostAuthor{
			ID:         author.ID,
			Name:       author.Name,
			PictureURL: author.PictureURL,
			Title:      author.Title,
		},
		LikeCount: 0,
		LikedByMe: false,
	}, nil
}
