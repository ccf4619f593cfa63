// Package like は投稿へのいいねのトグル操作を提供する。
package like

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/nova/internal/model"
	"github.com/hitoshi/nova/internal/repository"
)

// PostFinder は対象投稿の存在確認に必要なインターフェース。
// repository.PostRepositoryの部分集合として定義する。
type PostFinder interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
}

// Service はいいねに関するビジネスロジックを提供する。
type Service struct {
	likes repository.LikeRepository
	posts PostFinder
}

// NewService はServiceを生成する。
func NewService(likes repository.LikeRepository, posts PostFinder) *Service {
	return &Service{
		likes: likes,
		posts: posts,
	}
}

// Toggle は (userID, postID) のいいね状態を反転する。
// 呼び出し側は目標状態を指定できない。各呼び出しが現在状態を反転する
// （冪等ではない。2回呼ぶと元の状態に戻る）。
//
// 同時実行との競合はlikesテーブルの複合主キーのみをガードとし、
// 挿入時の一意制約違反は「すでにいいね済み」として結果状態に吸収する。
// クライアントにエラーとしては返さない。
func (s *Service) Toggle(ctx context.Context, userID, postID string) (model.LikeState, error) {
	// 対象投稿の存在確認
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return "", model.NewPostNotFoundError(postID)
	}

	exists, err := s.likes.Exists(ctx, userID, postID)
	if err != nil {
		return "", fmt.Errorf("failed to check like: %w", err)
	}

	if exists {
		// いいね済みなら外す。行がすでに消えていた場合（並行アンライク）も
		// 結果状態は同じ「外れている」なのでそのまま返す。
		if _, err := s.likes.Delete(ctx, userID, postID); err != nil {
			return "", fmt.Errorf("failed to delete like: %w", err)
		}

		slog.Info("post unliked",
			slog.String("user_id", userID),
			slog.String("post_id", postID),
		)
		return model.LikeStateUnliked, nil
	}

	err = s.likes.Create(ctx, &model.Like{
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now(),
	})
	if err != nil && err != repository.ErrDuplicate {
		return "", fmt.Errorf("failed to create like: %w", err)
	}
	// ErrDuplicateは並行リクエストが先にいいねした場合。行は存在するので
	// 結果状態は「いいね済み」で確定する。

	slog.Info("post liked",
		slog.String("user_id", userID),
		slog.String("post_id", postID),
	)
	return model.LikeStateLiked, nil
}
