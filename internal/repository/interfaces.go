// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/nova/internal/model"
)

// ErrDuplicate は一意制約違反を表す。
// 同時実行で同じ行が先に挿入された場合に返る。呼び出し側は
// 「すでに存在する」ものとして扱い、クライアントへのエラーにはしない。
var ErrDuplicate = errors.New("duplicate row")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが重複している場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile は表示名とプロフィール画像URLをIdPの最新値で上書きし、
	// 更新後のユーザーを返す。登録時の項目（role等）は変更しない。
	UpdateProfile(ctx context.Context, id, name string, pictureURL *string) (*model.User, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Create は投稿を作成する。Approvedは呼び出し側でfalseに固定済みであること。
	Create(ctx context.Context, post *model.Post) error

	// ListApprovedFeed は承認済み投稿を作成日時の降順で返す。
	// 各行に投稿者サマリー・いいね数・viewerIDのいいね状態を付与する。
	// ページネーションは行わない（全件スキャン許容の規模）。
	ListApprovedFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error)
}

// LikeRepository はいいねデータの永続化インターフェース。
type LikeRepository interface {
	// Exists は (userID, postID) のいいね行が存在するかを返す。
	Exists(ctx context.Context, userID, postID string) (bool, error)

	// Create はいいね行を挿入する。
	// 複合主キー違反（同時実行で先に挿入された）の場合はErrDuplicateを返す。
	Create(ctx context.Context, like *model.Like) error

	// Delete は (userID, postID) のいいね行を削除する。
	// 削除した場合はtrue、行が存在しなかった場合はfalseを返す。
	Delete(ctx context.Context, userID, postID string) (bool, error)

	// CountByPost は指定投稿のいいね数を返す。
	CountByPost(ctx context.Context, postID string) (int, error)
}
