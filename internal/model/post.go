// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーの投稿を表す。
// Approvedがtrueの投稿のみが公開フィードに表示される。
// Approvedはモデレーターがストレージ上で直接更新する。APIからは変更できない。
type Post struct {
	ID        string
	Content   string
	AuthorID  string
	Approved  bool
	CreatedAt time.Time
}

// Like はユーザーと投稿のいいね関係を表す。
// (UserID, PostID) の組み合わせで高々1行（複合主キー）。
type Like struct {
	UserID    string
	PostID    string
	CreatedAt time.Time
}

// PostAuthor はフィード表示用の投稿者サマリー。
type PostAuthor struct {
	ID         string
	Name       string
	PictureURL *string
	Title      *string
}

// FeedPost は公開フィードの1件分を表す。
// 投稿本体に加え、投稿者情報・いいね数・閲覧者自身のいいね状態を持つ。
// LikeCountは読み出し時にlikesテーブルを集計するため、実カウントと常に一致する。
type FeedPost struct {
	Post
	Author    PostAuthor
	LikeCount int
	LikedByMe bool
}

// LikeState はいいねトグル操作の結果状態を表す。
type LikeState string

const (
	// LikeStateLiked はトグルの結果いいねが付いた状態。
	LikeStateLiked LikeState = "liked"
	// LikeStateUnliked はトグルの結果いいねが外れた状態。
	LikeStateUnliked LikeState = "unliked"
)
