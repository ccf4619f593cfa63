package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nova/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, content, author_id, approved, created_at FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.Content, &post.AuthorID, &post.Approved, &post.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	return post, nil
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, content, author_id, approved, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.Content, post.AuthorID, post.Approved, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// ListApprovedFeed は承認済み投稿を作成日時の降順で返す。
// いいね数はサブクエリで毎回集計するため、likesテーブルの実カウントと常に一致する。
func (r *PostgresPostRepo) ListApprovedFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.content, p.author_id, p.approved, p.created_at,
		        u.id, u.name, u.picture_url, u.title,
		        (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
		        EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1) AS liked_by_me
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.approved = true
		 ORDER BY p.created_at DESC`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved posts: %w", err)
	}
	defer rows.Close()

	feed := []model.FeedPost{}
	for rows.Next() {
		var fp model.FeedPost
		if err := rows.Scan(
			&fp.ID, &fp.Content, &fp.AuthorID, &fp.Approved, &fp.CreatedAt,
			&fp.Author.ID, &fp.Author.Name, &fp.Author.PictureURL, &fp.Author.Title,
			&fp.LikeCount, &fp.LikedByMe,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feed post: %w", err)
		}
		feed = append(feed, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed posts: %w", err)
	}

	return feed, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
