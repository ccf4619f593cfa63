package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nova/internal/model"
)

// PostgresLikeRepo はPostgreSQLを使用したいいねリポジトリ。
type PostgresLikeRepo struct {
	db *sql.DB
}

// NewPostgresLikeRepo はPostgresLikeRepoを生成する。
func NewPostgresLikeRepo(db *sql.DB) *PostgresLikeRepo {
	return &PostgresLikeRepo{db: db}
}

// Exists は (userID, postID) のいいね行が存在するかを返す。
func (r *PostgresLikeRepo) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`,
		userID, postID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return exists, nil
}

// Create はいいね行を挿入する。複合主キー違反の場合はErrDuplicateを返す。
func (r *PostgresLikeRepo) Create(ctx context.Context, like *model.Like) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO likes (user_id, post_id, created_at) VALUES ($1, $2, $3)`,
		like.UserID, like.PostID, like.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert like: %w", err)
	}
	return nil
}

// Delete は (userID, postID) のいいね行を削除する。
// 削除した場合はtrue、行が存在しなかった場合はfalseを返す。
func (r *PostgresLikeRepo) Delete(ctx context.Context, userID, postID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`,
		userID, postID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CountByPost は指定投稿のいいね数を返す。
func (r *PostgresLikeRepo) CountByPost(ctx context.Context, postID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`,
		postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ LikeRepository = (*PostgresLikeRepo)(nil)
