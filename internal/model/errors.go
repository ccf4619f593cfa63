// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, post, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidAssertion = "INVALID_ASSERTION"
	ErrCodeDomainNotAllowed = "DOMAIN_NOT_ALLOWED"
	ErrCodeAccountNotFound  = "ACCOUNT_NOT_FOUND"
	ErrCodeDuplicateAccount = "DUPLICATE_ACCOUNT"
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"
	ErrCodePostNotFound     = "POST_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewValidationError は必須フィールド欠落エラーを生成する。
// missingFieldsには欠落しているフィールド名を渡す。
func NewValidationError(missingFields []string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("必須項目が入力されていません: %s", strings.Join(missingFields, ", ")),
		Category: "validation",
		Action:   "すべての必須項目を入力して再度お試しください。",
	}
}

// NewEmptyContentError は投稿本文が空の場合のエラーを生成する。
func NewEmptyContentError() *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  "投稿内容が空です。",
		Category: "validation",
		Action:   "投稿内容を入力してください。",
	}
}

// NewInvalidAssertionError はIdPアサーションの検証失敗エラーを生成する。
// 失敗原因（ネットワーク・署名・有効期限等）はサーバー側ログにのみ記録し、
// クライアントには一律この汎用エラーを返す。
func NewInvalidAssertionError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAssertion,
		Message:  "Googleトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewDomainNotAllowedError は許可されていないメールドメインのエラーを生成する。
func NewDomainNotAllowedError() *APIError {
	return &APIError{
		Code:     ErrCodeDomainNotAllowed,
		Message:  "許可されていない組織ドメインのメールアドレスです。",
		Category: "auth",
		Action:   "組織のメールアドレスでお試しください。",
	}
}

// NewAccountNotFoundError は未登録アカウントでのログイン拒否エラーを生成する。
func NewAccountNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  "アカウントが見つかりません。先に登録を行ってください。",
		Category: "auth",
		Action:   "登録ページからアカウントを作成してください。",
	}
}

// NewDuplicateAccountError はメールアドレス重複エラーを生成する。
func NewDuplicateAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateAccount,
		Message:  "このメールアドレスのアカウントは既に存在します。",
		Category: "validation",
		Action:   "ログインページからログインしてください。",
	}
}

// NewUnauthenticatedError は認証エラーを生成する。
// トークンの欠落・不正・期限切れ・ユーザー消失のすべてで共通に使用する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %s", postID),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
