// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Emailは外部IdPとの照合キーとして一意。
// NameとPictureURLはログインのたびにIdPの最新値で上書きされる。
// Role/Specialization/Siteは登録フロー経由で作成された場合のみ設定される。
type User struct {
	ID             string
	Email          string
	Name           string
	PictureURL     *string
	Title          *string
	Role           *string
	Specialization *string
	Site           *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
