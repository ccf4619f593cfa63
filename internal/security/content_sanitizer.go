// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer は投稿本文をサニタイズし、XSS攻撃などの
// セキュリティリスクからフィード閲覧者を保護する。
// 投稿はプレーンテキストの短文であり、HTMLタグを含む必要がないため、
// bluemondayの厳格ポリシーですべてのタグ・属性を除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は投稿本文のサニタイズ機能のインターフェースを定義する。
// 投稿の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は投稿本文からすべてのHTMLタグと危険な属性を除去し、
	// 前後の空白をトリムしたプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべての要素と属性を除去する。script, iframe, style,
// on*イベント属性を含むあらゆるHTMLが取り除かれ、テキストのみが残る。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は投稿本文をサニタイズしてプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
