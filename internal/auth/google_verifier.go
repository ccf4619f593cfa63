package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// defaultTokenInfoURL はGoogleのIDトークン検証エンドポイント。
// 署名検証・有効期限チェックはGoogle側で行われ、検証済みクレームが返る。
const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// IdentityClaims はIdPのアサーションから抽出した検証済みクレーム。
type IdentityClaims struct {
	Email   string
	Name    string
	Picture string // プロフィール画像URL。空の場合もある。
}

// AssertionVerifier は外部IdPが発行したアサーション（IDトークン）の
// 検証インターフェース。検証失敗の原因（ネットワーク・署名・期限切れ等）は
// errorとして返し、クライアント向けの集約は呼び出し側で行う。
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion string) (*IdentityClaims, error)
}

// GoogleVerifierConfig はGoogleVerifierの設定。
type GoogleVerifierConfig struct {
	// Audience は期待するOAuthクライアントID。audクレームと照合する。
	Audience string

	// テスト用にオーバーライド可能なURL
	TokenInfoURL string
}

// GoogleVerifier はGoogleのtokeninfoエンドポイントでIDトークンを検証する。
// 外部ネットワーク呼び出しを伴う、失敗しうるブロッキング処理。
type GoogleVerifier struct {
	config GoogleVerifierConfig
	client *http.Client
}

// NewGoogleVerifier はGoogleVerifierを生成する。
func NewGoogleVerifier(config GoogleVerifierConfig) *GoogleVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultTokenInfoURL
	}
	return &GoogleVerifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// tokenInfoResponse はtokeninfoエンドポイントのレスポンス。
type tokenInfoResponse struct {
	Aud     string `json:"aud"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Verify はIDトークンを検証し、検証済みクレームを返す。
// audienceの不一致、email/nameクレームの欠落はエラーとする。
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*IdentityClaims, error) {
	if assertion == "" {
		return nil, fmt.Errorf("empty assertion")
	}

	endpoint := v.config.TokenInfoURL + "?id_token=" + url.QueryEscape(assertion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	// 無効・期限切れトークンに対してGoogleは4xxを返す
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo returned status %d: %s", resp.StatusCode, string(body))
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	if info.Aud != v.config.Audience {
		return nil, fmt.Errorf("audience mismatch: %q", info.Aud)
	}
	if info.Email == "" || info.Name == "" {
		return nil, fmt.Errorf("required claims missing in tokeninfo response")
	}

	return &IdentityClaims{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// compile-time interface check
var _ AssertionVerifier = (*GoogleVerifier)(nil)
