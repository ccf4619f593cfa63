// Package auth はIdPアサーションの検証、ユーザー登録、セッショントークンの
// 発行・検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/nova/internal/model"
	"github.com/hitoshi/nova/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// AutoRegister がtrueの場合、未登録ユーザーの初回ログインで
	// Userレコードを自動作成する。falseの場合はACCOUNT_NOT_FOUNDで拒否する。
	AutoRegister bool
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	User  *model.User
	Token string
}

// RegisterInput は登録リクエストの入力。全フィールド必須。
type RegisterInput struct {
	Name           string
	Email          string
	Specialization string
	Role           string
	Site           string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier  AssertionVerifier
	users     repository.UserRepository
	tokens    *TokenManager
	allowlist *Allowlist
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	verifier AssertionVerifier,
	users repository.UserRepository,
	tokens *TokenManager,
	allowlist *Allowlist,
	config ServiceConfig,
) *Service {
	return &Service{
		verifier:  verifier,
		users:     users,
		tokens:    tokens,
		allowlist: allowlist,
		config:    config,
	}
}

// Login はIdPアサーションを検証し、セッショントークンを発行する。
//
// フロー:
//  1. アサーションの署名・audience・必須クレームを検証する。
//     失敗原因はログにのみ記録し、クライアントには一律INVALID_ASSERTIONを返す。
//  2. メールドメインが許可リストに含まれるかを確認する。
//  3. メールアドレスでユーザーを検索する。
//     未登録の場合、AutoRegisterが無効ならACCOUNT_NOT_FOUNDで拒否、
//     有効ならUserレコードを自動作成する。
//  4. 既存ユーザーは表示名・画像URLをIdPの最新値で上書きする。
//  5. セッショントークンを発行する。
func (s *Service) Login(ctx context.Context, assertion string) (*LoginResult, error) {
	// 1. アサーションの検証（外部ネットワーク呼び出し）
	claims, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		slog.Warn("assertion verification failed",
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidAssertionError()
	}

	// 2. ドメイン許可リストの確認
	if !s.allowlist.Allows(claims.Email) {
		slog.Warn("login rejected by domain allowlist",
			slog.String("email_domain", emailDomain(claims.Email)),
		)
		return nil, model.NewDomainNotAllowedError()
	}

	// 3. メールアドレスでユーザーを検索
	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		if !s.config.AutoRegister {
			// ログインは自動登録しない。登録は明示的な別ステップ。
			return nil, model.NewAccountNotFoundError()
		}

		user, err = s.autoRegister(ctx, claims)
		if err != nil {
			return nil, err
		}
	} else {
		// 4. IdPの最新値で表示項目を上書きする。登録時の項目は保持する。
		user, err = s.users.UpdateProfile(ctx, user.ID, claims.Name, optional(claims.Picture))
		if err != nil {
			return nil, fmt.Errorf("failed to update user profile: %w", err)
		}
		if user == nil {
			return nil, model.NewAccountNotFoundError()
		}
	}

	// 5. セッショントークンの発行
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// autoRegister は初回ログイン時のユーザー自動作成を行う。
func (s *Service) autoRegister(ctx context.Context, claims *IdentityClaims) (*model.User, error) {
	now := time.Now()
	user := &model.User{
		ID:         uuid.New().String(),
		Email:      claims.Email,
		Name:       claims.Name,
		PictureURL: optional(claims.Picture),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			// 同時ログインで先に作成された場合は既存行を採用する
			existing, findErr := s.users.FindByEmail(ctx, claims.Email)
			if findErr != nil {
				return nil, fmt.Errorf("failed to find user after duplicate create: %w", findErr)
			}
			if existing == nil {
				return nil, fmt.Errorf("user vanished after duplicate create")
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to auto-register user: %w", err)
	}

	slog.Info("new user auto-registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Register は自己申告の登録リクエストを検証し、ユーザーを作成する。
// 成功してもトークンは発行しない。ユーザーはその後ログインフローを通る。
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	// 1. 必須フィールドの検証
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"specialization", in.Specialization},
		{"role", in.Role},
		{"site", in.Site},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing)
	}

	// 2. ドメイン許可リストの確認（ログインと同一ポリシー）
	if !s.allowlist.Allows(in.Email) {
		slog.Warn("registration rejected by domain allowlist",
			slog.String("email_domain", emailDomain(in.Email)),
		)
		return model.NewDomainNotAllowedError()
	}

	// 3. メールアドレスの一意性確認
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return model.NewDuplicateAccountError()
	}

	// 4. ユーザーの作成
	now := time.Now()
	user := &model.User{
		ID:             uuid.New().String(),
		Email:          in.Email,
		Name:           in.Name,
		Title:          deriveTitle(in.Role, in.Specialization),
		Role:           optional(in.Role),
		Specialization: optional(in.Specialization),
		Site:           optional(in.Site),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			// 一意制約が最終防衛線。検索と挿入の間の競合はここで吸収する。
			return model.NewDuplicateAccountError()
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return nil
}

// deriveTitle は表示用タイトルを "{role} - {specialization}" 形式で導出する。
// いずれかが空の場合はnil（タイトル未設定）を返す。
func deriveTitle(role, specialization string) *string {
	if strings.TrimSpace(role) == "" || strings.TrimSpace(specialization) == "" {
		return nil
	}
	title := fmt.Sprintf("%s - %s", role, specialization)
	return &title
}

// optional は空文字列をnilに変換する。
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// emailDomain はログ出力用にメールアドレスのドメイン部を取り出す。
// アドレス全体はログに残さない。
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
