// Package config はアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Identity Gateway
	GoogleClientID string // IDトークンのaudience検証に使用する
	AllowedDomains []string
	// LoginAutoRegister がtrueの場合、未登録ユーザーの初回ログインで
	// Userレコードを自動作成する。falseの場合はACCOUNT_NOT_FOUNDで拒否する。
	LoginAutoRegister bool

	// Session Token
	JWTSecret string
	TokenTTL  time.Duration

	// Rate Limit（req/min/user）
	RateLimitGeneral    int
	RateLimitPostCreate int

	// Server
	ServerPort string
	StaticDir  string

	// CORS
	CORSAllowedOrigin string
}

// defaultAllowedDomains はALLOWED_DOMAINS未設定時の許可ドメイン。
var defaultAllowedDomains = []string{"google.com", "cognizant.com"}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envファイルがあれば先に読み込む（未存在は無視）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envは開発時の利便のため。本番では環境変数を直接設定する想定。
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AllowedDomains = parseDomains(os.Getenv("ALLOWED_DOMAINS"))
	cfg.LoginAutoRegister = getEnvBool("LOGIN_AUTO_REGISTER", false)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 720*time.Hour) // 30日
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitPostCreate = getEnvInt("RATE_LIMIT_POST_CREATE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.StaticDir = getEnvString("STATIC_DIR", "public")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// parseDomains はカンマ区切りのドメインリストを解析する。
// 空の場合はデフォルトの許可ドメインを返す。
func parseDomains(v string) []string {
	if strings.TrimSpace(v) == "" {
		return defaultAllowedDomains
	}

	var domains []string
	for _, d := range strings.Split(v, ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		return defaultAllowedDomains
	}
	return domains
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
