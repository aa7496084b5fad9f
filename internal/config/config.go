// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// データベース設定
	MongoURI string // MongoDB 接続URI
	DBName   string // 使用するデータベース名

	// 認証設定
	AccessTokenSecret string // セッショントークン署名用の秘密鍵
	TokenExpireHours  int    // セッショントークンの有効期間（時間）

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// データベース設定
		MongoURI: getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		DBName:   getEnv("DB_NAME", "bookDB"),

		// 認証設定
		AccessTokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
		// 稼働環境によって 30日 / 5日 が混在していたため設定値にしている
		TokenExpireHours: getEnvAsInt("TOKEN_EXPIRE_HOURS", 720),

		// サーバー設定
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// TokenTTL はセッショントークンの有効期間を time.Duration で返します。
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpireHours) * time.Hour
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では空でも起動できるが、本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.AccessTokenSecret == "" {
			return fmt.Errorf("ACCESS_TOKEN_SECRET is required in release mode")
		}
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required in release mode")
		}
	}

	if c.TokenExpireHours <= 0 {
		return fmt.Errorf("TOKEN_EXPIRE_HOURS must be positive")
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
